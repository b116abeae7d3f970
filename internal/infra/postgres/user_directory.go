package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"linguahub/internal/domain"
)

// UserDirectory reads the account table maintained by the platform's
// account service. The core never writes it.
type UserDirectory struct {
	pool *pgxpool.Pool
}

func NewUserDirectory(pool *pgxpool.Pool) *UserDirectory {
	return &UserDirectory{pool: pool}
}

func (d *UserDirectory) GetUser(ctx context.Context, id string) (domain.User, error) {
	var u domain.User
	var role string
	err := d.pool.QueryRow(ctx,
		`SELECT id, name, email, role FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.Name, &u.Email, &role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("load user: %w", err)
	}
	u.Role = domain.Role(role)
	return u, nil
}

func (d *UserDirectory) ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	rows, err := d.pool.Query(ctx,
		`SELECT id, name, email, role FROM users WHERE role = $1 ORDER BY name LIMIT 200`, string(role))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()
	var out []domain.User
	for rows.Next() {
		var u domain.User
		var r string
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &r); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		u.Role = domain.Role(r)
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return out, nil
}
