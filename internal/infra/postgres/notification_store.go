package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"linguahub/internal/domain"
)

// NotificationStore persists per-user mailboxes in Postgres.
type NotificationStore struct {
	pool *pgxpool.Pool
}

func NewNotificationStore(pool *pgxpool.Pool) *NotificationStore {
	return &NotificationStore{pool: pool}
}

func (s *NotificationStore) Append(ctx context.Context, n *domain.Notification) error {
	meta, err := json.Marshal(n.Meta)
	if err != nil {
		return fmt.Errorf("marshal notification meta: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO notifications (id, recipient, kind, title, body, meta, read, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		n.ID, n.Recipient, string(n.Kind), n.Title, n.Body, meta, n.Read, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("append notification: %w", err)
	}
	return nil
}

func (s *NotificationStore) ListByRecipient(ctx context.Context, userID string) ([]domain.Notification, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, recipient, kind, title, body, meta, read, created_at, read_at
		   FROM notifications WHERE recipient = $1
		  ORDER BY created_at DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var out []domain.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}
	return out, nil
}

// MarkRead filters on recipient, so a foreign id reads as not found.
func (s *NotificationStore) MarkRead(ctx context.Context, userID, id string, at time.Time) (domain.Notification, error) {
	row := s.pool.QueryRow(ctx,
		`UPDATE notifications SET read = TRUE, read_at = $3
		  WHERE id = $1 AND recipient = $2
		 RETURNING id, recipient, kind, title, body, meta, read, created_at, read_at`,
		id, userID, at)
	n, err := scanNotification(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Notification{}, domain.ErrNotificationNotFound
		}
		return domain.Notification{}, err
	}
	return n, nil
}

func (s *NotificationStore) Clear(ctx context.Context, userID string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM notifications WHERE recipient = $1`, userID); err != nil {
		return fmt.Errorf("clear notifications: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanNotification(row rowScanner) (domain.Notification, error) {
	var (
		n    domain.Notification
		kind string
		meta []byte
	)
	if err := row.Scan(&n.ID, &n.Recipient, &kind, &n.Title, &n.Body, &meta, &n.Read, &n.CreatedAt, &n.ReadAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Notification{}, err
		}
		return domain.Notification{}, fmt.Errorf("scan notification: %w", err)
	}
	n.Kind = domain.NotificationKind(kind)
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &n.Meta); err != nil {
			return domain.Notification{}, fmt.Errorf("unmarshal notification meta: %w", err)
		}
	}
	return n, nil
}
