package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"linguahub/internal/domain"
)

// MessageStore persists the per-room message log in Postgres.
type MessageStore struct {
	pool *pgxpool.Pool
}

func NewMessageStore(pool *pgxpool.Pool) *MessageStore {
	return &MessageStore{pool: pool}
}

func (s *MessageStore) Append(ctx context.Context, msg *domain.Message) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO messages (id, room_key, from_id, to_id, body, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		msg.ID, msg.RoomKey, msg.From, msg.To, msg.Text, msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	return nil
}

func (s *MessageStore) History(ctx context.Context, roomKey string, limit int) ([]domain.Message, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, room_key, from_id, to_id, body, created_at, read_at
		   FROM messages WHERE room_key = $1
		  ORDER BY created_at DESC LIMIT $2`,
		roomKey, limit)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	defer rows.Close()

	var out []domain.Message
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.RoomKey, &m.From, &m.To, &m.Text, &m.CreatedAt, &m.ReadAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	// stored newest-first for the LIMIT; callers expect oldest-first
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}
