package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"linguahub/internal/domain"
)

// DoubtStore persists the Q&A records in Postgres.
type DoubtStore struct {
	pool *pgxpool.Pool
}

func NewDoubtStore(pool *pgxpool.Pool) *DoubtStore {
	return &DoubtStore{pool: pool}
}

func (s *DoubtStore) CreateDoubt(ctx context.Context, d *domain.Doubt) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO doubts (id, learner, tutor, test_id, question, answer_ai, answer_tutor, status, created_at)
		 VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, $6, $7, $8, $9)`,
		d.ID, d.Learner, d.Tutor, d.TestID, d.Question, d.AnswerAI, d.AnswerTutor, string(d.Status), d.CreatedAt)
	if err != nil {
		return fmt.Errorf("create doubt: %w", err)
	}
	return nil
}

func (s *DoubtStore) GetDoubt(ctx context.Context, id string) (domain.Doubt, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, learner, COALESCE(tutor, ''), COALESCE(test_id, ''), question, answer_ai, answer_tutor, status, created_at
		   FROM doubts WHERE id = $1`, id)
	return scanDoubt(row)
}

func (s *DoubtStore) UpdateDoubt(ctx context.Context, d domain.Doubt) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE doubts SET answer_ai = $2, answer_tutor = $3, status = $4 WHERE id = $1`,
		d.ID, d.AnswerAI, d.AnswerTutor, string(d.Status))
	if err != nil {
		return fmt.Errorf("update doubt: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDoubtNotFound
	}
	return nil
}

func (s *DoubtStore) ListByTutor(ctx context.Context, tutorID string) ([]domain.Doubt, error) {
	// open doubts first, then newest first
	return s.queryDoubts(ctx,
		`SELECT id, learner, COALESCE(tutor, ''), COALESCE(test_id, ''), question, answer_ai, answer_tutor, status, created_at
		   FROM doubts WHERE tutor = $1
		  ORDER BY (status <> 'open'), created_at DESC`, tutorID)
}

func (s *DoubtStore) ListByLearner(ctx context.Context, learnerID string) ([]domain.Doubt, error) {
	return s.queryDoubts(ctx,
		`SELECT id, learner, COALESCE(tutor, ''), COALESCE(test_id, ''), question, answer_ai, answer_tutor, status, created_at
		   FROM doubts WHERE learner = $1 ORDER BY created_at DESC`, learnerID)
}

func (s *DoubtStore) queryDoubts(ctx context.Context, query string, args ...interface{}) ([]domain.Doubt, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query doubts: %w", err)
	}
	defer rows.Close()
	var out []domain.Doubt
	for rows.Next() {
		d, err := scanDoubt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate doubts: %w", err)
	}
	return out, nil
}

func scanDoubt(row rowScanner) (domain.Doubt, error) {
	var (
		d      domain.Doubt
		status string
	)
	if err := row.Scan(&d.ID, &d.Learner, &d.Tutor, &d.TestID, &d.Question, &d.AnswerAI, &d.AnswerTutor, &status, &d.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Doubt{}, domain.ErrDoubtNotFound
		}
		return domain.Doubt{}, fmt.Errorf("scan doubt: %w", err)
	}
	d.Status = domain.DoubtStatus(status)
	return d, nil
}
