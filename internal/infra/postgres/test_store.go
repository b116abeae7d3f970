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

// TestStore persists tests and submissions in Postgres. Questions and
// answers are stored as JSONB; the submissions cascade on test delete
// is handled by the schema's foreign key.
type TestStore struct {
	pool *pgxpool.Pool
}

func NewTestStore(pool *pgxpool.Pool) *TestStore {
	return &TestStore{pool: pool}
}

func (s *TestStore) CreateTest(ctx context.Context, t *domain.Test) error {
	questions, err := json.Marshal(t.Questions)
	if err != nil {
		return fmt.Errorf("marshal questions: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO tests (id, tutor, title, language, duration_sec, questions, is_live, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		t.ID, t.Tutor, t.Title, t.Language, t.DurationSec, questions, t.IsLive, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("create test: %w", err)
	}
	return nil
}

func (s *TestStore) GetTest(ctx context.Context, id string) (domain.Test, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, tutor, title, language, duration_sec, questions, is_live, created_at
		   FROM tests WHERE id = $1`, id)
	return scanTest(row)
}

func (s *TestStore) ListLive(ctx context.Context, language string) ([]domain.Test, error) {
	query := `SELECT id, tutor, title, language, duration_sec, questions, is_live, created_at
	            FROM tests WHERE is_live`
	args := []interface{}{}
	if language != "" {
		query += ` AND language = $1`
		args = append(args, language)
	}
	query += ` ORDER BY created_at DESC`
	return s.queryTests(ctx, query, args...)
}

func (s *TestStore) ListByTutor(ctx context.Context, tutorID string) ([]domain.Test, error) {
	return s.queryTests(ctx,
		`SELECT id, tutor, title, language, duration_sec, questions, is_live, created_at
		   FROM tests WHERE tutor = $1 ORDER BY created_at DESC`, tutorID)
}

func (s *TestStore) SetLive(ctx context.Context, id, tutorID string, live bool) (domain.Test, error) {
	row := s.pool.QueryRow(ctx,
		`UPDATE tests SET is_live = $3 WHERE id = $1 AND tutor = $2
		 RETURNING id, tutor, title, language, duration_sec, questions, is_live, created_at`,
		id, tutorID, live)
	return scanTest(row)
}

func (s *TestStore) DeleteTest(ctx context.Context, id, tutorID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM tests WHERE id = $1 AND tutor = $2`, id, tutorID)
	if err != nil {
		return fmt.Errorf("delete test: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTestNotFound
	}
	return nil
}

func (s *TestStore) CreateSubmission(ctx context.Context, sub *domain.Submission) error {
	answers, err := json.Marshal(sub.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO submissions (id, test_id, learner, answers, score, total, comment, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		sub.ID, sub.TestID, sub.Learner, answers, sub.Score, sub.Total, sub.Comment, sub.CreatedAt)
	if err != nil {
		return fmt.Errorf("create submission: %w", err)
	}
	return nil
}

func (s *TestStore) GetSubmission(ctx context.Context, id string) (domain.Submission, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, test_id, learner, answers, score, total, comment, created_at
		   FROM submissions WHERE id = $1`, id)
	return scanSubmission(row)
}

func (s *TestStore) ListByTest(ctx context.Context, testID string) ([]domain.Submission, error) {
	return s.querySubmissions(ctx,
		`SELECT id, test_id, learner, answers, score, total, comment, created_at
		   FROM submissions WHERE test_id = $1 ORDER BY created_at DESC`, testID)
}

func (s *TestStore) ListByLearner(ctx context.Context, learnerID string) ([]domain.Submission, error) {
	return s.querySubmissions(ctx,
		`SELECT id, test_id, learner, answers, score, total, comment, created_at
		   FROM submissions WHERE learner = $1 ORDER BY created_at DESC`, learnerID)
}

func (s *TestStore) SetComment(ctx context.Context, id, comment string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE submissions SET comment = $2 WHERE id = $1`, id, comment)
	if err != nil {
		return fmt.Errorf("set comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSubmissionNotFound
	}
	return nil
}

func (s *TestStore) CountByTest(ctx context.Context, testIDs []string) (map[string]int, error) {
	counts := make(map[string]int, len(testIDs))
	if len(testIDs) == 0 {
		return counts, nil
	}
	rows, err := s.pool.Query(ctx,
		`SELECT test_id, COUNT(*) FROM submissions WHERE test_id = ANY($1) GROUP BY test_id`, testIDs)
	if err != nil {
		return nil, fmt.Errorf("count submissions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[id] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate counts: %w", err)
	}
	return counts, nil
}

func (s *TestStore) TimesInWindow(ctx context.Context, learnerID string, from, to time.Time) ([]time.Time, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT created_at FROM submissions WHERE learner = $1 AND created_at BETWEEN $2 AND $3`,
		learnerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("load submission times: %w", err)
	}
	defer rows.Close()
	var out []time.Time
	for rows.Next() {
		var at time.Time
		if err := rows.Scan(&at); err != nil {
			return nil, fmt.Errorf("scan submission time: %w", err)
		}
		out = append(out, at)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submission times: %w", err)
	}
	return out, nil
}

func (s *TestStore) queryTests(ctx context.Context, query string, args ...interface{}) ([]domain.Test, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tests: %w", err)
	}
	defer rows.Close()
	var out []domain.Test
	for rows.Next() {
		t, err := scanTest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tests: %w", err)
	}
	return out, nil
}

func (s *TestStore) querySubmissions(ctx context.Context, query string, args ...interface{}) ([]domain.Submission, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}
	defer rows.Close()
	var out []domain.Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submissions: %w", err)
	}
	return out, nil
}

func scanTest(row rowScanner) (domain.Test, error) {
	var (
		t         domain.Test
		questions []byte
	)
	if err := row.Scan(&t.ID, &t.Tutor, &t.Title, &t.Language, &t.DurationSec, &questions, &t.IsLive, &t.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Test{}, domain.ErrTestNotFound
		}
		return domain.Test{}, fmt.Errorf("scan test: %w", err)
	}
	if err := json.Unmarshal(questions, &t.Questions); err != nil {
		return domain.Test{}, fmt.Errorf("unmarshal questions: %w", err)
	}
	return t, nil
}

func scanSubmission(row rowScanner) (domain.Submission, error) {
	var (
		sub     domain.Submission
		answers []byte
	)
	if err := row.Scan(&sub.ID, &sub.TestID, &sub.Learner, &answers, &sub.Score, &sub.Total, &sub.Comment, &sub.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Submission{}, domain.ErrSubmissionNotFound
		}
		return domain.Submission{}, fmt.Errorf("scan submission: %w", err)
	}
	if err := json.Unmarshal(answers, &sub.Answers); err != nil {
		return domain.Submission{}, fmt.Errorf("unmarshal answers: %w", err)
	}
	return sub, nil
}
