package repository

import (
	"context"

	"nextstep-cv/internal/domain"

	"github.com/jackc/pgx/v4/pgxpool"
)

// SubmissionsRepo keeps a log of generation attempts. A nil pool turns every
// call into a no-op so the app runs without a database.
type SubmissionsRepo struct {
	pool *pgxpool.Pool
}

func NewSubmissionsRepo(pool *pgxpool.Pool) *SubmissionsRepo {
	return &SubmissionsRepo{pool: pool}
}

func (r *SubmissionsRepo) Save(ctx context.Context, s *domain.Submission) error {
	if r.pool == nil {
		return nil
	}

	_, err := r.pool.Exec(ctx, `INSERT INTO submissions (id, username, status, payload_version, size_bytes, error, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (id) DO UPDATE SET status = EXCLUDED.status, size_bytes = EXCLUDED.size_bytes, error = EXCLUDED.error, updated_at = EXCLUDED.updated_at`,
		s.ID, s.Username, s.Status, s.PayloadVersion, s.SizeBytes, s.Error, s.CreatedAt, s.UpdatedAt)
	return err
}

// RecentForUser returns the newest submissions of username, newest first.
func (r *SubmissionsRepo) RecentForUser(ctx context.Context, username string, limit int) ([]domain.Submission, error) {
	if r.pool == nil {
		return nil, nil
	}

	rows, err := r.pool.Query(ctx, `SELECT id, username, status, payload_version, size_bytes, error, created_at, updated_at
		FROM submissions WHERE username = $1 ORDER BY created_at DESC LIMIT $2`, username, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Submission
	for rows.Next() {
		var s domain.Submission
		if err := rows.Scan(&s.ID, &s.Username, &s.Status, &s.PayloadVersion, &s.SizeBytes, &s.Error, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
