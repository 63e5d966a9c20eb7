package infrastructure

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4/pgxpool"
)

// ErrNoDSN means no database was configured; callers treat it as "run
// without the submissions log".
var ErrNoDSN = errors.New("no database dsn configured")

func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	if dsn == "" {
		return nil, ErrNoDSN
	}
	pool, err := pgxpool.Connect(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return pool, nil
}
