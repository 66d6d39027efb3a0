package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MigrationSession is the DDL for the session table. It is safe to execute
// multiple times; the PG store runs it on construction so the table is
// created on demand.
const MigrationSession = `
CREATE TABLE IF NOT EXISTS session (
    sid    TEXT PRIMARY KEY,
    sess   JSONB NOT NULL,
    expire TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_session_expire ON session (expire);
`

// pgConn is the minimal database surface required by PGStore. Both
// *pgxpool.Pool and test mocks implement it.
type pgConn interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PGStore is the Postgres-backed session store.
type PGStore struct {
	db pgConn
}

// NewPGStore wraps an existing connection. The session table must already
// exist (use NewPGStoreFromPool to create it on demand).
func NewPGStore(db pgConn) *PGStore {
	return &PGStore{db: db}
}

// NewPGStoreFromPool creates the session table if absent and returns a store
// backed by the pool.
func NewPGStoreFromPool(ctx context.Context, pool *pgxpool.Pool) (*PGStore, error) {
	if _, err := pool.Exec(ctx, MigrationSession); err != nil {
		return nil, fmt.Errorf("create session table: %w", err)
	}
	return &PGStore{db: pool}, nil
}

func (s *PGStore) Get(ctx context.Context, sid string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRow(ctx,
		`SELECT sess FROM session WHERE sid = $1 AND expire > NOW()`, sid).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *PGStore) Set(ctx context.Context, sid string, data []byte, expire time.Time) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO session (sid, sess, expire) VALUES ($1, $2, $3)
		ON CONFLICT (sid) DO UPDATE SET sess = EXCLUDED.sess, expire = EXCLUDED.expire`,
		sid, data, expire)
	return err
}

func (s *PGStore) Destroy(ctx context.Context, sid string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM session WHERE sid = $1`, sid)
	return err
}

func (s *PGStore) Prune(ctx context.Context) (int, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM session WHERE expire <= NOW()`)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
