package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// KV is the durable key-value collaborator the core depends on. Get reports
// absence with ok=false; Put with a zero TTL stores the value without expiry.
type KV interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// SQLiteKV backs KV with a single kv table. Expired rows are treated as
// absent on read and purged opportunistically on write.
type SQLiteKV struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewSQLiteKV(db *sql.DB, logger zerolog.Logger) *SQLiteKV {
	return &SQLiteKV{db: db, logger: logger}
}

func (s *SQLiteKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	var expiresAt sql.NullInt64

	err := s.db.QueryRowContext(ctx,
		`SELECT value, expires_at FROM kv WHERE key = ?`, key,
	).Scan(&value, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("kv get %q: %w", key, err)
	}

	if expiresAt.Valid && time.Now().Unix() >= expiresAt.Int64 {
		s.logger.Debug().Str("key", key).Msg("kv entry expired")
		return nil, false, nil
	}
	return value, true, nil
}

func (s *SQLiteKV) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	var expiresAt sql.NullInt64
	if ttl > 0 {
		expiresAt = sql.NullInt64{Int64: time.Now().Add(ttl).Unix(), Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, expires_at, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at`,
		key, value, expiresAt, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("kv put %q: %w", key, err)
	}

	s.purgeExpired(ctx)
	return nil
}

func (s *SQLiteKV) purgeExpired(ctx context.Context) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM kv WHERE expires_at IS NOT NULL AND expires_at < ?`,
		time.Now().Unix(),
	)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to purge expired kv entries")
		return
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		s.logger.Debug().Int64("purged", n).Msg("expired kv entries removed")
	}
}
