package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// kvEntry is one persisted session key.
type kvEntry struct {
	bun.BaseModel `bun:"table:kv_entries,alias:kv"`

	Key       string    `bun:"key,pk"`
	Value     string    `bun:"value,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// BunStore persists session keys in a SQL table through Bun.
type BunStore struct {
	db   *bun.DB
	kind string
}

// NewBunStore wraps db and creates the kv_entries table when missing.
// kind is reported by Kind ("sqlite" or "postgres").
func NewBunStore(ctx context.Context, db *bun.DB, kind string) (*BunStore, error) {
	if _, err := db.NewCreateTable().
		Model((*kvEntry)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return nil, fmt.Errorf("create kv_entries table: %w", err)
	}
	return &BunStore{db: db, kind: kind}, nil
}

// Get reads the value stored for key.
func (s *BunStore) Get(ctx context.Context, key string) (string, bool, error) {
	entry := new(kvEntry)
	err := s.db.NewSelect().
		Model(entry).
		Where("? = ?", bun.Ident("key"), key).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get session key %s: %w", key, err)
	}
	return entry.Value, true, nil
}

// Set upserts key.
func (s *BunStore) Set(ctx context.Context, key, value string) error {
	entry := &kvEntry{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	_, err := s.db.NewInsert().
		Model(entry).
		On(`CONFLICT ("key") DO UPDATE`).
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("set session key %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Missing keys are ignored.
func (s *BunStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.NewDelete().
		Model((*kvEntry)(nil)).
		Where("? = ?", bun.Ident("key"), key).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete session key %s: %w", key, err)
	}
	return nil
}

func (s *BunStore) Kind() string { return s.kind }

// Close closes the underlying database.
func (s *BunStore) Close() error {
	return s.db.Close()
}
