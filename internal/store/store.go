// Package store provides the durable backends a session can be persisted in.
package store

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/uptrace/bun"

	"github.com/edugrid/portal/internal/db/bunx"
	"github.com/edugrid/portal/pkg/sdk"
)

// Backend is a SessionBackend that holds resources until closed.
type Backend interface {
	sdk.SessionBackend
	// Kind names the backend for status output ("file", "sqlite", "postgres", "redis", "memory").
	Kind() string
	Close() error
}

// Open selects a backend from dsn:
//
//	""  or dir:<path>          files under ~/.edugrid or <path>
//	mem: / memory:             process memory
//	redis:// / rediss://       Redis, optional ?prefix=<key prefix>
//	postgres:// / unix://      PostgreSQL through bun
//	anything else              SQLite through bun (sqlite://, file:, :memory:, path)
func Open(ctx context.Context, dsn string) (Backend, error) {
	dsn = strings.TrimSpace(dsn)
	switch {
	case dsn == "":
		return NewFileStore("")
	case strings.HasPrefix(dsn, "dir:"):
		return NewFileStore(strings.TrimPrefix(strings.TrimPrefix(dsn, "dir:"), "//"))
	case dsn == "mem:" || dsn == "memory:" || strings.HasPrefix(dsn, "mem://"):
		return NewMemoryStore(), nil
	case strings.HasPrefix(dsn, "redis://") || strings.HasPrefix(dsn, "rediss://"):
		return openRedis(ctx, dsn)
	default:
		db, err := bunx.NewDB(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("open session database: %w", err)
		}
		return newBunBackend(ctx, db, string(bunx.DetectDatabaseType(dsn)))
	}
}

// newBunBackend wraps db, closing it when the table cannot be prepared.
func newBunBackend(ctx context.Context, db *bun.DB, kind string) (Backend, error) {
	s, err := NewBunStore(ctx, db, kind)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func openRedis(ctx context.Context, dsn string) (Backend, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse redis dsn: %w", err)
	}
	q := u.Query()
	prefix := q.Get("prefix")
	q.Del("prefix")
	u.RawQuery = q.Encode()
	return NewRedisStore(ctx, u.String(), prefix)
}
