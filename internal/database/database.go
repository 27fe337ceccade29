// Package database turns the resolved database settings into a DSN and
// probes it with sqlx.  The commerce runtime owns the real pool; these
// helpers exist so operator tooling can check connectivity before deploy.
//
// Public entry points:
//
//	DSN(url, opts)                       – append driver options to the URL.
//	Open(ctx, dsn)                       – small pool, pinged before return.
//	OpenWithOptions(ctx, dsn, max, idle) – fine-grained control.
//	Ping(ctx, db)                        – bounded health probe.
package database

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// DriverName is the database/sql driver registered by lib/pq.
const DriverName = "postgres"

// ConnectTimeout bounds lib/pq's dial and startup handshake, which do not
// watch the context.
const ConnectTimeout = 10 * time.Second

// DSN applies the ssl driver option and a connect timeout to a postgres
// URL.  Explicit sslmode or connect_timeout parameters always win.
func DSN(raw string, ssl bool) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("database url: %w", err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return "", fmt.Errorf("database url: unsupported scheme %q", u.Scheme)
	}

	q := u.Query()
	if q.Get("sslmode") == "" {
		if ssl {
			q.Set("sslmode", "require")
		} else {
			q.Set("sslmode", "disable")
		}
	}
	if q.Get("connect_timeout") == "" {
		q.Set("connect_timeout", strconv.Itoa(int(ConnectTimeout/time.Second)))
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Open returns a *sqlx.DB sized for one-off checks: 2 open, 1 idle.
func Open(ctx context.Context, dsn string) (*sqlx.DB, error) {
	return OpenWithOptions(ctx, dsn, 2, 1)
}

// OpenWithOptions opens, sizes, and pings a pool.  It gives up when ctx
// ends.
func OpenWithOptions(ctx context.Context, dsn string, maxOpen, maxIdle int) (*sqlx.DB, error) {
	db, err := sqlx.Open(DriverName, dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := ping(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping: %w", err)
	}
	return db, nil
}

// Ping checks db within timeout.
func Ping(ctx context.Context, db *sqlx.DB, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := ping(ctx, db); err != nil {
		return fmt.Errorf("database ping: %w", err)
	}
	return nil
}

// ping returns as soon as ctx ends.  A ping stuck in the driver handshake
// keeps running in the background until ConnectTimeout.
func ping(ctx context.Context, db *sqlx.DB) error {
	done := make(chan error, 1)
	go func() { done <- db.PingContext(ctx) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
