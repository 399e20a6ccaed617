// Package store defines the aggregate persistence interface. The rules and
// checklog subsystems define their own store interfaces; the composite Store
// composes them. Backends: Postgres, SQLite, MongoDB, and Memory.
package store

import (
	"context"

	"github.com/xraph/tollgate/checklog"
	"github.com/xraph/tollgate/rules"
)

// Store is the aggregate persistence interface.
// A single backend (postgres, sqlite, mongo, memory) implements all of it.
type Store interface {
	rules.Store
	checklog.Store

	// Migrate runs all schema migrations.
	Migrate(ctx context.Context) error

	// Ping checks database connectivity.
	Ping(ctx context.Context) error

	// Close closes the store connection.
	Close() error
}
