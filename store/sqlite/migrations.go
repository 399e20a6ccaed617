package sqlite

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the Tollgate store (SQLite).
var Migrations = migrate.NewGroup("tollgate")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_grants",
			Version: "20250101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS tollgate_grants (
    id              TEXT PRIMARY KEY,
    tenant_id       TEXT NOT NULL,
    role            TEXT NOT NULL,
    permission      TEXT NOT NULL,
    is_system       INTEGER NOT NULL DEFAULT 0,
    granted_by      TEXT NOT NULL DEFAULT '',
    metadata        TEXT NOT NULL DEFAULT '{}',
    created_at      TEXT NOT NULL DEFAULT (datetime('now')),

    UNIQUE(tenant_id, role, permission)
);

CREATE INDEX IF NOT EXISTS idx_tollgate_grants_tenant ON tollgate_grants (tenant_id);
CREATE INDEX IF NOT EXISTS idx_tollgate_grants_role ON tollgate_grants (tenant_id, role);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS tollgate_grants`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_route_bindings",
			Version: "20250101000002",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS tollgate_route_bindings (
    id              TEXT PRIMARY KEY,
    tenant_id       TEXT NOT NULL,
    route           TEXT NOT NULL,
    permissions     TEXT NOT NULL DEFAULT '[]',
    description     TEXT NOT NULL DEFAULT '',
    created_at      TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at      TEXT NOT NULL DEFAULT (datetime('now')),

    UNIQUE(tenant_id, route)
);

CREATE INDEX IF NOT EXISTS idx_tollgate_routes_tenant ON tollgate_route_bindings (tenant_id);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS tollgate_route_bindings`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_hierarchy_edges",
			Version: "20250101000003",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS tollgate_hierarchy_edges (
    id              TEXT PRIMARY KEY,
    tenant_id       TEXT NOT NULL,
    manager         TEXT NOT NULL,
    target          TEXT NOT NULL,
    created_at      TEXT NOT NULL DEFAULT (datetime('now')),

    UNIQUE(tenant_id, manager, target)
);

CREATE INDEX IF NOT EXISTS idx_tollgate_edges_tenant ON tollgate_hierarchy_edges (tenant_id);
CREATE INDEX IF NOT EXISTS idx_tollgate_edges_manager ON tollgate_hierarchy_edges (tenant_id, manager);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS tollgate_hierarchy_edges`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_check_logs",
			Version: "20250101000004",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS tollgate_check_logs (
    id              TEXT PRIMARY KEY,
    tenant_id       TEXT NOT NULL,
    role            TEXT NOT NULL,
    permission      TEXT NOT NULL DEFAULT '',
    route           TEXT NOT NULL DEFAULT '',
    actor_id        TEXT NOT NULL DEFAULT '',
    owner_id        TEXT NOT NULL DEFAULT '',
    decision        TEXT NOT NULL,
    reason          TEXT NOT NULL DEFAULT '',
    eval_time_ns    INTEGER NOT NULL DEFAULT 0,
    request_ip      TEXT NOT NULL DEFAULT '',
    metadata        TEXT NOT NULL DEFAULT '{}',
    created_at      TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_tollgate_clogs_tenant ON tollgate_check_logs (tenant_id);
CREATE INDEX IF NOT EXISTS idx_tollgate_clogs_actor ON tollgate_check_logs (tenant_id, actor_id);
CREATE INDEX IF NOT EXISTS idx_tollgate_clogs_decision ON tollgate_check_logs (tenant_id, decision);
CREATE INDEX IF NOT EXISTS idx_tollgate_clogs_created ON tollgate_check_logs (created_at);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS tollgate_check_logs`)
				return err
			},
		},
	)
}
