package checklog

import (
	"context"
	"time"

	"github.com/xraph/tollgate/id"
)

// Store persists the audit trail of authorization decisions.
type Store interface {
	// CreateCheckLog appends one decision entry.
	CreateCheckLog(ctx context.Context, e *Entry) error

	// GetCheckLog retrieves an entry by ID.
	GetCheckLog(ctx context.Context, logID id.CheckLogID) (*Entry, error)

	// ListCheckLogs returns entries matching the filter, oldest first.
	ListCheckLogs(ctx context.Context, filter *QueryFilter) ([]*Entry, error)

	// CountCheckLogs returns how many entries match the filter.
	CountCheckLogs(ctx context.Context, filter *QueryFilter) (int64, error)

	// PurgeCheckLogs removes entries recorded before the given time and
	// reports how many were removed.
	PurgeCheckLogs(ctx context.Context, before time.Time) (int64, error)

	// DeleteCheckLogsByTenant removes every entry for one tenant.
	DeleteCheckLogsByTenant(ctx context.Context, tenantID string) error
}
