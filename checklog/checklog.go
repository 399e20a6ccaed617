// Package checklog defines the check audit log Entry entity.
package checklog

import (
	"time"

	"github.com/xraph/tollgate/id"
)

// Entry is a single authorization check audit record.
type Entry struct {
	ID         id.CheckLogID  `json:"id" db:"id"`
	TenantID   string         `json:"tenant_id" db:"tenant_id"`
	Role       string         `json:"role" db:"role"`
	Permission string         `json:"permission,omitempty" db:"permission"`
	Route      string         `json:"route,omitempty" db:"route"`
	ActorID    string         `json:"actor_id,omitempty" db:"actor_id"`
	OwnerID    string         `json:"owner_id,omitempty" db:"owner_id"`
	Decision   string         `json:"decision" db:"decision"`
	Reason     string         `json:"reason,omitempty" db:"reason"`
	EvalTimeNs int64          `json:"eval_time_ns" db:"eval_time_ns"`
	RequestIP  string         `json:"request_ip,omitempty" db:"request_ip"`
	Metadata   map[string]any `json:"metadata,omitempty" db:"metadata"`
	CreatedAt  time.Time      `json:"created_at" db:"created_at"`
}

// QueryFilter contains filters for querying check logs.
type QueryFilter struct {
	TenantID   string     `json:"tenant_id,omitempty"`
	Role       string     `json:"role,omitempty"`
	Permission string     `json:"permission,omitempty"`
	Route      string     `json:"route,omitempty"`
	ActorID    string     `json:"actor_id,omitempty"`
	Decision   string     `json:"decision,omitempty"`
	After      *time.Time `json:"after,omitempty"`
	Before     *time.Time `json:"before,omitempty"`
	Limit      int        `json:"limit,omitempty"`
	Offset     int        `json:"offset,omitempty"`
}
