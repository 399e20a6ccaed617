package tollgate

import (
	"context"

	"github.com/xraph/forge"
)

// TenantFromContext extracts the tenant ID from forge.Scope when the
// engine runs inside a Forge app, falling back to the standalone context
// value set by WithTenant.
func TenantFromContext(ctx context.Context) string {
	if s, ok := forge.ScopeFrom(ctx); ok {
		return s.OrgID()
	}
	return tenantFromContext(ctx)
}
