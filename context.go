package tollgate

import "context"

type contextKey int

const (
	ctxKeyTenantID contextKey = iota
	ctxKeyActor
)

// Actor is the authenticated caller as seen by middleware and API handlers:
// its parsed role plus the scope the backend issued at login.
type Actor struct {
	ID    string `json:"id"`
	Role  Role   `json:"role"`
	Scope Scope  `json:"scope"`
}

// WithTenant returns a context carrying the given tenant ID.
// Use this for standalone mode (without Forge).
func WithTenant(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, ctxKeyTenantID, tenantID)
}

// WithActor returns a context carrying the authenticated actor.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, ctxKeyActor, a)
}

// ActorFromContext returns the actor stored by WithActor, if any.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(ctxKeyActor).(Actor)
	return a, ok
}

func tenantFromContext(ctx context.Context) string {
	v, ok := ctx.Value(ctxKeyTenantID).(string)
	if !ok {
		return ""
	}
	return v
}
