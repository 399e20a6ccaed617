// Package middleware provides HTTP authorization middleware for Tollgate.
package middleware

import (
	"encoding/json"

	"github.com/xraph/forge"

	"github.com/xraph/tollgate"
)

// Require enforces a permission. It resolves the actor from the request
// context and checks whether the actor's role holds the permission,
// scoped to the resource identified by the route's :id parameter owner
// fields when present.
func Require(eng *tollgate.Engine, perm tollgate.Permission) forge.Middleware {
	return func(next forge.Handler) forge.Handler {
		return func(ctx forge.Context) error {
			actor := resolveActor(ctx)

			err := eng.Enforce(ctx.Context(), &tollgate.CheckRequest{
				Role:       actor.Role,
				Permission: perm,
				ActorScope: actor.Scope,
			})
			if err != nil {
				return denyResponse(ctx)
			}
			return next(ctx)
		}
	}
}

// RequireRoute enforces route access for the request's own path. Routes
// without a binding follow the engine's unlisted-route policy.
func RequireRoute(eng *tollgate.Engine) forge.Middleware {
	return func(next forge.Handler) forge.Handler {
		return func(ctx forge.Context) error {
			actor := resolveActor(ctx)

			err := eng.Enforce(ctx.Context(), &tollgate.CheckRequest{
				Role:       actor.Role,
				Route:      ctx.Request().URL.Path,
				ActorScope: actor.Scope,
			})
			if err != nil {
				return denyResponse(ctx)
			}
			return next(ctx)
		}
	}
}

// RequireManage allows the request only if the actor's role may
// administratively manage the given target role.
func RequireManage(eng *tollgate.Engine, target tollgate.Role) forge.Middleware {
	return func(next forge.Handler) forge.Handler {
		return func(ctx forge.Context) error {
			actor := resolveActor(ctx)
			if !eng.CanManageRole(actor.Role, target) {
				return denyResponse(ctx)
			}
			return next(ctx)
		}
	}
}

// RequireAny allows the request if the actor's role holds ANY of the
// given permissions.
func RequireAny(eng *tollgate.Engine, perms ...tollgate.Permission) forge.Middleware {
	return func(next forge.Handler) forge.Handler {
		return func(ctx forge.Context) error {
			actor := resolveActor(ctx)
			if !eng.HasAnyPermission(actor.Role, perms...) {
				return denyResponse(ctx)
			}
			return next(ctx)
		}
	}
}

// RequireAll allows the request only if the actor's role holds ALL of
// the given permissions.
func RequireAll(eng *tollgate.Engine, perms ...tollgate.Permission) forge.Middleware {
	return func(next forge.Handler) forge.Handler {
		return func(ctx forge.Context) error {
			actor := resolveActor(ctx)
			if !eng.HasAllPermissions(actor.Role, perms...) {
				return denyResponse(ctx)
			}
			return next(ctx)
		}
	}
}

// resolveActor extracts the actor from context.
// Priority: tollgate.WithActor value → Forge user ID with no role.
// An actor without a valid role fails every check, so unauthenticated
// requests degrade to deny rather than erroring.
func resolveActor(ctx forge.Context) tollgate.Actor {
	if a, ok := tollgate.ActorFromContext(ctx.Context()); ok {
		return a
	}
	if userID := forge.UserIDFromContext(ctx.Context()); userID != "" {
		return tollgate.Actor{ID: userID}
	}
	return tollgate.Actor{ID: "anonymous"}
}

func denyResponse(ctx forge.Context) error {
	ctx.SetHeader("Content-Type", "application/json")
	ctx.Response().WriteHeader(403)
	return json.NewEncoder(ctx.Response()).Encode(map[string]string{"error": "access denied"})
}
