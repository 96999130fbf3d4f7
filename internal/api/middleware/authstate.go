package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/wyclub/member-system/internal/core/domain"
	"github.com/wyclub/member-system/internal/core/ports"
)

// authStateKey is the echo context key holding the reconciled domain.AuthState.
const authStateKey = "auth_state"

// AuthState resolves the reconciled auth state for the request's session and
// injects it into context. Must run after Auth. Resolution never fails:
// backend trouble surfaces as a degraded state, not an error.
func AuthState(reconciler ports.Reconciler) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			session := SessionFrom(c)
			if session == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
			}

			state := reconciler.Resolve(c.Request().Context(), session)
			c.Set(authStateKey, state)
			return next(c)
		}
	}
}

// StateFrom returns the auth state injected by AuthState.
func StateFrom(c echo.Context) (domain.AuthState, bool) {
	state, ok := c.Get(authStateKey).(domain.AuthState)
	return state, ok
}

// RequireAdmin rejects requests whose reconciled state lacks admin rights.
func RequireAdmin() echo.MiddlewareFunc {
	return requireFlag(func(s domain.AuthState) bool { return s.IsAdmin })
}

// RequireModerator admits moderators and admins.
func RequireModerator() echo.MiddlewareFunc {
	return requireFlag(func(s domain.AuthState) bool { return s.IsModerator })
}

func requireFlag(allowed func(domain.AuthState) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			state, ok := StateFrom(c)
			if !ok || !state.IsAuthenticated {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
			}
			if !allowed(state) {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
