package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/wyclub/member-system/internal/api/middleware"
	"github.com/wyclub/member-system/internal/core/domain"
)

// ctxSession extracts the session injected by the Auth middleware and
// fast-fails before any service call: its presence proves the middleware ran.
func ctxSession(c echo.Context) (*domain.Session, error) {
	session := middleware.SessionFrom(c)
	if session == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return session, nil
}
