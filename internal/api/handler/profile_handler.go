package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/wyclub/member-system/internal/api/middleware"
	"github.com/wyclub/member-system/internal/core/ports"
)

type updateProfileRequest struct {
	Name *string `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
}

// ProfileHandler serves the reconciled "current user" view and profile writes.
type ProfileHandler struct {
	accounts ports.AccountService
}

func NewProfileHandler(accounts ports.AccountService) *ProfileHandler {
	return &ProfileHandler{accounts: accounts}
}

// Me returns the reconciled auth state for the authenticated session.
//
// @Summary      Current member state
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.AuthState
// @Failure      401  {object}  errorResponse
// @Router       /v1/me [get]
func (h *ProfileHandler) Me(c echo.Context) error {
	state, ok := middleware.StateFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return c.JSON(http.StatusOK, state)
}

// Update applies a partial profile update. Rejected with 503 while the
// profile backend is degraded.
//
// @Summary      Update own profile
// @Tags         profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateProfileRequest  true  "Fields to update"
// @Success      200   {object}  domain.AuthState
// @Failure      401   {object}  errorResponse
// @Failure      503   {object}  errorResponse
// @Router       /v1/me [patch]
func (h *ProfileHandler) Update(c echo.Context) error {
	session, err := ctxSession(c)
	if err != nil {
		return err
	}

	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	state, err := h.accounts.UpdateProfile(c.Request().Context(), session, ports.UpdateProfileInput{Name: req.Name})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, state)
}

// Refresh forces a cache-bypassing re-fetch of the profile.
//
// @Summary      Refresh own profile
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.AuthState
// @Failure      401  {object}  errorResponse
// @Router       /v1/me/refresh [post]
func (h *ProfileHandler) Refresh(c echo.Context) error {
	session, err := ctxSession(c)
	if err != nil {
		return err
	}

	state, err := h.accounts.RefreshUser(c.Request().Context(), session)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, state)
}
