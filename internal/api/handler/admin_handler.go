package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/wyclub/member-system/internal/core/ports"
)

type memberStatsResponse struct {
	Total  int64            `json:"total"`
	ByRole map[string]int64 `json:"by_role"`
}

// AdminHandler serves the aggregate counts behind the admin dashboard.
type AdminHandler struct {
	stats ports.StatsService
}

func NewAdminHandler(stats ports.StatsService) *AdminHandler {
	return &AdminHandler{stats: stats}
}

// Stats handles GET /v1/admin/stats.
//
// @Summary      Aggregate member counts
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  memberStatsResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /v1/admin/stats [get]
func (h *AdminHandler) Stats(c echo.Context) error {
	stats, err := h.stats.MemberStats(c.Request().Context())
	if err != nil {
		return err
	}

	byRole := make(map[string]int64, len(stats.ByRole))
	for role, n := range stats.ByRole {
		byRole[string(role)] = n
	}
	return c.JSON(http.StatusOK, memberStatsResponse{Total: stats.Total, ByRole: byRole})
}
