package handler

import (
	"net/http"
	"strconv"

	repo "glemora/internal/repository"
	"glemora/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 管理者操作ログの閲覧API
type AdminAuditHandler struct {
	uc *usecase.AuditUsecase
}

func NewAdminAuditHandler(uc *usecase.AuditUsecase) *AdminAuditHandler {
	return &AdminAuditHandler{uc: uc}
}

func (h *AdminAuditHandler) RegisterRoutes(admin *echo.Group) {
	admin.GET("/admin/audit-logs", h.list)
}

func (h *AdminAuditHandler) list(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	var actorID *int64
	if v := c.QueryParam("actor_user_id"); v != "" {
		x, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid actor_user_id"})
		}
		actorID = &x
	}

	out, err := h.uc.List(c.Request().Context(), repo.AuditLogFilter{
		Page:         page,
		Limit:        limit,
		Action:       c.QueryParam("action"),
		ResourceType: c.QueryParam("resource_type"),
		ActorUserID:  actorID,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
