package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/makerspace/membership-service/internal/core/domain"
	"github.com/makerspace/membership-service/internal/core/ports"
)

const (
	defaultReconcileLimit = 50
	maxReconcileLimit     = 500
)

// AdminHandler exposes operator endpoints for role sync and reconciliation.
type AdminHandler struct {
	roles     ports.RoleSyncService
	reconcile ports.ReconcileService
}

func NewAdminHandler(roles ports.RoleSyncService, reconcile ports.ReconcileService) *AdminHandler {
	return &AdminHandler{roles: roles, reconcile: reconcile}
}

// RoleSync handles POST /v1/members/:userID/role-sync. Chat platform
// failures are reported in the body; they have already been queued for
// reconciliation.
//
// @Summary      Re-sync a member's chat roles
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        userID  path      string  true  "User ID"
// @Success      200     {object}  roleSyncResponse
// @Failure      404     {object}  errorResponse
// @Failure      422     {object}  errorResponse
// @Router       /v1/members/{userID}/role-sync [post]
func (h *AdminHandler) RoleSync(c echo.Context) error {
	err := h.roles.SyncUser(c.Request().Context(), c.Param("userID"))
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, roleSyncResponse{Synced: true})
	case errors.Is(err, domain.ErrUserNotFound):
		return err
	case errors.Is(err, domain.ErrNoChatAccount):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "member has no linked chat account")
	default:
		return c.JSON(http.StatusOK, roleSyncResponse{Synced: false, Error: err.Error()})
	}
}

// Reconcile handles POST /v1/admin/reconcile?limit=N.
//
// @Summary      Drain the reconciliation queue
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query     int  false  "Maximum jobs to replay"
// @Success      200    {object}  ports.DrainResult
// @Failure      400    {object}  errorResponse
// @Router       /v1/admin/reconcile [post]
func (h *AdminHandler) Reconcile(c echo.Context) error {
	limit := defaultReconcileLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
		limit = min(n, maxReconcileLimit)
	}

	res, err := h.reconcile.Drain(c.Request().Context(), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}
