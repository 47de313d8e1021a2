package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/makerspace/membership-service/internal/core/domain"
)

// Context keys set by Auth.
const (
	CtxUserID   = "user_id"
	CtxUsername = "username"
	CtxRole     = "role"
)

// RBAC lets through only the given roles. It must run after Auth.
func RBAC(allowedRoles ...string) echo.MiddlewareFunc {
	allowed := roleSet(allowedRoles)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(CtxRole).(string)
			if _, ok := allowed[role]; !ok {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}

// SelfOrRole lets a member act on their own record, named by the path
// parameter param, and any caller holding one of roles act on every record.
func SelfOrRole(param string, roles ...string) echo.MiddlewareFunc {
	allowed := roleSet(roles)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(CtxRole).(string)
			if _, ok := allowed[role]; ok {
				return next(c)
			}
			userID, _ := c.Get(CtxUserID).(string)
			if userID == "" || userID != c.Param(param) {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}

func roleSet(roles []string) map[string]struct{} {
	set := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}
