package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ctxClaims extracts the auth claims injected by the Auth middleware. Both
// the subject and the role must be present; a token without a subject
// cannot be tied to a member.
func ctxClaims(c echo.Context) (userID, role string, err error) {
	role, _ = c.Get("role").(string)
	userID, _ = c.Get("user_id").(string)
	if role == "" || userID == "" {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return userID, role, nil
}
