package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/persome/account-system/internal/core/domain"
)

// ctxIdentity extracts the identity injected by the Auth middleware and
// fast-fails before any service call: a present non-NONE role proves the
// middleware ran, and every authenticated route needs a user id.
func ctxIdentity(c echo.Context) (userID string, role domain.Role, err error) {
	role, _ = c.Get("role").(domain.Role)
	if role == domain.RoleNone {
		return "", domain.RoleNone, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}

	userID, _ = c.Get("user_id").(string)
	if userID == "" {
		return "", domain.RoleNone, echo.NewHTTPError(http.StatusUnauthorized, "token missing user identity")
	}

	return userID, role, nil
}
