package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/persome/account-system/internal/core/domain"
	"github.com/persome/account-system/internal/core/session"
)

// SessionHandler exposes the coordinator's derived session state over HTTP
// for diagnostics and for thin clients that poll instead of holding a socket.
type SessionHandler struct {
	coord *session.Coordinator
}

func NewSessionHandler(coord *session.Coordinator) *SessionHandler {
	return &SessionHandler{coord: coord}
}

type sessionResponse struct {
	Phase string           `json:"phase"`
	User  *domain.UserData `json:"user,omitempty"`
}

type permissionResponse struct {
	Role    string `json:"role"`
	Allowed bool   `json:"allowed"`
}

// State returns the current derived session state.
//
// @Summary      Current session state
// @Tags         session
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Router       /session [get]
func (h *SessionHandler) State(c echo.Context) error {
	state := h.coord.State()
	return c.JSON(http.StatusOK, sessionResponse{
		Phase: string(state.Phase),
		User:  state.User,
	})
}

// Permissions checks the current role against a comma-separated role list.
//
// @Summary      Permission check
// @Tags         session
// @Produce      json
// @Param        roles  query     string  true  "Comma-separated required roles"
// @Success      200    {object}  permissionResponse
// @Router       /session/permissions [get]
func (h *SessionHandler) Permissions(c echo.Context) error {
	var required []domain.Role
	for _, part := range strings.Split(c.QueryParam("roles"), ",") {
		if part = strings.TrimSpace(part); part != "" {
			required = append(required, domain.ParseRole(part))
		}
	}

	return c.JSON(http.StatusOK, permissionResponse{
		Role:    string(h.coord.CurrentRole()),
		Allowed: h.coord.HasPermission(required...),
	})
}
