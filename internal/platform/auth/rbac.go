package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// Account roles known to the system.
const (
	RolePatient        = "patient"
	RoleDoctor         = "doctor"
	RoleLaboratory     = "laboratory"
	RoleImagingService = "imaging_service"
	RoleAdmin          = "admin"
)

// ValidRole reports whether role is one of the known account roles.
func ValidRole(role string) bool {
	switch role {
	case RolePatient, RoleDoctor, RoleLaboratory, RoleImagingService, RoleAdmin:
		return true
	}
	return false
}

// RequireRole returns middleware that rejects requests whose authenticated
// role is not in the allow-list. Admin passes every gate.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role := RoleFromContext(c.Request().Context())
			if role == RoleAdmin {
				return next(c)
			}
			for _, required := range roles {
				if role == required {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden,
				fmt.Sprintf("required role: %s", strings.Join(roles, " or ")))
		}
	}
}
