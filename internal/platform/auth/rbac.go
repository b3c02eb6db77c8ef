package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// Roles recognized by the system.
const (
	RolePatient  = "Patient"
	RoleDoctor   = "Doctor"
	RoleAdmin    = "Admin"
	RoleOT       = "OT"
	RolePharmacy = "Pharmacy"
)

// AllRoles lists every assignable role.
var AllRoles = []string{RolePatient, RoleDoctor, RoleAdmin, RoleOT, RolePharmacy}

// ValidRole reports whether role is one of the recognized roles.
func ValidRole(role string) bool {
	for _, r := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

// RequireRole returns middleware that checks if the caller holds one of the
// given roles. Admin passes every check.
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
