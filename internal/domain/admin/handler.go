package admin

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/domain/identity"
	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	admin := api.Group("/admin", auth.RequireRole(auth.RoleAdmin))
	admin.GET("/stats", h.Stats)
	admin.GET("/protocols", h.ListProtocols)
	admin.POST("/protocols", h.CreateProtocol)
	admin.PUT("/protocols/:id", h.ToggleProtocol)
	admin.GET("/notifications", h.ListNotifications)
	admin.POST("/notifications", h.SendNotification)
	admin.GET("/audit-logs", h.AuditLogs)
	admin.POST("/register-user", h.RegisterUser)
	admin.GET("/users", h.Users)
}

func actor(c echo.Context) string {
	return auth.UserNameFromContext(c.Request().Context())
}

func (h *Handler) Stats(c echo.Context) error {
	stats, err := h.svc.DashboardStats(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load stats")
	}
	return c.JSON(http.StatusOK, stats)
}

type protocolRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *Handler) CreateProtocol(c echo.Context) error {
	var req protocolRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	p, err := h.svc.CreateProtocol(c.Request().Context(), actor(c), req.Name, req.Description)
	if err != nil {
		if errors.Is(err, ErrDuplicateProtocol) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) ListProtocols(c echo.Context) error {
	items, err := h.svc.ListProtocols(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load protocols")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) ToggleProtocol(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	p, err := h.svc.ToggleProtocol(c.Request().Context(), actor(c), id)
	if err != nil {
		if errors.Is(err, ErrProtocolNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "protocol not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update protocol")
	}
	return c.JSON(http.StatusOK, p)
}

type notificationRequest struct {
	Message string `json:"message"`
	Target  string `json:"target"`
}

func (h *Handler) SendNotification(c echo.Context) error {
	var req notificationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	n, err := h.svc.SendNotification(c.Request().Context(), actor(c), req.Message, req.Target)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, n)
}

func (h *Handler) ListNotifications(c echo.Context) error {
	items, err := h.svc.Notifications(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load notifications")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) AuditLogs(c echo.Context) error {
	items, err := h.svc.AuditLogs(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load audit logs")
	}
	return c.JSON(http.StatusOK, items)
}

type registerUserRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Role       string `json:"role"`
	Department string `json:"department"`
}

func (h *Handler) RegisterUser(c echo.Context) error {
	var req registerUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	account, err := h.svc.RegisterUser(c.Request().Context(), actor(c),
		req.Name, req.Email, req.Password, req.Role, req.Department)
	if err != nil {
		if errors.Is(err, identity.ErrEmailTaken) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, account)
}

func (h *Handler) Users(c echo.Context) error {
	params := pagination.FromContext(c)
	items, total, err := h.svc.Users(c.Request().Context(), params.Limit, params.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load users")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, params.Limit, params.Offset))
}
