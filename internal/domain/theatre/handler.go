package theatre

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	ot := api.Group("/ot", auth.RequireRole(auth.RoleOT))
	ot.GET("/requests", h.ListRequests)
	ot.PUT("/requests/:id", h.UpdateRequestStatus)
	ot.GET("/schedules", h.ListSchedules)
	ot.POST("/schedules", h.CreateSlot)
	ot.PUT("/schedules/:id", h.UpdateSlotStatus)
	ot.GET("/find-slots", h.FindSlots)
	ot.POST("/emergency-booking", h.EmergencyBooking)
	ot.PUT("/assign-request", h.AssignRequest)

	doctor := api.Group("/doctor", auth.RequireRole(auth.RoleDoctor))
	doctor.POST("/request-ot", h.CreateRequest)
}

func (h *Handler) CreateRequest(c echo.Context) error {
	doctorID, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid caller identity")
	}

	var in CreateRequestInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	doctorName := auth.UserNameFromContext(c.Request().Context())
	req, err := h.svc.CreateRequest(c.Request().Context(), doctorID, doctorName, in)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, req)
}

func (h *Handler) ListRequests(c echo.Context) error {
	items, err := h.svc.PendingRequests(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load requests")
	}
	return c.JSON(http.StatusOK, items)
}

type statusUpdate struct {
	Status string `json:"status"`
}

func (h *Handler) UpdateRequestStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var in statusUpdate
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	req, err := h.svc.UpdateRequestStatus(c.Request().Context(), id, in.Status)
	if err != nil {
		if errors.Is(err, ErrRequestNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "request not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, req)
}

func (h *Handler) ListSchedules(c echo.Context) error {
	items, err := h.svc.UpcomingSchedules(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load schedules")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) CreateSlot(c echo.Context) error {
	var in CreateSlotInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	slot, err := h.svc.CreateSlot(c.Request().Context(), in)
	if err != nil {
		if errors.Is(err, ErrSlotTaken) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, slot)
}

func (h *Handler) UpdateSlotStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var in statusUpdate
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	slot, err := h.svc.UpdateSlotStatus(c.Request().Context(), id, in.Status)
	if err != nil {
		if errors.Is(err, ErrSlotNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "slot not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, slot)
}

func (h *Handler) FindSlots(c echo.Context) error {
	date, err := time.Parse("2006-01-02", c.QueryParam("date"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
	}

	items, err := h.svc.FindSlots(c.Request().Context(), date, c.QueryParam("room"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) EmergencyBooking(c echo.Context) error {
	var in CreateSlotInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	slot, err := h.svc.EmergencyBooking(c.Request().Context(), in)
	if err != nil {
		if errors.Is(err, ErrSlotTaken) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, slot)
}

type assignRequest struct {
	SlotID    string `json:"slotId"`
	RequestID string `json:"requestId"`
}

func (h *Handler) AssignRequest(c echo.Context) error {
	var in assignRequest
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	slotID, err := uuid.Parse(in.SlotID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid slotId")
	}
	requestID, err := uuid.Parse(in.RequestID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid requestId")
	}

	slot, err := h.svc.Assign(c.Request().Context(), slotID, requestID)
	if err != nil {
		switch {
		case errors.Is(err, ErrSlotNotFound), errors.Is(err, ErrRequestNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, ErrSlotUnavailable):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to assign request")
		}
	}
	return c.JSON(http.StatusOK, slot)
}
