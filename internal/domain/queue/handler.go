package queue

import (
	"errors"
	"net/http"

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
	patient := api.Group("/patient", auth.RequireRole(auth.RolePatient))
	patient.POST("/book-token", h.BookToken)
	patient.GET("/status", h.Status)

	doctor := api.Group("/doctor", auth.RequireRole(auth.RoleDoctor))
	doctor.GET("/queue", h.DoctorQueue)
	doctor.POST("/call-next", h.CallNext)
	doctor.PUT("/cancel-serving", h.CancelServing)
	doctor.GET("/current-session", h.CurrentSession)
}

func callerID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid caller identity")
	}
	return id, nil
}

func (h *Handler) BookToken(c echo.Context) error {
	patientID, err := callerID(c)
	if err != nil {
		return err
	}

	var req BookTokenRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	patientName := auth.UserNameFromContext(c.Request().Context())
	appt, err := h.svc.BookToken(c.Request().Context(), patientID, patientName, req)
	if err != nil {
		if errors.Is(err, ErrDoctorNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, appt)
}

func (h *Handler) Status(c echo.Context) error {
	patientID, err := callerID(c)
	if err != nil {
		return err
	}

	status, err := h.svc.Status(c.Request().Context(), patientID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "no active appointment")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load queue status")
	}
	return c.JSON(http.StatusOK, status)
}

func (h *Handler) DoctorQueue(c echo.Context) error {
	doctorID, err := callerID(c)
	if err != nil {
		return err
	}

	view, err := h.svc.DoctorQueue(c.Request().Context(), doctorID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load queue")
	}
	return c.JSON(http.StatusOK, view)
}

type appointmentRef struct {
	AppointmentID string `json:"appointmentId"`
}

func (r appointmentRef) parse() (uuid.UUID, error) {
	id, err := uuid.Parse(r.AppointmentID)
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid appointmentId")
	}
	return id, nil
}

func (h *Handler) CallNext(c echo.Context) error {
	doctorID, err := callerID(c)
	if err != nil {
		return err
	}

	var ref appointmentRef
	if err := c.Bind(&ref); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	apptID, err := ref.parse()
	if err != nil {
		return err
	}

	appt, err := h.svc.CallNext(c.Request().Context(), doctorID, apptID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to call next patient")
	}
	return c.JSON(http.StatusOK, appt)
}

func (h *Handler) CancelServing(c echo.Context) error {
	doctorID, err := callerID(c)
	if err != nil {
		return err
	}

	var ref appointmentRef
	if err := c.Bind(&ref); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	apptID, err := ref.parse()
	if err != nil {
		return err
	}

	appt, err := h.svc.CancelServing(c.Request().Context(), doctorID, apptID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, appt)
}

func (h *Handler) CurrentSession(c echo.Context) error {
	doctorID, err := callerID(c)
	if err != nil {
		return err
	}

	appt, err := h.svc.CurrentSession(c.Request().Context(), doctorID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load current session")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"current": appt})
}
