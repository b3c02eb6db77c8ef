package pharmacy

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
	pharmacy := api.Group("/pharmacy", auth.RequireRole(auth.RolePharmacy))
	pharmacy.GET("/prescriptions", h.ListPending)
	pharmacy.PUT("/prescriptions/:id/dispense", h.Dispense)
	pharmacy.GET("/inventory", h.Inventory)
	pharmacy.PUT("/inventory/:id/restock", h.Restock)
	pharmacy.GET("/search", h.Search)

	doctor := api.Group("/doctor", auth.RequireRole(auth.RoleDoctor))
	doctor.POST("/prescriptions", h.Submit)

	patient := api.Group("/patient", auth.RequireRole(auth.RolePatient))
	patient.GET("/prescriptions", h.PatientPrescriptions)
}

type submitRequest struct {
	AppointmentID string         `json:"appointmentId"`
	PatientID     string         `json:"patientId"`
	PatientName   string         `json:"patientName"`
	Diagnosis     string         `json:"diagnosis"`
	Medicines     []MedicineLine `json:"medicines"`
}

func (h *Handler) Submit(c echo.Context) error {
	doctorID, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid caller identity")
	}

	var req submitRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	appointmentID, err := uuid.Parse(req.AppointmentID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointmentId")
	}
	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patientId")
	}

	created, err := h.svc.SubmitPrescription(c.Request().Context(), Submission{
		AppointmentID: appointmentID,
		PatientID:     patientID,
		DoctorID:      doctorID,
		PatientName:   req.PatientName,
		DoctorName:    auth.UserNameFromContext(c.Request().Context()),
		Diagnosis:     req.Diagnosis,
		Lines:         req.Medicines,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) ListPending(c echo.Context) error {
	items, err := h.svc.PendingPrescriptions(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load prescriptions")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) PatientPrescriptions(c echo.Context) error {
	patientID, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid caller identity")
	}

	items, err := h.svc.PatientPrescriptions(c.Request().Context(), patientID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load prescriptions")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) Dispense(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	dispensed, err := h.svc.Dispense(c.Request().Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, ErrPrescriptionNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "prescription not found")
		case errors.Is(err, ErrAlreadyDispensed):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to dispense")
		}
	}
	return c.JSON(http.StatusOK, dispensed)
}

func (h *Handler) Inventory(c echo.Context) error {
	items, err := h.svc.Inventory(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load inventory")
	}
	return c.JSON(http.StatusOK, items)
}

type restockRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) Restock(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req restockRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	drug, err := h.svc.Restock(c.Request().Context(), id, req.Quantity)
	if err != nil {
		if errors.Is(err, ErrDrugNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "drug not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, drug)
}

func (h *Handler) Search(c echo.Context) error {
	items, err := h.svc.SearchDrugs(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "search failed")
	}
	return c.JSON(http.StatusOK, items)
}
