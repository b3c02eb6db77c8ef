package pharmacy

import (
	"time"

	"github.com/google/uuid"
)

// Prescription statuses.
const (
	StatusPending   = "Pending"
	StatusDispensed = "Dispensed"
)

// DefaultLowStockThreshold flags drugs that need reordering.
const DefaultLowStockThreshold = 20

// Prescription is a single drug line written by a doctor. A visit with three
// medicines yields three rows sharing the same appointment id.
type Prescription struct {
	ID            uuid.UUID `json:"id"`
	PatientID     uuid.UUID `json:"patientId"`
	DoctorID      uuid.UUID `json:"doctorId"`
	AppointmentID uuid.UUID `json:"appointmentId"`
	PatientName   string    `json:"patientName"`
	DoctorName    string    `json:"doctorName"`
	Diagnosis     string    `json:"diagnosis,omitempty"`
	DrugName      string    `json:"drugName"`
	Quantity      int       `json:"quantity"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Drug is an inventory row. Stock may go negative: dispensing is never
// blocked on inventory, a shortfall is surfaced through LowStock instead.
type Drug struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	Stock             int       `json:"stock"`
	ExpiryDate        time.Time `json:"expiryDate"`
	LowStockThreshold int       `json:"lowStockThreshold"`
	LowStock          bool      `json:"lowStock"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// MedicineLine is one entry of a doctor's prescription submission.
type MedicineLine struct {
	DrugName string `json:"drugName"`
	Quantity int    `json:"quantity"`
}
