package pharmacy

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrPrescriptionNotFound = errors.New("prescription not found")
	ErrDrugNotFound         = errors.New("drug not found")
	ErrAlreadyDispensed     = errors.New("prescription already dispensed")
)

// Submission is a doctor's complete prescription for one appointment.
type Submission struct {
	AppointmentID uuid.UUID
	PatientID     uuid.UUID
	DoctorID      uuid.UUID
	PatientName   string
	DoctorName    string
	Diagnosis     string
	Lines         []MedicineLine
}

type PrescriptionRepository interface {
	// Submit inserts one Pending row per line and marks the parent
	// appointment Completed, in one transaction.
	Submit(ctx context.Context, sub Submission) ([]*Prescription, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error)
	// ListPending returns Pending prescriptions, oldest first.
	ListPending(ctx context.Context) ([]*Prescription, error)
	// ListByPatient returns a patient's prescriptions, newest first.
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Prescription, error)
	// Dispense flips a Pending prescription to Dispensed and decrements the
	// matching drug's stock by the prescribed quantity, in one transaction.
	// Stock is allowed to go negative.
	Dispense(ctx context.Context, id uuid.UUID) (*Prescription, error)
}

type DrugRepository interface {
	List(ctx context.Context) ([]*Drug, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Drug, error)
	Restock(ctx context.Context, id uuid.UUID, quantity int) (*Drug, error)
	// SearchByPrefix matches drug names case-insensitively by prefix.
	SearchByPrefix(ctx context.Context, prefix string, limit int) ([]*Drug, error)
	// Seed inserts the given drugs, skipping names that already exist.
	Seed(ctx context.Context, drugs []Drug) (int, error)
}
