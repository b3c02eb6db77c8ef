package queue

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("appointment not found")

type Repository interface {
	// Create inserts the appointment and assigns the next token number for
	// its department and date atomically.
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	// ListScheduledByDoctor returns a doctor's Scheduled appointments for the
	// given day, ordered priority desc then token asc.
	ListScheduledByDoctor(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]*Appointment, error)
	// CallNext resets any stale Serving rows of the doctor back to Scheduled
	// and promotes the target appointment to Serving, in one transaction.
	CallNext(ctx context.Context, doctorID, apptID uuid.UUID) (*Appointment, error)
	// UpdateStatus flips the status of the doctor's appointment.
	UpdateStatus(ctx context.Context, id, doctorID uuid.UUID, status string) (*Appointment, error)
	// ServingByDoctor returns the doctor's Serving appointment regardless of
	// its date; stale rows stay visible until call-next resets them.
	ServingByDoctor(ctx context.Context, doctorID uuid.UUID) (*Appointment, error)
	// LatestActiveByPatient returns the patient's most recent Scheduled or
	// Serving appointment.
	LatestActiveByPatient(ctx context.Context, patientID uuid.UUID) (*Appointment, error)
	CountScheduledAhead(ctx context.Context, department string, date time.Time, token int) (int, error)
	ServingByDepartment(ctx context.Context, department string, date time.Time) (*Appointment, error)
}
