package queue

import (
	"time"

	"github.com/google/uuid"
)

// Appointment statuses.
const (
	StatusScheduled = "Scheduled"
	StatusServing   = "Serving"
	StatusCompleted = "Completed"
	StatusCancelled = "Cancelled"
)

// Appointment priorities. Emergencies jump ahead of the normal queue.
const (
	PriorityNormal    = "Normal"
	PriorityEmergency = "Emergency"
)

// Appointment is a patient's daily token with a doctor. TokenNumber is unique
// per department per day and assigned at booking time.
type Appointment struct {
	ID              uuid.UUID `json:"id"`
	PatientID       uuid.UUID `json:"patientId"`
	DoctorID        uuid.UUID `json:"doctorId"`
	PatientName     string    `json:"patientName"`
	DoctorName      string    `json:"doctorName"`
	Department      string    `json:"department"`
	AppointmentDate time.Time `json:"appointmentDate"`
	TokenNumber     int       `json:"tokenNumber"`
	Reason          string    `json:"reason,omitempty"`
	Priority        string    `json:"priority"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// QueueStatus is the patient-facing view of where they stand in the queue.
// Position is a number rendered as text, or the literal "Serving" once the
// doctor has called them in. CurrentServing is the department's active token,
// or "N/A" when nobody is being served.
type QueueStatus struct {
	TokenNumber    int    `json:"tokenNumber"`
	Department     string `json:"department"`
	DoctorName     string `json:"doctorName"`
	Status         string `json:"status"`
	Position       string `json:"queuePosition"`
	CurrentServing string `json:"currentlyServing"`
}

// QueueView partitions a doctor's daily queue. Emergencies are always listed
// first regardless of token order.
type QueueView struct {
	Emergencies []*Appointment `json:"emergencies"`
	Queue       []*Appointment `json:"queue"`
}
