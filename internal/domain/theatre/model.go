package theatre

import (
	"time"

	"github.com/google/uuid"
)

// OT request statuses.
const (
	RequestPending  = "Pending"
	RequestApproved = "Approved"
	RequestRejected = "Rejected"
)

// OT slot statuses.
const (
	SlotAvailable   = "Available"
	SlotBooked      = "Booked"
	SlotOccupied    = "Occupied"
	SlotUnavailable = "Unavailable"
)

// Rooms lists the five operating theatres.
var Rooms = []string{"OT-1", "OT-2", "OT-3", "OT-4", "OT-5"}

// ValidRoom reports whether room names one of the theatres.
func ValidRoom(room string) bool {
	for _, r := range Rooms {
		if r == room {
			return true
		}
	}
	return false
}

// ValidSlotStatus reports whether status is a recognized slot status.
func ValidSlotStatus(status string) bool {
	switch status {
	case SlotAvailable, SlotBooked, SlotOccupied, SlotUnavailable:
		return true
	}
	return false
}

// ValidRequestStatus reports whether status is a recognized request status.
func ValidRequestStatus(status string) bool {
	switch status {
	case RequestPending, RequestApproved, RequestRejected:
		return true
	}
	return false
}

// Request is a doctor's ask for theatre time. Times are wall-clock strings
// ("HH:MM") within the request date.
type Request struct {
	ID            uuid.UUID `json:"id"`
	DoctorID      uuid.UUID `json:"doctorId"`
	DoctorName    string    `json:"doctorName"`
	RequestDate   time.Time `json:"requestDate"`
	StartTime     string    `json:"startTime"`
	EndTime       string    `json:"endTime"`
	PatientName   string    `json:"patientName,omitempty"`
	OperationType string    `json:"operationType,omitempty"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Slot is a bookable window in one theatre. A room cannot hold two slots
// starting at the same time on the same day.
type Slot struct {
	ID            uuid.UUID  `json:"id"`
	ScheduleDate  time.Time  `json:"scheduleDate"`
	StartTime     string     `json:"startTime"`
	EndTime       string     `json:"endTime"`
	Room          string     `json:"room"`
	Status        string     `json:"status"`
	PatientName   string     `json:"patientName,omitempty"`
	OperationType string     `json:"operationType,omitempty"`
	IsEmergency   bool       `json:"isEmergency"`
	RequestID     *uuid.UUID `json:"requestId,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}
