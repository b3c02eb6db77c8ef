package admin

import (
	"time"

	"github.com/google/uuid"
)

// Protocol is a named hospital policy that can be switched on and off.
type Protocol struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Notification is a broadcast message to a target audience ("all" or a role).
type Notification struct {
	ID        uuid.UUID `json:"id"`
	Message   string    `json:"message"`
	Target    string    `json:"target"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
}

// AuditEntry records who did what. Append-only.
type AuditEntry struct {
	ID        uuid.UUID `json:"id"`
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

// Stats is the admin dashboard summary.
type Stats struct {
	Doctors            int `json:"doctors"`
	AppointmentsToday  int `json:"appointmentsToday"`
	PrescriptionsToday int `json:"prescriptionsToday"`
	EmergenciesToday   int `json:"emergenciesToday"`
}
