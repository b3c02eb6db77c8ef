package theatre

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrRequestNotFound = errors.New("ot request not found")
	ErrSlotNotFound    = errors.New("ot slot not found")
	// ErrSlotTaken means a slot already exists for the room, date and start time.
	ErrSlotTaken = errors.New("slot already exists for this room and time")
	// ErrSlotUnavailable means the slot exists but is not in the Available state.
	ErrSlotUnavailable = errors.New("slot is not available")
)

type RequestRepository interface {
	Create(ctx context.Context, r *Request) error
	GetByID(ctx context.Context, id uuid.UUID) (*Request, error)
	// ListPending returns Pending requests, newest first.
	ListPending(ctx context.Context) ([]*Request, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*Request, error)
}

type SlotRepository interface {
	Create(ctx context.Context, s *Slot) error
	GetByID(ctx context.Context, id uuid.UUID) (*Slot, error)
	// ListUpcoming returns slots from the given date through the following
	// days, ordered by date, start time and room.
	ListUpcoming(ctx context.Context, from time.Time, days int) ([]*Slot, error)
	// FindAvailable returns Available slots for an exact date and room.
	FindAvailable(ctx context.Context, date time.Time, room string) ([]*Slot, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*Slot, error)
	// Assign books the slot for the request in one transaction: the slot must
	// be exactly Available, takes over the request's patient and operation
	// details, and the request flips to Approved.
	Assign(ctx context.Context, slotID, requestID uuid.UUID) (*Slot, error)
}
