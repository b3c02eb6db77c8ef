package admin

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrProtocolNotFound  = errors.New("protocol not found")
	ErrDuplicateProtocol = errors.New("protocol already exists")
)

type ProtocolRepository interface {
	Create(ctx context.Context, p *Protocol) error
	List(ctx context.Context) ([]*Protocol, error)
	// Toggle flips the active flag and returns the updated protocol.
	Toggle(ctx context.Context, id uuid.UUID) (*Protocol, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, n *Notification) error
	List(ctx context.Context, limit int) ([]*Notification, error)
}

type AuditRepository interface {
	Append(ctx context.Context, actor, action string) error
	// ListRecent returns entries newest first.
	ListRecent(ctx context.Context, limit int) ([]*AuditEntry, error)
}

// StatsRepository counts the day's activity across the other domains' tables.
type StatsRepository interface {
	CountsForDay(ctx context.Context, day time.Time) (appointments, emergencies, prescriptions int, err error)
}
