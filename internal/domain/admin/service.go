package admin

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hms/hms/internal/domain/identity"
	"github.com/hms/hms/internal/platform/auth"
)

// AccountDirectory is the slice of the identity service the admin area needs.
type AccountDirectory interface {
	Register(ctx context.Context, name, email, password, role, department string) (*identity.Account, error)
	List(ctx context.Context, limit, offset int) ([]*identity.Account, int, error)
	CountByRole(ctx context.Context, role string) (int, error)
}

// auditLimit caps the audit log listing.
const auditLimit = 50

type Service struct {
	protocols     ProtocolRepository
	notifications NotificationRepository
	audit         AuditRepository
	stats         StatsRepository
	accounts      AccountDirectory
	log           zerolog.Logger
}

func NewService(protocols ProtocolRepository, notifications NotificationRepository,
	audit AuditRepository, stats StatsRepository, accounts AccountDirectory, log zerolog.Logger) *Service {
	return &Service{
		protocols:     protocols,
		notifications: notifications,
		audit:         audit,
		stats:         stats,
		accounts:      accounts,
		log:           log,
	}
}

// record appends an audit entry. Audit failures never fail the operation that
// triggered them.
func (s *Service) record(ctx context.Context, actor, action string) {
	if err := s.audit.Append(ctx, actor, action); err != nil {
		s.log.Error().Err(err).Str("actor", actor).Str("action", action).Msg("audit append failed")
	}
}

// today returns the current local calendar date with the time component
// dropped, the same day the booking ledger stamps on appointments.
func today() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// DashboardStats aggregates today's activity for the admin dashboard.
func (s *Service) DashboardStats(ctx context.Context) (*Stats, error) {
	doctors, err := s.accounts.CountByRole(ctx, auth.RoleDoctor)
	if err != nil {
		return nil, err
	}
	appointments, emergencies, prescriptions, err := s.stats.CountsForDay(ctx, today())
	if err != nil {
		return nil, err
	}
	return &Stats{
		Doctors:            doctors,
		AppointmentsToday:  appointments,
		PrescriptionsToday: prescriptions,
		EmergenciesToday:   emergencies,
	}, nil
}

func (s *Service) CreateProtocol(ctx context.Context, actor, name, description string) (*Protocol, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	p := &Protocol{Name: name, Description: strings.TrimSpace(description), Active: true}
	if err := s.protocols.Create(ctx, p); err != nil {
		return nil, err
	}
	s.record(ctx, actor, "protocol created: "+p.Name)
	return p, nil
}

func (s *Service) ListProtocols(ctx context.Context) ([]*Protocol, error) {
	return s.protocols.List(ctx)
}

func (s *Service) ToggleProtocol(ctx context.Context, actor string, id uuid.UUID) (*Protocol, error) {
	p, err := s.protocols.Toggle(ctx, id)
	if err != nil {
		return nil, err
	}
	state := "deactivated"
	if p.Active {
		state = "activated"
	}
	s.record(ctx, actor, "protocol "+state+": "+p.Name)
	return p, nil
}

func (s *Service) SendNotification(ctx context.Context, actor, message, target string) (*Notification, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, fmt.Errorf("message is required")
	}
	target = strings.TrimSpace(target)
	if target == "" {
		target = "all"
	}
	if target != "all" && !auth.ValidRole(target) {
		return nil, fmt.Errorf("invalid target: %s", target)
	}
	n := &Notification{Message: message, Target: target, CreatedBy: actor}
	if err := s.notifications.Create(ctx, n); err != nil {
		return nil, err
	}
	s.record(ctx, actor, "notification sent to "+target)
	return n, nil
}

func (s *Service) Notifications(ctx context.Context) ([]*Notification, error) {
	return s.notifications.List(ctx, auditLimit)
}

func (s *Service) AuditLogs(ctx context.Context) ([]*AuditEntry, error) {
	return s.audit.ListRecent(ctx, auditLimit)
}

// RegisterUser creates a staff account with any role. Unlike self-service
// signup, the admin chooses the role.
func (s *Service) RegisterUser(ctx context.Context, actor, name, email, password, role, department string) (*identity.Account, error) {
	account, err := s.accounts.Register(ctx, name, email, password, role, department)
	if err != nil {
		return nil, err
	}
	s.record(ctx, actor, "registered "+role+" account: "+account.Email)
	return account, nil
}

func (s *Service) Users(ctx context.Context, limit, offset int) ([]*identity.Account, int, error) {
	return s.accounts.List(ctx, limit, offset)
}
