package queue

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/platform/websocket"
)

// Doctor is the slice of an account the queue needs to route a booking.
type Doctor struct {
	ID         uuid.UUID
	Name       string
	Department string
}

// DoctorDirectory resolves doctors by display name. Implemented by the
// identity service via DirectoryAdapter.
type DoctorDirectory interface {
	FindDoctor(ctx context.Context, name string) (*Doctor, error)
}

var ErrDoctorNotFound = errors.New("doctor not found")

type Service struct {
	repo      Repository
	directory DoctorDirectory
	publisher websocket.EventPublisher
}

func NewService(repo Repository, directory DoctorDirectory, publisher websocket.EventPublisher) *Service {
	return &Service{repo: repo, directory: directory, publisher: publisher}
}

var validPriorities = map[string]bool{
	PriorityNormal:    true,
	PriorityEmergency: true,
}

type BookTokenRequest struct {
	DoctorName string `json:"doctorName"`
	Date       string `json:"date"`
	Reason     string `json:"reason"`
	Priority   string `json:"priority"`
}

// today returns the current date with the time component dropped, matching
// the appointment_date column.
func today() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// BookToken books a token with the named doctor for the requested date, or
// for today when no date is given. The token number is assigned per
// department per day by the repository.
func (s *Service) BookToken(ctx context.Context, patientID uuid.UUID, patientName string, req BookTokenRequest) (*Appointment, error) {
	if strings.TrimSpace(req.DoctorName) == "" {
		return nil, fmt.Errorf("doctorName is required")
	}
	if req.Priority == "" {
		req.Priority = PriorityNormal
	}
	if !validPriorities[req.Priority] {
		return nil, fmt.Errorf("invalid priority: %s", req.Priority)
	}

	date := today()
	if strings.TrimSpace(req.Date) != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			return nil, fmt.Errorf("invalid date, expected YYYY-MM-DD")
		}
		date = parsed
	}

	doctor, err := s.directory.FindDoctor(ctx, req.DoctorName)
	if err != nil {
		return nil, ErrDoctorNotFound
	}

	appt := &Appointment{
		PatientID:       patientID,
		DoctorID:        doctor.ID,
		PatientName:     patientName,
		DoctorName:      doctor.Name,
		Department:      doctor.Department,
		AppointmentDate: date,
		Reason:          strings.TrimSpace(req.Reason),
		Priority:        req.Priority,
		Status:          StatusScheduled,
	}
	if err := s.repo.Create(ctx, appt); err != nil {
		return nil, err
	}

	s.publish(ctx, websocket.EventTokenBooked, appt)
	return appt, nil
}

// DoctorQueue returns today's Scheduled appointments for the doctor,
// partitioned into emergencies and the normal queue.
func (s *Service) DoctorQueue(ctx context.Context, doctorID uuid.UUID) (*QueueView, error) {
	items, err := s.repo.ListScheduledByDoctor(ctx, doctorID, today())
	if err != nil {
		return nil, err
	}

	view := &QueueView{
		Emergencies: []*Appointment{},
		Queue:       []*Appointment{},
	}
	for _, a := range items {
		if a.Priority == PriorityEmergency {
			view.Emergencies = append(view.Emergencies, a)
		} else {
			view.Queue = append(view.Queue, a)
		}
	}
	return view, nil
}

// CallNext promotes the given appointment to Serving. Any appointment the
// doctor already had in Serving reverts to Scheduled so at most one patient
// is in the room at a time.
func (s *Service) CallNext(ctx context.Context, doctorID, apptID uuid.UUID) (*Appointment, error) {
	appt, err := s.repo.CallNext(ctx, doctorID, apptID)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, websocket.EventNowServing, appt)
	return appt, nil
}

// CancelServing puts the currently served patient back in the queue.
func (s *Service) CancelServing(ctx context.Context, doctorID, apptID uuid.UUID) (*Appointment, error) {
	current, err := s.repo.GetByID(ctx, apptID)
	if err != nil {
		return nil, err
	}
	if current.DoctorID != doctorID {
		return nil, ErrNotFound
	}
	if current.Status != StatusServing {
		return nil, fmt.Errorf("appointment is not being served")
	}

	appt, err := s.repo.UpdateStatus(ctx, apptID, doctorID, StatusScheduled)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, websocket.EventServingHold, appt)
	return appt, nil
}

// CurrentSession returns the appointment the doctor is serving right now,
// or nil when the room is empty. Not filtered by date: a Serving row left
// over from an earlier day still counts until call-next resets it.
func (s *Service) CurrentSession(ctx context.Context, doctorID uuid.UUID) (*Appointment, error) {
	appt, err := s.repo.ServingByDoctor(ctx, doctorID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return appt, err
}

// Status reports the patient's place in the queue for their latest active
// appointment.
func (s *Service) Status(ctx context.Context, patientID uuid.UUID) (*QueueStatus, error) {
	appt, err := s.repo.LatestActiveByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}

	status := &QueueStatus{
		TokenNumber: appt.TokenNumber,
		Department:  appt.Department,
		DoctorName:  appt.DoctorName,
		Status:      appt.Status,
	}

	if appt.Status == StatusServing {
		status.Position = StatusServing
	} else {
		ahead, err := s.repo.CountScheduledAhead(ctx, appt.Department, appt.AppointmentDate, appt.TokenNumber)
		if err != nil {
			return nil, err
		}
		status.Position = strconv.Itoa(ahead + 1)
	}

	serving, err := s.repo.ServingByDepartment(ctx, appt.Department, appt.AppointmentDate)
	switch {
	case errors.Is(err, ErrNotFound):
		status.CurrentServing = "N/A"
	case err != nil:
		return nil, err
	default:
		status.CurrentServing = strconv.Itoa(serving.TokenNumber)
	}

	return status, nil
}

func (s *Service) publish(ctx context.Context, eventType string, appt *Appointment) {
	if s.publisher == nil {
		return
	}
	// Broadcast failures never affect the request.
	_ = s.publisher.Publish(ctx, websocket.Event{
		Type:        eventType,
		Topic:       websocket.QueueTopic(appt.Department),
		Department:  appt.Department,
		TokenNumber: appt.TokenNumber,
		Timestamp:   time.Now(),
	})
}
