package theatre

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	requests RequestRepository
	slots    SlotRepository
}

func NewService(requests RequestRepository, slots SlotRepository) *Service {
	return &Service{requests: requests, slots: slots}
}

type CreateRequestInput struct {
	RequestDate   time.Time `json:"requestDate"`
	StartTime     string    `json:"startTime"`
	EndTime       string    `json:"endTime"`
	PatientName   string    `json:"patientName"`
	OperationType string    `json:"operationType"`
}

// CreateRequest files a Pending theatre request on behalf of a doctor.
func (s *Service) CreateRequest(ctx context.Context, doctorID uuid.UUID, doctorName string, in CreateRequestInput) (*Request, error) {
	if in.RequestDate.IsZero() {
		return nil, fmt.Errorf("requestDate is required")
	}
	if strings.TrimSpace(in.StartTime) == "" || strings.TrimSpace(in.EndTime) == "" {
		return nil, fmt.Errorf("startTime and endTime are required")
	}

	req := &Request{
		DoctorID:      doctorID,
		DoctorName:    doctorName,
		RequestDate:   in.RequestDate,
		StartTime:     in.StartTime,
		EndTime:       in.EndTime,
		PatientName:   strings.TrimSpace(in.PatientName),
		OperationType: strings.TrimSpace(in.OperationType),
		Status:        RequestPending,
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

func (s *Service) PendingRequests(ctx context.Context) ([]*Request, error) {
	return s.requests.ListPending(ctx)
}

// UpdateRequestStatus moves a request to any recognized status; this is how
// OT staff reject requests they cannot schedule.
func (s *Service) UpdateRequestStatus(ctx context.Context, id uuid.UUID, status string) (*Request, error) {
	if !ValidRequestStatus(status) {
		return nil, fmt.Errorf("invalid request status: %s", status)
	}
	return s.requests.UpdateStatus(ctx, id, status)
}

type CreateSlotInput struct {
	ScheduleDate  time.Time `json:"scheduleDate"`
	StartTime     string    `json:"startTime"`
	EndTime       string    `json:"endTime"`
	Room          string    `json:"room"`
	PatientName   string    `json:"patientName"`
	OperationType string    `json:"operationType"`
}

func (s *Service) validateSlotInput(in CreateSlotInput) error {
	if in.ScheduleDate.IsZero() {
		return fmt.Errorf("scheduleDate is required")
	}
	if strings.TrimSpace(in.StartTime) == "" || strings.TrimSpace(in.EndTime) == "" {
		return fmt.Errorf("startTime and endTime are required")
	}
	if !ValidRoom(in.Room) {
		return fmt.Errorf("invalid room: %s", in.Room)
	}
	return nil
}

// CreateSlot opens an Available window in a theatre.
func (s *Service) CreateSlot(ctx context.Context, in CreateSlotInput) (*Slot, error) {
	if err := s.validateSlotInput(in); err != nil {
		return nil, err
	}

	slot := &Slot{
		ScheduleDate: in.ScheduleDate,
		StartTime:    in.StartTime,
		EndTime:      in.EndTime,
		Room:         in.Room,
		Status:       SlotAvailable,
	}
	if err := s.slots.Create(ctx, slot); err != nil {
		return nil, err
	}
	return slot, nil
}

// EmergencyBooking creates a slot that is Occupied from the start, bypassing
// the request flow.
func (s *Service) EmergencyBooking(ctx context.Context, in CreateSlotInput) (*Slot, error) {
	if err := s.validateSlotInput(in); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.PatientName) == "" {
		return nil, fmt.Errorf("patientName is required for emergency bookings")
	}

	slot := &Slot{
		ScheduleDate:  in.ScheduleDate,
		StartTime:     in.StartTime,
		EndTime:       in.EndTime,
		Room:          in.Room,
		Status:        SlotOccupied,
		PatientName:   strings.TrimSpace(in.PatientName),
		OperationType: strings.TrimSpace(in.OperationType),
		IsEmergency:   true,
	}
	if err := s.slots.Create(ctx, slot); err != nil {
		return nil, err
	}
	return slot, nil
}

// scheduleWindowDays is how far ahead the schedule board looks.
const scheduleWindowDays = 7

func (s *Service) UpcomingSchedules(ctx context.Context) ([]*Slot, error) {
	now := time.Now()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return s.slots.ListUpcoming(ctx, from, scheduleWindowDays)
}

func (s *Service) FindSlots(ctx context.Context, date time.Time, room string) ([]*Slot, error) {
	if date.IsZero() {
		return nil, fmt.Errorf("date is required")
	}
	if !ValidRoom(room) {
		return nil, fmt.Errorf("invalid room: %s", room)
	}
	return s.slots.FindAvailable(ctx, date, room)
}

// Assign books an Available slot for a Pending request.
func (s *Service) Assign(ctx context.Context, slotID, requestID uuid.UUID) (*Slot, error) {
	return s.slots.Assign(ctx, slotID, requestID)
}

func (s *Service) UpdateSlotStatus(ctx context.Context, id uuid.UUID, status string) (*Slot, error) {
	if !ValidSlotStatus(status) {
		return nil, fmt.Errorf("invalid slot status: %s", status)
	}
	return s.slots.UpdateStatus(ctx, id, status)
}
