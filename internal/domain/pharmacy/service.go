package pharmacy

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	prescriptions PrescriptionRepository
	drugs         DrugRepository
}

func NewService(prescriptions PrescriptionRepository, drugs DrugRepository) *Service {
	return &Service{prescriptions: prescriptions, drugs: drugs}
}

// SubmitPrescription records the doctor's medicine lines for an appointment
// and closes the visit.
func (s *Service) SubmitPrescription(ctx context.Context, sub Submission) ([]*Prescription, error) {
	if sub.AppointmentID == uuid.Nil {
		return nil, fmt.Errorf("appointmentId is required")
	}
	if len(sub.Lines) == 0 {
		return nil, fmt.Errorf("at least one medicine is required")
	}
	for i, line := range sub.Lines {
		if strings.TrimSpace(line.DrugName) == "" {
			return nil, fmt.Errorf("medicine %d: drugName is required", i+1)
		}
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("medicine %d: quantity must be positive", i+1)
		}
	}
	return s.prescriptions.Submit(ctx, sub)
}

func (s *Service) PendingPrescriptions(ctx context.Context) ([]*Prescription, error) {
	return s.prescriptions.ListPending(ctx)
}

func (s *Service) PatientPrescriptions(ctx context.Context, patientID uuid.UUID) ([]*Prescription, error) {
	return s.prescriptions.ListByPatient(ctx, patientID)
}

func (s *Service) Dispense(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	return s.prescriptions.Dispense(ctx, id)
}

func (s *Service) Inventory(ctx context.Context) ([]*Drug, error) {
	return s.drugs.List(ctx)
}

func (s *Service) Restock(ctx context.Context, id uuid.UUID, quantity int) (*Drug, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive")
	}
	return s.drugs.Restock(ctx, id, quantity)
}

// searchLimit caps autocomplete results.
const searchLimit = 10

// SearchDrugs matches inventory names by case-insensitive prefix. An empty
// query returns nothing rather than the whole inventory.
func (s *Service) SearchDrugs(ctx context.Context, query string) ([]*Drug, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []*Drug{}, nil
	}
	return s.drugs.SearchByPrefix(ctx, query, searchLimit)
}

// SeedDrugs loads the initial inventory. Names that already exist are left
// untouched, so running it twice is safe.
func (s *Service) SeedDrugs(ctx context.Context) (int, error) {
	expiry := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	return s.drugs.Seed(ctx, []Drug{
		{Name: "Paracetamol", Stock: 100, ExpiryDate: expiry(2025, time.January, 30), LowStockThreshold: DefaultLowStockThreshold},
		{Name: "Amoxicillin", Stock: 50, ExpiryDate: expiry(2024, time.November, 15), LowStockThreshold: DefaultLowStockThreshold},
		{Name: "Cetrizine", Stock: 75, ExpiryDate: expiry(2024, time.August, 1), LowStockThreshold: DefaultLowStockThreshold},
		{Name: "Ibuprofen", Stock: 120, ExpiryDate: expiry(2026, time.May, 1), LowStockThreshold: DefaultLowStockThreshold},
		{Name: "Dolo 650", Stock: 40, ExpiryDate: expiry(2025, time.September, 30), LowStockThreshold: DefaultLowStockThreshold},
	})
}
