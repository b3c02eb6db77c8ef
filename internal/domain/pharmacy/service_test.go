package pharmacy

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

type completedVisit struct {
	appointmentID uuid.UUID
}

type mockPrescriptionRepo struct {
	prescriptions []*Prescription
	drugs         *mockDrugRepo
	completed     []completedVisit
}

func (m *mockPrescriptionRepo) Submit(_ context.Context, sub Submission) ([]*Prescription, error) {
	var created []*Prescription
	for _, line := range sub.Lines {
		p := &Prescription{
			ID:            uuid.New(),
			PatientID:     sub.PatientID,
			DoctorID:      sub.DoctorID,
			AppointmentID: sub.AppointmentID,
			PatientName:   sub.PatientName,
			DoctorName:    sub.DoctorName,
			Diagnosis:     sub.Diagnosis,
			DrugName:      line.DrugName,
			Quantity:      line.Quantity,
			Status:        StatusPending,
			CreatedAt:     time.Now(),
		}
		m.prescriptions = append(m.prescriptions, p)
		created = append(created, p)
	}
	m.completed = append(m.completed, completedVisit{appointmentID: sub.AppointmentID})
	return created, nil
}

func (m *mockPrescriptionRepo) GetByID(_ context.Context, id uuid.UUID) (*Prescription, error) {
	for _, p := range m.prescriptions {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, ErrPrescriptionNotFound
}

func (m *mockPrescriptionRepo) ListPending(_ context.Context) ([]*Prescription, error) {
	var items []*Prescription
	for _, p := range m.prescriptions {
		if p.Status == StatusPending {
			items = append(items, p)
		}
	}
	return items, nil
}

func (m *mockPrescriptionRepo) ListByPatient(_ context.Context, patientID uuid.UUID) ([]*Prescription, error) {
	var items []*Prescription
	for i := len(m.prescriptions) - 1; i >= 0; i-- {
		if m.prescriptions[i].PatientID == patientID {
			items = append(items, m.prescriptions[i])
		}
	}
	return items, nil
}

func (m *mockPrescriptionRepo) Dispense(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	p, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status == StatusDispensed {
		return nil, ErrAlreadyDispensed
	}
	for _, d := range m.drugs.drugs {
		if strings.EqualFold(d.Name, p.DrugName) {
			d.Stock -= p.Quantity
		}
	}
	p.Status = StatusDispensed
	return p, nil
}

type mockDrugRepo struct {
	drugs []*Drug
}

func (m *mockDrugRepo) List(_ context.Context) ([]*Drug, error) { return m.drugs, nil }

func (m *mockDrugRepo) GetByID(_ context.Context, id uuid.UUID) (*Drug, error) {
	for _, d := range m.drugs {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, ErrDrugNotFound
}

func (m *mockDrugRepo) Restock(ctx context.Context, id uuid.UUID, quantity int) (*Drug, error) {
	d, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	d.Stock += quantity
	return d, nil
}

func (m *mockDrugRepo) SearchByPrefix(_ context.Context, prefix string, limit int) ([]*Drug, error) {
	var items []*Drug
	for _, d := range m.drugs {
		if strings.HasPrefix(strings.ToLower(d.Name), strings.ToLower(prefix)) {
			items = append(items, d)
			if len(items) == limit {
				break
			}
		}
	}
	return items, nil
}

func (m *mockDrugRepo) Seed(_ context.Context, drugs []Drug) (int, error) {
	inserted := 0
	for _, seed := range drugs {
		exists := false
		for _, d := range m.drugs {
			if strings.EqualFold(d.Name, seed.Name) {
				exists = true
				break
			}
		}
		if !exists {
			d := seed
			d.ID = uuid.New()
			m.drugs = append(m.drugs, &d)
			inserted++
		}
	}
	return inserted, nil
}

func newTestService() (*Service, *mockPrescriptionRepo, *mockDrugRepo) {
	drugs := &mockDrugRepo{}
	prescriptions := &mockPrescriptionRepo{drugs: drugs}
	return NewService(prescriptions, drugs), prescriptions, drugs
}

func testSubmission(lines ...MedicineLine) Submission {
	return Submission{
		AppointmentID: uuid.New(),
		PatientID:     uuid.New(),
		DoctorID:      uuid.New(),
		PatientName:   "Asha",
		DoctorName:    "Dr. Rao",
		Diagnosis:     "Fever",
		Lines:         lines,
	}
}

func TestSubmitPrescription_RowPerLine(t *testing.T) {
	svc, repo, _ := newTestService()

	sub := testSubmission(
		MedicineLine{DrugName: "Paracetamol", Quantity: 10},
		MedicineLine{DrugName: "Cetrizine", Quantity: 5},
	)
	created, err := svc.SubmitPrescription(context.Background(), sub)
	if err != nil {
		t.Fatalf("SubmitPrescription() error: %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(created))
	}
	for _, p := range created {
		if p.Status != StatusPending {
			t.Errorf("expected Pending, got %s", p.Status)
		}
		if p.AppointmentID != sub.AppointmentID {
			t.Error("rows must share the appointment id")
		}
	}
	if len(repo.completed) != 1 || repo.completed[0].appointmentID != sub.AppointmentID {
		t.Error("submission must complete the appointment")
	}
}

func TestSubmitPrescription_Validation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.SubmitPrescription(ctx, testSubmission()); err == nil {
		t.Error("expected error for empty medicine list")
	}
	if _, err := svc.SubmitPrescription(ctx, testSubmission(MedicineLine{DrugName: "", Quantity: 5})); err == nil {
		t.Error("expected error for blank drug name")
	}
	if _, err := svc.SubmitPrescription(ctx, testSubmission(MedicineLine{DrugName: "X", Quantity: 0})); err == nil {
		t.Error("expected error for zero quantity")
	}

	sub := testSubmission(MedicineLine{DrugName: "X", Quantity: 1})
	sub.AppointmentID = uuid.Nil
	if _, err := svc.SubmitPrescription(ctx, sub); err == nil {
		t.Error("expected error for missing appointment id")
	}
}

func TestDispense_DecrementsStock(t *testing.T) {
	svc, _, drugs := newTestService()
	ctx := context.Background()

	if _, err := svc.SeedDrugs(ctx); err != nil {
		t.Fatal(err)
	}

	created, _ := svc.SubmitPrescription(ctx, testSubmission(MedicineLine{DrugName: "Paracetamol", Quantity: 30}))

	dispensed, err := svc.Dispense(ctx, created[0].ID)
	if err != nil {
		t.Fatalf("Dispense() error: %v", err)
	}
	if dispensed.Status != StatusDispensed {
		t.Errorf("expected Dispensed, got %s", dispensed.Status)
	}

	for _, d := range drugs.drugs {
		if d.Name == "Paracetamol" && d.Stock != 70 {
			t.Errorf("expected stock 70, got %d", d.Stock)
		}
	}
}

func TestDispense_StockMayGoNegative(t *testing.T) {
	svc, _, drugs := newTestService()
	ctx := context.Background()

	drugs.Seed(ctx, []Drug{{Name: "Dolo 650", Stock: 5, LowStockThreshold: DefaultLowStockThreshold}})
	created, _ := svc.SubmitPrescription(ctx, testSubmission(MedicineLine{DrugName: "Dolo 650", Quantity: 8}))

	if _, err := svc.Dispense(ctx, created[0].ID); err != nil {
		t.Fatalf("Dispense() error: %v", err)
	}
	if drugs.drugs[0].Stock != -3 {
		t.Errorf("expected stock -3, got %d", drugs.drugs[0].Stock)
	}
}

func TestDispense_AlreadyDispensed(t *testing.T) {
	svc, _, drugs := newTestService()
	ctx := context.Background()

	drugs.Seed(ctx, []Drug{{Name: "Paracetamol", Stock: 100, LowStockThreshold: DefaultLowStockThreshold}})
	created, _ := svc.SubmitPrescription(ctx, testSubmission(MedicineLine{DrugName: "Paracetamol", Quantity: 10}))

	if _, err := svc.Dispense(ctx, created[0].ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Dispense(ctx, created[0].ID); err != ErrAlreadyDispensed {
		t.Fatalf("expected ErrAlreadyDispensed, got %v", err)
	}
	// Stock decremented exactly once.
	if drugs.drugs[0].Stock != 90 {
		t.Errorf("expected stock 90 after single dispense, got %d", drugs.drugs[0].Stock)
	}
}

func TestDispense_Unknown(t *testing.T) {
	svc, _, _ := newTestService()

	if _, err := svc.Dispense(context.Background(), uuid.New()); err != ErrPrescriptionNotFound {
		t.Errorf("expected ErrPrescriptionNotFound, got %v", err)
	}
}

func TestRestock(t *testing.T) {
	svc, _, drugs := newTestService()
	ctx := context.Background()

	drugs.Seed(ctx, []Drug{{Name: "Ibuprofen", Stock: 10, LowStockThreshold: DefaultLowStockThreshold}})
	id := drugs.drugs[0].ID

	drug, err := svc.Restock(ctx, id, 25)
	if err != nil {
		t.Fatalf("Restock() error: %v", err)
	}
	if drug.Stock != 35 {
		t.Errorf("expected 35, got %d", drug.Stock)
	}

	if _, err := svc.Restock(ctx, id, 0); err == nil {
		t.Error("expected error for non-positive quantity")
	}
	if _, err := svc.Restock(ctx, id, -5); err == nil {
		t.Error("expected error for negative quantity")
	}
}

func TestSearchDrugs(t *testing.T) {
	svc, _, drugs := newTestService()
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		drugs.drugs = append(drugs.drugs, &Drug{
			ID:   uuid.New(),
			Name: "Para" + strings.Repeat("x", i+1),
		})
	}

	items, err := svc.SearchDrugs(ctx, "para")
	if err != nil {
		t.Fatalf("SearchDrugs() error: %v", err)
	}
	if len(items) != searchLimit {
		t.Errorf("expected results capped at %d, got %d", searchLimit, len(items))
	}

	items, err = svc.SearchDrugs(ctx, "   ")
	if err != nil {
		t.Fatalf("SearchDrugs() error: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected empty result for blank query, got %d", len(items))
	}
}

func TestSeedDrugs_Idempotent(t *testing.T) {
	svc, _, drugs := newTestService()
	ctx := context.Background()

	inserted, err := svc.SeedDrugs(ctx)
	if err != nil {
		t.Fatalf("SeedDrugs() error: %v", err)
	}
	if inserted != 5 {
		t.Errorf("expected 5 seeded drugs, got %d", inserted)
	}

	// Dispense-independent stock must survive a second seed run.
	drugs.drugs[0].Stock = 7
	inserted, err = svc.SeedDrugs(ctx)
	if err != nil {
		t.Fatalf("second SeedDrugs() error: %v", err)
	}
	if inserted != 0 {
		t.Errorf("expected no new rows on second seed, got %d", inserted)
	}
	if drugs.drugs[0].Stock != 7 {
		t.Error("second seed must not reset stock")
	}
}
