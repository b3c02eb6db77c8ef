package pharmacy

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// =========== Prescription repository ===========

type prescriptionRepoPG struct{ pool *pgxpool.Pool }

func NewPrescriptionRepoPG(pool *pgxpool.Pool) PrescriptionRepository {
	return &prescriptionRepoPG{pool: pool}
}

const prescriptionCols = `id, patient_id, doctor_id, appointment_id, patient_name,
	doctor_name, diagnosis, drug_name, quantity, status, created_at, updated_at`

func scanPrescription(row pgx.Row) (*Prescription, error) {
	var p Prescription
	err := row.Scan(&p.ID, &p.PatientID, &p.DoctorID, &p.AppointmentID, &p.PatientName,
		&p.DoctorName, &p.Diagnosis, &p.DrugName, &p.Quantity, &p.Status,
		&p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPrescriptionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *prescriptionRepoPG) Submit(ctx context.Context, sub Submission) ([]*Prescription, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	created := make([]*Prescription, 0, len(sub.Lines))
	for _, line := range sub.Lines {
		p, err := scanPrescription(tx.QueryRow(ctx, `
			INSERT INTO prescription (id, patient_id, doctor_id, appointment_id,
				patient_name, doctor_name, diagnosis, drug_name, quantity, status)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
			RETURNING `+prescriptionCols,
			uuid.New(), sub.PatientID, sub.DoctorID, sub.AppointmentID,
			sub.PatientName, sub.DoctorName, sub.Diagnosis, line.DrugName,
			line.Quantity, StatusPending))
		if err != nil {
			return nil, err
		}
		created = append(created, p)
	}

	// The visit is over once the prescription is written.
	if _, err := tx.Exec(ctx, `
		UPDATE appointment SET status = 'Completed', updated_at = NOW()
		WHERE id = $1`, sub.AppointmentID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return created, nil
}

func (r *prescriptionRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	return scanPrescription(r.pool.QueryRow(ctx, `SELECT `+prescriptionCols+` FROM prescription WHERE id = $1`, id))
}

func (r *prescriptionRepoPG) ListPending(ctx context.Context) ([]*Prescription, error) {
	return r.list(ctx, `SELECT `+prescriptionCols+` FROM prescription WHERE status = $1 ORDER BY created_at ASC`, StatusPending)
}

func (r *prescriptionRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Prescription, error) {
	return r.list(ctx, `SELECT `+prescriptionCols+` FROM prescription WHERE patient_id = $1 ORDER BY created_at DESC`, patientID)
}

func (r *prescriptionRepoPG) list(ctx context.Context, query string, args ...interface{}) ([]*Prescription, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Prescription
	for rows.Next() {
		p, err := scanPrescription(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func (r *prescriptionRepoPG) Dispense(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	current, err := scanPrescription(tx.QueryRow(ctx, `
		SELECT `+prescriptionCols+` FROM prescription WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, err
	}
	if current.Status == StatusDispensed {
		return nil, ErrAlreadyDispensed
	}

	// Stock goes down even past zero; a missing inventory row is not an
	// error, the pharmacist dispenses from the shelf either way.
	if _, err := tx.Exec(ctx, `
		UPDATE drug SET stock = stock - $1, updated_at = NOW()
		WHERE lower(name) = lower($2)`,
		current.Quantity, current.DrugName); err != nil {
		return nil, err
	}

	dispensed, err := scanPrescription(tx.QueryRow(ctx, `
		UPDATE prescription SET status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING `+prescriptionCols, StatusDispensed, id))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return dispensed, nil
}

// =========== Drug repository ===========

type drugRepoPG struct{ pool *pgxpool.Pool }

func NewDrugRepoPG(pool *pgxpool.Pool) DrugRepository { return &drugRepoPG{pool: pool} }

const drugCols = `id, name, stock, expiry_date, low_stock_threshold, created_at, updated_at`

func scanDrug(row pgx.Row) (*Drug, error) {
	var d Drug
	err := row.Scan(&d.ID, &d.Name, &d.Stock, &d.ExpiryDate, &d.LowStockThreshold,
		&d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrDrugNotFound
	}
	if err != nil {
		return nil, err
	}
	d.LowStock = d.Stock <= d.LowStockThreshold
	return &d, nil
}

func (r *drugRepoPG) List(ctx context.Context) ([]*Drug, error) {
	return r.list(ctx, `SELECT `+drugCols+` FROM drug ORDER BY name`)
}

func (r *drugRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Drug, error) {
	return scanDrug(r.pool.QueryRow(ctx, `SELECT `+drugCols+` FROM drug WHERE id = $1`, id))
}

func (r *drugRepoPG) Restock(ctx context.Context, id uuid.UUID, quantity int) (*Drug, error) {
	return scanDrug(r.pool.QueryRow(ctx, `
		UPDATE drug SET stock = stock + $1, updated_at = NOW()
		WHERE id = $2
		RETURNING `+drugCols, quantity, id))
}

func (r *drugRepoPG) SearchByPrefix(ctx context.Context, prefix string, limit int) ([]*Drug, error) {
	return r.list(ctx, `
		SELECT `+drugCols+` FROM drug
		WHERE name ILIKE $1 || '%'
		ORDER BY name
		LIMIT $2`, prefix, limit)
}

func (r *drugRepoPG) Seed(ctx context.Context, drugs []Drug) (int, error) {
	inserted := 0
	for _, d := range drugs {
		tag, err := r.pool.Exec(ctx, `
			INSERT INTO drug (id, name, stock, expiry_date, low_stock_threshold)
			VALUES ($1,$2,$3,$4,$5)
			ON CONFLICT (name) DO NOTHING`,
			uuid.New(), d.Name, d.Stock, d.ExpiryDate, d.LowStockThreshold)
		if err != nil {
			return inserted, err
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}

func (r *drugRepoPG) list(ctx context.Context, query string, args ...interface{}) ([]*Drug, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Drug
	for rows.Next() {
		d, err := scanDrug(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, rows.Err()
}
