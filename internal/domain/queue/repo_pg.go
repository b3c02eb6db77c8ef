package queue

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const apptCols = `id, patient_id, doctor_id, patient_name, doctor_name, department,
	appointment_date, token_number, reason, priority, status, created_at, updated_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.PatientName, &a.DoctorName,
		&a.Department, &a.AppointmentDate, &a.TokenNumber, &a.Reason, &a.Priority,
		&a.Status, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// createAttempts bounds the retry loop for token assignment. The unique index
// on (department, appointment_date, token_number) turns a concurrent booking
// race into a 23505, which we resolve by recomputing the token.
const createAttempts = 3

func (r *repoPG) Create(ctx context.Context, a *Appointment) error {
	a.ID = uuid.New()
	var lastErr error
	for attempt := 0; attempt < createAttempts; attempt++ {
		err := r.pool.QueryRow(ctx, `
			INSERT INTO appointment (id, patient_id, doctor_id, patient_name, doctor_name,
				department, appointment_date, token_number, reason, priority, status)
			VALUES ($1,$2,$3,$4,$5,$6,$7,
				(SELECT COALESCE(MAX(token_number), 0) + 1 FROM appointment
				 WHERE department = $6 AND appointment_date = $7),
				$8,$9,$10)
			RETURNING token_number, created_at, updated_at`,
			a.ID, a.PatientID, a.DoctorID, a.PatientName, a.DoctorName,
			a.Department, a.AppointmentDate, a.Reason, a.Priority, a.Status,
		).Scan(&a.TokenNumber, &a.CreatedAt, &a.UpdatedAt)
		if err == nil {
			return nil
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			lastErr = err
			continue
		}
		return err
	}
	return lastErr
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return scanAppointment(r.pool.QueryRow(ctx, `SELECT `+apptCols+` FROM appointment WHERE id = $1`, id))
}

func (r *repoPG) ListScheduledByDoctor(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]*Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+apptCols+` FROM appointment
		WHERE doctor_id = $1 AND appointment_date = $2 AND status = $3
		ORDER BY CASE priority WHEN 'Emergency' THEN 0 ELSE 1 END, token_number ASC`,
		doctorID, date, StatusScheduled)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

func (r *repoPG) CallNext(ctx context.Context, doctorID, apptID uuid.UUID) (*Appointment, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// Anything the doctor left in Serving goes back to the queue first.
	if _, err := tx.Exec(ctx, `
		UPDATE appointment SET status = $1, updated_at = NOW()
		WHERE doctor_id = $2 AND status = $3`,
		StatusScheduled, doctorID, StatusServing); err != nil {
		return nil, err
	}

	appt, err := scanAppointment(tx.QueryRow(ctx, `
		UPDATE appointment SET status = $1, updated_at = NOW()
		WHERE id = $2 AND doctor_id = $3
		RETURNING `+apptCols,
		StatusServing, apptID, doctorID))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return appt, nil
}

func (r *repoPG) UpdateStatus(ctx context.Context, id, doctorID uuid.UUID, status string) (*Appointment, error) {
	return scanAppointment(r.pool.QueryRow(ctx, `
		UPDATE appointment SET status = $1, updated_at = NOW()
		WHERE id = $2 AND doctor_id = $3
		RETURNING `+apptCols,
		status, id, doctorID))
}

func (r *repoPG) ServingByDoctor(ctx context.Context, doctorID uuid.UUID) (*Appointment, error) {
	return scanAppointment(r.pool.QueryRow(ctx, `
		SELECT `+apptCols+` FROM appointment
		WHERE doctor_id = $1 AND status = $2
		LIMIT 1`,
		doctorID, StatusServing))
}

func (r *repoPG) LatestActiveByPatient(ctx context.Context, patientID uuid.UUID) (*Appointment, error) {
	return scanAppointment(r.pool.QueryRow(ctx, `
		SELECT `+apptCols+` FROM appointment
		WHERE patient_id = $1 AND status IN ($2, $3)
		ORDER BY created_at DESC
		LIMIT 1`,
		patientID, StatusScheduled, StatusServing))
}

func (r *repoPG) CountScheduledAhead(ctx context.Context, department string, date time.Time, token int) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM appointment
		WHERE department = $1 AND appointment_date = $2 AND status = $3 AND token_number < $4`,
		department, date, StatusScheduled, token).Scan(&count)
	return count, err
}

func (r *repoPG) ServingByDepartment(ctx context.Context, department string, date time.Time) (*Appointment, error) {
	return scanAppointment(r.pool.QueryRow(ctx, `
		SELECT `+apptCols+` FROM appointment
		WHERE department = $1 AND appointment_date = $2 AND status = $3
		LIMIT 1`,
		department, date, StatusServing))
}
