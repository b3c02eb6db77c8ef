package theatre

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// =========== Request repository ===========

type requestRepoPG struct{ pool *pgxpool.Pool }

func NewRequestRepoPG(pool *pgxpool.Pool) RequestRepository { return &requestRepoPG{pool: pool} }

const requestCols = `id, doctor_id, doctor_name, request_date, start_time, end_time,
	patient_name, operation_type, status, created_at, updated_at`

func scanRequest(row pgx.Row) (*Request, error) {
	var r Request
	err := row.Scan(&r.ID, &r.DoctorID, &r.DoctorName, &r.RequestDate, &r.StartTime,
		&r.EndTime, &r.PatientName, &r.OperationType, &r.Status, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (r *requestRepoPG) Create(ctx context.Context, req *Request) error {
	req.ID = uuid.New()
	return r.pool.QueryRow(ctx, `
		INSERT INTO ot_request (id, doctor_id, doctor_name, request_date, start_time,
			end_time, patient_name, operation_type, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING created_at, updated_at`,
		req.ID, req.DoctorID, req.DoctorName, req.RequestDate, req.StartTime,
		req.EndTime, req.PatientName, req.OperationType, req.Status,
	).Scan(&req.CreatedAt, &req.UpdatedAt)
}

func (r *requestRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Request, error) {
	return scanRequest(r.pool.QueryRow(ctx, `SELECT `+requestCols+` FROM ot_request WHERE id = $1`, id))
}

func (r *requestRepoPG) ListPending(ctx context.Context) ([]*Request, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+requestCols+` FROM ot_request
		WHERE status = $1
		ORDER BY created_at DESC`, RequestPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, req)
	}
	return items, rows.Err()
}

func (r *requestRepoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*Request, error) {
	return scanRequest(r.pool.QueryRow(ctx, `
		UPDATE ot_request SET status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING `+requestCols, status, id))
}

// =========== Slot repository ===========

type slotRepoPG struct{ pool *pgxpool.Pool }

func NewSlotRepoPG(pool *pgxpool.Pool) SlotRepository { return &slotRepoPG{pool: pool} }

const slotCols = `id, schedule_date, start_time, end_time, room, status,
	patient_name, operation_type, is_emergency, ot_request_id, created_at, updated_at`

func scanSlot(row pgx.Row) (*Slot, error) {
	var s Slot
	err := row.Scan(&s.ID, &s.ScheduleDate, &s.StartTime, &s.EndTime, &s.Room, &s.Status,
		&s.PatientName, &s.OperationType, &s.IsEmergency, &s.RequestID, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *slotRepoPG) Create(ctx context.Context, s *Slot) error {
	s.ID = uuid.New()
	err := r.pool.QueryRow(ctx, `
		INSERT INTO ot_schedule (id, schedule_date, start_time, end_time, room, status,
			patient_name, operation_type, is_emergency, ot_request_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING created_at, updated_at`,
		s.ID, s.ScheduleDate, s.StartTime, s.EndTime, s.Room, s.Status,
		s.PatientName, s.OperationType, s.IsEmergency, s.RequestID,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrSlotTaken
	}
	return err
}

func (r *slotRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Slot, error) {
	return scanSlot(r.pool.QueryRow(ctx, `SELECT `+slotCols+` FROM ot_schedule WHERE id = $1`, id))
}

func (r *slotRepoPG) ListUpcoming(ctx context.Context, from time.Time, days int) ([]*Slot, error) {
	until := from.AddDate(0, 0, days)
	rows, err := r.pool.Query(ctx, `
		SELECT `+slotCols+` FROM ot_schedule
		WHERE schedule_date >= $1 AND schedule_date < $2
		ORDER BY schedule_date, start_time, room`, from, until)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Slot
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

func (r *slotRepoPG) FindAvailable(ctx context.Context, date time.Time, room string) ([]*Slot, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+slotCols+` FROM ot_schedule
		WHERE schedule_date = $1 AND room = $2 AND status = $3
		ORDER BY start_time`, date, room, SlotAvailable)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Slot
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

func (r *slotRepoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*Slot, error) {
	return scanSlot(r.pool.QueryRow(ctx, `
		UPDATE ot_schedule SET status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING `+slotCols, status, id))
}

func (r *slotRepoPG) Assign(ctx context.Context, slotID, requestID uuid.UUID) (*Slot, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	req, err := scanRequest(tx.QueryRow(ctx, `
		SELECT `+requestCols+` FROM ot_request WHERE id = $1 FOR UPDATE`, requestID))
	if err != nil {
		return nil, err
	}

	// The status guard in the WHERE clause is what keeps a Booked or Occupied
	// slot from being assigned twice.
	slot, err := scanSlot(tx.QueryRow(ctx, `
		UPDATE ot_schedule
		SET status = $1, patient_name = $2, operation_type = $3, ot_request_id = $4,
			updated_at = NOW()
		WHERE id = $5 AND status = $6
		RETURNING `+slotCols,
		SlotBooked, req.PatientName, req.OperationType, req.ID, slotID, SlotAvailable))
	if err != nil {
		if !errors.Is(err, ErrSlotNotFound) {
			return nil, err
		}
		// Distinguish a missing slot from one in the wrong state.
		var exists bool
		if scanErr := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM ot_schedule WHERE id = $1)`, slotID).Scan(&exists); scanErr != nil {
			return nil, scanErr
		}
		if exists {
			return nil, ErrSlotUnavailable
		}
		return nil, ErrSlotNotFound
	}

	if _, err := tx.Exec(ctx, `
		UPDATE ot_request SET status = $1, updated_at = NOW() WHERE id = $2`,
		RequestApproved, requestID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return slot, nil
}
