package admin

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type protocolRepoPG struct{ pool *pgxpool.Pool }

func NewProtocolRepoPG(pool *pgxpool.Pool) ProtocolRepository { return &protocolRepoPG{pool: pool} }

const protocolCols = `id, name, description, active, created_at, updated_at`

func scanProtocol(row pgx.Row) (*Protocol, error) {
	var p Protocol
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProtocolNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *protocolRepoPG) Create(ctx context.Context, p *Protocol) error {
	p.ID = uuid.New()
	err := r.pool.QueryRow(ctx, `
		INSERT INTO protocol (id, name, description, active)
		VALUES ($1,$2,$3,$4)
		RETURNING created_at, updated_at`,
		p.ID, p.Name, p.Description, p.Active).Scan(&p.CreatedAt, &p.UpdatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateProtocol
	}
	return err
}

func (r *protocolRepoPG) List(ctx context.Context) ([]*Protocol, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+protocolCols+` FROM protocol ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Protocol
	for rows.Next() {
		p, err := scanProtocol(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func (r *protocolRepoPG) Toggle(ctx context.Context, id uuid.UUID) (*Protocol, error) {
	return scanProtocol(r.pool.QueryRow(ctx, `
		UPDATE protocol SET active = NOT active, updated_at = now()
		WHERE id = $1
		RETURNING `+protocolCols, id))
}

type notificationRepoPG struct{ pool *pgxpool.Pool }

func NewNotificationRepoPG(pool *pgxpool.Pool) NotificationRepository {
	return &notificationRepoPG{pool: pool}
}

func (r *notificationRepoPG) Create(ctx context.Context, n *Notification) error {
	n.ID = uuid.New()
	return r.pool.QueryRow(ctx, `
		INSERT INTO notification (id, message, target, created_by)
		VALUES ($1,$2,$3,$4)
		RETURNING created_at`,
		n.ID, n.Message, n.Target, n.CreatedBy).Scan(&n.CreatedAt)
}

func (r *notificationRepoPG) List(ctx context.Context, limit int) ([]*Notification, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, message, target, created_by, created_at FROM notification
		ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.Message, &n.Target, &n.CreatedBy, &n.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &n)
	}
	return items, rows.Err()
}

type auditRepoPG struct{ pool *pgxpool.Pool }

func NewAuditRepoPG(pool *pgxpool.Pool) AuditRepository { return &auditRepoPG{pool: pool} }

func (r *auditRepoPG) Append(ctx context.Context, actor, action string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO audit_log (id, actor, action) VALUES ($1,$2,$3)`,
		uuid.New(), actor, action)
	return err
}

func (r *auditRepoPG) ListRecent(ctx context.Context, limit int) ([]*AuditEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, actor, action, timestamp FROM audit_log
		ORDER BY timestamp DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*AuditEntry
	for rows.Next() {
		var e AuditEntry
		if err := rows.Scan(&e.ID, &e.Actor, &e.Action, &e.Timestamp); err != nil {
			return nil, err
		}
		items = append(items, &e)
	}
	return items, rows.Err()
}

type statsRepoPG struct{ pool *pgxpool.Pool }

func NewStatsRepoPG(pool *pgxpool.Pool) StatsRepository { return &statsRepoPG{pool: pool} }

func (r *statsRepoPG) CountsForDay(ctx context.Context, day time.Time) (int, int, int, error) {
	var appointments, emergencies, prescriptions int
	err := r.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM appointment WHERE appointment_date = $1::date),
			(SELECT COUNT(*) FROM appointment WHERE appointment_date = $1::date AND priority = 'Emergency'),
			(SELECT COUNT(*) FROM prescription WHERE (created_at AT TIME ZONE 'UTC')::date = $1::date)`,
		day).Scan(&appointments, &emergencies, &prescriptions)
	return appointments, emergencies, prescriptions, err
}
