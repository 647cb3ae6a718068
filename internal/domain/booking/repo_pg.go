package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/careslot/careslot/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type repoPG struct {
	pool *pgxpool.Pool
}

// NewRepoPG returns a Postgres-backed booking repository. Overlap safety
// relies on the booking table's exclusion constraint over
// (doctor_id, appointment interval) for active statuses; a violation on
// insert is surfaced as BookingConflict.
func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const bookingCols = `id, patient_id, doctor_id, specialty_id, appointment_time, duration_minutes, status, channel, created_at, updated_at`

func scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking
	err := row.Scan(&b.ID, &b.PatientID, &b.DoctorID, &b.SpecialtyID, &b.AppointmentTime,
		&b.DurationMinutes, &b.Status, &b.Channel, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	b.AppointmentTime = b.AppointmentTime.UTC()
	return &b, nil
}

func (r *repoPG) Insert(ctx context.Context, b *Booking) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now

	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO booking (id, patient_id, doctor_id, specialty_id, appointment_time, duration_minutes, status, channel, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		b.ID, b.PatientID, b.DoctorID, b.SpecialtyID, b.AppointmentTime,
		b.DurationMinutes, b.Status, b.Channel, b.CreatedAt, b.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			// 23P01 exclusion_violation from the interval constraint,
			// 23505 unique_violation as a fallback.
			if pgErr.Code == "23P01" || pgErr.Code == "23505" {
				return conflict("interval overlaps an existing booking for this doctor")
			}
		}
		return repositoryError("insert booking", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	row := r.conn(ctx).QueryRow(ctx,
		`SELECT `+bookingCols+` FROM booking WHERE id = $1`, id)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound("booking %s not found", id)
		}
		return nil, repositoryError("get booking", err)
	}
	return b, nil
}

func (r *repoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE booking SET status = $2, updated_at = $3 WHERE id = $1`,
		id, status, time.Now().UTC())
	if err != nil {
		return repositoryError("update booking status", err)
	}
	if tag.RowsAffected() == 0 {
		return notFound("booking %s not found", id)
	}
	return nil
}

func (r *repoPG) ListActiveInRange(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]*Booking, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+bookingCols+` FROM booking
		WHERE doctor_id = $1
		  AND status IN ('pending', 'confirmed')
		  AND appointment_time < $3
		  AND appointment_time + (duration_minutes * interval '1 minute') > $2
		ORDER BY appointment_time`,
		doctorID, from, to)
	if err != nil {
		return nil, repositoryError("list active bookings", err)
	}
	defer rows.Close()
	return collectBookings(rows)
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Booking, int, error) {
	return r.list(ctx, "patient_id", patientID, limit, offset)
}

func (r *repoPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Booking, int, error) {
	return r.list(ctx, "doctor_id", doctorID, limit, offset)
}

func (r *repoPG) list(ctx context.Context, col string, id uuid.UUID, limit, offset int) ([]*Booking, int, error) {
	var total int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM booking WHERE `+col+` = $1`, id).Scan(&total)
	if err != nil {
		return nil, 0, repositoryError("count bookings", err)
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+bookingCols+` FROM booking
		 WHERE `+col+` = $1
		 ORDER BY appointment_time DESC
		 LIMIT $2 OFFSET $3`, id, limit, offset)
	if err != nil {
		return nil, 0, repositoryError("list bookings", err)
	}
	defer rows.Close()

	bookings, err := collectBookings(rows)
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

func collectBookings(rows pgx.Rows) ([]*Booking, error) {
	bookings := []*Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, repositoryError("scan booking", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, repositoryError("iterate bookings", err)
	}
	return bookings, nil
}
