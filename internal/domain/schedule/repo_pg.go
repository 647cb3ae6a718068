package schedule

import (
	"context"
	"errors"
	"fmt"
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

// NewRepoPG returns a Postgres-backed schedule repository.
func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const windowCols = `id, doctor_id, day_of_week, to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI'), created_at, updated_at`

func scanWindow(row pgx.Row) (*WeeklyWindow, error) {
	var w WeeklyWindow
	err := row.Scan(&w.ID, &w.DoctorID, &w.DayOfWeek, &w.StartTime, &w.EndTime, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *repoPG) CreateWindow(ctx context.Context, w *WeeklyWindow) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	now := time.Now().UTC()
	w.CreatedAt = now
	w.UpdatedAt = now

	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO weekly_window (id, doctor_id, day_of_week, start_time, end_time, created_at, updated_at)
		VALUES ($1, $2, $3, $4::time, $5::time, $6, $7)`,
		w.ID, w.DoctorID, w.DayOfWeek, w.StartTime, w.EndTime, w.CreatedAt, w.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert weekly window: %w", err)
	}
	return nil
}

func (r *repoPG) GetWindow(ctx context.Context, id uuid.UUID) (*WeeklyWindow, error) {
	row := r.conn(ctx).QueryRow(ctx,
		`SELECT `+windowCols+` FROM weekly_window WHERE id = $1`, id)
	w, err := scanWindow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get weekly window: %w", err)
	}
	return w, nil
}

func (r *repoPG) UpdateWindow(ctx context.Context, w *WeeklyWindow) error {
	w.UpdatedAt = time.Now().UTC()
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE weekly_window
		SET day_of_week = $2, start_time = $3::time, end_time = $4::time, updated_at = $5
		WHERE id = $1`,
		w.ID, w.DayOfWeek, w.StartTime, w.EndTime, w.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update weekly window: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) DeleteWindow(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM weekly_window WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete weekly window: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) ListWindowsByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*WeeklyWindow, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+windowCols+` FROM weekly_window
		 WHERE doctor_id = $1
		 ORDER BY day_of_week, start_time`, doctorID)
	if err != nil {
		return nil, fmt.Errorf("list weekly windows: %w", err)
	}
	defer rows.Close()
	return collectWindows(rows)
}

func (r *repoPG) ListWindowsByDoctorDay(ctx context.Context, doctorID uuid.UUID, dayOfWeek int) ([]*WeeklyWindow, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+windowCols+` FROM weekly_window
		 WHERE doctor_id = $1 AND day_of_week = $2
		 ORDER BY start_time`, doctorID, dayOfWeek)
	if err != nil {
		return nil, fmt.Errorf("list weekly windows by day: %w", err)
	}
	defer rows.Close()
	return collectWindows(rows)
}

func (r *repoPG) ReplaceWindowsForDoctor(ctx context.Context, doctorID uuid.UUID, windows []*WeeklyWindow) error {
	return db.WithTx(ctx, r.pool, func(ctx context.Context) error {
		if _, err := r.conn(ctx).Exec(ctx,
			`DELETE FROM weekly_window WHERE doctor_id = $1`, doctorID); err != nil {
			return fmt.Errorf("clear weekly windows: %w", err)
		}
		for _, w := range windows {
			w.DoctorID = doctorID
			if err := r.CreateWindow(ctx, w); err != nil {
				return err
			}
		}
		return nil
	})
}

func collectWindows(rows pgx.Rows) ([]*WeeklyWindow, error) {
	windows := []*WeeklyWindow{}
	for rows.Next() {
		w, err := scanWindow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan weekly window: %w", err)
		}
		windows = append(windows, w)
	}
	return windows, rows.Err()
}

func (r *repoPG) CreateBlockedDate(ctx context.Context, b *BlockedDate) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	b.Date = NormalizeDate(b.Date)
	b.CreatedAt = time.Now().UTC()

	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO blocked_date (id, doctor_id, date, reason, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		b.ID, b.DoctorID, b.Date, b.Reason, b.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateBlockedDate
		}
		return fmt.Errorf("insert blocked date: %w", err)
	}
	return nil
}

func (r *repoPG) DeleteBlockedDate(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM blocked_date WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete blocked date: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) GetBlockedDate(ctx context.Context, doctorID uuid.UUID, date time.Time) (*BlockedDate, error) {
	row := r.conn(ctx).QueryRow(ctx, `
		SELECT id, doctor_id, date, reason, created_at
		FROM blocked_date
		WHERE doctor_id = $1 AND date = $2`,
		doctorID, NormalizeDate(date))

	var b BlockedDate
	err := row.Scan(&b.ID, &b.DoctorID, &b.Date, &b.Reason, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get blocked date: %w", err)
	}
	return &b, nil
}

func (r *repoPG) ListBlockedDates(ctx context.Context, doctorID uuid.UUID) ([]*BlockedDate, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, doctor_id, date, reason, created_at
		FROM blocked_date
		WHERE doctor_id = $1
		ORDER BY date`, doctorID)
	if err != nil {
		return nil, fmt.Errorf("list blocked dates: %w", err)
	}
	defer rows.Close()

	blocked := []*BlockedDate{}
	for rows.Next() {
		var b BlockedDate
		if err := rows.Scan(&b.ID, &b.DoctorID, &b.Date, &b.Reason, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan blocked date: %w", err)
		}
		blocked = append(blocked, &b)
	}
	return blocked, rows.Err()
}
