package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	out "shifttrack/internal/shift/application/ports/out"
	"shifttrack/internal/shift/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgUniqueViolation  = "23505"
	openShiftIndexName = "shifts_one_open_per_user"
)

const shiftColumns = `
	id, user_id, username,
	clock_in_time, clock_in_latitude, clock_in_longitude, clock_in_note,
	clock_out_time, clock_out_latitude, clock_out_longitude, clock_out_note`

type shiftPgRepository struct {
	pool *pgxpool.Pool
}

func NewShiftPgRepository(pool *pgxpool.Pool) out.ShiftRepository {
	return &shiftPgRepository{pool: pool}
}

func (r *shiftPgRepository) FindOpenShift(ctx context.Context, userID string) (*domain.Shift, error) {
	query := `SELECT` + shiftColumns + `
		FROM shifts
		WHERE user_id = $1 AND clock_out_time IS NULL
		LIMIT 1
	`

	s, err := scanShift(r.pool.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query open shift: %w", err)
	}
	return s, nil
}

func (r *shiftPgRepository) InsertShift(ctx context.Context, shift *domain.Shift) error {
	query := `
		INSERT INTO shifts (` + shiftColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	var outTime *time.Time
	var outLat, outLon *float64
	if shift.ClockOutTime != nil {
		t := shift.ClockOutTime.UTC()
		outTime = &t
	}
	if shift.ClockOutLocation != nil {
		outLat = &shift.ClockOutLocation.Latitude
		outLon = &shift.ClockOutLocation.Longitude
	}

	_, err := r.pool.Exec(ctx, query,
		shift.ID,
		shift.UserID,
		shift.Username,
		shift.ClockInTime.UTC(),
		shift.ClockInLocation.Latitude,
		shift.ClockInLocation.Longitude,
		shift.ClockInNote,
		outTime,
		outLat,
		outLon,
		shift.ClockOutNote,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			// частичный индекс держит одну открытую смену на пользователя
			if strings.Contains(pgErr.ConstraintName, openShiftIndexName) {
				return domain.ErrDuplicateOpenShift
			}
			return domain.ErrDuplicateKey
		}
		return fmt.Errorf("insert shift: %w", err)
	}
	return nil
}

func (r *shiftPgRepository) UpdateShift(ctx context.Context, id string, patch domain.ClockOutPatch) error {
	query := `
		UPDATE shifts
		SET clock_out_time = $2,
		    clock_out_latitude = $3,
		    clock_out_longitude = $4,
		    clock_out_note = $5
		WHERE id = $1 AND clock_out_time IS NULL
	`

	result, err := r.pool.Exec(ctx, query,
		id,
		patch.ClockOutTime.UTC(),
		patch.ClockOutLocation.Latitude,
		patch.ClockOutLocation.Longitude,
		patch.ClockOutNote,
	)
	if err != nil {
		return fmt.Errorf("update shift: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNoOpenShift
	}
	return nil
}

func (r *shiftPgRepository) ListShiftsForUser(ctx context.Context, userID string) ([]*domain.Shift, error) {
	return r.query(ctx, `WHERE user_id = $1`, userID)
}

func (r *shiftPgRepository) ListAllShifts(ctx context.Context) ([]*domain.Shift, error) {
	return r.query(ctx, ``)
}

func (r *shiftPgRepository) ListOpenShifts(ctx context.Context) ([]*domain.Shift, error) {
	return r.query(ctx, `WHERE clock_out_time IS NULL`)
}

func (r *shiftPgRepository) ListShiftsBetween(ctx context.Context, from, to time.Time, userID string) ([]*domain.Shift, error) {
	var conds []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if !from.IsZero() {
		add("clock_in_time >= $%d", from.UTC())
	}
	if !to.IsZero() {
		add("clock_in_time < $%d", to.UTC())
	}
	if userID != "" {
		add("user_id = $%d", userID)
	}

	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}
	return r.query(ctx, where, args...)
}

func (r *shiftPgRepository) query(ctx context.Context, where string, args ...any) ([]*domain.Shift, error) {
	query := `SELECT` + shiftColumns + `
		FROM shifts
		` + where + `
		ORDER BY clock_in_time DESC, id DESC
	`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query shifts: %w", err)
	}
	defer rows.Close()

	shifts := make([]*domain.Shift, 0)
	for rows.Next() {
		s, err := scanShift(rows)
		if err != nil {
			return nil, fmt.Errorf("scan shift: %w", err)
		}
		shifts = append(shifts, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate shifts: %w", err)
	}
	return shifts, nil
}

func scanShift(row pgx.Row) (*domain.Shift, error) {
	var (
		s              domain.Shift
		outTime        *time.Time
		outLat, outLon *float64
	)
	err := row.Scan(
		&s.ID,
		&s.UserID,
		&s.Username,
		&s.ClockInTime,
		&s.ClockInLocation.Latitude,
		&s.ClockInLocation.Longitude,
		&s.ClockInNote,
		&outTime,
		&outLat,
		&outLon,
		&s.ClockOutNote,
	)
	if err != nil {
		return nil, err
	}

	s.ClockInTime = s.ClockInTime.UTC()
	if outTime != nil {
		t := outTime.UTC()
		s.ClockOutTime = &t
	}
	if outLat != nil && outLon != nil {
		s.ClockOutLocation = &domain.Location{Latitude: *outLat, Longitude: *outLon}
	}
	return &s, nil
}
