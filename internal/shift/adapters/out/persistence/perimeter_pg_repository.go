package persistence

import (
	"context"
	"errors"
	"fmt"

	"shifttrack/internal/geofence"
	out "shifttrack/internal/shift/application/ports/out"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type perimeterPgRepository struct {
	pool     *pgxpool.Pool
	fallback geofence.Perimeter
}

// NewPerimeterPgRepository: fallback отдается, пока строка периметра не создана
func NewPerimeterPgRepository(pool *pgxpool.Pool, fallback geofence.Perimeter) out.PerimeterRepository {
	return &perimeterPgRepository{pool: pool, fallback: fallback}
}

func (r *perimeterPgRepository) GetCurrentPerimeter(ctx context.Context) (geofence.Perimeter, error) {
	query := `SELECT latitude, longitude, radius FROM location_perimeter WHERE id = 1`

	var p geofence.Perimeter
	err := r.pool.QueryRow(ctx, query).Scan(&p.Latitude, &p.Longitude, &p.Radius)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return r.fallback, nil
		}
		return geofence.Perimeter{}, fmt.Errorf("query perimeter: %w", err)
	}
	return p, nil
}

func (r *perimeterPgRepository) SetPerimeter(ctx context.Context, p geofence.Perimeter) error {
	query := `
		INSERT INTO location_perimeter (id, latitude, longitude, radius, updated_at)
		VALUES (1, $1, $2, $3, now())
		ON CONFLICT (id) DO UPDATE
		SET latitude = EXCLUDED.latitude,
		    longitude = EXCLUDED.longitude,
		    radius = EXCLUDED.radius,
		    updated_at = EXCLUDED.updated_at
	`

	if _, err := r.pool.Exec(ctx, query, p.Latitude, p.Longitude, p.Radius); err != nil {
		return fmt.Errorf("upsert perimeter: %w", err)
	}
	return nil
}
