// Package boltstore хранит смены и периметр во встраиваемой базе bbolt.
package boltstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"shifttrack/internal/geofence"
	"shifttrack/internal/shared/boltdb"
	"shifttrack/internal/shift/adapters/out/memstore"
	out "shifttrack/internal/shift/application/ports/out"
	"shifttrack/internal/shift/domain"

	bolt "go.etcd.io/bbolt"
)

var perimeterKey = []byte("current")

// Store реализует ShiftRepository и PerimeterRepository.
// Проверка открытой смены и запись идут в одной транзакции Update.
type Store struct {
	db       *bolt.DB
	fallback geofence.Perimeter
}

var (
	_ out.ShiftRepository     = (*Store)(nil)
	_ out.PerimeterRepository = (*Store)(nil)
)

// New: db должна быть открыта через boltdb.Open
func New(db *bolt.DB, fallback geofence.Perimeter) *Store {
	return &Store{db: db, fallback: fallback}
}

type shiftRecord struct {
	ID               string          `json:"id"`
	UserID           string          `json:"user_id"`
	Username         string          `json:"username"`
	ClockInTime      time.Time       `json:"clock_in_time"`
	ClockInLocation  geofence.Point  `json:"clock_in_location"`
	ClockInNote      *string         `json:"clock_in_note,omitempty"`
	ClockOutTime     *time.Time      `json:"clock_out_time,omitempty"`
	ClockOutLocation *geofence.Point `json:"clock_out_location,omitempty"`
	ClockOutNote     *string         `json:"clock_out_note,omitempty"`
}

func toRecord(s *domain.Shift) shiftRecord {
	return shiftRecord(*s.Clone())
}

func (r shiftRecord) toShift() *domain.Shift {
	s := domain.Shift(r)
	return &s
}

func (s *Store) FindOpenShift(ctx context.Context, userID string) (*domain.Shift, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var found *domain.Shift
	err := s.db.View(func(tx *bolt.Tx) error {
		id := tx.Bucket(boltdb.BucketOpenShifts).Get([]byte(userID))
		if id == nil {
			return nil
		}
		sh, err := getShift(tx, id)
		if err != nil {
			return err
		}
		found = sh
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("find open shift: %w", err)
	}
	return found, nil
}

func (s *Store) InsertShift(ctx context.Context, shift *domain.Shift) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		shifts := tx.Bucket(boltdb.BucketShifts)
		open := tx.Bucket(boltdb.BucketOpenShifts)

		if shifts.Get([]byte(shift.ID)) != nil {
			return domain.ErrDuplicateKey
		}
		if shift.IsOpen() {
			if open.Get([]byte(shift.UserID)) != nil {
				return domain.ErrDuplicateOpenShift
			}
			if err := open.Put([]byte(shift.UserID), []byte(shift.ID)); err != nil {
				return err
			}
		}
		return putShift(tx, shift)
	})
}

func (s *Store) UpdateShift(ctx context.Context, id string, patch domain.ClockOutPatch) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		sh, err := getShift(tx, []byte(id))
		if err != nil {
			return err
		}
		if sh == nil {
			return domain.ErrNoOpenShift
		}
		if err := sh.Close(patch); err != nil {
			return err
		}
		if err := tx.Bucket(boltdb.BucketOpenShifts).Delete([]byte(sh.UserID)); err != nil {
			return err
		}
		return putShift(tx, sh)
	})
}

func (s *Store) ListShiftsForUser(ctx context.Context, userID string) ([]*domain.Shift, error) {
	return s.filter(ctx, func(sh *domain.Shift) bool { return sh.UserID == userID })
}

func (s *Store) ListAllShifts(ctx context.Context) ([]*domain.Shift, error) {
	return s.filter(ctx, func(*domain.Shift) bool { return true })
}

func (s *Store) ListOpenShifts(ctx context.Context) ([]*domain.Shift, error) {
	return s.filter(ctx, (*domain.Shift).IsOpen)
}

func (s *Store) ListShiftsBetween(ctx context.Context, from, to time.Time, userID string) ([]*domain.Shift, error) {
	return s.filter(ctx, func(sh *domain.Shift) bool {
		if userID != "" && sh.UserID != userID {
			return false
		}
		if !from.IsZero() && sh.ClockInTime.Before(from) {
			return false
		}
		return to.IsZero() || sh.ClockInTime.Before(to)
	})
}

func (s *Store) GetCurrentPerimeter(ctx context.Context) (geofence.Perimeter, error) {
	if err := ctx.Err(); err != nil {
		return geofence.Perimeter{}, err
	}

	p := s.fallback
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(boltdb.BucketPerimeter).Get(perimeterKey)
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &p)
	})
	if err != nil {
		return geofence.Perimeter{}, fmt.Errorf("read perimeter: %w", err)
	}
	return p, nil
}

func (s *Store) SetPerimeter(ctx context.Context, p geofence.Perimeter) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(boltdb.BucketPerimeter).Put(perimeterKey, data)
	})
}

func (s *Store) filter(ctx context.Context, keep func(*domain.Shift) bool) ([]*domain.Shift, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := make([]*domain.Shift, 0)
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(boltdb.BucketShifts).ForEach(func(_, v []byte) error {
			var rec shiftRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			if sh := rec.toShift(); keep(sh) {
				result = append(result, sh)
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("scan shifts: %w", err)
	}
	memstore.SortNewestFirst(result)
	return result, nil
}

func getShift(tx *bolt.Tx, id []byte) (*domain.Shift, error) {
	data := tx.Bucket(boltdb.BucketShifts).Get(id)
	if data == nil {
		return nil, nil
	}
	var rec shiftRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode shift %s: %w", id, err)
	}
	return rec.toShift(), nil
}

func putShift(tx *bolt.Tx, sh *domain.Shift) error {
	data, err := json.Marshal(toRecord(sh))
	if err != nil {
		return err
	}
	return tx.Bucket(boltdb.BucketShifts).Put([]byte(sh.ID), data)
}
