// Package memstore: хранилище смен в памяти процесса (demo-режим и тесты).
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"shifttrack/internal/geofence"
	out "shifttrack/internal/shift/application/ports/out"
	"shifttrack/internal/shift/domain"
)

// Store реализует ShiftRepository и PerimeterRepository под одним мьютексом
type Store struct {
	mu        sync.RWMutex
	shifts    map[string]*domain.Shift
	open      map[string]string // userID -> shiftID
	perimeter *geofence.Perimeter
	fallback  geofence.Perimeter
}

var (
	_ out.ShiftRepository     = (*Store)(nil)
	_ out.PerimeterRepository = (*Store)(nil)
)

// New создает пустое хранилище; fallback возвращается, пока периметр не задан
func New(fallback geofence.Perimeter) *Store {
	return &Store{
		shifts:   make(map[string]*domain.Shift),
		open:     make(map[string]string),
		fallback: fallback,
	}
}

func (s *Store) FindOpenShift(ctx context.Context, userID string) (*domain.Shift, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.open[userID]
	if !ok {
		return nil, nil
	}
	return s.shifts[id].Clone(), nil
}

func (s *Store) InsertShift(ctx context.Context, shift *domain.Shift) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.shifts[shift.ID]; exists {
		return domain.ErrDuplicateKey
	}
	if shift.IsOpen() {
		if _, busy := s.open[shift.UserID]; busy {
			return domain.ErrDuplicateOpenShift
		}
		s.open[shift.UserID] = shift.ID
	}
	s.shifts[shift.ID] = shift.Clone()
	return nil
}

func (s *Store) UpdateShift(ctx context.Context, id string, patch domain.ClockOutPatch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	shift, ok := s.shifts[id]
	if !ok {
		return domain.ErrNoOpenShift
	}
	if err := shift.Close(patch); err != nil {
		return err
	}
	delete(s.open, shift.UserID)
	return nil
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
		if !to.IsZero() && !sh.ClockInTime.Before(to) {
			return false
		}
		return true
	})
}

func (s *Store) GetCurrentPerimeter(ctx context.Context) (geofence.Perimeter, error) {
	if err := ctx.Err(); err != nil {
		return geofence.Perimeter{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.perimeter == nil {
		return s.fallback, nil
	}
	return *s.perimeter, nil
}

func (s *Store) SetPerimeter(ctx context.Context, p geofence.Perimeter) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.perimeter = &p
	return nil
}

func (s *Store) filter(ctx context.Context, keep func(*domain.Shift) bool) ([]*domain.Shift, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Shift, 0)
	for _, sh := range s.shifts {
		if keep(sh) {
			result = append(result, sh.Clone())
		}
	}
	SortNewestFirst(result)
	return result, nil
}

// SortNewestFirst: по убыванию clock-in, при равенстве по id
func SortNewestFirst(shifts []*domain.Shift) {
	sort.Slice(shifts, func(i, j int) bool {
		if !shifts[i].ClockInTime.Equal(shifts[j].ClockInTime) {
			return shifts[i].ClockInTime.After(shifts[j].ClockInTime)
		}
		return shifts[i].ID > shifts[j].ID
	})
}
