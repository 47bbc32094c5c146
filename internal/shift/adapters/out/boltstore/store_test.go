package boltstore

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shifttrack/internal/geofence"
	"shifttrack/internal/shared/boltdb"
	"shifttrack/internal/shared/logger"
	"shifttrack/internal/shift/domain"
)

var base = time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

func openStore(t *testing.T, path string) *Store {
	t.Helper()
	db, err := boltdb.Open(path, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return New(db, geofence.DefaultPerimeter)
}

func TestInsertFindAndClose(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, filepath.Join(t.TempDir(), "shifts.db"))
	note := "arrived"

	sh := domain.NewShift("s1", "u1", "alice", base, domain.Location{Latitude: 51.5, Longitude: -0.12}, &note)
	require.NoError(t, s.InsertShift(ctx, sh))

	open, err := s.FindOpenShift(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, open)
	assert.Equal(t, "s1", open.ID)
	require.NotNil(t, open.ClockInNote)
	assert.Equal(t, "arrived", *open.ClockInNote)

	assert.ErrorIs(t, s.InsertShift(ctx, domain.NewShift("s2", "u1", "alice", base, sh.ClockInLocation, nil)), domain.ErrDuplicateOpenShift)
	assert.ErrorIs(t, s.InsertShift(ctx, domain.NewShift("s1", "u2", "bob", base, sh.ClockInLocation, nil)), domain.ErrDuplicateKey)

	patch := domain.ClockOutPatch{ClockOutTime: base.Add(8 * time.Hour), ClockOutLocation: sh.ClockInLocation}
	require.NoError(t, s.UpdateShift(ctx, "s1", patch))
	assert.ErrorIs(t, s.UpdateShift(ctx, "s1", patch), domain.ErrNoOpenShift)
	assert.ErrorIs(t, s.UpdateShift(ctx, "missing", patch), domain.ErrNoOpenShift)

	open, err = s.FindOpenShift(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, open)

	all, err := s.ListAllShifts(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.NotNil(t, all[0].ClockOutTime)
	assert.Equal(t, 8*time.Hour, all[0].Duration(time.Time{}))
}

func TestConcurrentInsertKeepsOneOpenShift(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, filepath.Join(t.TempDir(), "shifts.db"))

	var ok int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sh := domain.NewShift(fmt.Sprintf("s%d", i), "u1", "alice", base, domain.Location{}, nil)
			if s.InsertShift(ctx, sh) == nil {
				atomic.AddInt32(&ok, 1)
			}
		}(i)
	}
	wg.Wait()

	assert.EqualValues(t, 1, ok)
	open, err := s.ListOpenShifts(ctx)
	require.NoError(t, err)
	assert.Len(t, open, 1)
}

func TestListOrderingAndRange(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, filepath.Join(t.TempDir(), "shifts.db"))

	for i, user := range []string{"u1", "u2", "u3"} {
		sh := domain.NewShift(fmt.Sprintf("s%d", i), user, user, base.Add(time.Duration(i)*time.Hour), domain.Location{}, nil)
		require.NoError(t, s.InsertShift(ctx, sh))
	}

	all, err := s.ListAllShifts(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "s2", all[0].ID)
	assert.Equal(t, "s0", all[2].ID)

	between, err := s.ListShiftsBetween(ctx, base.Add(time.Hour), base.Add(2*time.Hour), "")
	require.NoError(t, err)
	require.Len(t, between, 1)
	assert.Equal(t, "s1", between[0].ID)

	mine, err := s.ListShiftsForUser(ctx, "u3")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "s2", mine[0].ID)
}

func TestPerimeterSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "shifts.db")

	db, err := boltdb.Open(path, logger.Nop())
	require.NoError(t, err)
	s := New(db, geofence.DefaultPerimeter)

	p, err := s.GetCurrentPerimeter(ctx)
	require.NoError(t, err)
	assert.Equal(t, geofence.DefaultPerimeter, p)

	next := geofence.Perimeter{Latitude: 40.7128, Longitude: -74.006, Radius: 300}
	require.NoError(t, s.SetPerimeter(ctx, next))
	require.NoError(t, db.Close())

	reopened := openStore(t, path)
	p, err = reopened.GetCurrentPerimeter(ctx)
	require.NoError(t, err)
	assert.Equal(t, next, p)
}

func TestCanceledContext(t *testing.T) {
	s := openStore(t, filepath.Join(t.TempDir(), "shifts.db"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.ListAllShifts(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
