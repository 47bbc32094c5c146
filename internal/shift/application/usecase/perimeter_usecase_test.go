package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shifttrack/internal/geofence"
	"shifttrack/internal/shared/logger"
	"shifttrack/internal/shift/adapters/out/memstore"
	"shifttrack/internal/shift/domain"
)

func TestPerimeterServiceDefaultsAndReplace(t *testing.T) {
	store := memstore.New(geofence.DefaultPerimeter)
	events := &recordingEvents{}
	notifier := &recordingNotifier{}
	svc := NewPerimeterService(store, events, notifier, logger.Nop(), time.Second)
	ctx := context.Background()

	p, err := svc.GetPerimeter(ctx)
	require.NoError(t, err)
	assert.Equal(t, geofence.DefaultPerimeter, p)

	next := geofence.Perimeter{Latitude: 48.8566, Longitude: 2.3522, Radius: 500}
	saved, err := svc.SetPerimeter(ctx, next)
	require.NoError(t, err)
	assert.Equal(t, next, saved)

	p, err = svc.GetPerimeter(ctx)
	require.NoError(t, err)
	assert.Equal(t, next, p)

	assert.Equal(t, []string{"perimeter"}, events.recorded())
	assert.Equal(t, []string{"perimeter"}, notifier.kinds)
}

func TestPerimeterServiceRejectsInvalid(t *testing.T) {
	store := memstore.New(geofence.DefaultPerimeter)
	svc := NewPerimeterService(store, nil, nil, logger.Nop(), 0)
	ctx := context.Background()

	cases := []geofence.Perimeter{
		{Latitude: 91, Longitude: 0, Radius: 100},
		{Latitude: 0, Longitude: 181, Radius: 100},
		{Latitude: 0, Longitude: 0, Radius: 0},
		{Latitude: 0, Longitude: 0, Radius: -5},
	}
	for _, c := range cases {
		_, err := svc.SetPerimeter(ctx, c)
		assert.ErrorIs(t, err, domain.ErrValidation, "%+v", c)
	}

	p, err := svc.GetPerimeter(ctx)
	require.NoError(t, err)
	assert.Equal(t, geofence.DefaultPerimeter, p, "rejected update must not change the perimeter")
}

func TestPerimeterServiceCheckLocation(t *testing.T) {
	svc := NewPerimeterService(memstore.New(geofence.DefaultPerimeter), nil, nil, logger.Nop(), 0)
	ctx := context.Background()

	res, err := svc.CheckLocation(ctx, nearby)
	require.NoError(t, err)
	assert.True(t, res.Within)
	assert.Less(t, res.DistanceMeters, 2000.0)

	res, err = svc.CheckLocation(ctx, faraway)
	require.NoError(t, err)
	assert.False(t, res.Within)
	assert.InDelta(t, 11119.5, res.DistanceMeters, 1)

	_, err = svc.CheckLocation(ctx, domain.Location{Latitude: 100})
	assert.ErrorIs(t, err, domain.ErrValidation)
}
