package view

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shifttrack/internal/shift/domain"
)

func TestShiftJSONShape(t *testing.T) {
	in := time.Date(2024, 3, 4, 9, 0, 0, 123456000, time.FixedZone("CET", 3600))
	s := domain.NewShift("s1", "u1", "alice", in, domain.Location{Latitude: 51.5, Longitude: -0.12}, nil)

	body, err := json.Marshal(FromShift(s))
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"id": "s1",
		"userId": "u1",
		"username": "alice",
		"clockInTime": "2024-03-04T08:00:00.123Z",
		"clockInLocation": {"latitude": 51.5, "longitude": -0.12},
		"clockInNote": null,
		"clockOutTime": null,
		"clockOutLocation": null,
		"clockOutNote": null
	}`, string(body))
}

func TestClosedShiftView(t *testing.T) {
	start := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	s := domain.NewShift("s1", "u1", "alice", start, domain.Location{}, nil)
	note := "done"
	require.NoError(t, s.Close(domain.ClockOutPatch{
		ClockOutTime:     start.Add(8 * time.Hour),
		ClockOutLocation: domain.Location{Latitude: 1, Longitude: 2},
		ClockOutNote:     &note,
	}))

	v := FromShift(s)
	require.NotNil(t, v.ClockOutTime)
	assert.Equal(t, "2024-03-04T17:00:00.000Z", *v.ClockOutTime)
	require.NotNil(t, v.ClockOutLocation)
	assert.Equal(t, Location{Latitude: 1, Longitude: 2}, *v.ClockOutLocation)
	assert.Equal(t, "done", *v.ClockOutNote)

	assert.Len(t, FromShifts([]*domain.Shift{s, s}), 2)
	assert.NotNil(t, FromShifts(nil))
}
