package report

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shifttrack/internal/shift/domain"
)

func TestFormatDuration(t *testing.T) {
	cases := map[time.Duration]string{
		0:                              "0h 00m",
		8 * time.Hour:                  "8h 00m",
		90 * time.Minute:               "1h 30m",
		25*time.Hour + 5*time.Minute:   "25h 05m",
		2*time.Minute + 40*time.Second: "0h 03m",
	}
	for d, want := range cases {
		assert.Equal(t, want, FormatDuration(d), d.String())
	}
}

func TestRenderProducesPDF(t *testing.T) {
	start := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	closed := domain.NewShift("s1", "u1", "alice", start, domain.Location{}, nil)
	require.NoError(t, closed.Close(domain.ClockOutPatch{ClockOutTime: start.Add(8 * time.Hour)}))
	open := domain.NewShift("s2", "u2", "", start.Add(24*time.Hour), domain.Location{}, nil)

	shifts := []*domain.Shift{open, closed}
	ts := domain.Timesheet{
		From:        start.AddDate(0, 0, -1),
		GeneratedAt: start.Add(26 * time.Hour),
		GroupBy:     domain.GroupByDay,
		Groups:      domain.GroupShifts(shifts, domain.GroupByDay),
	}

	doc, err := NewPDFRenderer("").Render(context.Background(), ts)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF")))
}

func TestShiftRow(t *testing.T) {
	start := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	s := domain.NewShift("s1", "u1", "", start, domain.Location{}, nil)

	row := shiftRow(s, start.Add(2*time.Hour))
	assert.Equal(t, []string{"2024-03-04", "u1", "09:00", "open", "2h 00m"}, row)
}

func TestRenderCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewPDFRenderer("x").Render(ctx, domain.Timesheet{})
	assert.ErrorIs(t, err, context.Canceled)
}
