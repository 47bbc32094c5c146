package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shifttrack/internal/geofence"
	"shifttrack/internal/shared/auth"
	"shifttrack/internal/shared/config"
	"shifttrack/internal/shared/httpx"
	"shifttrack/internal/shared/logger"
	"shifttrack/internal/shift/adapters/out/memstore"
	"shifttrack/internal/shift/adapters/view"
	"shifttrack/internal/shift/application/usecase"
	"shifttrack/internal/shift/domain"
)

type fakeRenderer struct{}

func (fakeRenderer) Render(_ context.Context, ts domain.Timesheet) ([]byte, error) {
	return []byte("%PDF-1.3 " + ts.GroupBy), nil
}

type server struct {
	mux    *http.ServeMux
	store  *memstore.Store
	worker string
	other  string
	boss   string
}

func newServer(t *testing.T) *server {
	t.Helper()
	log := logger.Nop()
	jwt := auth.NewJWTService(config.JWTConfig{Secret: "test-secret", ExpiryMinutes: 5})
	store := memstore.New(geofence.DefaultPerimeter)

	ledger := usecase.NewLedger(store, store, nil, nil, log, usecase.LedgerOptions{})
	perimeter := usecase.NewPerimeterService(store, nil, nil, log, time.Second)
	analytics := usecase.NewAnalyticsService(store, nil, log, time.Second, nil)
	timesheet := usecase.NewTimesheetService(store, fakeRenderer{}, log, time.Second, nil)

	mux := http.NewServeMux()
	NewHTTPHandler(ledger, perimeter, analytics, timesheet, log).
		RegisterRoutes(mux, httpx.Authenticate(jwt, log), httpx.Authenticate(jwt, log, "manager"))

	token := func(id, name, role string) string {
		tok, err := jwt.GenerateToken(id, name, role)
		require.NoError(t, err)
		return tok
	}
	return &server{
		mux:    mux,
		store:  store,
		worker: token("w1", "alice", "care_worker"),
		other:  token("w2", "bob", "care_worker"),
		boss:   token("m1", "boss", "manager"),
	}
}

func (s *server) do(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	s.mux.ServeHTTP(rr, req)
	return rr
}

const inside = `"location":{"latitude":51.5074,"longitude":-0.1278}`

func decodeShift(t *testing.T, rr *httptest.ResponseRecorder) view.Shift {
	t.Helper()
	var resp ShiftResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.Shift
}

func TestClockInAndOutFlow(t *testing.T) {
	s := newServer(t)

	rr := s.do(http.MethodPost, "/shifts/clock-in", `{`+inside+`,"note":"morning"}`, s.worker)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	shift := decodeShift(t, rr)
	assert.Equal(t, "w1", shift.UserID)
	assert.Equal(t, "alice", shift.Username)
	require.NotNil(t, shift.ClockInNote)
	assert.Equal(t, "morning", *shift.ClockInNote)
	assert.Nil(t, shift.ClockOutTime)
	assert.Contains(t, rr.Body.String(), `"clockOutTime":null`)

	rr = s.do(http.MethodPost, "/shifts/clock-in", `{`+inside+`}`, s.worker)
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = s.do(http.MethodGet, "/shifts/me/open", "", s.worker)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), shift.ID)

	rr = s.do(http.MethodPost, "/shifts/clock-out", `{`+inside+`}`, s.worker)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	closed := decodeShift(t, rr)
	assert.Equal(t, shift.ID, closed.ID)
	require.NotNil(t, closed.ClockOutTime)

	rr = s.do(http.MethodPost, "/shifts/clock-out", `{`+inside+`}`, s.worker)
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = s.do(http.MethodGet, "/shifts/me/open", "", s.worker)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"shift":null}`, rr.Body.String())

	rr = s.do(http.MethodGet, "/shifts/me", "", s.worker)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"count":1`)
}

func TestClockInRejections(t *testing.T) {
	s := newServer(t)

	tests := []struct {
		name   string
		body   string
		token  string
		status int
	}{
		{"no token", `{` + inside + `}`, "", http.StatusUnauthorized},
		{"missing location", `{}`, s.worker, http.StatusBadRequest},
		{"bad latitude", `{"location":{"latitude":95,"longitude":0}}`, s.worker, http.StatusBadRequest},
		{"outside perimeter", `{"location":{"latitude":51.6074,"longitude":-0.1278}}`, s.worker, http.StatusForbidden},
		{"other user", `{"userId":"w2",` + inside + `}`, s.worker, http.StatusForbidden},
		{"unknown field", `{"foo":1,` + inside + `}`, s.worker, http.StatusBadRequest},
		{"empty body", ``, s.worker, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := s.do(http.MethodPost, "/shifts/clock-in", tt.body, tt.token)
			assert.Equal(t, tt.status, rr.Code, rr.Body.String())
		})
	}

	open, err := s.store.ListOpenShifts(t.Context())
	require.NoError(t, err)
	assert.Empty(t, open)
}

func TestManagerRoutes(t *testing.T) {
	s := newServer(t)

	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/shifts/clock-in", `{`+inside+`}`, s.worker).Code)
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/shifts/clock-in", `{"userId":"w2",`+inside+`}`, s.other).Code)

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/shifts", "", s.worker).Code)

	rr := s.do(http.MethodGet, "/shifts/open", "", s.boss)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"count":2`)

	rr = s.do(http.MethodGet, "/shifts?userId=w2", "", s.boss)
	require.Equal(t, http.StatusOK, rr.Code)
	var list ShiftListResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	require.Len(t, list.Shifts, 1)
	assert.Equal(t, "bob", list.Shifts[0].Username)

	rr = s.do(http.MethodGet, "/shifts?from=2000-01-01T00:00:00Z&to=2000-01-02T00:00:00Z", "", s.boss)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"count":0`)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/shifts?from=yesterday", "", s.boss).Code)

	rr = s.do(http.MethodGet, "/analytics/weekly", "", s.boss)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"totalActiveStaff":2`)
}

func TestPerimeterRoutes(t *testing.T) {
	s := newServer(t)

	rr := s.do(http.MethodGet, "/perimeter", "", s.worker)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"latitude":51.5074,"longitude":-0.1278,"radius":2000}`, rr.Body.String())

	body := `{"latitude":48.8566,"longitude":2.3522,"radius":500}`
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPut, "/perimeter", body, s.worker).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPut, "/perimeter", `{"latitude":1,"longitude":1,"radius":0}`, s.boss).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPut, "/perimeter", `{"latitude":1}`, s.boss).Code)

	rr = s.do(http.MethodPut, "/perimeter", body, s.boss)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, body, rr.Body.String())

	rr = s.do(http.MethodPost, "/perimeter/check", `{"latitude":48.8566,"longitude":2.3522}`, s.worker)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"within":true`)

	// London больше не внутри периметра
	rr = s.do(http.MethodPost, "/shifts/clock-in", `{`+inside+`}`, s.worker)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestTimesheetRoute(t *testing.T) {
	s := newServer(t)

	rr := s.do(http.MethodGet, "/reports/timesheet.pdf?groupBy=week", "", s.boss)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "application/pdf", rr.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rr.Body.String(), "%PDF"))
	assert.Contains(t, rr.Body.String(), "week")

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/reports/timesheet.pdf?groupBy=year", "", s.boss).Code)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/reports/timesheet.pdf", "", s.worker).Code)
}
