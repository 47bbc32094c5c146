package httpx

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shifttrack/internal/shared/auth"
	"shifttrack/internal/shared/config"
	"shifttrack/internal/shared/logger"
	"shifttrack/internal/shared/utils"
)

func whoami(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFromContext(r.Context())
	if !ok {
		RespondError(w, http.StatusInternalServerError, "no identity")
		return
	}
	RespondJSON(w, http.StatusOK, map[string]string{"userId": id.UserID, "role": id.Role})
}

func TestAuthenticate(t *testing.T) {
	jwt := auth.NewJWTService(config.JWTConfig{Secret: "s", ExpiryMinutes: 5})
	managerOnly := Authenticate(jwt, logger.Nop(), "manager")(http.HandlerFunc(whoami))

	manager, err := jwt.GenerateToken("m1", "boss", "manager")
	require.NoError(t, err)
	worker, err := jwt.GenerateToken("w1", "alice", "care_worker")
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Token " + manager, http.StatusUnauthorized},
		{"garbage", "Bearer nope", http.StatusUnauthorized},
		{"wrong role", "Bearer " + worker, http.StatusForbidden},
		{"ok", "Bearer " + manager, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rr := httptest.NewRecorder()
			managerOnly.ServeHTTP(rr, req)
			assert.Equal(t, tc.status, rr.Code)
		})
	}
}

func TestRequestLoggerSetsID(t *testing.T) {
	var seen string
	h := RequestLogger(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rr.Header().Get(HeaderRequestID))

	const upstream = "3f1c2a52-8d8e-4c1b-9a57-0b6f0f5b9d11"
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, upstream)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, upstream, seen)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "fixed\nforged log line")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.NotContains(t, seen, "forged")
	assert.True(t, utils.IsUUID(seen))
}

func TestReadJSON(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}

	read := func(body string) error {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		return ReadJSON(httptest.NewRecorder(), req, &dst)
	}

	require.NoError(t, read(`{"name":"x"}`))
	assert.Equal(t, "x", dst.Name)
	assert.ErrorIs(t, read(``), ErrEmptyBody)
	assert.Error(t, read(`{"name":"x","extra":1}`))
	assert.Error(t, read(`{"name":"x"}{"name":"y"}`))
}
