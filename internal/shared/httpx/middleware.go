package httpx

import (
	"bufio"
	"context"
	"errors"
	"net"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"shifttrack/internal/shared/auth"
	"shifttrack/internal/shared/logger"
	"shifttrack/internal/shared/metrics"
	"shifttrack/internal/shared/utils"
)

type contextKey string

const (
	contextKeyIdentity  contextKey = "identity"
	contextKeyRequestID contextKey = "request_id"
)

const HeaderRequestID = "X-Request-ID"

// Identity: пользователь из проверенного токена
type Identity struct {
	UserID   string
	Username string
	Role     string
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKeyIdentity, id)
}

// IdentityFromContext: false, если запрос не прошел Authenticate
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKeyIdentity).(Identity)
	return id, ok
}

func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(contextKeyRequestID).(string)
	return id
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Hijack нужен апгрейду WebSocket
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

// RequestLogger присваивает X-Request-ID и пишет access-лог.
// Входящий X-Request-ID принимается только в виде UUID.
func RequestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(HeaderRequestID)
			if !utils.IsUUID(requestID) {
				requestID = utils.NewUUID()
			}
			w.Header().Set(HeaderRequestID, requestID)

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()

			ctx := context.WithValue(r.Context(), contextKeyRequestID, requestID)
			next.ServeHTTP(rec, r.WithContext(ctx))

			log.Debug(logger.Entry{
				Action:    "http_request",
				Message:   r.Method + " " + r.URL.Path,
				RequestID: requestID,
				Additional: map[string]any{
					"status":      rec.status,
					"duration_ms": time.Since(start).Milliseconds(),
					"remote_addr": r.RemoteAddr,
				},
			})
		})
	}
}

// Instrument считает запросы и длительность по шаблону маршрута
func Instrument(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec, ok := w.(*statusRecorder)
		if !ok {
			rec = &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		}
		timer := metrics.NewTimer()
		next.ServeHTTP(rec, r)
		timer.ObserveDuration(metrics.HTTPRequestDuration.WithLabelValues(route))
		metrics.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
	})
}

// Authenticate проверяет Bearer-токен; roles ограничивает доступ, пустой список пускает любую роль
func Authenticate(jwtService *auth.JWTService, log *logger.Logger, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				RespondError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
				log.Warn(logger.Entry{
					Action:    "auth_invalid_format",
					Message:   "invalid authorization header format",
					RequestID: RequestIDFromContext(r.Context()),
				})
				RespondError(w, http.StatusUnauthorized, "invalid authorization header format")
				return
			}

			claims, err := jwtService.ValidateToken(parts[1])
			if err != nil {
				log.Warn(logger.Entry{
					Action:    "auth_invalid_token",
					Message:   err.Error(),
					RequestID: RequestIDFromContext(r.Context()),
				})
				RespondError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			if len(roles) > 0 && !slices.Contains(roles, claims.Role) {
				log.Warn(logger.Entry{
					Action:    "auth_forbidden_role",
					Message:   "insufficient permissions",
					RequestID: RequestIDFromContext(r.Context()),
					Additional: map[string]any{
						"user_id": claims.UserID,
						"role":    claims.Role,
					},
				})
				RespondError(w, http.StatusForbidden, "access denied: "+strings.Join(roles, " or ")+" role required")
				return
			}

			ctx := WithIdentity(r.Context(), Identity{
				UserID:   claims.UserID,
				Username: claims.Username,
				Role:     claims.Role,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Chain применяет middleware справа налево: первый в списке становится внешним
func Chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
