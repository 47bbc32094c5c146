package transport

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"shifttrack/internal/geofence"
	"shifttrack/internal/shared/httpx"
	"shifttrack/internal/shared/logger"
	"shifttrack/internal/shift/adapters/view"
	"shifttrack/internal/shift/application/ports/in"
	"shifttrack/internal/shift/domain"
)

// HTTPHandler обрабатывает HTTP запросы сервиса смен
type HTTPHandler struct {
	ledger    in.ShiftLedger
	perimeter in.PerimeterUseCase
	analytics in.AnalyticsUseCase
	timesheet in.TimesheetUseCase
	log       *logger.Logger
}

func NewHTTPHandler(
	ledger in.ShiftLedger,
	perimeter in.PerimeterUseCase,
	analytics in.AnalyticsUseCase,
	timesheet in.TimesheetUseCase,
	log *logger.Logger,
) *HTTPHandler {
	return &HTTPHandler{
		ledger:    ledger,
		perimeter: perimeter,
		analytics: analytics,
		timesheet: timesheet,
		log:       log,
	}
}

// handleClockIn обрабатывает POST /shifts/clock-in
func (h *HTTPHandler) handleClockIn(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req ClockInRequest
	if err := httpx.ReadJSON(w, r, &req); err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "invalid request format")
		return
	}

	userID, err := resolveUser(id, req.UserID)
	if err != nil {
		h.handleUseCaseError(w, r, err)
		return
	}
	username := strings.TrimSpace(req.Username)
	if username == "" {
		username = id.Username
	}

	shift, err := h.ledger.ClockIn(r.Context(), in.ClockInInput{
		UserID:   userID,
		Username: username,
		Location: toDomainLocation(req.Location),
		Note:     req.Note,
	})
	if err != nil {
		h.handleUseCaseError(w, r, err)
		return
	}
	httpx.RespondJSON(w, http.StatusCreated, ShiftResponse{Shift: view.FromShift(shift)})
}

// handleClockOut обрабатывает POST /shifts/clock-out
func (h *HTTPHandler) handleClockOut(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req ClockOutRequest
	if err := httpx.ReadJSON(w, r, &req); err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "invalid request format")
		return
	}

	userID, err := resolveUser(id, req.UserID)
	if err != nil {
		h.handleUseCaseError(w, r, err)
		return
	}

	shift, err := h.ledger.ClockOut(r.Context(), in.ClockOutInput{
		UserID:   userID,
		Location: toDomainLocation(req.Location),
		Note:     req.Note,
	})
	if err != nil {
		h.handleUseCaseError(w, r, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, ShiftResponse{Shift: view.FromShift(shift)})
}

// handleMyShifts обрабатывает GET /shifts/me
func (h *HTTPHandler) handleMyShifts(w http.ResponseWriter, r *http.Request) {
	id, _ := httpx.IdentityFromContext(r.Context())
	shifts, err := h.ledger.GetShiftsForUser(r.Context(), id.UserID)
	if err != nil {
		h.handleUseCaseError(w, r, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, newShiftList(shifts))
}

// handleMyOpenShift обрабатывает GET /shifts/me/open
func (h *HTTPHandler) handleMyOpenShift(w http.ResponseWriter, r *http.Request) {
	id, _ := httpx.IdentityFromContext(r.Context())
	shift, err := h.ledger.GetOpenShift(r.Context(), id.UserID)
	if err != nil {
		h.handleUseCaseError(w, r, err)
		return
	}
	var resp OpenShiftResponse
	if shift != nil {
		v := view.FromShift(shift)
		resp.Shift = &v
	}
	httpx.RespondJSON(w, http.StatusOK, resp)
}

// handleListShifts обрабатывает GET /shifts?from&to&userId
func (h *HTTPHandler) handleListShifts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, to, err := parseRange(q.Get("from"), q.Get("to"))
	if err != nil {
		h.handleUseCaseError(w, r, err)
		return
	}

	shifts, err := h.ledger.GetShiftsBetween(r.Context(), in.ShiftQuery{From: from, To: to, UserID: q.Get("userId")})
	if err != nil {
		h.handleUseCaseError(w, r, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, newShiftList(shifts))
}

// handleOpenShifts обрабатывает GET /shifts/open
func (h *HTTPHandler) handleOpenShifts(w http.ResponseWriter, r *http.Request) {
	shifts, err := h.ledger.GetAllOpenShifts(r.Context())
	if err != nil {
		h.handleUseCaseError(w, r, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, newShiftList(shifts))
}

// handleGetPerimeter обрабатывает GET /perimeter
func (h *HTTPHandler) handleGetPerimeter(w http.ResponseWriter, r *http.Request) {
	p, err := h.perimeter.GetPerimeter(r.Context())
	if err != nil {
		h.handleUseCaseError(w, r, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, view.Perimeter(p))
}

// handleSetPerimeter обрабатывает PUT /perimeter
func (h *HTTPHandler) handleSetPerimeter(w http.ResponseWriter, r *http.Request) {
	var req PerimeterRequest
	if err := httpx.ReadJSON(w, r, &req); err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "invalid request format")
		return
	}
	if req.Latitude == nil || req.Longitude == nil || req.Radius == nil {
		httpx.RespondError(w, http.StatusBadRequest, "latitude, longitude and radius are required")
		return
	}

	saved, err := h.perimeter.SetPerimeter(r.Context(), geofence.Perimeter{
		Latitude:  *req.Latitude,
		Longitude: *req.Longitude,
		Radius:    *req.Radius,
	})
	if err != nil {
		h.handleUseCaseError(w, r, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, view.Perimeter(saved))
}

// handleCheckPerimeter обрабатывает POST /perimeter/check
func (h *HTTPHandler) handleCheckPerimeter(w http.ResponseWriter, r *http.Request) {
	var req view.Location
	if err := httpx.ReadJSON(w, r, &req); err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "invalid request format")
		return
	}

	res, err := h.perimeter.CheckLocation(r.Context(), domain.Location(req))
	if err != nil {
		h.handleUseCaseError(w, r, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, res)
}

// handleWeeklyOverview обрабатывает GET /analytics/weekly
func (h *HTTPHandler) handleWeeklyOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.analytics.WeeklyOverview(r.Context())
	if err != nil {
		h.handleUseCaseError(w, r, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, overview)
}

// handleTimesheet обрабатывает GET /reports/timesheet.pdf?from&to&userId&groupBy
func (h *HTTPHandler) handleTimesheet(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, to, err := parseRange(q.Get("from"), q.Get("to"))
	if err != nil {
		h.handleUseCaseError(w, r, err)
		return
	}

	doc, err := h.timesheet.ExportTimesheet(r.Context(), in.TimesheetInput{
		From:    from,
		To:      to,
		UserID:  q.Get("userId"),
		GroupBy: q.Get("groupBy"),
	})
	if err != nil {
		h.handleUseCaseError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="timesheet.pdf"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}

// resolveUser: пустой userId берется из токена, чужой запрещен
func resolveUser(id httpx.Identity, requested string) (string, error) {
	requested = strings.TrimSpace(requested)
	if requested == "" {
		return id.UserID, nil
	}
	if requested != id.UserID {
		return "", fmt.Errorf("%w: userId does not match token", domain.ErrForbidden)
	}
	return requested, nil
}

// parseRange разбирает RFC 3339; пустая граница не ограничивает выборку
func parseRange(fromRaw, toRaw string) (from, to time.Time, err error) {
	if fromRaw != "" {
		if from, err = time.Parse(time.RFC3339, fromRaw); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: from must be RFC 3339", domain.ErrValidation)
		}
	}
	if toRaw != "" {
		if to, err = time.Parse(time.RFC3339, toRaw); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: to must be RFC 3339", domain.ErrValidation)
		}
	}
	return from.UTC(), to.UTC(), nil
}

func (h *HTTPHandler) handleUseCaseError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		httpx.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrOutsideGeofence), errors.Is(err, domain.ErrForbidden):
		httpx.RespondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrDuplicateOpenShift), errors.Is(err, domain.ErrNoOpenShift):
		httpx.RespondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrPersistenceUnavailable):
		h.logError(r, err)
		httpx.RespondError(w, http.StatusServiceUnavailable, domain.ErrPersistenceUnavailable.Error())
	default:
		h.logError(r, err)
		httpx.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

func (h *HTTPHandler) logError(r *http.Request, err error) {
	h.log.WithContext(httpx.RequestIDFromContext(r.Context()), "").Error(logger.Entry{
		Action:  "shift_usecase_error",
		Message: err.Error(),
		Error:   &logger.ErrObj{Msg: err.Error()},
		Additional: map[string]any{
			"route": r.Pattern,
		},
	})
}
