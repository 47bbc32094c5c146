package transport

import (
	"net/http"

	"shifttrack/internal/shared/httpx"
	"shifttrack/internal/shared/logger"
)

// RegisterRoutes регистрирует маршруты смен, периметра, аналитики и табеля.
// authenticated пропускает любого вошедшего пользователя, managerOnly только менеджеров.
func (h *HTTPHandler) RegisterRoutes(mux *http.ServeMux, authenticated, managerOnly func(http.Handler) http.Handler) {
	route := func(pattern string, mw func(http.Handler) http.Handler, fn http.HandlerFunc) {
		mux.Handle(pattern, httpx.Instrument(pattern, mw(fn)))
	}

	// отметки
	route("POST /shifts/clock-in", authenticated, h.handleClockIn)
	route("POST /shifts/clock-out", authenticated, h.handleClockOut)
	route("GET /shifts/me", authenticated, h.handleMyShifts)
	route("GET /shifts/me/open", authenticated, h.handleMyOpenShift)

	// периметр
	route("GET /perimeter", authenticated, h.handleGetPerimeter)
	route("POST /perimeter/check", authenticated, h.handleCheckPerimeter)
	route("PUT /perimeter", managerOnly, h.handleSetPerimeter)

	// менеджер
	route("GET /shifts", managerOnly, h.handleListShifts)
	route("GET /shifts/open", managerOnly, h.handleOpenShifts)
	route("GET /analytics/weekly", managerOnly, h.handleWeeklyOverview)
	route("GET /reports/timesheet.pdf", managerOnly, h.handleTimesheet)

	h.log.Debug(logger.Entry{Action: "shift_routes_registered", Message: "shift routes registered"})
}
