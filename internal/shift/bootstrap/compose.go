// Package bootstrap собирает сервис смен: хранилище, брокер, live-лента, use cases и HTTP.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	accounttransport "shifttrack/internal/account/adapters/in/transport"
	accountusecase "shifttrack/internal/account/application/usecase"
	accountdomain "shifttrack/internal/account/domain"
	"shifttrack/internal/shared/auth"
	"shifttrack/internal/shared/config"
	"shifttrack/internal/shared/httpx"
	"shifttrack/internal/shared/logger"
	"shifttrack/internal/shared/metrics"
	"shifttrack/internal/shared/mq"
	"shifttrack/internal/shared/ws"
	"shifttrack/internal/shift/adapters/in/transport"
	"shifttrack/internal/shift/adapters/out/messaging"
	"shifttrack/internal/shift/adapters/out/report"
	"shifttrack/internal/shift/adapters/out/staff"
	notification "shifttrack/internal/shift/adapters/out/ws"
	"shifttrack/internal/shift/application/ports/out"
	"shifttrack/internal/shift/application/usecase"
)

const (
	mqMaxRetries    = 5
	shutdownTimeout = 15 * time.Second
)

// App: собранный сервис. Close освобождает хранилище и брокер.
type App struct {
	Handler http.Handler
	Hub     *ws.Hub
	Ledger  *usecase.Ledger

	closers []func()
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// Build создает все зависимости. Хаб не запущен: это делает Run.
func Build(ctx context.Context, cfg config.Config, log *logger.Logger) (*App, error) {
	app := &App{}

	// хранилище
	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	app.closers = append(app.closers, st.close)

	// брокер
	var events out.EventPublisher = messaging.NewNoopPublisher()
	if cfg.RabbitMQ.Enabled {
		broker, err := mq.NewRabbitMQ(ctx, cfg.RabbitMQ, mqMaxRetries, log)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("rabbitmq: %w", err)
		}
		app.closers = append(app.closers, broker.Close)
		if err := mq.SetupTopology(ctx, broker, log); err != nil {
			app.Close()
			return nil, fmt.Errorf("rabbitmq topology: %w", err)
		}
		events = messaging.NewEventPublisher(broker, log)
	}

	jwtService := auth.NewJWTService(cfg.JWT)

	// live-лента для менеджеров
	app.Hub = ws.NewHub(jwtService.ExtractUserID, ws.Options{
		AllowedRoles:   []string{accountdomain.RoleManager},
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
	}, log)
	notifier := notification.NewShiftNotifier(app.Hub, log)

	// use cases
	timeout := cfg.Storage.Timeout()
	accounts := accountusecase.NewAccountService(st.users, jwtService, log, accountusecase.Options{Timeout: timeout})
	app.Ledger = usecase.NewLedger(st.shifts, st.perimeters, events, notifier, log, usecase.LedgerOptions{
		StoreTimeout:  timeout,
		NoteMaxLength: cfg.Shift.NoteMaxLength,
	})
	perimeter := usecase.NewPerimeterService(st.perimeters, events, notifier, log, timeout)
	analytics := usecase.NewAnalyticsService(st.shifts, staff.NewDirectory(accounts), log, timeout, nil)
	timesheet := usecase.NewTimesheetService(st.shifts, report.NewPDFRenderer("Timesheet"), log, timeout, nil)

	// HTTP
	authenticated := httpx.Authenticate(jwtService, log)
	managerOnly := httpx.Authenticate(jwtService, log, accountdomain.RoleManager)

	mux := http.NewServeMux()
	mux.Handle("GET /health", httpx.Instrument("GET /health", http.HandlerFunc(handleHealth)))
	mux.Handle("GET /metrics", metrics.Handler())
	mux.Handle("GET /ws", httpx.Instrument("GET /ws", http.HandlerFunc(app.Hub.ServeWS)))

	accounttransport.NewHTTPHandler(accounts, log).RegisterRoutes(mux, managerOnly)
	transport.NewHTTPHandler(app.Ledger, perimeter, analytics, timesheet, log).
		RegisterRoutes(mux, authenticated, managerOnly)

	app.Handler = httpx.RequestLogger(log)(mux)
	return app, nil
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	httpx.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Run запускает сервис и блокируется до отмены ctx
func Run(ctx context.Context, cfg config.Config, log *logger.Logger) error {
	log.Info(logger.Entry{Action: "shift_service_starting", Message: "initializing shift service"})

	app, err := Build(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer app.Close()

	go app.Hub.Run(ctx)

	if err := app.Ledger.SyncOpenShiftsGauge(ctx); err != nil {
		log.Warn(logger.Entry{
			Action:  "open_shifts_gauge_sync_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
		})
	}

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           app.Handler,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(logger.Entry{
			Action:  "http_server_starting",
			Message: fmt.Sprintf("listening on %s", addr),
			Additional: map[string]any{
				"storage":  cfg.Storage.Driver,
				"rabbitmq": cfg.RabbitMQ.Enabled,
			},
		})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}
	log.Info(logger.Entry{Action: "shift_service_stopping", Message: "shutting down shift service"})

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error(logger.Entry{
			Action:  "http_server_shutdown_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
		})
		return err
	}

	log.Info(logger.Entry{Action: "shift_service_stopped", Message: "shift service stopped"})
	return nil
}
