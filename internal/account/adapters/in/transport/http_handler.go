package transport

import (
	"errors"
	"net/http"

	"shifttrack/internal/account/application/ports/in"
	"shifttrack/internal/account/domain"
	"shifttrack/internal/shared/httpx"
	"shifttrack/internal/shared/logger"
)

// HTTPHandler: регистрация, вход и список пользователей
type HTTPHandler struct {
	accounts in.AccountUseCase
	log      *logger.Logger
}

func NewHTTPHandler(accounts in.AccountUseCase, log *logger.Logger) *HTTPHandler {
	return &HTTPHandler{accounts: accounts, log: log}
}

// RegisterRoutes: managerOnly оборачивает маршруты, доступные только менеджеру
func (h *HTTPHandler) RegisterRoutes(mux *http.ServeMux, managerOnly func(http.Handler) http.Handler) {
	route := func(pattern string, handler http.Handler) {
		mux.Handle(pattern, httpx.Instrument(pattern, handler))
	}

	route("POST /auth/register", http.HandlerFunc(h.handleRegister))
	route("POST /auth/login", http.HandlerFunc(h.handleLogin))
	route("GET /users", managerOnly(http.HandlerFunc(h.handleListUsers)))
}

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// handleRegister обрабатывает POST /auth/register
func (h *HTTPHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := httpx.ReadJSON(w, r, &req); err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "invalid request format")
		return
	}
	if req.Username == "" || req.Password == "" || req.Role == "" {
		httpx.RespondError(w, http.StatusBadRequest, "username, password and role are required")
		return
	}

	out, err := h.accounts.Register(r.Context(), in.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		h.handleUseCaseError(w, r, err)
		return
	}
	httpx.RespondJSON(w, http.StatusCreated, out)
}

// handleLogin обрабатывает POST /auth/login
func (h *HTTPHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httpx.ReadJSON(w, r, &req); err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "invalid request format")
		return
	}
	if req.Username == "" || req.Password == "" {
		httpx.RespondError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	out, err := h.accounts.Login(r.Context(), in.LoginInput{Username: req.Username, Password: req.Password})
	if err != nil {
		h.handleUseCaseError(w, r, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, out)
}

// handleListUsers обрабатывает GET /users?role=
func (h *HTTPHandler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.accounts.ListUsers(r.Context(), r.URL.Query().Get("role"))
	if err != nil {
		h.handleUseCaseError(w, r, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, map[string]any{"users": users, "count": len(users)})
}

func (h *HTTPHandler) handleUseCaseError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrUsernameTaken):
		httpx.RespondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials):
		httpx.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrInvalidUsername),
		errors.Is(err, domain.ErrInvalidRole),
		errors.Is(err, domain.ErrPasswordTooShort),
		errors.Is(err, domain.ErrPasswordTooLong):
		httpx.RespondError(w, http.StatusBadRequest, err.Error())
	default:
		h.log.Error(logger.Entry{
			Action:    "account_usecase_error",
			Message:   err.Error(),
			RequestID: httpx.RequestIDFromContext(r.Context()),
			Error:     &logger.ErrObj{Msg: err.Error()},
		})
		httpx.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}
