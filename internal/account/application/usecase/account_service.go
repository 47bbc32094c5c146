package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"shifttrack/internal/account/application/ports/in"
	"shifttrack/internal/account/application/ports/out"
	"shifttrack/internal/account/domain"
	"shifttrack/internal/shared/logger"
	"shifttrack/internal/shared/utils"

	"golang.org/x/crypto/bcrypt"
)

// Options: параметры сервиса; нулевые значения заменяются значениями по умолчанию
type Options struct {
	BcryptCost int
	Timeout    time.Duration
	Now        func() time.Time
}

// AccountService реализует AccountUseCase
type AccountService struct {
	users     out.UserRepository
	tokens    out.TokenIssuer
	log       *logger.Logger
	cost      int
	timeout   time.Duration
	now       func() time.Time
	dummyHash []byte
}

var _ in.AccountUseCase = (*AccountService)(nil)

func NewAccountService(users out.UserRepository, tokens out.TokenIssuer, log *logger.Logger, opts Options) *AccountService {
	s := &AccountService{
		users:   users,
		tokens:  tokens,
		log:     log,
		cost:    opts.BcryptCost,
		timeout: opts.Timeout,
		now:     opts.Now,
	}
	if s.cost == 0 {
		s.cost = bcrypt.DefaultCost
	}
	if s.timeout <= 0 {
		s.timeout = 5 * time.Second
	}
	if s.now == nil {
		s.now = time.Now
	}
	// сравнение с фиктивным хешем выравнивает время ответа для несуществующих имен
	s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("shifttrack-dummy-password"), s.cost)
	return s
}

func (s *AccountService) Register(ctx context.Context, input in.RegisterInput) (*in.AuthOutput, error) {
	username, err := domain.NormalizeUsername(input.Username)
	if err != nil {
		return nil, err
	}
	if !domain.IsValidRole(input.Role) {
		return nil, domain.ErrInvalidRole
	}
	if len(input.Password) < domain.MinPasswordLength {
		return nil, domain.ErrPasswordTooShort
	}
	if len(input.Password) > domain.MaxPasswordLength {
		return nil, domain.ErrPasswordTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.cost)
	if err != nil {
		s.log.Error(logger.Entry{
			Action:  "hash_password_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
		})
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:           utils.NewUUID(),
		Username:     username,
		Role:         input.Role,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC().Truncate(time.Microsecond),
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.users.Create(storeCtx, user); err != nil {
		if errors.Is(err, domain.ErrUsernameTaken) {
			return nil, err
		}
		s.log.Error(logger.Entry{
			Action:  "create_user_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
			Additional: map[string]any{
				"username": username,
				"role":     input.Role,
			},
		})
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info(logger.Entry{
		Action:  "user_registered",
		Message: fmt.Sprintf("user %s registered", user.Username),
		Additional: map[string]any{
			"user_id": user.ID,
			"role":    user.Role,
		},
	})

	return s.issue(user)
}

func (s *AccountService) Login(ctx context.Context, input in.LoginInput) (*in.AuthOutput, error) {
	storeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	user, err := s.users.FindByUsername(storeCtx, strings.TrimSpace(input.Username))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(input.Password))
			s.log.Warn(logger.Entry{Action: "login_failed", Message: "unknown username"})
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		s.log.Warn(logger.Entry{
			Action:  "login_failed",
			Message: "password mismatch",
			Additional: map[string]any{
				"user_id": user.ID,
			},
		})
		return nil, domain.ErrInvalidCredentials
	}

	s.log.Info(logger.Entry{
		Action:  "user_logged_in",
		Message: user.Username,
		Additional: map[string]any{
			"user_id": user.ID,
			"role":    user.Role,
		},
	})
	return s.issue(user)
}

func (s *AccountService) ListUsers(ctx context.Context, role string) ([]in.UserView, error) {
	if role != "" && !domain.IsValidRole(role) {
		return nil, domain.ErrInvalidRole
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	users, err := s.users.List(storeCtx, role)
	if err != nil {
		s.log.Error(logger.Entry{
			Action:  "list_users_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
		})
		return nil, fmt.Errorf("list users: %w", err)
	}

	views := make([]in.UserView, 0, len(users))
	for _, u := range users {
		views = append(views, toView(u))
	}
	return views, nil
}

func (s *AccountService) issue(user *domain.User) (*in.AuthOutput, error) {
	token, err := s.tokens.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return &in.AuthOutput{Token: token, User: toView(user)}, nil
}

func toView(u *domain.User) in.UserView {
	return in.UserView{
		ID:        u.ID,
		Username:  u.Username,
		Role:      u.Role,
		CreatedAt: u.CreatedAt.UTC(),
	}
}
