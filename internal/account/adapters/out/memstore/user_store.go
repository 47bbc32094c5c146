// Package memstore: учетные записи в памяти процесса.
package memstore

import (
	"context"
	"sort"
	"sync"

	"shifttrack/internal/account/application/ports/out"
	"shifttrack/internal/account/domain"
)

type UserStore struct {
	mu     sync.RWMutex
	byID   map[string]*domain.User
	byName map[string]string
}

var _ out.UserRepository = (*UserStore)(nil)

func NewUserStore() *UserStore {
	return &UserStore{
		byID:   make(map[string]*domain.User),
		byName: make(map[string]string),
	}
}

func (s *UserStore) Create(ctx context.Context, user *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byName[user.Username]; taken {
		return domain.ErrUsernameTaken
	}
	u := *user
	s.byID[u.ID] = &u
	s.byName[u.Username] = u.ID
	return nil
}

func (s *UserStore) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byName[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u := *s.byID[id]
	return &u, nil
}

func (s *UserStore) List(ctx context.Context, role string) ([]*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*domain.User, 0, len(s.byID))
	for _, u := range s.byID {
		if role == "" || u.Role == role {
			c := *u
			users = append(users, &c)
		}
	}
	SortByCreation(users)
	return users, nil
}

// SortByCreation: по времени создания, затем по имени
func SortByCreation(users []*domain.User) {
	sort.Slice(users, func(i, j int) bool {
		if !users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].CreatedAt.Before(users[j].CreatedAt)
		}
		return users[i].Username < users[j].Username
	})
}
