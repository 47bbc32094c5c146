// Package boltstore: учетные записи в bbolt.
package boltstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"shifttrack/internal/account/adapters/out/memstore"
	"shifttrack/internal/account/application/ports/out"
	"shifttrack/internal/account/domain"
	"shifttrack/internal/shared/boltdb"

	bolt "go.etcd.io/bbolt"
)

type userRecord struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserStore хранит пользователей в бакете users и индекс имен в usernames
type UserStore struct {
	db *bolt.DB
}

var _ out.UserRepository = (*UserStore)(nil)

func NewUserStore(db *bolt.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) Create(ctx context.Context, user *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(userRecord(*user))
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		names := tx.Bucket(boltdb.BucketUsernames)
		if names.Get([]byte(user.Username)) != nil {
			return domain.ErrUsernameTaken
		}
		if err := names.Put([]byte(user.Username), []byte(user.ID)); err != nil {
			return err
		}
		return tx.Bucket(boltdb.BucketUsers).Put([]byte(user.ID), data)
	})
}

func (s *UserStore) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var user *domain.User
	err := s.db.View(func(tx *bolt.Tx) error {
		id := tx.Bucket(boltdb.BucketUsernames).Get([]byte(username))
		if id == nil {
			return domain.ErrUserNotFound
		}
		data := tx.Bucket(boltdb.BucketUsers).Get(id)
		if data == nil {
			return domain.ErrUserNotFound
		}
		var rec userRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return fmt.Errorf("decode user %s: %w", id, err)
		}
		u := domain.User(rec)
		user = &u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserStore) List(ctx context.Context, role string) ([]*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	users := make([]*domain.User, 0)
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(boltdb.BucketUsers).ForEach(func(_, v []byte) error {
			var rec userRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			if role == "" || rec.Role == role {
				u := domain.User(rec)
				users = append(users, &u)
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("scan users: %w", err)
	}
	memstore.SortByCreation(users)
	return users, nil
}
