package usecase

import "sync"

// userLocks: мьютекс на каждого пользователя; запись удаляется, когда ее никто не держит
type userLocks struct {
	mu    sync.Mutex
	locks map[string]*userLock
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[string]*userLock)}
}

// Lock блокирует userID и возвращает функцию разблокировки
func (k *userLocks) Lock(userID string) func() {
	k.mu.Lock()
	l, ok := k.locks[userID]
	if !ok {
		l = &userLock{}
		k.locks[userID] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, userID)
		}
		k.mu.Unlock()
	}
}

func (k *userLocks) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
