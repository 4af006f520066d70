package service

import "sync"

// memberLocks serializes work on the same member id between the join path and the sweep.
// Different ids never wait on each other.
type memberLocks struct {
	mu    sync.Mutex
	locks map[int64]*memberLock
}

type memberLock struct {
	mu   sync.Mutex
	refs int
}

func newMemberLocks() *memberLocks {
	return &memberLocks{locks: make(map[int64]*memberLock)}
}

// Lock blocks until userID is free and returns the unlock function.
func (m *memberLocks) Lock(userID int64) func() {
	m.mu.Lock()
	l, ok := m.locks[userID]
	if !ok {
		l = &memberLock{}
		m.locks[userID] = l
	}
	l.refs++
	m.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		m.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(m.locks, userID)
		}
		m.mu.Unlock()
	}
}

func (m *memberLocks) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.locks)
}
