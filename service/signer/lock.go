package signer

import (
	"sync"

	"github.com/icon-project/govote/common"
)

type identityLock struct {
	sync.Mutex
	refs int
}

type lockMap struct {
	lock  sync.Mutex
	locks map[common.Address]*identityLock
}

func (m *lockMap) acquire(id common.Address) func() {
	m.lock.Lock()
	if m.locks == nil {
		m.locks = make(map[common.Address]*identityLock)
	}
	l, ok := m.locks[id]
	if !ok {
		l = new(identityLock)
		m.locks[id] = l
	}
	l.refs += 1
	m.lock.Unlock()

	l.Lock()
	return func() {
		l.Unlock()

		m.lock.Lock()
		defer m.lock.Unlock()
		l.refs -= 1
		if l.refs == 0 {
			delete(m.locks, id)
		}
	}
}

func (m *lockMap) size() int {
	m.lock.Lock()
	defer m.lock.Unlock()
	return len(m.locks)
}
