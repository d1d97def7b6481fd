package event

import (
	"sync"

	"github.com/icon-project/govote/common/log"
	"github.com/icon-project/govote/module"
)

const DefaultBufferSize = 64

// Bus delivers events to subscribers. Notify never blocks. If the buffer
// of a subscriber is full, the event is dropped for the subscriber.
type Bus struct {
	lock   sync.RWMutex
	subs   map[*Subscription]struct{}
	closed bool
	log    log.Logger
}

type Subscription struct {
	bus     *Bus
	types   map[module.EventType]bool
	ch      chan *module.Event
	dropped uint64
	once    sync.Once
}

// C returns the channel of events. It's closed when the subscription or
// the bus is closed.
func (s *Subscription) C() <-chan *module.Event {
	return s.ch
}

func (s *Subscription) accept(t module.EventType) bool {
	return len(s.types) == 0 || s.types[t]
}

// Dropped returns the number of events dropped.
func (s *Subscription) Dropped() uint64 {
	s.bus.lock.RLock()
	defer s.bus.lock.RUnlock()
	return s.dropped
}

func (s *Subscription) Close() {
	s.bus.unsubscribe(s)
}

func (s *Subscription) close() {
	s.once.Do(func() {
		close(s.ch)
	})
}

func NewBus(logger log.Logger) *Bus {
	if logger == nil {
		logger = log.GlobalLogger()
	}
	return &Bus{
		subs: make(map[*Subscription]struct{}),
		log:  log.ModuleLogger(logger, "event"),
	}
}

// Subscribe returns a subscription for the types of events. It receives
// all events if no type is given.
func (b *Bus) Subscribe(size int, types ...module.EventType) *Subscription {
	if size <= 0 {
		size = DefaultBufferSize
	}
	s := &Subscription{
		bus: b,
		ch:  make(chan *module.Event, size),
	}
	if len(types) > 0 {
		s.types = make(map[module.EventType]bool, len(types))
		for _, t := range types {
			s.types[t] = true
		}
	}

	b.lock.Lock()
	defer b.lock.Unlock()
	if b.closed {
		s.close()
		return s
	}
	b.subs[s] = struct{}{}
	return s
}

func (b *Bus) unsubscribe(s *Subscription) {
	b.lock.Lock()
	defer b.lock.Unlock()
	if _, ok := b.subs[s]; ok {
		delete(b.subs, s)
		s.close()
	}
}

func (b *Bus) Notify(e *module.Event) {
	if e == nil {
		return
	}
	b.lock.Lock()
	defer b.lock.Unlock()
	for s := range b.subs {
		if !s.accept(e.Type) {
			continue
		}
		select {
		case s.ch <- e:
		default:
			s.dropped += 1
			b.log.Debugf("Event dropped type=%s", e.Type)
		}
	}
}

// Close closes every subscription. Events notified after it are ignored.
func (b *Bus) Close() {
	b.lock.Lock()
	defer b.lock.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for s := range b.subs {
		delete(b.subs, s)
		s.close()
	}
}
