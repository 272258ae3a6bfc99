package xsync

import "sync"

// hub fans values out to subscribers. Each subscriber has its own unbounded
// queue drained by a goroutine, so publish never blocks and every subscriber
// sees every value in publish order.
//
// When clone is set, every subscriber gets its own copy of a published value.
type hub[T any] struct {
	clone  func(T) T
	mu     sync.Mutex
	subs   map[*subscription[T]]struct{}
	closed bool
}

func newHub[T any](clone func(T) T) *hub[T] {
	return &hub[T]{clone: clone, subs: make(map[*subscription[T]]struct{})}
}

type subscription[T any] struct {
	mu     sync.Mutex
	queue  []T
	wake   chan struct{}
	done   chan struct{}
	out    chan T
	closer sync.Once
}

// subscribe registers a subscriber whose channel first yields initial.
// The returned func unsubscribes; it is safe to call more than once.
func (h *hub[T]) subscribe(initial ...T) (<-chan T, func()) {
	sub := &subscription[T]{
		queue: initial,
		wake:  make(chan struct{}, 1),
		done:  make(chan struct{}),
		out:   make(chan T),
	}
	if len(initial) > 0 {
		sub.wake <- struct{}{}
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(sub.out)
		return sub.out, func() {}
	}
	h.subs[sub] = struct{}{}
	h.mu.Unlock()

	go sub.pump()

	return sub.out, func() {
		h.mu.Lock()
		delete(h.subs, sub)
		h.mu.Unlock()
		sub.stop()
	}
}

func (h *hub[T]) publish(v T) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	for sub := range h.subs {
		if h.clone != nil {
			sub.push(h.clone(v))
			continue
		}
		sub.push(v)
	}
}

func (h *hub[T]) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for sub := range h.subs {
		sub.stop()
	}
	clear(h.subs)
}

func (s *subscription[T]) push(v T) {
	s.mu.Lock()
	s.queue = append(s.queue, v)
	s.mu.Unlock()
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *subscription[T]) stop() {
	s.closer.Do(func() { close(s.done) })
}

func (s *subscription[T]) pump() {
	defer close(s.out)
	for {
		select {
		case <-s.done:
			return
		case <-s.wake:
		}

		for {
			s.mu.Lock()
			if len(s.queue) == 0 {
				s.mu.Unlock()
				break
			}
			v := s.queue[0]
			var zero T
			s.queue[0] = zero
			s.queue = s.queue[1:]
			s.mu.Unlock()

			select {
			case s.out <- v:
			case <-s.done:
				return
			}
		}
	}
}
