package storage

import (
	"context"
	"slices"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/garrettladley/medibook/internal/notification"
)

var _ NotificationStore = (*MemoryNotificationStore)(nil)

// subscriberBuffer bounds how far a live subscriber may fall behind. Pushes to
// a full subscriber are dropped; its next poll picks them up.
const subscriberBuffer = 16

type MemoryNotificationStore struct {
	mu    sync.RWMutex
	inbox map[string]map[string]notification.Notification
	subs  map[string]map[*memorySubscriber]struct{}
}

type memorySubscriber struct {
	ch   chan notification.Notification
	once sync.Once
}

func NewMemoryNotificationStore() *MemoryNotificationStore {
	return &MemoryNotificationStore{
		inbox: make(map[string]map[string]notification.Notification),
		subs:  make(map[string]map[*memorySubscriber]struct{}),
	}
}

func (m *MemoryNotificationStore) List(_ context.Context, userID string) ([]notification.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	items := make([]notification.Notification, 0, len(m.inbox[userID]))
	for _, n := range m.inbox[userID] {
		items = append(items, n)
	}
	slices.SortFunc(items, notification.Compare)
	return items, nil
}

func (m *MemoryNotificationStore) Add(_ context.Context, userID string, n notification.Notification) (notification.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	inbox, ok := m.inbox[userID]
	if !ok {
		inbox = make(map[string]notification.Notification)
		m.inbox[userID] = inbox
	}
	if existing, ok := inbox[n.ID]; ok {
		return existing, nil
	}
	inbox[n.ID] = n

	for sub := range m.subs[userID] {
		select {
		case sub.ch <- n:
		default:
		}
	}
	return n, nil
}

func (m *MemoryNotificationStore) MarkRead(_ context.Context, userID string, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, ok := m.inbox[userID][id]
	if !ok {
		return ErrNotFound
	}
	n.Read = true
	m.inbox[userID][id] = n
	return nil
}

func (m *MemoryNotificationStore) MarkAllRead(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, n := range m.inbox[userID] {
		n.Read = true
		m.inbox[userID][id] = n
	}
	return nil
}

func (m *MemoryNotificationStore) Delete(_ context.Context, userID string, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.inbox[userID][id]; !ok {
		return ErrNotFound
	}
	delete(m.inbox[userID], id)
	return nil
}

func (m *MemoryNotificationStore) Clear(_ context.Context, userID string) error {
	m.mu.Lock()
	delete(m.inbox, userID)
	m.mu.Unlock()
	return nil
}

// Subscribe registers a live subscriber. The subscription also ends when ctx
// is cancelled.
func (m *MemoryNotificationStore) Subscribe(ctx context.Context, userID string) (<-chan notification.Notification, func(), error) {
	sub := &memorySubscriber{ch: make(chan notification.Notification, subscriberBuffer)}

	m.mu.Lock()
	if m.subs[userID] == nil {
		m.subs[userID] = make(map[*memorySubscriber]struct{})
	}
	m.subs[userID][sub] = struct{}{}
	m.mu.Unlock()

	unsubscribe := func() {
		sub.once.Do(func() {
			m.mu.Lock()
			delete(m.subs[userID], sub)
			if len(m.subs[userID]) == 0 {
				delete(m.subs, userID)
			}
			close(sub.ch)
			m.mu.Unlock()
		})
	}
	stop := context.AfterFunc(ctx, unsubscribe)

	return sub.ch, func() {
		stop()
		unsubscribe()
	}, nil
}

func (m *MemoryNotificationStore) Ping(_ context.Context) error {
	return nil
}

var _ RateLimiter = (*MemoryRateLimiter)(nil)

const limiterIdleTTL = 10 * time.Minute

type memoryLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// MemoryRateLimiter is a per-key token bucket.
type MemoryRateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*memoryLimiter
	rateLimit rate.Limit
	rateBurst int

	done chan struct{}
	once sync.Once
}

func NewMemoryRateLimiter(ratePerSec float64, burst int) *MemoryRateLimiter {
	m := &MemoryRateLimiter{
		limiters:  make(map[string]*memoryLimiter),
		rateLimit: rate.Limit(ratePerSec),
		rateBurst: burst,
		done:      make(chan struct{}),
	}

	go m.cleanupLoop()

	return m
}

func (m *MemoryRateLimiter) Allow(_ context.Context, key string) (RateLimitResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.limiters[key]
	if !ok {
		l = &memoryLimiter{limiter: rate.NewLimiter(m.rateLimit, m.rateBurst)}
		m.limiters[key] = l
	}
	l.lastSeen = time.Now()

	retryAfter := time.Second
	if m.rateLimit > 0 {
		retryAfter = time.Duration(float64(time.Second) / float64(m.rateLimit))
	}

	return RateLimitResult{
		Allowed:    l.limiter.Allow(),
		RetryAfter: retryAfter,
	}, nil
}

func (m *MemoryRateLimiter) Close() error {
	m.once.Do(func() { close(m.done) })
	return nil
}

func (m *MemoryRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.mu.Lock()
			now := time.Now()
			for key, l := range m.limiters {
				if now.Sub(l.lastSeen) > limiterIdleTTL {
					delete(m.limiters, key)
				}
			}
			m.mu.Unlock()
		case <-m.done:
			return
		}
	}
}
