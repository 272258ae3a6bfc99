package xsync

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/garrettladley/medibook/internal/cache"
	"github.com/garrettladley/medibook/internal/client/sse"
	"github.com/garrettladley/medibook/internal/notification"
	"github.com/garrettladley/medibook/internal/xslog"
)

// Poller fetches the authoritative snapshot.
type Poller interface {
	Poll(ctx context.Context) (notification.Snapshot, error)
}

// Mutator tells the server about local changes. Calls are fire-and-forget
// from the synchronizer's point of view.
type Mutator interface {
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context) error
	Delete(ctx context.Context, id string) error
	ClearAll(ctx context.Context) error
}

// LiveChannel opens one push connection per Stream call and returns when it
// ends.
type LiveChannel interface {
	Stream(ctx context.Context, handler sse.Handler) error
}

type Deps struct {
	Cache   cache.Store
	Poller  Poller
	Mutator Mutator
	Live    LiveChannel
	Logger  *slog.Logger
}

type Options struct {
	PollInterval    time.Duration
	ReconnectDelay  time.Duration
	PollTimeout     time.Duration
	MutationTimeout time.Duration
	CacheTimeout    time.Duration
	// CloseTimeout bounds how long Close waits for pending server
	// notifications before cancelling them.
	CloseTimeout time.Duration
	Now          func() time.Time
}

const (
	DefaultPollInterval    = 30 * time.Second
	DefaultReconnectDelay  = 15 * time.Second
	DefaultPollTimeout     = 30 * time.Second
	DefaultMutationTimeout = 10 * time.Second
	DefaultCacheTimeout    = 5 * time.Second
	DefaultCloseTimeout    = 2 * time.Second
)

func DefaultOptions() Options {
	return Options{
		PollInterval:    DefaultPollInterval,
		ReconnectDelay:  DefaultReconnectDelay,
		PollTimeout:     DefaultPollTimeout,
		MutationTimeout: DefaultMutationTimeout,
		CacheTimeout:    DefaultCacheTimeout,
		CloseTimeout:    DefaultCloseTimeout,
		Now:             time.Now,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.PollInterval <= 0 {
		o.PollInterval = d.PollInterval
	}
	if o.ReconnectDelay <= 0 {
		o.ReconnectDelay = d.ReconnectDelay
	}
	if o.PollTimeout <= 0 {
		o.PollTimeout = d.PollTimeout
	}
	if o.MutationTimeout <= 0 {
		o.MutationTimeout = d.MutationTimeout
	}
	if o.CacheTimeout <= 0 {
		o.CacheTimeout = d.CacheTimeout
	}
	if o.CloseTimeout <= 0 {
		o.CloseTimeout = d.CloseTimeout
	}
	if o.Now == nil {
		o.Now = d.Now
	}
	return o
}

// State is a view handed to subscribers. Each subscriber receives its own
// copy of Notifications.
type State struct {
	Notifications []notification.Notification
	UnreadCount   int
	Syncing       bool
	Connected     bool
	Live          LiveState
}

func (st State) clone() State {
	st.Notifications = slices.Clone(st.Notifications)
	return st
}

// Synchronizer owns the notification inbox for the signed-in user. It merges
// the cached snapshot, server polls and live push events into one
// deduplicated, ordered collection.
//
// Every mutation of the collection happens under mu, so merges apply in the
// order their sources complete.
type Synchronizer struct {
	cache   cache.Store
	poller  Poller
	mutator Mutator
	live    LiveChannel
	logger  *slog.Logger
	opts    Options

	baseCtx context.Context
	cancel  context.CancelFunc

	flight   singleflight.Group
	notifies sync.WaitGroup

	states *hub[State]
	errs   *hub[error]

	mu          sync.Mutex
	coll        *notification.Collection
	syncing     bool
	connected   bool
	liveState   LiveState
	liveHandle  *Handle
	pollWaiters map[*pollWaiter]struct{}
	handles     map[*Handle]struct{}
	closed      bool

	// sleep waits out the reconnect delay; it reports false if ctx ended
	// first.
	sleep func(ctx context.Context, d time.Duration) bool
}

func New(deps Deps, opts Options) *Synchronizer {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Synchronizer{
		cache:   deps.Cache,
		poller:  deps.Poller,
		mutator: deps.Mutator,
		live:    deps.Live,
		logger:  logger,
		opts:    opts.withDefaults(),
		baseCtx: ctx,
		cancel:  cancel,
		states:  newHub(State.clone),
		errs:    newHub[error](nil),
		coll:    notification.NewCollection(nil),

		pollWaiters: make(map[*pollWaiter]struct{}),
		handles:     make(map[*Handle]struct{}),
		sleep:       sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// Start restores the cache, begins polling and opens the live channel. The
// returned func stops both sources.
func (s *Synchronizer) Start(ctx context.Context) func() {
	s.RestoreFromCache(ctx)
	polling := s.SchedulePolling(s.opts.PollInterval)
	live := s.ConnectLiveChannel()
	return func() {
		polling.Release()
		live.Release()
	}
}

// RestoreFromCache seeds the collection from the cache. It only takes effect
// before anything else has touched the collection, and it never fails: a
// missing or unreadable cache leaves the inbox empty.
func (s *Synchronizer) RestoreFromCache(ctx context.Context) {
	if s.cache == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.CacheTimeout)
	defer cancel()

	items, err := s.cache.Load(ctx)
	switch {
	case errors.Is(err, cache.ErrNotFound):
		s.logger.DebugContext(ctx, "no cached notifications")
		return
	case err != nil:
		s.logger.WarnContext(ctx, "failed to load notification cache", xslog.Error(err))
		s.report(&SyncError{Kind: ErrCacheUnavailable, Op: "restore", Err: err})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.coll.Seq() != 0 || s.coll.Len() != 0 {
		s.logger.DebugContext(ctx, "collection already populated, ignoring cache")
		return
	}
	s.coll = notification.NewCollection(items)
	s.logger.InfoContext(ctx, "restored notifications from cache",
		xslog.Count(s.coll.Len()),
		xslog.Unread(s.coll.UnreadCount()),
	)
	s.publishLocked()
}

// State returns the current view.
func (s *Synchronizer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

// Subscribe yields the current state and then every later transition, in
// order. Call the returned func to stop; the channel is closed afterwards.
func (s *Synchronizer) Subscribe() (<-chan State, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states.subscribe(s.stateLocked())
}

// Errors yields every *SyncError reported after the call.
func (s *Synchronizer) Errors() (<-chan error, func()) {
	return s.errs.subscribe()
}

func (s *Synchronizer) MarkRead(id string) {
	s.mutate("mark_read", id, func(c *notification.Collection) bool {
		return c.MarkRead(id)
	}, func(ctx context.Context) error {
		return s.mutator.MarkRead(ctx, id)
	})
}

func (s *Synchronizer) MarkAllRead() {
	s.mutate("mark_all_read", "", func(c *notification.Collection) bool {
		c.MarkAllRead()
		return true
	}, func(ctx context.Context) error {
		return s.mutator.MarkAllRead(ctx)
	})
}

// Delete removes id locally and tombstones it until the next poll.
func (s *Synchronizer) Delete(id string) {
	s.mutate("delete", id, func(c *notification.Collection) bool {
		return c.Remove(id)
	}, func(ctx context.Context) error {
		return s.mutator.Delete(ctx, id)
	})
}

func (s *Synchronizer) ClearAll() {
	s.mutate("clear_all", "", func(c *notification.Collection) bool {
		c.Clear()
		return true
	}, func(ctx context.Context) error {
		return s.mutator.ClearAll(ctx)
	})
}

// mutate applies a user action locally, persists and publishes, then tells
// the server in the background. A failed server call never rolls back.
func (s *Synchronizer) mutate(op, id string, apply func(*notification.Collection) bool, remote func(context.Context) error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	changed := apply(s.coll)
	if changed {
		s.persistLocked()
		s.publishLocked()
	}
	notify := changed && s.mutator != nil
	if notify {
		// registered under mu so Close never waits on a counter that can
		// still grow
		s.notifies.Add(1)
	}
	s.mu.Unlock()

	if !notify {
		return
	}

	go func() {
		defer s.notifies.Done()

		ctx, cancel := context.WithTimeout(s.baseCtx, s.opts.MutationTimeout)
		defer cancel()

		if err := remote(ctx); err != nil {
			s.logger.WarnContext(ctx, "failed to notify server",
				xslog.Op(op),
				xslog.NotificationID(id),
				xslog.Error(err),
			)
			s.report(&SyncError{Kind: ErrMutationNotifyFailed, Op: op, ID: id, Err: err})
		}
	}()
}

// Close releases every handle and closes all subscriptions. Pending server
// notifications get up to CloseTimeout to finish before they are cancelled.
// Later calls do nothing.
func (s *Synchronizer) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	handles := make([]*Handle, 0, len(s.handles))
	for h := range s.handles {
		handles = append(handles, h)
	}
	s.mu.Unlock()

	for _, h := range handles {
		h.Release()
	}
	s.waitNotifies()
	s.cancel()
	for _, h := range handles {
		<-h.Done()
	}

	s.states.close()
	s.errs.close()
}

func (s *Synchronizer) waitNotifies() {
	done := make(chan struct{})
	go func() {
		s.notifies.Wait()
		close(done)
	}()

	timer := time.NewTimer(s.opts.CloseTimeout)
	defer timer.Stop()
	select {
	case <-done:
	case <-timer.C:
		s.logger.WarnContext(s.baseCtx, "cancelling pending server notifications",
			xslog.Duration(s.opts.CloseTimeout))
		s.cancel()
		<-done
	}
}

func (s *Synchronizer) track(h *Handle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.handles[h] = struct{}{}
	return true
}

func (s *Synchronizer) untrack(h *Handle) {
	s.mu.Lock()
	delete(s.handles, h)
	s.mu.Unlock()
}

func (s *Synchronizer) stateLocked() State {
	return State{
		Notifications: s.coll.Items(),
		UnreadCount:   s.coll.UnreadCount(),
		Syncing:       s.syncing,
		Connected:     s.connected,
		Live:          s.liveState,
	}
}

func (s *Synchronizer) publishLocked() {
	s.states.publish(s.stateLocked())
}

// persistLocked writes the collection once. Failures are reported, never
// returned.
func (s *Synchronizer) persistLocked() {
	if s.cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(s.baseCtx, s.opts.CacheTimeout)
	defer cancel()

	if err := s.cache.Save(ctx, s.coll.Items()); err != nil {
		s.logger.WarnContext(ctx, "failed to save notification cache", xslog.Error(err))
		s.report(&SyncError{Kind: ErrCacheUnavailable, Op: "save", Err: err})
	}
}

func (s *Synchronizer) report(err *SyncError) {
	s.errs.publish(err)
}
