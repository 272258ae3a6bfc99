package xsync

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/garrettladley/medibook/internal/cache"
	"github.com/garrettladley/medibook/internal/notification"
)

func TestLivePushOrdersByCreatedAt(t *testing.T) {
	t.Parallel()

	store := cache.NewMemoryStore()
	_ = store.Save(context.Background(), []notification.Notification{
		{ID: "a", CreatedAt: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)},
	})
	live := &scriptedLive{payloads: []string{
		`{"id":"b","kind":"info","title":"Lab results ready","created_at":"2026-01-01T10:00:00Z"}`,
	}}
	s := newTestSynchronizer(t, Deps{Cache: store, Live: live})
	s.RestoreFromCache(context.Background())

	h := s.ConnectLiveChannel()
	defer h.Release()

	waitFor(t, "push applied", func() bool { return len(s.State().Notifications) == 2 })

	state := s.State()
	if diff := cmp.Diff([]string{"b", "a"}, stateIDs(state)); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	if state.UnreadCount != 2 {
		t.Errorf("UnreadCount = %d, want 2", state.UnreadCount)
	}
	if !state.Connected || state.Live != LiveConnected {
		t.Errorf("Connected = %v Live = %v, want connected", state.Connected, state.Live)
	}

	cached, err := store.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(cached) != 2 {
		t.Errorf("cache holds %d items, want 2", len(cached))
	}
}

func TestLivePushRedeliveryIsIdempotent(t *testing.T) {
	t.Parallel()

	payload := `{"id":"a","created_at":"2026-01-01T10:00:00Z"}`
	live := &scriptedLive{payloads: []string{payload, payload, `not json`, `{"title":"no id"}`}}
	s := newTestSynchronizer(t, Deps{Live: live})

	h := s.ConnectLiveChannel()
	defer h.Release()

	waitFor(t, "connected", func() bool { return s.State().Connected })
	// payloads are delivered before Stream blocks; wait until the handler has run
	waitFor(t, "push applied", func() bool { return len(s.State().Notifications) == 1 })

	if got := s.State(); got.UnreadCount != 1 || len(got.Notifications) != 1 {
		t.Errorf("len = %d unread = %d, want 1/1", len(got.Notifications), got.UnreadCount)
	}
}

func TestLivePushIgnoresDeletedNotification(t *testing.T) {
	t.Parallel()

	live := &scriptedLive{}
	s := newTestSynchronizer(t, Deps{Live: live})
	h := s.ConnectLiveChannel()
	defer h.Release()
	waitFor(t, "connected", func() bool { return s.State().Connected })

	handler := live.lastHandler()
	handler.OnNotification([]byte(`{"id":"a"}`))
	s.Delete("a")
	handler.OnNotification([]byte(`{"id":"a"}`))

	if got := s.State(); len(got.Notifications) != 0 {
		t.Errorf("deleted notification came back: %v", stateIDs(got))
	}
}

func TestLiveReleaseDropsLateMessages(t *testing.T) {
	t.Parallel()

	live := &scriptedLive{}
	s := newTestSynchronizer(t, Deps{Live: live})

	h := s.ConnectLiveChannel()
	waitFor(t, "connected", func() bool { return s.State().Connected })
	handler := live.lastHandler()

	h.Release()
	<-h.Done()

	handler.OnNotification([]byte(`{"id":"late"}`))

	state := s.State()
	if len(state.Notifications) != 0 {
		t.Errorf("released channel applied %v", stateIDs(state))
	}
	if state.Connected || state.Live != LiveDisconnected {
		t.Errorf("Connected = %v Live = %v, want disconnected", state.Connected, state.Live)
	}
}

func TestLiveReconnectKeepsOneTimer(t *testing.T) {
	t.Parallel()

	live := &scriptedLive{fail: errors.New("connection reset by peer")}
	s := newTestSynchronizer(t, Deps{Live: live})

	var waiting, peak atomic.Int32
	s.sleep = func(ctx context.Context, d time.Duration) bool {
		n := waiting.Add(1)
		defer waiting.Add(-1)
		for {
			old := peak.Load()
			if n <= old || peak.CompareAndSwap(old, n) {
				break
			}
		}
		return sleepContext(ctx, d)
	}

	errs, stop := s.Errors()
	defer stop()

	h := s.ConnectLiveChannel()
	waitFor(t, "five attempts", func() bool { return live.Streams() >= 5 })

	select {
	case err := <-errs:
		if !errors.Is(err, ErrChannelDisconnected) {
			t.Errorf("error = %v, want ErrChannelDisconnected", err)
		}
	case <-time.After(time.Second):
		t.Fatal("disconnect not reported")
	}

	h.Release()
	<-h.Done()

	if got := peak.Load(); got != 1 {
		t.Errorf("peak pending reconnects = %d, want 1", got)
	}
	if got := waiting.Load(); got != 0 {
		t.Errorf("pending reconnects after release = %d, want 0", got)
	}
	if got := s.State(); got.Connected || got.Live != LiveDisconnected {
		t.Errorf("Connected = %v Live = %v, want disconnected", got.Connected, got.Live)
	}
}

func TestLiveDisconnectIsVisible(t *testing.T) {
	t.Parallel()

	live := &scriptedLive{fail: errors.New("EOF")}
	deps := Deps{Live: live, Cache: cache.NewMemoryStore(), Poller: &fakePoller{}, Mutator: &fakeMutator{}, Logger: discardLogger()}
	s := New(deps, Options{ReconnectDelay: time.Hour})
	t.Cleanup(s.Close)

	states, stop := s.Subscribe()
	defer stop()

	h := s.ConnectLiveChannel()
	defer h.Release()

	timeout := time.After(2 * time.Second)
	for {
		select {
		case st := <-states:
			if st.Live == LiveReconnectPending {
				if st.Connected {
					t.Error("Connected set while reconnect pending")
				}
				if live.Streams() != 1 {
					t.Errorf("streams = %d, want 1 before the delay elapses", live.Streams())
				}
				return
			}
		case <-timeout:
			t.Fatal("never reached reconnect pending")
		}
	}
}

func TestConnectLiveChannelReplacesPrevious(t *testing.T) {
	t.Parallel()

	live := &scriptedLive{}
	s := newTestSynchronizer(t, Deps{Live: live})

	first := s.ConnectLiveChannel()
	waitFor(t, "first connected", func() bool { return live.Streams() == 1 && s.State().Connected })
	firstHandler := live.lastHandler()

	second := s.ConnectLiveChannel()
	defer second.Release()

	select {
	case <-first.Done():
	case <-time.After(time.Second):
		t.Fatal("previous channel not released")
	}
	waitFor(t, "second connected", func() bool { return live.Streams() == 2 && s.State().Connected })

	firstHandler.OnNotification([]byte(`{"id":"stale"}`))
	if got := s.State(); len(got.Notifications) != 0 {
		t.Errorf("superseded channel applied %v", stateIDs(got))
	}
}

func TestConnectLiveChannelWithoutChannel(t *testing.T) {
	t.Parallel()

	s := newTestSynchronizer(t, Deps{})
	h := s.ConnectLiveChannel()
	select {
	case <-h.Done():
	default:
		t.Fatal("handle without a live channel should be done immediately")
	}
	h.Release()
}

func TestLiveStateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		state LiveState
		want  string
	}{
		{LiveDisconnected, "disconnected"},
		{LiveConnecting, "connecting"},
		{LiveConnected, "connected"},
		{LiveReconnectPending, "reconnect_pending"},
		{LiveState(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("LiveState(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}
