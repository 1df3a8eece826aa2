package session

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"forest-tails/server/internal/protocol"
)

// fakeChannel is a controllable Channel for registry and notifier tests.
type fakeChannel struct {
	id      string
	sendErr error

	mu        sync.Mutex
	state     State
	pushes    []protocol.Push
	done      chan struct{}
	closed    bool
	closeErr  error
	closeCnt  int
	abortCnt  int
	sendPanic bool
}

func newFakeChannel(id string) *fakeChannel {
	return &fakeChannel{id: id, state: StateOpen, done: make(chan struct{})}
}

func (c *fakeChannel) ID() string { return c.id }

func (c *fakeChannel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *fakeChannel) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func (c *fakeChannel) Send(ctx context.Context, p protocol.Push) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendPanic {
		panic("send exploded")
	}
	if c.sendErr != nil {
		return c.sendErr
	}
	if c.state != StateOpen {
		return ErrChannelClosed
	}
	c.pushes = append(c.pushes, p)
	return nil
}

func (c *fakeChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeCnt++
	if c.closeErr != nil {
		return c.closeErr
	}
	c.shutdownLocked()
	return nil
}

func (c *fakeChannel) Abort() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.abortCnt++
	c.shutdownLocked()
}

func (c *fakeChannel) Done() <-chan struct{} { return c.done }

func (c *fakeChannel) shutdownLocked() {
	if c.closed {
		return
	}
	c.closed = true
	c.state = StateClosed
	close(c.done)
}

func (c *fakeChannel) sent() []protocol.Push {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]protocol.Push, len(c.pushes))
	copy(out, c.pushes)
	return out
}

func waitFor(t *testing.T, cond func() bool, what string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestAddSessionRegistersChannel(t *testing.T) {
	r := NewRegistry(zaptest.NewLogger(t))
	ch := newFakeChannel("c1")

	r.AddSession("alice", ch)

	if got := r.Channel("alice"); got != ch {
		t.Fatalf("Channel returned %v, want the registered channel", got)
	}
	if !r.IsOnline("alice") {
		t.Error("IsOnline should be true after AddSession")
	}
}

func TestAddSessionIgnoresBlankUsernameAndNilChannel(t *testing.T) {
	r := NewRegistry(zaptest.NewLogger(t))

	r.AddSession("  ", newFakeChannel("c1"))
	r.AddSession("bob", nil)

	if users := r.OnlineUsers(); len(users) != 0 {
		t.Errorf("expected no sessions, got %v", users)
	}
}

func TestDuplicateLoginEvictsOldChannel(t *testing.T) {
	r := NewRegistry(zaptest.NewLogger(t))
	old := newFakeChannel("c1")
	replacement := newFakeChannel("c2")

	r.AddSession("alice", old)
	r.AddSession("alice", replacement)

	if got := r.Channel("alice"); got != replacement {
		t.Fatalf("expected the replacement channel to be registered")
	}

	// The evicted connection learns why before the close.
	pushes := old.sent()
	if len(pushes) != 1 || pushes[0].Type != protocol.PushForceLogout {
		t.Errorf("evicted channel pushes = %+v, want one force logout", pushes)
	}

	// Eviction closes the old channel asynchronously.
	waitFor(t, func() bool {
		old.mu.Lock()
		defer old.mu.Unlock()
		return old.closeCnt > 0
	}, "old channel close")
}

func TestEvictedChannelDisconnectDoesNotRemoveReplacement(t *testing.T) {
	r := NewRegistry(zaptest.NewLogger(t))
	old := newFakeChannel("c1")
	replacement := newFakeChannel("c2")

	r.AddSession("alice", old)
	r.AddSession("alice", replacement)

	// The old channel's watcher fires once eviction closes it; the entry
	// must still point at the replacement afterwards.
	waitFor(t, func() bool {
		select {
		case <-old.Done():
			return true
		default:
			return false
		}
	}, "old channel termination")
	time.Sleep(20 * time.Millisecond)

	if got := r.Channel("alice"); got != replacement {
		t.Fatal("watcher of the evicted channel removed the replacement session")
	}
}

func TestDisconnectRemovesSession(t *testing.T) {
	r := NewRegistry(zaptest.NewLogger(t))
	ch := newFakeChannel("c1")
	r.AddSession("alice", ch)

	ch.Abort()

	waitFor(t, func() bool { return !r.IsOnline("alice") }, "session removal")
}

func TestRemoveSessionIsIdempotent(t *testing.T) {
	r := NewRegistry(zaptest.NewLogger(t))
	r.AddSession("alice", newFakeChannel("c1"))

	r.RemoveSession("alice")
	r.RemoveSession("alice")
	r.RemoveSession("never-existed")

	if r.IsOnline("alice") {
		t.Error("session should be gone after RemoveSession")
	}
}

func TestChannelPrunesClosedEntries(t *testing.T) {
	r := NewRegistry(zaptest.NewLogger(t))
	ch := newFakeChannel("c1")
	r.AddSession("alice", ch)

	// Flip the state without firing Done so only the lookup can prune it.
	ch.setState(StateClosing)

	if got := r.Channel("alice"); got != nil {
		t.Fatalf("expected nil for a closing channel, got %v", got)
	}
	if r.IsOnline("alice") {
		t.Error("entry should have been pruned")
	}
}

func TestCloseFailureFallsBackToAbort(t *testing.T) {
	r := NewRegistry(zaptest.NewLogger(t))
	old := newFakeChannel("c1")
	old.closeErr = fmt.Errorf("peer gone")
	r.AddSession("alice", old)

	r.AddSession("alice", newFakeChannel("c2"))

	waitFor(t, func() bool {
		old.mu.Lock()
		defer old.mu.Unlock()
		return old.abortCnt > 0
	}, "abort fallback")
}

func TestConcurrentAddAndRemove(t *testing.T) {
	r := NewRegistry(zaptest.NewLogger(t))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			username := fmt.Sprintf("user-%d", i%5)
			r.AddSession(username, newFakeChannel(fmt.Sprintf("c-%d", i)))
			r.IsOnline(username)
			if i%2 == 0 {
				r.RemoveSession(username)
			}
		}(i)
	}
	wg.Wait()

	// No assertion beyond termination: the test exists for the race
	// detector.
	r.OnlineUsers()
}
