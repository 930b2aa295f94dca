package autosave

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/mindmap/internal/graph"
	"github.com/dmitrijs2005/mindmap/internal/logging"
	"github.com/dmitrijs2005/mindmap/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- fakes ---

type fakeTimer struct {
	d       time.Duration
	f       func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

type fakeTimers struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (ft *fakeTimers) afterFunc(d time.Duration, f func()) stopper {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	t := &fakeTimer{d: d, f: f}
	ft.timers = append(ft.timers, t)
	return t
}

func (ft *fakeTimers) last() *fakeTimer {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	return ft.timers[len(ft.timers)-1]
}

func (ft *fakeTimers) count() int {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	return len(ft.timers)
}

type countingSaver struct {
	mu     sync.Mutex
	saved  []*models.GraphDocument
	err    error
	delay  time.Duration
	active atomic.Int32
	peak   atomic.Int32
}

func (s *countingSaver) Save(_ context.Context, doc *models.GraphDocument) error {
	n := s.active.Add(1)
	for {
		p := s.peak.Load()
		if n <= p || s.peak.CompareAndSwap(p, n) {
			break
		}
	}
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	s.active.Add(-1)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, doc)
	return s.err
}

func (s *countingSaver) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saved)
}

func newFixture(t *testing.T) (*Coordinator, *graph.Editor, *countingSaver, *fakeTimers) {
	t.Helper()
	editor := graph.NewEditor()
	editor.Load(&models.GraphDocument{ID: "doc", OwnerID: "owner", Title: "T"})

	saver := &countingSaver{}
	timers := &fakeTimers{}
	c := New(editor, saver, 2*time.Second, time.Second, logging.Nop())
	c.afterFunc = timers.afterFunc

	t.Cleanup(editor.Subscribe(c.Observe))
	return c, editor, saver, timers
}

// --- tests ---

func TestCoordinator_CoalescesBurstIntoOneSave(t *testing.T) {
	c, editor, saver, timers := newFixture(t)

	for i := 0; i < 5; i++ {
		_, err := editor.AddNode("")
		require.NoError(t, err)
	}
	require.NoError(t, editor.SetTitle("Renamed"))

	require.Equal(t, 6, timers.count())
	for i, tm := range timers.timers {
		assert.Equal(t, 2*time.Second, tm.d)
		assert.Equal(t, i < 5, tm.stopped, "timer %d", i)
	}
	assert.True(t, c.Pending())
	assert.Zero(t, saver.count())

	timers.last().f()

	require.Equal(t, 1, saver.count())
	assert.Len(t, saver.saved[0].Nodes, 5)
	assert.Equal(t, "Renamed", saver.saved[0].Title)
	assert.False(t, c.Pending())
}

func TestCoordinator_StaleTimerCallbackIsIgnored(t *testing.T) {
	_, editor, saver, timers := newFixture(t)

	_, _ = editor.AddNode("a")
	stale := timers.last()
	_, _ = editor.AddNode("b")

	// callback of a replaced timer that raced past Stop
	stale.f()
	assert.Zero(t, saver.count())

	timers.last().f()
	assert.Equal(t, 1, saver.count())
}

func TestCoordinator_SelectionDoesNotSchedule(t *testing.T) {
	c, editor, _, timers := newFixture(t)

	n, _ := editor.AddNode("a")
	timers.last().f()
	before := timers.count()

	require.NoError(t, editor.Select(n.ID))
	editor.Highlight(n.ID)

	assert.Equal(t, before, timers.count())
	assert.False(t, c.Pending())
}

func TestCoordinator_SuspendDropsEventsDuringLoad(t *testing.T) {
	c, editor, saver, timers := newFixture(t)

	_, _ = editor.AddNode("pending before load")
	pending := timers.last()

	resume := c.Suspend()
	assert.True(t, pending.stopped)
	assert.False(t, c.Pending())

	editor.Load(&models.GraphDocument{ID: "doc2", OwnerID: "owner", Title: "Loaded"})
	_, _ = editor.AddNode("while loading")
	assert.Equal(t, 1, timers.count(), "no timer while suspended")

	require.NoError(t, c.Flush(context.Background()))
	assert.Zero(t, saver.count(), "flush is a no-op while suspended")

	pending.f()
	assert.Zero(t, saver.count())

	resume()
	resume()

	_, _ = editor.AddNode("after load")
	require.Equal(t, 2, timers.count())
	timers.last().f()
	require.Equal(t, 1, saver.count())
	assert.Equal(t, "doc2", saver.saved[0].ID)
}

func TestCoordinator_NestedSuspend(t *testing.T) {
	c, editor, _, timers := newFixture(t)

	r1 := c.Suspend()
	r2 := c.Suspend()
	r1()
	_, _ = editor.AddNode("x")
	assert.Zero(t, timers.count())

	r2()
	_, _ = editor.AddNode("y")
	assert.Equal(t, 1, timers.count())
}

func TestCoordinator_FlushSavesNowAndCancelsTimer(t *testing.T) {
	c, editor, saver, timers := newFixture(t)

	_, _ = editor.AddNode("a")
	tm := timers.last()

	require.NoError(t, c.Flush(context.Background()))
	assert.True(t, tm.stopped)
	assert.Equal(t, 1, saver.count())

	tm.f()
	assert.Equal(t, 1, saver.count())
}

func TestCoordinator_FlushReturnsSaveError(t *testing.T) {
	c, _, saver, _ := newFixture(t)
	saver.err = errors.New("db down")

	require.ErrorIs(t, c.Flush(context.Background()), saver.err)
}

func TestCoordinator_TimerSaveErrorIsSwallowed(t *testing.T) {
	_, editor, saver, timers := newFixture(t)
	saver.err = errors.New("db down")

	_, _ = editor.AddNode("a")
	assert.NotPanics(t, func() { timers.last().f() })
	assert.Equal(t, 1, saver.count())
}

func TestCoordinator_NoDocumentNoSave(t *testing.T) {
	saver := &countingSaver{}
	c := New(graph.NewEditor(), saver, time.Second, time.Second, logging.Nop())

	require.NoError(t, c.Flush(context.Background()))
	assert.Zero(t, saver.count())
}

func TestCoordinator_CloseFlushesOnceAndStopsListening(t *testing.T) {
	c, editor, saver, timers := newFixture(t)

	_, _ = editor.AddNode("a")
	require.NoError(t, c.Close(context.Background()))
	require.NoError(t, c.Close(context.Background()))
	assert.Equal(t, 1, saver.count())

	_, _ = editor.AddNode("b")
	assert.Equal(t, 1, timers.count())
}

func TestCoordinator_SavesNeverOverlap(t *testing.T) {
	editor := graph.NewEditor()
	editor.Load(&models.GraphDocument{ID: "doc", OwnerID: "owner"})
	saver := &countingSaver{delay: 5 * time.Millisecond}
	c := New(editor, saver, time.Millisecond, time.Second, logging.Nop())
	defer editor.Subscribe(c.Observe)()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = c.Flush(context.Background())
		}()
		go func() {
			defer wg.Done()
			_, _ = editor.AddNode("")
		}()
	}
	wg.Wait()

	require.Eventually(t, func() bool { return !c.Pending() }, time.Second, time.Millisecond)
	require.NoError(t, c.Flush(context.Background()))

	assert.Equal(t, int32(1), saver.peak.Load())
	assert.GreaterOrEqual(t, saver.count(), 9)
}

func TestCoordinator_RealTimerDebounce(t *testing.T) {
	editor := graph.NewEditor()
	editor.Load(&models.GraphDocument{ID: "doc", OwnerID: "owner"})
	saver := &countingSaver{}
	c := New(editor, saver, 100*time.Millisecond, time.Second, logging.Nop())
	defer editor.Subscribe(c.Observe)()

	for i := 0; i < 3; i++ {
		_, _ = editor.AddNode("")
		time.Sleep(5 * time.Millisecond)
	}

	require.Eventually(t, func() bool { return saver.count() == 1 }, 2*time.Second, 5*time.Millisecond)
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, 1, saver.count())
	assert.Len(t, saver.saved[0].Nodes, 3)
}
