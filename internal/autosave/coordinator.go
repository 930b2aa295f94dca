// Package autosave debounces document edits into single saves.
//
// The Coordinator subscribes to graph.Editor changes. Each change restarts
// one quiet-period timer; when it elapses with no further edits the current
// snapshot is saved once. Saves never overlap: a second save waits for the
// first to finish, and a started save is never cancelled by new edits.
package autosave

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/mindmap/internal/graph"
	"github.com/dmitrijs2005/mindmap/internal/logging"
	"github.com/dmitrijs2005/mindmap/internal/models"
)

// Source yields the document to persist.
type Source interface {
	Snapshot() *models.GraphDocument
}

type Saver interface {
	Save(ctx context.Context, doc *models.GraphDocument) error
}

type stopper interface {
	Stop() bool
}

type Coordinator struct {
	source      Source
	saver       Saver
	delay       time.Duration
	saveTimeout time.Duration
	logger      logging.Logger

	mu        sync.Mutex
	timer     stopper
	gen       uint64
	suspended int
	closed    bool

	saveMu sync.Mutex

	afterFunc func(d time.Duration, f func()) stopper
}

// New builds a coordinator that waits delay after the last edit and bounds
// each timer-driven save by saveTimeout.
func New(source Source, saver Saver, delay, saveTimeout time.Duration, logger logging.Logger) *Coordinator {
	return &Coordinator{
		source:      source,
		saver:       saver,
		delay:       delay,
		saveTimeout: saveTimeout,
		logger:      logger.With("component", "autosave"),
		afterFunc: func(d time.Duration, f func()) stopper {
			return time.AfterFunc(d, f)
		},
	}
}

// Observe is the graph.Editor subscriber. Changes arriving while the
// coordinator is suspended or closed are dropped.
func (c *Coordinator) Observe(ch graph.Change) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.suspended > 0 || c.closed {
		return
	}

	c.stopLocked()
	gen := c.gen
	c.timer = c.afterFunc(c.delay, func() { c.fire(gen) })
	c.logger.Debug(context.Background(), "autosave scheduled", "change", ch.Kind.String(), "id", ch.ID)
}

// Suspend cancels any pending save and ignores changes until the returned
// resume func is called. Suspensions nest.
func (c *Coordinator) Suspend() (resume func()) {
	c.mu.Lock()
	c.suspended++
	c.stopLocked()
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			c.suspended--
			c.mu.Unlock()
		})
	}
}

// Pending reports whether a timer-driven save is scheduled.
func (c *Coordinator) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timer != nil
}

// Flush cancels the pending timer and saves the current snapshot now.
// It does nothing while suspended.
func (c *Coordinator) Flush(ctx context.Context) error {
	c.mu.Lock()
	if c.suspended > 0 {
		c.mu.Unlock()
		return nil
	}
	c.stopLocked()
	c.mu.Unlock()

	return c.save(ctx)
}

// Close stops accepting changes and performs a final save.
func (c *Coordinator) Close(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	suspended := c.suspended > 0
	c.stopLocked()
	c.mu.Unlock()

	if suspended {
		return nil
	}
	return c.save(ctx)
}

// stopLocked cancels the timer. Bumping gen also neutralizes a callback that
// already started but has not yet taken the lock.
func (c *Coordinator) stopLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.gen++
}

func (c *Coordinator) fire(gen uint64) {
	c.mu.Lock()
	if gen != c.gen || c.suspended > 0 || c.closed {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), c.saveTimeout)
	defer cancel()

	if err := c.save(ctx); err != nil {
		c.logger.Error(ctx, "autosave failed", "error", err)
	}
}

func (c *Coordinator) save(ctx context.Context) error {
	c.saveMu.Lock()
	defer c.saveMu.Unlock()

	doc := c.source.Snapshot()
	if doc == nil {
		return nil
	}
	if err := c.saver.Save(ctx, doc); err != nil {
		return err
	}
	c.logger.Debug(ctx, "document saved", "document_id", doc.ID)
	return nil
}
