package gateway

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/santiyer/core/internal/store"
)

// Broadcaster is the hub surface the watcher needs.
type Broadcaster interface {
	Broadcast(event string, payload interface{}, room string)
}

// Watcher subscribes to document change feeds and turns them into hub
// broadcasts: admins get the full change event for live list updates, the
// public room gets a coarse refetch ping.
type Watcher struct {
	db     store.Database
	out    Broadcaster
	logger *zap.Logger

	mu      sync.Mutex
	subs    []store.Subscription
	started bool
	wg      sync.WaitGroup
}

func NewWatcher(db store.Database, out Broadcaster, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{db: db, out: out, logger: logger}
}

// Start opens one subscription per collection. Call Stop to tear them down;
// events already in flight when Stop runs are dropped, not applied.
func (w *Watcher) Start(ctx context.Context, collections ...string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return nil
	}

	for _, name := range collections {
		sub, err := w.db.Collection(name).Watch(ctx)
		if err != nil {
			for _, s := range w.subs {
				s.Cancel()
			}
			w.subs = nil
			return err
		}
		w.subs = append(w.subs, sub)

		w.wg.Add(1)
		go w.pump(sub)
	}
	w.started = true
	return nil
}

func (w *Watcher) pump(sub store.Subscription) {
	defer w.wg.Done()
	for ev := range sub.Events() {
		w.out.Broadcast("ENTITY_CHANGED", ev, RoomAdmin)
		w.out.Broadcast("CONTENT_UPDATED", map[string]string{"collection": ev.Collection}, RoomPublic)
	}
}

// Stop cancels every subscription and waits for the pumps to drain. Safe to
// call more than once.
func (w *Watcher) Stop() {
	w.mu.Lock()
	subs := w.subs
	w.subs = nil
	w.started = false
	w.mu.Unlock()

	for _, s := range subs {
		s.Cancel()
	}
	w.wg.Wait()
}
