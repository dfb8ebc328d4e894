package offline

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Registration tracks the active worker and at most one waiting worker.
type Registration struct {
	logger *zap.Logger

	mu      sync.Mutex
	active  *Worker
	waiting *Worker
}

func NewRegistration(logger *zap.Logger) *Registration {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registration{logger: logger}
}

// Register installs w. It becomes active right away when it asked to skip
// waiting or nothing is active yet; otherwise it waits for SKIP_WAITING.
func (r *Registration) Register(ctx context.Context, w *Worker) error {
	if err := w.Install(ctx); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active != nil && !w.wantsSkipWaiting() {
		if r.waiting != nil {
			r.waiting.retire()
		}
		r.waiting = w
		r.logger.Info("offline worker waiting", zap.String("cache", w.CacheName()))
		return nil
	}
	return r.promote(ctx, w)
}

// PostMessage handles a control message and reports whether it was recognized.
func (r *Registration) PostMessage(ctx context.Context, msg Message) (bool, error) {
	if msg.Type != SkipWaitingMessage {
		return false, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.waiting == nil {
		return true, nil
	}
	w := r.waiting
	w.SkipWaiting()
	return true, r.promote(ctx, w)
}

// promote must be called with r.mu held.
func (r *Registration) promote(ctx context.Context, w *Worker) error {
	if err := w.Activate(ctx); err != nil {
		return err
	}
	if r.active != nil && r.active != w {
		r.active.retire()
	}
	if r.waiting == w {
		r.waiting = nil
	}
	r.active = w
	r.logger.Info("offline worker activated", zap.String("cache", w.CacheName()))
	return nil
}

// Fetch routes req through the active worker.
func (r *Registration) Fetch(ctx context.Context, req *Request) (*Response, bool) {
	w := r.Active()
	if w == nil {
		return nil, false
	}
	return w.Fetch(ctx, req)
}

func (r *Registration) Active() *Worker {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

func (r *Registration) Waiting() *Worker {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.waiting
}
