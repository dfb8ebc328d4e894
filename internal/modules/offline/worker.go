// Package offline implements the edge cache worker: a versioned cache store
// filled on install, pruned on activation and consulted per request through
// one of three routing strategies.
package offline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// SkipWaitingMessage is the only control message the worker understands.
const SkipWaitingMessage = "SKIP_WAITING"

// CacheName returns the store name for a cache version.
func CacheName(version int) string {
	return fmt.Sprintf("fox-cache-v%d", version)
}

// Phase is a worker lifecycle phase.
type Phase int

const (
	PhaseParsed Phase = iota
	PhaseInstalling
	PhaseInstalled
	PhaseActivating
	PhaseActive
	PhaseRedundant
)

func (p Phase) String() string {
	switch p {
	case PhaseParsed:
		return "parsed"
	case PhaseInstalling:
		return "installing"
	case PhaseInstalled:
		return "installed"
	case PhaseActivating:
		return "activating"
	case PhaseActive:
		return "active"
	case PhaseRedundant:
		return "redundant"
	default:
		return "unknown"
	}
}

// Strategy is the routing decision for one request.
type Strategy int

const (
	StrategyPassThrough Strategy = iota
	StrategyNetworkFirst
	StrategyNavigation
	StrategyCacheFirst
)

func (s Strategy) String() string {
	switch s {
	case StrategyNetworkFirst:
		return "network-first"
	case StrategyNavigation:
		return "navigation"
	case StrategyCacheFirst:
		return "cache-first"
	default:
		return "pass-through"
	}
}

// Message is an inbound control message.
type Message struct {
	Type string `json:"type"`
}

// Options configures a worker.
type Options struct {
	Version     int
	Manifest    []string
	APIPrefix   string
	OfflinePage string
	Origin      *url.URL
	// WaitForMessage keeps an installed worker waiting behind an active one
	// until a SKIP_WAITING message arrives.
	WaitForMessage bool
}

var (
	ErrNotInstalled = errors.New("worker is not installed")
	ErrRedundant    = errors.New("worker is redundant")
)

// Worker owns one versioned cache store.
type Worker struct {
	opts    Options
	name    string
	storage Storage
	network Network
	logger  *zap.Logger

	mu          sync.RWMutex
	phase       Phase
	store       Store
	skipWaiting bool
	claimed     bool
}

func NewWorker(opts Options, storage Storage, network Network, logger *zap.Logger) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Version < 1 {
		opts.Version = 1
	}
	if opts.APIPrefix == "" {
		opts.APIPrefix = "/api/"
	}
	if opts.OfflinePage == "" {
		opts.OfflinePage = "/offline.html"
	}
	return &Worker{
		opts:    opts,
		name:    CacheName(opts.Version),
		storage: storage,
		network: network,
		logger:  logger.With(zap.String("cache", CacheName(opts.Version))),
	}
}

func (w *Worker) CacheName() string { return w.name }
func (w *Worker) Version() int      { return w.opts.Version }

func (w *Worker) Phase() Phase {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.phase
}

// SkipWaiting asks the registration to activate this worker immediately.
func (w *Worker) SkipWaiting() {
	w.mu.Lock()
	w.skipWaiting = true
	w.mu.Unlock()
}

func (w *Worker) wantsSkipWaiting() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.skipWaiting
}

// Claimed reports whether the worker has taken control of clients.
func (w *Worker) Claimed() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.claimed
}

// Install opens the store and precaches the manifest. Any fetch failure or
// non-OK response fails the install and leaves the worker redundant.
func (w *Worker) Install(ctx context.Context) error {
	w.mu.Lock()
	if w.phase != PhaseParsed {
		w.mu.Unlock()
		return fmt.Errorf("install %s: already %s", w.name, w.phase)
	}
	w.phase = PhaseInstalling
	w.mu.Unlock()

	store, err := w.precache(ctx)
	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		w.phase = PhaseRedundant
		return fmt.Errorf("install %s: %w", w.name, err)
	}
	w.store = store
	w.phase = PhaseInstalled
	if !w.opts.WaitForMessage {
		w.skipWaiting = true
	}
	w.logger.Info("offline cache installed", zap.Int("assets", len(w.opts.Manifest)))
	return nil
}

func (w *Worker) precache(ctx context.Context) (Store, error) {
	store, err := w.storage.Open(ctx, w.name)
	if err != nil {
		return nil, err
	}
	for _, p := range w.opts.Manifest {
		req, err := w.originRequest(p)
		if err != nil {
			return nil, err
		}
		resp, err := w.network.Fetch(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("precache %s: %w", p, err)
		}
		if !resp.OK() {
			return nil, fmt.Errorf("precache %s: status %d", p, resp.Status)
		}
		if err := store.Put(ctx, req, resp.forStorage()); err != nil {
			return nil, fmt.Errorf("precache %s: %w", p, err)
		}
	}
	return store, nil
}

// Activate deletes every store other than this worker's and claims clients.
// Calling it again on an active worker only re-runs the prune.
func (w *Worker) Activate(ctx context.Context) error {
	w.mu.Lock()
	switch w.phase {
	case PhaseInstalled, PhaseActive:
	case PhaseRedundant:
		w.mu.Unlock()
		return ErrRedundant
	default:
		w.mu.Unlock()
		return ErrNotInstalled
	}
	wasActive := w.phase == PhaseActive
	w.phase = PhaseActivating
	w.mu.Unlock()

	pruned, err := w.prune(ctx)

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		if wasActive {
			w.phase = PhaseActive
		} else {
			w.phase = PhaseInstalled
		}
		return fmt.Errorf("activate %s: %w", w.name, err)
	}
	w.phase = PhaseActive
	w.claimed = true
	if len(pruned) > 0 {
		w.logger.Info("stale caches deleted", zap.Strings("stores", pruned))
	}
	return nil
}

func (w *Worker) prune(ctx context.Context) ([]string, error) {
	names, err := w.storage.Keys(ctx)
	if err != nil {
		return nil, err
	}
	var pruned []string
	for _, name := range names {
		if name == w.name {
			continue
		}
		if _, err := w.storage.Delete(ctx, name); err != nil {
			return pruned, err
		}
		pruned = append(pruned, name)
	}
	return pruned, nil
}

func (w *Worker) retire() {
	w.mu.Lock()
	w.phase = PhaseRedundant
	w.claimed = false
	w.mu.Unlock()
}

// Route selects the strategy for req without performing it.
func (w *Worker) Route(req *Request) Strategy {
	if req == nil || req.Method != http.MethodGet || !req.isHTTP() {
		return StrategyPassThrough
	}
	if strings.HasPrefix(req.URL.Path, w.opts.APIPrefix) {
		return StrategyNetworkFirst
	}
	if req.IsNavigation() {
		return StrategyNavigation
	}
	return StrategyCacheFirst
}

// Fetch resolves req. The boolean is false when the worker does not intercept
// it and the caller must send it on untouched.
func (w *Worker) Fetch(ctx context.Context, req *Request) (*Response, bool) {
	w.mu.RLock()
	store, phase := w.store, w.phase
	w.mu.RUnlock()
	if phase != PhaseActive || store == nil {
		return nil, false
	}

	strategy := w.Route(req)
	var resp *Response
	switch strategy {
	case StrategyNetworkFirst:
		resp = w.networkFirst(ctx, store, req)
	case StrategyNavigation:
		resp = w.navigation(ctx, store, req)
	case StrategyCacheFirst:
		resp = w.cacheFirst(ctx, store, req)
	default:
		return nil, false
	}
	if resp == nil {
		w.logger.Debug("offline fetch handed to origin", zap.String("url", req.CacheKey()))
		return nil, false
	}
	w.logger.Debug("offline fetch",
		zap.String("strategy", strategy.String()),
		zap.String("url", req.CacheKey()),
		zap.String("from", string(resp.From)),
		zap.Int("status", resp.Status),
	)
	return resp, true
}

// OfflinePage returns the stored offline page while the worker is active.
func (w *Worker) OfflinePage(ctx context.Context) (*Response, bool) {
	w.mu.RLock()
	store, phase := w.store, w.phase
	w.mu.RUnlock()
	if phase != PhaseActive || store == nil {
		return nil, false
	}
	resp := w.offlinePage(ctx, store)
	return resp, resp != nil
}

func (w *Worker) offlinePage(ctx context.Context, store Store) *Response {
	req, err := w.originRequest(w.opts.OfflinePage)
	if err != nil {
		return nil
	}
	cached := w.match(ctx, store, req)
	if cached == nil {
		return nil
	}
	return cached.served(SourceFallback)
}

func (w *Worker) originRequest(p string) (*Request, error) {
	if w.opts.Origin == nil {
		return nil, errors.New("worker origin is not configured")
	}
	ref, err := url.Parse(p)
	if err != nil {
		return nil, fmt.Errorf("parse manifest path %q: %w", p, err)
	}
	return NewRequest(http.MethodGet, w.opts.Origin.ResolveReference(ref).String())
}
