package offline

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// A nil result from a strategy hands the request back to the caller, which
// sends it to the origin uncached.

func (w *Worker) networkFirst(ctx context.Context, store Store, req *Request) *Response {
	resp, err := w.network.Fetch(ctx, req)
	if err == nil {
		w.put(ctx, store, req, resp)
		return resp.served(SourceNetwork)
	}
	if errors.Is(err, ErrBodyTooLarge) {
		return nil
	}
	w.logger.Debug("network failed, trying cache", zap.String("url", req.CacheKey()), zap.Error(err))
	if !req.Credentialed() {
		if cached := w.match(ctx, store, req); cached != nil {
			return cached.served(SourceCache)
		}
	}
	return offlineAPIResponse()
}

func (w *Worker) navigation(ctx context.Context, store Store, req *Request) *Response {
	if !req.Credentialed() {
		if cached := w.match(ctx, store, req); cached != nil {
			return cached.served(SourceCache)
		}
	}
	resp, err := w.network.Fetch(ctx, req)
	if err == nil {
		w.put(ctx, store, req, resp)
		return resp.served(SourceNetwork)
	}
	if errors.Is(err, ErrBodyTooLarge) {
		return nil
	}
	w.logger.Debug("navigation failed, serving offline page", zap.String("url", req.CacheKey()), zap.Error(err))
	if page := w.offlinePage(ctx, store); page != nil {
		return page
	}
	return unavailableResponse()
}

// cacheFirst serves stored assets to every client. Only anonymous, shareable
// responses are ever stored, so a hit never carries another client's data.
func (w *Worker) cacheFirst(ctx context.Context, store Store, req *Request) *Response {
	if cached := w.match(ctx, store, req); cached != nil {
		return cached.served(SourceCache)
	}
	resp, err := w.network.Fetch(ctx, req)
	if err == nil {
		if resp.Cacheable() {
			w.put(ctx, store, req, resp)
		}
		return resp.served(SourceNetwork)
	}
	if errors.Is(err, ErrBodyTooLarge) {
		return nil
	}
	// Images and other assets share the same fallback body.
	if req.Destination == DestinationImage {
		w.logger.Debug("image unavailable offline", zap.String("url", req.CacheKey()), zap.Error(err))
	}
	return unavailableResponse()
}

func (w *Worker) match(ctx context.Context, store Store, req *Request) *Response {
	resp, ok, err := store.Match(ctx, req)
	if err != nil {
		w.logger.Warn("cache match failed", zap.String("url", req.CacheKey()), zap.Error(err))
		return nil
	}
	if !ok {
		return nil
	}
	return resp
}

// put stores resp unless it belongs to a single client.
func (w *Worker) put(ctx context.Context, store Store, req *Request, resp *Response) {
	if req.Credentialed() || !resp.Shareable() {
		return
	}
	if err := store.Put(ctx, req, resp.forStorage()); err != nil {
		w.logger.Warn("cache put failed", zap.String("url", req.CacheKey()), zap.Error(err))
	}
}
