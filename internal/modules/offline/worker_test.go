package offline

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheName(t *testing.T) {
	assert.Equal(t, "fox-cache-v1", CacheName(1))
	assert.Equal(t, "fox-cache-v12", CacheName(12))
}

func TestInstallPrecachesManifest(t *testing.T) {
	w, network, storage := activeWorker(t, 1)
	ctx := context.Background()

	names, err := storage.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"fox-cache-v1"}, names)

	network.setOffline(true)
	for _, p := range testManifest {
		resp, ok := w.Fetch(ctx, mustRequest(t, http.MethodGet, testOrigin+p))
		require.True(t, ok, p)
		assert.Equal(t, SourceCache, resp.From, p)
		assert.Equal(t, http.StatusOK, resp.Status, p)
	}
}

func TestInstallFailsOnMissingAsset(t *testing.T) {
	network := newFakeNetwork(testOrigin)
	servedManifest(network)
	opts := testOptions(t, 1)
	opts.Manifest = append(opts.Manifest, "/missing.css")
	w := NewWorker(opts, NewMemoryStorage(), network, nil)

	err := w.Install(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/missing.css")
	assert.Equal(t, PhaseRedundant, w.Phase())
	assert.ErrorIs(t, w.Activate(context.Background()), ErrRedundant)
}

func TestInstallFailsWhenOffline(t *testing.T) {
	network := newFakeNetwork(testOrigin)
	network.setOffline(true)
	w := NewWorker(testOptions(t, 1), NewMemoryStorage(), network, nil)

	require.ErrorIs(t, w.Install(context.Background()), errOffline)
}

func TestActivateBeforeInstall(t *testing.T) {
	w := NewWorker(testOptions(t, 1), NewMemoryStorage(), newFakeNetwork(testOrigin), nil)
	assert.ErrorIs(t, w.Activate(context.Background()), ErrNotInstalled)

	_, ok := w.Fetch(context.Background(), mustRequest(t, http.MethodGet, testOrigin+"/"))
	assert.False(t, ok)
}

func TestActivatePrunesStaleStoresAndIsIdempotent(t *testing.T) {
	ctx := context.Background()
	network := newFakeNetwork(testOrigin)
	servedManifest(network)
	storage := NewMemoryStorage()
	for _, name := range []string{"fox-cache-v1", "other-cache"} {
		_, err := storage.Open(ctx, name)
		require.NoError(t, err)
	}

	w := NewWorker(testOptions(t, 2), storage, network, nil)
	require.NoError(t, w.Install(ctx))
	require.NoError(t, w.Activate(ctx))
	assert.True(t, w.Claimed())

	names, err := storage.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"fox-cache-v2"}, names)

	require.NoError(t, w.Activate(ctx))
	names, err = storage.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"fox-cache-v2"}, names)
	assert.Equal(t, PhaseActive, w.Phase())
}

func TestRoute(t *testing.T) {
	w, _, _ := activeWorker(t, 1)

	cases := []struct {
		name string
		req  *Request
		want Strategy
	}{
		{"post", mustRequest(t, http.MethodPost, testOrigin+"/api/comments"), StrategyPassThrough},
		{"non http", mustRequest(t, http.MethodGet, "chrome-extension://abc/script.js"), StrategyPassThrough},
		{"api", mustRequest(t, http.MethodGet, testOrigin+"/api/articles"), StrategyNetworkFirst},
		{"api navigation", navigate(t, testOrigin+"/api/articles"), StrategyNetworkFirst},
		{"navigation", navigate(t, testOrigin+"/articles/hello"), StrategyNavigation},
		{"asset", mustRequest(t, http.MethodGet, testOrigin+"/assets/app.js"), StrategyCacheFirst},
		{"api lookalike", mustRequest(t, http.MethodGet, testOrigin+"/apis.js"), StrategyCacheFirst},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, w.Route(tc.req))
		})
	}
}

func TestNonGETIsNeverIntercepted(t *testing.T) {
	ctx := context.Background()
	network := newFakeNetwork(testOrigin)
	servedManifest(network)
	storage := &countingStorage{MemoryStorage: NewMemoryStorage()}
	w := NewWorker(testOptions(t, 1), storage, network, nil)
	require.NoError(t, w.Install(ctx))
	require.NoError(t, w.Activate(ctx))

	matches, puts := storage.matches, storage.puts
	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch} {
		resp, ok := w.Fetch(ctx, mustRequest(t, method, testOrigin+"/api/articles"))
		assert.False(t, ok, method)
		assert.Nil(t, resp, method)
	}
	assert.Equal(t, matches, storage.matches)
	assert.Equal(t, puts, storage.puts)
	assert.Zero(t, network.count("/api/articles"))
}

func TestNetworkFirst(t *testing.T) {
	ctx := context.Background()
	w, network, _ := activeWorker(t, 1)
	network.serve("/api/articles", "application/json", `{"data":[]}`)
	req := mustRequest(t, http.MethodGet, testOrigin+"/api/articles")

	resp, ok := w.Fetch(ctx, req)
	require.True(t, ok)
	assert.Equal(t, SourceNetwork, resp.From)
	assert.JSONEq(t, `{"data":[]}`, string(resp.Body))

	network.serve("/api/articles", "application/json", `{"data":[1]}`)
	resp, _ = w.Fetch(ctx, req)
	assert.JSONEq(t, `{"data":[1]}`, string(resp.Body), "network wins while online")

	network.setOffline(true)
	resp, _ = w.Fetch(ctx, req)
	assert.Equal(t, SourceCache, resp.From)
	assert.JSONEq(t, `{"data":[1]}`, string(resp.Body))
}

func TestNetworkFirstOfflineWithoutCache(t *testing.T) {
	w, network, _ := activeWorker(t, 1)
	network.setOffline(true)

	resp, ok := w.Fetch(context.Background(), mustRequest(t, http.MethodGet, testOrigin+"/api/never"))
	require.True(t, ok)
	assert.Equal(t, http.StatusServiceUnavailable, resp.Status)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(resp.Body, &body))
	assert.Equal(t, "You are offline. Please check your internet connection.", body["error"])
}

func TestNavigation(t *testing.T) {
	ctx := context.Background()
	w, network, _ := activeWorker(t, 1)
	network.serve("/articles/hello", "text/html", "<html>hello</html>")

	resp, ok := w.Fetch(ctx, navigate(t, testOrigin+"/articles/hello"))
	require.True(t, ok)
	assert.Equal(t, SourceNetwork, resp.From)

	network.serve("/articles/hello", "text/html", "<html>edited</html>")
	resp, _ = w.Fetch(ctx, navigate(t, testOrigin+"/articles/hello"))
	assert.Equal(t, SourceCache, resp.From)
	assert.Equal(t, "<html>hello</html>", string(resp.Body))
	assert.Equal(t, 1, network.count("/articles/hello"))
}

func TestNavigationOfflineFallsBackToOfflinePage(t *testing.T) {
	w, network, _ := activeWorker(t, 1)
	network.setOffline(true)

	resp, ok := w.Fetch(context.Background(), navigate(t, testOrigin+"/articles/unseen"))
	require.True(t, ok)
	assert.Equal(t, SourceFallback, resp.From)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "<html>offline</html>", string(resp.Body))
}

func TestNavigationOfflineWithoutOfflinePage(t *testing.T) {
	ctx := context.Background()
	network := newFakeNetwork(testOrigin)
	network.serve("/", "text/html", "home")
	opts := testOptions(t, 1)
	opts.Manifest = []string{"/"}
	w := NewWorker(opts, NewMemoryStorage(), network, nil)
	require.NoError(t, w.Install(ctx))
	require.NoError(t, w.Activate(ctx))

	network.setOffline(true)
	resp, ok := w.Fetch(ctx, navigate(t, testOrigin+"/articles/unseen"))
	require.True(t, ok)
	assert.Equal(t, http.StatusServiceUnavailable, resp.Status)
	assert.Equal(t, "Resource unavailable offline", string(resp.Body))
}

func TestCacheFirstStoresOnlyBasicOK(t *testing.T) {
	ctx := context.Background()
	w, network, _ := activeWorker(t, 1)
	network.serve("/assets/app.js", "text/javascript", "console.log(1)")

	req := mustRequest(t, http.MethodGet, testOrigin+"/assets/app.js")
	resp, ok := w.Fetch(ctx, req)
	require.True(t, ok)
	assert.Equal(t, SourceNetwork, resp.From)

	resp, _ = w.Fetch(ctx, req)
	assert.Equal(t, SourceCache, resp.From)
	assert.Equal(t, 1, network.count("/assets/app.js"))

	missing := mustRequest(t, http.MethodGet, testOrigin+"/assets/gone.js")
	resp, _ = w.Fetch(ctx, missing)
	assert.Equal(t, http.StatusNotFound, resp.Status)
	resp, _ = w.Fetch(ctx, missing)
	assert.Equal(t, SourceNetwork, resp.From, "404 is not cached")
	assert.Equal(t, 2, network.count("/assets/gone.js"))

	network.serve("/font.woff2", "font/woff2", "font")
	cross := mustRequest(t, http.MethodGet, "https://cdn.example/font.woff2")
	resp, _ = w.Fetch(ctx, cross)
	assert.Equal(t, ResponseCORS, resp.Type)
	resp, _ = w.Fetch(ctx, cross)
	assert.Equal(t, SourceNetwork, resp.From, "cross origin is not cached")
}

func TestCacheFirstOfflineFallbackIgnoresDestination(t *testing.T) {
	ctx := context.Background()
	w, network, _ := activeWorker(t, 1)
	network.setOffline(true)

	image := mustRequest(t, http.MethodGet, testOrigin+"/uploads/cover.png")
	require.Equal(t, DestinationImage, image.Destination)
	script := mustRequest(t, http.MethodGet, testOrigin+"/assets/app.js")

	imgResp, ok := w.Fetch(ctx, image)
	require.True(t, ok)
	scriptResp, ok := w.Fetch(ctx, script)
	require.True(t, ok)

	for _, resp := range []*Response{imgResp, scriptResp} {
		assert.Equal(t, http.StatusServiceUnavailable, resp.Status)
		assert.Equal(t, "text/plain", resp.Header.Get("Content-Type"))
		assert.Equal(t, "Resource unavailable offline", string(resp.Body))
	}
}

func TestCachedResponsesAreIsolated(t *testing.T) {
	ctx := context.Background()
	w, network, _ := activeWorker(t, 1)
	network.setOffline(true)
	req := mustRequest(t, http.MethodGet, testOrigin+"/manifest.json")

	first, _ := w.Fetch(ctx, req)
	first.Body[0] = 'X'
	first.Header.Set("Content-Type", "text/evil")

	second, _ := w.Fetch(ctx, req)
	assert.Equal(t, `{"name":"fox"}`, string(second.Body))
	assert.Equal(t, "application/json", second.Header.Get("Content-Type"))
}

func TestCredentialedRequestsBypassSharedCache(t *testing.T) {
	ctx := context.Background()
	w, network, storage := activeWorker(t, 1)
	network.serve("/api/subscribers", "application/json", `{"subscribers":["secret@fox.example"]}`)

	admin := mustRequest(t, http.MethodGet, testOrigin+"/api/subscribers")
	admin.Header.Set("Authorization", "Bearer admin")
	resp, ok := w.Fetch(ctx, admin)
	require.True(t, ok)
	assert.Equal(t, SourceNetwork, resp.From)

	withCookie := navigate(t, testOrigin+"/dashboard")
	withCookie.Header.Set("Cookie", "session=admin")
	network.serve("/dashboard", "text/html", "<html>private</html>")
	resp, _ = w.Fetch(ctx, withCookie)
	assert.Equal(t, SourceNetwork, resp.From)

	store, err := storage.Open(ctx, w.CacheName())
	require.NoError(t, err)
	_, ok, err = store.Match(ctx, mustRequest(t, http.MethodGet, testOrigin+"/api/subscribers"))
	require.NoError(t, err)
	assert.False(t, ok, "authorized api response must not be stored")

	network.setOffline(true)
	anonymous := mustRequest(t, http.MethodGet, testOrigin+"/api/subscribers")
	resp, _ = w.Fetch(ctx, anonymous)
	assert.Equal(t, http.StatusServiceUnavailable, resp.Status)
	assert.NotContains(t, string(resp.Body), "secret")

	resp, _ = w.Fetch(ctx, navigate(t, testOrigin+"/dashboard"))
	assert.Equal(t, SourceFallback, resp.From)
	assert.Equal(t, "<html>offline</html>", string(resp.Body))
}

func TestCredentialedRequestSkipsCachedCopy(t *testing.T) {
	ctx := context.Background()
	w, network, _ := activeWorker(t, 1)
	network.serve("/api/articles", "application/json", `{"data":[]}`)
	_, _ = w.Fetch(ctx, mustRequest(t, http.MethodGet, testOrigin+"/api/articles"))

	network.setOffline(true)
	req := mustRequest(t, http.MethodGet, testOrigin+"/api/articles")
	req.Header.Set("Cookie", "session=reader")
	resp, ok := w.Fetch(ctx, req)
	require.True(t, ok)
	assert.Equal(t, http.StatusServiceUnavailable, resp.Status)
}

func TestStoredResponsesDropCookiesAndPrivateEntries(t *testing.T) {
	ctx := context.Background()
	w, network, _ := activeWorker(t, 1)
	network.serveResponse("/api/feed", &Response{
		Status: http.StatusOK,
		Header: http.Header{"Content-Type": []string{"application/json"}, "Set-Cookie": []string{"session=first-visitor"}},
		Body:   []byte(`{"feed":[]}`),
		Type:   ResponseBasic,
	})
	network.serveResponse("/api/me", &Response{
		Status: http.StatusOK,
		Header: http.Header{"Cache-Control": []string{"max-age=0, Private"}},
		Body:   []byte(`{"name":"reader"}`),
		Type:   ResponseBasic,
	})
	network.serveResponse("/api/nonce", &Response{
		Status: http.StatusOK,
		Header: http.Header{"Cache-Control": []string{"no-store"}},
		Body:   []byte(`{"nonce":1}`),
		Type:   ResponseBasic,
	})

	feed := mustRequest(t, http.MethodGet, testOrigin+"/api/feed")
	resp, _ := w.Fetch(ctx, feed)
	assert.Equal(t, "session=first-visitor", resp.Header.Get("Set-Cookie"), "live response keeps its cookie")
	_, _ = w.Fetch(ctx, mustRequest(t, http.MethodGet, testOrigin+"/api/me"))
	_, _ = w.Fetch(ctx, mustRequest(t, http.MethodGet, testOrigin+"/api/nonce"))

	network.setOffline(true)
	resp, _ = w.Fetch(ctx, feed)
	assert.Equal(t, SourceCache, resp.From)
	assert.Empty(t, resp.Header.Values("Set-Cookie"))

	for _, p := range []string{"/api/me", "/api/nonce"} {
		resp, _ = w.Fetch(ctx, mustRequest(t, http.MethodGet, testOrigin+p))
		assert.Equal(t, http.StatusServiceUnavailable, resp.Status, p)
	}
}

func TestOversizedBodyIsHandedBack(t *testing.T) {
	w, _, _ := activeWorker(t, 1)
	w.network = oversizedNetwork{}

	for _, req := range []*Request{
		mustRequest(t, http.MethodGet, testOrigin+"/api/export"),
		navigate(t, testOrigin+"/videos/launch"),
		mustRequest(t, http.MethodGet, testOrigin+"/media/launch.mp4"),
	} {
		resp, ok := w.Fetch(context.Background(), req)
		assert.False(t, ok, req.CacheKey())
		assert.Nil(t, resp)
	}
}

type oversizedNetwork struct{}

func (oversizedNetwork) Fetch(context.Context, *Request) (*Response, error) {
	return nil, fmt.Errorf("origin body: %w", ErrBodyTooLarge)
}
