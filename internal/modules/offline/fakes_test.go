package offline

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

var errOffline = errors.New("dial tcp: connection refused")

// fakeNetwork serves canned responses by path and can be switched offline.
type fakeNetwork struct {
	mu      sync.Mutex
	origin  *url.URL
	pages   map[string]*Response
	offline bool
	calls   map[string]int
}

func newFakeNetwork(origin string) *fakeNetwork {
	u, _ := url.Parse(origin)
	return &fakeNetwork{origin: u, pages: map[string]*Response{}, calls: map[string]int{}}
}

func (n *fakeNetwork) serve(path, contentType, body string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pages[path] = &Response{
		Status: http.StatusOK,
		Header: http.Header{"Content-Type": []string{contentType}},
		Body:   []byte(body),
		Type:   ResponseBasic,
	}
}

// serveResponse registers a response with arbitrary headers for path.
func (n *fakeNetwork) serveResponse(path string, resp *Response) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pages[path] = resp
}

func (n *fakeNetwork) setOffline(v bool) {
	n.mu.Lock()
	n.offline = v
	n.mu.Unlock()
}

func (n *fakeNetwork) count(path string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls[path]
}

func (n *fakeNetwork) Fetch(_ context.Context, req *Request) (*Response, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls[req.URL.Path]++
	if n.offline {
		return nil, errOffline
	}
	target := req.URL.String()
	if resp, ok := n.pages[req.URL.Path]; ok {
		out := resp.Clone()
		if !sameOrigin(req.URL, n.origin) {
			out.Type = ResponseCORS
		}
		out.URL = target
		return out, nil
	}
	return &Response{
		Status: http.StatusNotFound,
		Header: http.Header{"Content-Type": []string{"text/plain"}},
		Body:   []byte("not found"),
		Type:   ResponseBasic,
		URL:    target,
	}, nil
}

// countingStorage records every store operation.
type countingStorage struct {
	*MemoryStorage
	mu      sync.Mutex
	matches int
	puts    int
}

func (s *countingStorage) Open(ctx context.Context, name string) (Store, error) {
	st, err := s.MemoryStorage.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return &countingStore{Store: st, parent: s}, nil
}

type countingStore struct {
	Store
	parent *countingStorage
}

func (s *countingStore) Match(ctx context.Context, req *Request) (*Response, bool, error) {
	s.parent.mu.Lock()
	s.parent.matches++
	s.parent.mu.Unlock()
	return s.Store.Match(ctx, req)
}

func (s *countingStore) Put(ctx context.Context, req *Request, resp *Response) error {
	s.parent.mu.Lock()
	s.parent.puts++
	s.parent.mu.Unlock()
	return s.Store.Put(ctx, req, resp)
}

const testOrigin = "https://fox.example"

var testManifest = []string{"/", "/index.html", "/offline.html", "/manifest.json", "/favicon.ico", "/icons/icon-192x192.png"}

func servedManifest(n *fakeNetwork) {
	n.serve("/", "text/html", "<html>home</html>")
	n.serve("/index.html", "text/html", "<html>home</html>")
	n.serve("/offline.html", "text/html", "<html>offline</html>")
	n.serve("/manifest.json", "application/json", `{"name":"fox"}`)
	n.serve("/favicon.ico", "image/x-icon", "ico")
	n.serve("/icons/icon-192x192.png", "image/png", "png")
}

func testOptions(t *testing.T, version int) Options {
	t.Helper()
	origin, err := OriginURL(testOrigin)
	require.NoError(t, err)
	return Options{
		Version:     version,
		Manifest:    testManifest,
		APIPrefix:   "/api/",
		OfflinePage: "/offline.html",
		Origin:      origin,
	}
}

func mustRequest(t *testing.T, method, rawURL string) *Request {
	t.Helper()
	req, err := NewRequest(method, rawURL)
	require.NoError(t, err)
	return req
}

func navigate(t *testing.T, rawURL string) *Request {
	t.Helper()
	req := mustRequest(t, http.MethodGet, rawURL)
	req.Mode = ModeNavigate
	req.Destination = DestinationDocument
	return req
}

// activeWorker installs and activates a worker over a fresh memory storage.
func activeWorker(t *testing.T, version int) (*Worker, *fakeNetwork, *MemoryStorage) {
	t.Helper()
	network := newFakeNetwork(testOrigin)
	servedManifest(network)
	storage := NewMemoryStorage()
	w := NewWorker(testOptions(t, version), storage, network, nil)
	ctx := context.Background()
	require.NoError(t, w.Install(ctx))
	require.NoError(t, w.Activate(ctx))
	return w, network, storage
}
