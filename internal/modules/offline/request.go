package offline

import (
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
)

const (
	ModeNavigate   = "navigate"
	ModeCORS       = "cors"
	ModeNoCORS     = "no-cors"
	ModeSameOrigin = "same-origin"

	DestinationDocument = "document"
	DestinationImage    = "image"
)

var imageExtensions = map[string]struct{}{
	".png": {}, ".jpg": {}, ".jpeg": {}, ".gif": {}, ".webp": {},
	".avif": {}, ".svg": {}, ".ico": {}, ".bmp": {},
}

// Request is an intercepted fetch as the worker sees it.
type Request struct {
	Method      string
	URL         *url.URL
	Header      http.Header
	Mode        string
	Destination string
}

// NewRequest builds a request for an absolute URL.
func NewRequest(method, rawURL string) (*Request, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse request url %q: %w", rawURL, err)
	}
	if !u.IsAbs() {
		return nil, fmt.Errorf("request url %q is not absolute", rawURL)
	}
	if method == "" {
		method = http.MethodGet
	}
	return &Request{
		Method:      strings.ToUpper(method),
		URL:         u,
		Header:      http.Header{},
		Mode:        ModeCORS,
		Destination: destinationFromPath(u.Path),
	}, nil
}

// RequestFromHTTP converts an incoming request into a worker request addressed
// to origin, so cache keys and same-origin checks are expressed in origin URLs.
func RequestFromHTTP(r *http.Request, origin *url.URL) *Request {
	u := *origin
	u.Path = r.URL.Path
	u.RawPath = r.URL.RawPath
	u.RawQuery = r.URL.RawQuery
	u.Fragment = ""

	req := &Request{
		Method: r.Method,
		URL:    &u,
		Header: r.Header.Clone(),
	}
	req.Mode = requestMode(r)
	req.Destination = strings.ToLower(strings.TrimSpace(r.Header.Get("Sec-Fetch-Dest")))
	if req.Destination == "" || req.Destination == "empty" {
		if req.Mode == ModeNavigate {
			req.Destination = DestinationDocument
		} else if d := destinationFromPath(u.Path); d != "" {
			req.Destination = d
		}
	}
	return req
}

func requestMode(r *http.Request) string {
	if mode := strings.ToLower(strings.TrimSpace(r.Header.Get("Sec-Fetch-Mode"))); mode != "" {
		return mode
	}
	if r.Method == http.MethodGet && strings.Contains(r.Header.Get("Accept"), "text/html") {
		return ModeNavigate
	}
	return ModeNoCORS
}

func destinationFromPath(p string) string {
	if _, ok := imageExtensions[strings.ToLower(path.Ext(p))]; ok {
		return DestinationImage
	}
	return ""
}

// IsNavigation reports whether the request loads a top-level page.
func (r *Request) IsNavigation() bool {
	return r.Mode == ModeNavigate
}

// CacheKey is the absolute request URL. Only GET requests are ever keyed.
func (r *Request) CacheKey() string {
	return r.URL.String()
}

// Credentialed reports whether the request carries per-client credentials. The
// edge cache is shared by every client, so such requests never read or write
// dynamic entries.
func (r *Request) Credentialed() bool {
	return r.Header.Get("Authorization") != "" || r.Header.Get("Cookie") != ""
}

func (r *Request) isHTTP() bool {
	if r.URL == nil {
		return false
	}
	scheme := strings.ToLower(r.URL.Scheme)
	return scheme == "http" || scheme == "https"
}
