package offline

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
)

// ResponseType mirrors the browser's response tainting.
type ResponseType string

const (
	ResponseBasic     ResponseType = "basic"
	ResponseCORS      ResponseType = "cors"
	ResponseSynthetic ResponseType = "synthetic"
)

// Source tells the edge where a response came from.
type Source string

const (
	SourceNetwork  Source = "miss"
	SourceCache    Source = "hit"
	SourceFallback Source = "offline"
)

const (
	offlineAPIMessage  = "You are offline. Please check your internet connection."
	unavailableMessage = "Resource unavailable offline"
)

// Response is an immutable snapshot of a response. Clone before handing a
// stored snapshot to anything that may mutate it.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
	Type   ResponseType
	URL    string

	From Source
}

func (r *Response) Clone() *Response {
	if r == nil {
		return nil
	}
	out := *r
	out.Header = r.Header.Clone()
	if out.Header == nil {
		out.Header = http.Header{}
	}
	out.Body = bytes.Clone(r.Body)
	return &out
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// Cacheable reports whether a static asset response may be stored: a complete
// same-origin 200.
func (r *Response) Cacheable() bool {
	return r.Status == http.StatusOK && r.Type == ResponseBasic
}

// Shareable reports whether the response may be stored in a cache read by
// every client. Responses marked private or no-store never are.
func (r *Response) Shareable() bool {
	for _, v := range r.Header.Values("Cache-Control") {
		for _, directive := range strings.Split(v, ",") {
			name, _, _ := strings.Cut(strings.TrimSpace(directive), "=")
			switch strings.ToLower(name) {
			case "private", "no-store":
				return false
			}
		}
	}
	return true
}

// forStorage is the copy written to a store, without per-client cookies.
func (r *Response) forStorage() *Response {
	out := r.Clone()
	out.Header.Del("Set-Cookie")
	out.From = ""
	return out
}

func (r *Response) served(from Source) *Response {
	out := r.Clone()
	out.From = from
	return out
}

func offlineAPIResponse() *Response {
	body, _ := json.Marshal(map[string]string{"error": offlineAPIMessage})
	return &Response{
		Status: http.StatusServiceUnavailable,
		Header: http.Header{"Content-Type": []string{"application/json"}},
		Body:   body,
		Type:   ResponseSynthetic,
		From:   SourceFallback,
	}
}

func unavailableResponse() *Response {
	return &Response{
		Status: http.StatusServiceUnavailable,
		Header: http.Header{"Content-Type": []string{"text/plain"}},
		Body:   []byte(unavailableMessage),
		Type:   ResponseSynthetic,
		From:   SourceFallback,
	}
}
