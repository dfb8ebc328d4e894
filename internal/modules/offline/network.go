package offline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultMaxBodyBytes = 32 << 20

// ErrBodyTooLarge means the origin answered but the body exceeds what the
// edge buffers. The request is still served, straight from the origin.
var ErrBodyTooLarge = errors.New("response body too large to buffer")

var hopHeaders = []string{
	"Connection", "Keep-Alive", "Proxy-Authenticate", "Proxy-Authorization",
	"Te", "Trailer", "Transfer-Encoding", "Upgrade",
}

// Network performs the real fetch. A non-nil error means the network failed;
// HTTP error statuses are regular responses.
type Network interface {
	Fetch(ctx context.Context, req *Request) (*Response, error)
}

// HTTPNetwork fetches from the origin over HTTP.
type HTTPNetwork struct {
	client       *http.Client
	origin       *url.URL
	maxBodyBytes int64
}

func NewHTTPNetwork(origin *url.URL, client *http.Client) *HTTPNetwork {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &HTTPNetwork{client: client, origin: origin, maxBodyBytes: defaultMaxBodyBytes}
}

func (n *HTTPNetwork) Fetch(ctx context.Context, req *Request) (*Response, error) {
	target := req.URL
	if !target.IsAbs() {
		target = n.origin.ResolveReference(target)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header = req.Header.Clone()
	if httpReq.Header == nil {
		httpReq.Header = http.Header{}
	}
	for _, h := range hopHeaders {
		httpReq.Header.Del(h)
	}
	httpReq.Header.Del("Accept-Encoding")

	resp, err := n.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, n.maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if int64(len(body)) > n.maxBodyBytes {
		return nil, fmt.Errorf("%s exceeds %d bytes: %w", target, n.maxBodyBytes, ErrBodyTooLarge)
	}

	header := resp.Header.Clone()
	for _, h := range hopHeaders {
		header.Del(h)
	}
	header.Del("Content-Length")

	respType := ResponseCORS
	if sameOrigin(target, n.origin) {
		respType = ResponseBasic
	}
	return &Response{
		Status: resp.StatusCode,
		Header: header,
		Body:   body,
		Type:   respType,
		URL:    target.String(),
	}, nil
}

func sameOrigin(a, b *url.URL) bool {
	return strings.EqualFold(a.Scheme, b.Scheme) && strings.EqualFold(a.Host, b.Host)
}
