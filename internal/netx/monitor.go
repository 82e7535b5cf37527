// Package netx provides the connectivity gate consulted before any sync
// pass: a cached HTTP reachability probe plus a static monitor for tests.
package netx

import (
	"net/http"
	"sync"
	"time"
)

// Monitor reports whether the device currently has network connectivity.
type Monitor interface {
	IsConnected() bool
}

// HTTPMonitor probes an endpoint with a HEAD request and caches the result
// for a TTL so repeated gate checks don't hammer the network. Any HTTP
// response, including an error status, counts as connected; only transport
// failures count as offline.
type HTTPMonitor struct {
	url    string
	client *http.Client
	ttl    time.Duration

	mu        sync.Mutex
	last      bool
	checkedAt time.Time
}

// NewHTTPMonitor builds a monitor probing probeURL, caching results for ttl.
func NewHTTPMonitor(probeURL string, ttl time.Duration) *HTTPMonitor {
	return &HTTPMonitor{
		url:    probeURL,
		client: &http.Client{Timeout: 5 * time.Second},
		ttl:    ttl,
	}
}

func (m *HTTPMonitor) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.checkedAt.IsZero() && time.Since(m.checkedAt) < m.ttl {
		return m.last
	}

	req, err := http.NewRequest(http.MethodHead, m.url, nil)
	if err != nil {
		return false
	}
	resp, err := m.client.Do(req)
	if err == nil {
		resp.Body.Close()
	}

	m.last = err == nil
	m.checkedAt = time.Now()
	return m.last
}

// Static is a fixed-answer Monitor for tests and forced-offline scenarios.
type Static bool

func (s Static) IsConnected() bool { return bool(s) }
