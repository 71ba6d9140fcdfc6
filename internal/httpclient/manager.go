// Package httpclient builds the shared HTTP client used for identity
// server calls, tuned from system settings.
package httpclient

import (
	"net"
	"net/http"
	"sync"
	"time"

	"governd/internal/config"
)

// HTTPClientManager owns the upstream HTTP client and rebuilds it when
// transport-related system settings change.
type HTTPClientManager struct {
	settingsManager *config.SystemSettingsManager

	mu       sync.RWMutex
	client   *http.Client
	snapshot transportSettings
}

type transportSettings struct {
	requestTimeout        int
	connectTimeout        int
	idleConnTimeout       int
	responseHeaderTimeout int
	maxIdleConns          int
	maxIdleConnsPerHost   int
}

// NewHTTPClientManager creates the manager with a client built from the
// current settings snapshot.
func NewHTTPClientManager(settingsManager *config.SystemSettingsManager) *HTTPClientManager {
	m := &HTTPClientManager{settingsManager: settingsManager}
	snap := m.currentSettings()
	m.client = buildClient(snap)
	m.snapshot = snap
	return m
}

// Client returns the shared upstream client, rebuilding it if transport
// settings changed since the last call.
func (m *HTTPClientManager) Client() *http.Client {
	snap := m.currentSettings()

	m.mu.RLock()
	if snap == m.snapshot {
		client := m.client
		m.mu.RUnlock()
		return client
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	if snap != m.snapshot {
		m.client = buildClient(snap)
		m.snapshot = snap
	}
	return m.client
}

func (m *HTTPClientManager) currentSettings() transportSettings {
	settings := m.settingsManager.GetSettings()
	return transportSettings{
		requestTimeout:        settings.RequestTimeout,
		connectTimeout:        settings.ConnectTimeout,
		idleConnTimeout:       settings.IdleConnTimeout,
		responseHeaderTimeout: settings.ResponseHeaderTimeout,
		maxIdleConns:          settings.MaxIdleConns,
		maxIdleConnsPerHost:   settings.MaxIdleConnsPerHost,
	}
}

func buildClient(s transportSettings) *http.Client {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   time.Duration(s.connectTimeout) * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          s.maxIdleConns,
		MaxIdleConnsPerHost:   s.maxIdleConnsPerHost,
		IdleConnTimeout:       time.Duration(s.idleConnTimeout) * time.Second,
		ResponseHeaderTimeout: time.Duration(s.responseHeaderTimeout) * time.Second,
		// Content negotiation is handled by the upstream client, which
		// advertises gzip and brotli itself.
		DisableCompression: true,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   time.Duration(s.requestTimeout) * time.Second,
	}
}
