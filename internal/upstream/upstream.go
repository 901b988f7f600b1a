// Package upstream holds what every provider client shares: the traced HTTP
// client and the StatusError returned for non-success responses.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// StatusError is returned by provider clients when the provider answers with a
// non-success status. Services classify it into a domain.APIError.
type StatusError struct {
	// Provider is the display name of the upstream, e.g. "Firecrawl"
	Provider string
	// StatusCode is the HTTP status returned by the provider
	StatusCode int
	// Message is the provider's error text when the body carried one
	Message string
	// Body is the raw response body
	Body []byte
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s API error (status %d)", e.Provider, e.StatusCode)
}

// AsStatusError extracts a *StatusError from err's chain.
func AsStatusError(err error) (*StatusError, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// ClientOptions configures NewHTTPClient.
type ClientOptions struct {
	// Timeout bounds a whole upstream exchange. Zero leaves it to the request context.
	Timeout time.Duration
	// DenyPrivateNetworks rejects connections to loopback, private and
	// link-local addresses.
	DenyPrivateNetworks bool
}

// NewHTTPClient returns an HTTP client whose transport is instrumented with
// OpenTelemetry.
func NewHTTPClient(opts ClientOptions) *http.Client {
	var base http.RoundTripper = http.DefaultTransport
	if opts.DenyPrivateNetworks {
		base = safeTransport
	}
	return &http.Client{
		Timeout:   opts.Timeout,
		Transport: otelhttp.NewTransport(base),
	}
}

// safeTransport rejects connections to private or loopback IP ranges to reduce SSRF risk.
var safeTransport = &http.Transport{
	Proxy: http.ProxyFromEnvironment,
	DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
		dialer := &net.Dialer{Timeout: 5 * time.Second}
		conn, err := dialer.DialContext(ctx, network, addr)
		if err != nil {
			return nil, err
		}

		host, _, _ := net.SplitHostPort(conn.RemoteAddr().String())
		ip := net.ParseIP(host)
		if ip == nil {
			conn.Close()
			return nil, fmt.Errorf("failed to parse remote IP for %q", addr)
		}

		if IsPrivateIP(ip) {
			conn.Close()
			return nil, fmt.Errorf("access to private IP %s is denied", ip)
		}

		return conn, nil
	},
	ForceAttemptHTTP2:   true,
	MaxIdleConns:        100,
	IdleConnTimeout:     90 * time.Second,
	TLSHandshakeTimeout: 10 * time.Second,
}

// IsPrivateIP reports whether ip is loopback, private or link-local.
func IsPrivateIP(ip net.IP) bool {
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast()
}
