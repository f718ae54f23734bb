// Package httpclient configures the HTTP client used to call upstream services.
package httpclient

import (
	"crypto/tls"
	"net"
	"net/http"
	"strings"
	"time"
)

// NewOutbound creates the shared outbound client. Hosts listed in
// insecureHosts (self-hosted county GIS servers with expired or self-signed
// certificates) skip certificate verification; every other host gets standard
// validation. The allowlist is matched per hostname, never by wildcard.
func NewOutbound(insecureHosts []string) *http.Client {
	dialer := &net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}

	strict := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		MaxIdleConns:          256,
		MaxIdleConnsPerHost:   128,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	if len(insecureHosts) == 0 {
		return &http.Client{Transport: strict, Timeout: 30 * time.Second}
	}

	relaxed := strict.Clone()
	relaxed.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} // #nosec G402 -- allow-listed county servers only

	rt := &allowlistTransport{
		strict:  strict,
		relaxed: relaxed,
		hosts:   normalizeHosts(insecureHosts),
	}
	return &http.Client{Transport: rt, Timeout: 30 * time.Second}
}

type allowlistTransport struct {
	strict  http.RoundTripper
	relaxed http.RoundTripper
	hosts   map[string]struct{}
}

func (t *allowlistTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	host := strings.ToLower(req.URL.Hostname())
	if _, ok := t.hosts[host]; ok {
		return t.relaxed.RoundTrip(req)
	}
	return t.strict.RoundTrip(req)
}

func normalizeHosts(hosts []string) map[string]struct{} {
	out := make(map[string]struct{}, len(hosts))
	for _, h := range hosts {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" {
			out[h] = struct{}{}
		}
	}
	return out
}
