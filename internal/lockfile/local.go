package lockfile

import (
	"crypto/tls"
	"net/http"
	"time"
)

// URL returns the loopback base URL of the local client for scheme
// ("https" or "wss").
func (l *Lockfile) URL(scheme string) string {
	return scheme + "://127.0.0.1:" + l.Port
}

// HTTPClient returns a client for the local loopback endpoints. The local
// client serves a self-signed certificate, so verification is off; never use
// this client for remote hosts.
func HTTPClient(timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // loopback only
	return &http.Client{Transport: transport, Timeout: timeout}
}
