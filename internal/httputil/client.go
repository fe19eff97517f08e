// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"net"
	"net/http"
	"time"
)

// NewClient builds an HTTP client with separate connection and request
// bounds. connectTimeout caps dialing plus TLS setup; requestTimeout caps the
// whole exchange including the body read. Zero values leave the respective
// bound unset. Redirects are followed with the default policy.
func NewClient(connectTimeout, requestTimeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout: connectTimeout,
		}).DialContext,
		TLSHandshakeTimeout: connectTimeout,
	}
	return &http.Client{
		Transport: transport,
		Timeout:   requestTimeout,
	}
}
