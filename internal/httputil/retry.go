// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared by the catalog client.
package httputil

import (
	"context"
	"io"
	"math"
	"net/http"
	"time"
)

// RetryBaseDelay controls the base duration for exponential backoff between
// retry attempts. Tests override this to avoid real sleeps.
var RetryBaseDelay = 500 * time.Millisecond

// DoWithRetry executes an HTTP request and retries transient failures:
// transport errors, 5xx responses, and HTTP 429. Non-retryable statuses
// (2xx, 3xx, 4xx except 429) return immediately.
//
// retries is the number of additional attempts after the first; 0 disables
// retrying entirely, so a request runs at most retries+1 times. The backoff
// starts at RetryBaseDelay and doubles each attempt. Retryable response
// bodies are drained and closed before sleeping. If the context is cancelled
// during a backoff wait the function returns ctx.Err(). After exhausting
// retries the last response (or transport error) is returned so the caller
// can inspect it.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, retries int) (*http.Response, error) {
	if retries < 0 {
		retries = 0
	}

	for attempt := 0; ; attempt++ {
		resp, err := client.Do(req.Clone(ctx))
		if err == nil && !retryableStatus(resp.StatusCode) {
			return resp, nil
		}

		// Out of retries; surface the last outcome as-is.
		if attempt >= retries {
			return resp, err
		}

		// Drain and close the body before retrying.
		if resp != nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}

		backoff := time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
}

func retryableStatus(code int) bool {
	return code >= 500 || code == http.StatusTooManyRequests
}
