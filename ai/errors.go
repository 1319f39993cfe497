package ai

import "errors"

// ErrRateLimited indicates the provider rejected a request for exceeding its
// rate limits. The failure is retryable after a delay; everything else a
// provider returns should be treated as fatal for the request.
var ErrRateLimited = errors.New("embedding provider rate limited")
