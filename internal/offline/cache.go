// Package offline implements the request interceptor that sits between the
// mobile client and the app server. It applies network-first-with-cache
// policies for static content and synthesizes structured unavailable
// responses for API calls, mirroring nothing of the application layer above
// it: its only state is the generation cache it owns.
package offline

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// ErrCacheMiss is returned when a generation holds no entry for a key.
var ErrCacheMiss = errors.New("offline: cache miss")

// CachedResponse is one persisted network response.
type CachedResponse struct {
	StatusCode int         `json:"statusCode"`
	Header     http.Header `json:"header"`
	Body       []byte      `json:"body"`
	StoredAt   time.Time   `json:"storedAt"`
}

// GenerationCache stores responses under named cache generations. A
// generation is superseded wholesale on deployment; Activate on the
// interceptor deletes every generation but the live one.
type GenerationCache interface {
	Get(ctx context.Context, generation, key string) (*CachedResponse, error)
	Put(ctx context.Context, generation, key string, resp *CachedResponse) error
	Generations(ctx context.Context) ([]string, error)
	DeleteGeneration(ctx context.Context, generation string) error
}
