package offline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/prudhvinik1/mobilerp/internal/observability"
)

// SyncPendingRequests is the deferred-sync tag fired when connectivity
// returns, for replaying queued mutating requests.
const SyncPendingRequests = "sync-pending-requests"

const offlineAPIMessage = "You are offline. Please check your connection and try again."

// ErrUnknownSyncTag is returned when no hook is registered for a tag.
var ErrUnknownSyncTag = errors.New("offline: no sync hook for tag")

// Interceptor fronts the app server at the transport boundary.
//
// API requests go to the network only; a failure synthesizes a structured
// 503 rather than ever serving stale API data. All other GET requests are
// network-first: successful responses are persisted into the current cache
// generation and replayed when the network is gone.
type Interceptor struct {
	upstream   *url.URL
	client     *http.Client
	cache      GenerationCache
	generation string

	mu        sync.RWMutex
	syncHooks map[string]func(context.Context) error
}

func NewInterceptor(upstream *url.URL, client *http.Client, cache GenerationCache, generation string) *Interceptor {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Interceptor{
		upstream:   upstream,
		client:     client,
		cache:      cache,
		generation: generation,
		syncHooks:  make(map[string]func(context.Context) error),
	}
}

// Activate deletes every cache generation whose tag does not match the
// current one, leaving exactly one live generation.
func (i *Interceptor) Activate(ctx context.Context) error {
	generations, err := i.cache.Generations(ctx)
	if err != nil {
		return err
	}
	for _, generation := range generations {
		if generation == i.generation {
			continue
		}
		if err := i.cache.DeleteGeneration(ctx, generation); err != nil {
			return err
		}
		log.Printf("evicted stale cache generation %s", generation)
	}
	return nil
}

// OnSync registers a deferred-sync hook under a tag. The pending-request
// queue feeding the hook is the caller's concern.
func (i *Interceptor) OnSync(tag string, hook func(context.Context) error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.syncHooks[tag] = hook
}

// TriggerSync fires the hook registered under tag, typically once
// connectivity has returned.
func (i *Interceptor) TriggerSync(ctx context.Context, tag string) error {
	i.mu.RLock()
	hook, ok := i.syncHooks[tag]
	i.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSyncTag, tag)
	}
	return hook(ctx)
}

func (i *Interceptor) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		i.serveAPI(w, r)
		return
	}
	if r.Method != http.MethodGet {
		// Only GETs to non-API origins are cache-eligible.
		i.servePassthrough(w, r)
		return
	}
	i.serveAsset(w, r)
}

// serveAPI forwards to the network with no cache fallback. Data integrity
// for write-capable endpoints takes priority over availability.
func (i *Interceptor) serveAPI(w http.ResponseWriter, r *http.Request) {
	resp, err := i.forward(r)
	if err != nil {
		observability.RecordEdgeRequest(observability.EdgeOutcomeAPIOffline)
		writeOfflineAPI(w)
		return
	}
	defer resp.Body.Close()

	observability.RecordEdgeRequest(observability.EdgeOutcomeNetwork)
	copyResponse(w, resp)
}

func (i *Interceptor) servePassthrough(w http.ResponseWriter, r *http.Request) {
	resp, err := i.forward(r)
	if err != nil {
		observability.RecordEdgeRequest(observability.EdgeOutcomeFallback)
		http.Error(w, "Resource unavailable offline", http.StatusServiceUnavailable)
		return
	}
	defer resp.Body.Close()

	observability.RecordEdgeRequest(observability.EdgeOutcomeNetwork)
	copyResponse(w, resp)
}

// serveAsset applies network-first-then-cache to static content.
func (i *Interceptor) serveAsset(w http.ResponseWriter, r *http.Request) {
	key := cacheKeyFor(r)

	resp, err := i.forward(r)
	if err == nil {
		defer resp.Body.Close()
		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			observability.RecordEdgeRequest(observability.EdgeOutcomeFallback)
			i.serveFromCache(w, r, key)
			return
		}

		if resp.StatusCode < 300 {
			entry := &CachedResponse{
				StatusCode: resp.StatusCode,
				Header:     resp.Header.Clone(),
				Body:       body,
				StoredAt:   time.Now(),
			}
			if err := i.cache.Put(r.Context(), i.generation, key, entry); err != nil {
				log.Printf("failed to cache %s: %v", key, err)
			}
		}

		observability.RecordEdgeRequest(observability.EdgeOutcomeNetwork)
		writeRaw(w, resp.StatusCode, resp.Header, body)
		return
	}

	i.serveFromCache(w, r, key)
}

func (i *Interceptor) serveFromCache(w http.ResponseWriter, r *http.Request, key string) {
	entry, err := i.cache.Get(r.Context(), i.generation, key)
	if err == nil {
		observability.RecordEdgeRequest(observability.EdgeOutcomeCache)
		writeRaw(w, entry.StatusCode, entry.Header, entry.Body)
		return
	}

	if isNavigation(r) {
		// Full-page navigations fall back to the cached root document.
		if root, err := i.cache.Get(r.Context(), i.generation, "/"); err == nil {
			observability.RecordEdgeRequest(observability.EdgeOutcomeFallback)
			writeRaw(w, root.StatusCode, root.Header, root.Body)
			return
		}
		observability.RecordEdgeRequest(observability.EdgeOutcomeFallback)
		http.Error(w, "You are offline. Please check your connection.", http.StatusServiceUnavailable)
		return
	}

	observability.RecordEdgeRequest(observability.EdgeOutcomeFallback)
	http.Error(w, "Resource unavailable offline", http.StatusServiceUnavailable)
}

func (i *Interceptor) forward(r *http.Request) (*http.Response, error) {
	target := *i.upstream
	target.Path = r.URL.Path
	target.RawQuery = r.URL.RawQuery

	req, err := http.NewRequestWithContext(r.Context(), r.Method, target.String(), r.Body)
	if err != nil {
		return nil, err
	}
	req.Header = r.Header.Clone()
	return i.client.Do(req)
}

func cacheKeyFor(r *http.Request) string {
	if r.URL.RawQuery == "" {
		return r.URL.Path
	}
	return r.URL.Path + "?" + r.URL.RawQuery
}

func isNavigation(r *http.Request) bool {
	if r.Header.Get("Sec-Fetch-Mode") == "navigate" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

func writeOfflineAPI(w http.ResponseWriter) {
	body, _ := json.Marshal(map[string]any{
		"success": false,
		"message": offlineAPIMessage,
	})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusServiceUnavailable)
	w.Write(body)
}

func copyResponse(w http.ResponseWriter, resp *http.Response) {
	copyHeader(w.Header(), resp.Header)
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		log.Printf("failed to copy upstream response: %v", err)
	}
}

func writeRaw(w http.ResponseWriter, status int, header http.Header, body []byte) {
	copyHeader(w.Header(), header)
	w.WriteHeader(status)
	if _, err := io.Copy(w, bytes.NewReader(body)); err != nil {
		log.Printf("failed to write response: %v", err)
	}
}

func copyHeader(dst, src http.Header) {
	for key, values := range src {
		for _, value := range values {
			dst.Add(key, value)
		}
	}
}
