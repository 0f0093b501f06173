package offline

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testGeneration = "mobilerp-test"

// newTestInterceptor fronts a live httptest upstream. Close the returned
// server to simulate going offline.
func newTestInterceptor(t *testing.T, upstream http.Handler) (*Interceptor, *httptest.Server, *MemoryGenerationCache) {
	t.Helper()
	server := httptest.NewServer(upstream)
	target, err := url.Parse(server.URL)
	require.NoError(t, err)

	cache := NewMemoryGenerationCache()
	interceptor := NewInterceptor(target, &http.Client{Timeout: time.Second}, cache, testGeneration)
	return interceptor, server, cache
}

func appStub() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tasks", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":[]}`))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html>shell</html>"))
	})
	mux.HandleFunc("/static/app.js", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/javascript")
		w.Write([]byte("console.log('app')"))
	})
	return mux
}

func serve(interceptor *Interceptor, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	interceptor.ServeHTTP(rec, req)
	return rec
}

func TestAPIRequest_ForwardedWhenOnline(t *testing.T) {
	interceptor, server, _ := newTestInterceptor(t, appStub())
	defer server.Close()

	rec := serve(interceptor, httptest.NewRequest(http.MethodGet, "/api/tasks", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"data":[]}`, rec.Body.String())
}

func TestAPIRequest_OfflineSynthesizes503(t *testing.T) {
	interceptor, server, _ := newTestInterceptor(t, appStub())
	server.Close()

	for _, path := range []string{"/api/tasks", "/api/sync", "/api/dashboard/123"} {
		rec := serve(interceptor, httptest.NewRequest(http.MethodPost, path, strings.NewReader("{}")))

		require.Equal(t, http.StatusServiceUnavailable, rec.Code, path)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, false, body["success"])
		assert.Equal(t, "You are offline. Please check your connection and try again.", body["message"])
	}
}

func TestAPIRequest_NeverServedFromCache(t *testing.T) {
	interceptor, server, cache := newTestInterceptor(t, appStub())

	// Even a cached entry under the API key must not be replayed.
	require.NoError(t, cache.Put(context.Background(), testGeneration, "/api/tasks", &CachedResponse{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       []byte(`{"success":true,"data":["stale"]}`),
		StoredAt:   time.Now(),
	}))
	server.Close()

	rec := serve(interceptor, httptest.NewRequest(http.MethodGet, "/api/tasks", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.NotContains(t, rec.Body.String(), "stale")
}

func TestAsset_NetworkFirstPopulatesCache(t *testing.T) {
	interceptor, server, cache := newTestInterceptor(t, appStub())
	defer server.Close()

	rec := serve(interceptor, httptest.NewRequest(http.MethodGet, "/static/app.js", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "console.log('app')", rec.Body.String())

	entry, err := cache.Get(context.Background(), testGeneration, "/static/app.js")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, entry.StatusCode)
	assert.Equal(t, []byte("console.log('app')"), entry.Body)
}

func TestAsset_OfflineReplaysCachedResponse(t *testing.T) {
	interceptor, server, _ := newTestInterceptor(t, appStub())

	rec := serve(interceptor, httptest.NewRequest(http.MethodGet, "/static/app.js", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	server.Close()

	rec = serve(interceptor, httptest.NewRequest(http.MethodGet, "/static/app.js", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "console.log('app')", rec.Body.String())
	assert.Equal(t, "application/javascript", rec.Header().Get("Content-Type"))
}

func TestAsset_ErrorResponsesNotCached(t *testing.T) {
	interceptor, server, cache := newTestInterceptor(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	rec := serve(interceptor, httptest.NewRequest(http.MethodGet, "/static/missing.js", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	_, err := cache.Get(context.Background(), testGeneration, "/static/missing.js")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestNavigation_OfflineFallsBackToCachedShell(t *testing.T) {
	interceptor, server, _ := newTestInterceptor(t, appStub())

	rec := serve(interceptor, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	server.Close()

	req := httptest.NewRequest(http.MethodGet, "/tasks/overview", nil)
	req.Header.Set("Sec-Fetch-Mode", "navigate")
	rec = serve(interceptor, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<html>shell</html>", rec.Body.String())
}

func TestNavigation_OfflineNoShellCached(t *testing.T) {
	interceptor, server, _ := newTestInterceptor(t, appStub())
	server.Close()

	req := httptest.NewRequest(http.MethodGet, "/tasks/overview", nil)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	rec := serve(interceptor, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "You are offline. Please check your connection.")
}

func TestNonNavigationMiss_Offline(t *testing.T) {
	interceptor, server, _ := newTestInterceptor(t, appStub())
	server.Close()

	rec := serve(interceptor, httptest.NewRequest(http.MethodGet, "/static/never-seen.css", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "Resource unavailable offline")
}

func TestNonGet_PassthroughOfflineFails(t *testing.T) {
	interceptor, server, _ := newTestInterceptor(t, appStub())
	server.Close()

	rec := serve(interceptor, httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("payload")))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestActivate_EvictsForeignGenerations(t *testing.T) {
	interceptor, server, cache := newTestInterceptor(t, appStub())
	defer server.Close()
	ctx := context.Background()

	entry := &CachedResponse{StatusCode: http.StatusOK, Header: http.Header{}, Body: []byte("x"), StoredAt: time.Now()}
	require.NoError(t, cache.Put(ctx, "mobilerp-old", "/a", entry))
	require.NoError(t, cache.Put(ctx, "mobilerp-older", "/b", entry))
	require.NoError(t, cache.Put(ctx, testGeneration, "/keep", entry))

	require.NoError(t, interceptor.Activate(ctx))

	generations, err := cache.Generations(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{testGeneration}, generations)

	_, err = cache.Get(ctx, testGeneration, "/keep")
	assert.NoError(t, err)
}

func TestTriggerSync(t *testing.T) {
	interceptor, server, _ := newTestInterceptor(t, appStub())
	defer server.Close()
	ctx := context.Background()

	fired := 0
	interceptor.OnSync(SyncPendingRequests, func(ctx context.Context) error {
		fired++
		return nil
	})

	require.NoError(t, interceptor.TriggerSync(ctx, SyncPendingRequests))
	assert.Equal(t, 1, fired)

	err := interceptor.TriggerSync(ctx, "unregistered-tag")
	assert.ErrorIs(t, err, ErrUnknownSyncTag)
}
