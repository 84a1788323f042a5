package ghost

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rebron1900/bymattlee-11ty-starter/internal/cache"
)

func newTestClient(t *testing.T, srv *httptest.Server, opts Options) *Client {
	t.Helper()
	opts.URL = srv.URL
	opts.Key = "test-key"
	c, err := New(opts)
	require.NoError(t, err)
	return c
}

func TestNewValidates(t *testing.T) {
	_, err := New(Options{Key: "k"})
	assert.Error(t, err)

	_, err = New(Options{URL: "https://1900.live"})
	assert.Error(t, err)
}

func TestPostsSendsQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ghost/api/content/posts/", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Equal(t, "tags,authors", r.URL.Query().Get("include"))
		assert.Equal(t, "visibility:public", r.URL.Query().Get("filter"))
		assert.Equal(t, "all", r.URL.Query().Get("limit"))
		assert.Equal(t, "v5.0", r.Header.Get("Accept-Version"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"posts":[{"id":"p1","title":"Hello","url":"https://1900.live/hello/",
			"published_at":"2023-05-01T00:00:00.000Z","featured":true,
			"primary_author":{"id":"a1","url":"https://1900.live/author/a/"},
			"tags":[{"slug":"go","visibility":"public"}]}],"meta":{}}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, Options{})
	posts, err := c.Posts(context.Background(), BrowseParams{
		Include: "tags,authors",
		Filter:  "visibility:public",
		Limit:   "all",
	})
	require.NoError(t, err)
	require.Len(t, posts, 1)

	p := posts[0]
	assert.Equal(t, "Hello", p.Title)
	assert.True(t, p.Featured)
	assert.Equal(t, "a1", p.PrimaryAuthor.ID)
	assert.Equal(t, time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC), p.PublishedAt.UTC())
	require.Len(t, p.Tags, 1)
	assert.Equal(t, "go", p.Tags[0].Slug)
}

func TestAPIErrorIsDecoded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":[{"message":"Unknown Content API Key","type":"UnauthorizedError"}]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, Options{})
	_, err := c.Tags(context.Background(), BrowseParams{})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "UnauthorizedError", apiErr.Type)
	assert.Contains(t, err.Error(), "Unknown Content API Key")
}

func TestNonJSONErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, Options{})
	_, err := c.Authors(context.Background(), BrowseParams{})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "bad gateway", apiErr.Message)
}

func TestResponsesAreCached(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{"pages":[{"id":"d1","title":"About"}]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, Options{Cache: cache.NewMemoryCache(time.Minute)})
	for i := 0; i < 3; i++ {
		docs, err := c.Pages(context.Background(), BrowseParams{Limit: "all"})
		require.NoError(t, err)
		require.Len(t, docs, 1)
	}
	assert.Equal(t, int32(1), hits.Load())
}

// keyRecorder records the keys written to the wrapped cache.
type keyRecorder struct {
	*cache.MemoryCache
	keys []string
}

func (r *keyRecorder) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	r.keys = append(r.keys, key)
	return r.MemoryCache.Set(ctx, key, value, ttl)
}

func TestCacheKeysOmitAPIKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		_, _ = w.Write([]byte(`{"tags":[]}`))
	}))
	defer srv.Close()

	rec := &keyRecorder{MemoryCache: cache.NewMemoryCache(time.Minute)}
	c := newTestClient(t, srv, Options{Cache: rec})
	_, err := c.Tags(context.Background(), BrowseParams{Include: "count.posts"})
	require.NoError(t, err)

	require.Len(t, rec.keys, 1)
	assert.Contains(t, rec.keys[0], "tags")
	assert.Contains(t, rec.keys[0], "count.posts")
	assert.False(t, strings.Contains(rec.keys[0], "test-key"), rec.keys[0])
}

func TestContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"posts":[]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, Options{RateLimit: 1})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Posts(ctx, BrowseParams{})
	assert.ErrorIs(t, err, context.Canceled)
}
