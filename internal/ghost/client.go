// Package ghost is a read-only client for the Ghost Content API.
package ghost

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/rebron1900/bymattlee-11ty-starter/internal/cache"
	"github.com/rebron1900/bymattlee-11ty-starter/internal/model"
)

const defaultVersion = "v5.0"

// Options configures a Client.
type Options struct {
	URL     string
	Key     string
	Version string
	Timeout time.Duration

	// RateLimit caps requests per second. Zero means unlimited.
	RateLimit float64

	Cache      cache.Cache
	CacheTTL   time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client issues browse queries against one Ghost site.
type Client struct {
	baseURL  string
	key      string
	version  string
	http     *http.Client
	limiter  *rate.Limiter
	cache    cache.Cache
	cacheTTL time.Duration
	log      *slog.Logger
}

// New validates opts and returns a client.
func New(opts Options) (*Client, error) {
	if opts.URL == "" {
		return nil, errors.New("ghost: url is required")
	}
	if opts.Key == "" {
		return nil, errors.New("ghost: content API key is required")
	}
	if _, err := url.Parse(opts.URL); err != nil {
		return nil, fmt.Errorf("ghost: invalid url: %w", err)
	}

	c := &Client{
		baseURL:  strings.TrimSuffix(opts.URL, "/"),
		key:      opts.Key,
		version:  opts.Version,
		http:     opts.HTTPClient,
		cache:    opts.Cache,
		cacheTTL: opts.CacheTTL,
		log:      opts.Logger,
	}
	if c.version == "" {
		c.version = defaultVersion
	}
	if c.http == nil {
		timeout := opts.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		c.http = &http.Client{Timeout: timeout}
	}
	if opts.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	return c, nil
}

// BrowseParams are the query options shared by every browse endpoint.
type BrowseParams struct {
	Include string
	Filter  string
	Fields  string
	Order   string
	// Limit is a number or "all".
	Limit string
}

func (p BrowseParams) values() url.Values {
	v := url.Values{}
	if p.Include != "" {
		v.Set("include", p.Include)
	}
	if p.Filter != "" {
		v.Set("filter", p.Filter)
	}
	if p.Fields != "" {
		v.Set("fields", p.Fields)
	}
	if p.Order != "" {
		v.Set("order", p.Order)
	}
	if p.Limit != "" {
		v.Set("limit", p.Limit)
	}
	return v
}

// Posts browses posts.
func (c *Client) Posts(ctx context.Context, p BrowseParams) ([]*model.Post, error) {
	var resp struct {
		Posts []*model.Post `json:"posts"`
	}
	if err := c.Browse(ctx, "posts", p, &resp); err != nil {
		return nil, err
	}
	return resp.Posts, nil
}

// Pages browses pages.
func (c *Client) Pages(ctx context.Context, p BrowseParams) ([]*model.Doc, error) {
	var resp struct {
		Pages []*model.Doc `json:"pages"`
	}
	if err := c.Browse(ctx, "pages", p, &resp); err != nil {
		return nil, err
	}
	return resp.Pages, nil
}

// Authors browses authors.
func (c *Client) Authors(ctx context.Context, p BrowseParams) ([]*model.Author, error) {
	var resp struct {
		Authors []*model.Author `json:"authors"`
	}
	if err := c.Browse(ctx, "authors", p, &resp); err != nil {
		return nil, err
	}
	return resp.Authors, nil
}

// Tags browses tags.
func (c *Client) Tags(ctx context.Context, p BrowseParams) ([]*model.Tag, error) {
	var resp struct {
		Tags []*model.Tag `json:"tags"`
	}
	if err := c.Browse(ctx, "tags", p, &resp); err != nil {
		return nil, err
	}
	return resp.Tags, nil
}

// Browse fetches resource and decodes the JSON body into out.
func (c *Client) Browse(ctx context.Context, resource string, p BrowseParams, out any) error {
	q := p.values()
	// The cache key is built before the API key is added so the key never
	// ends up in shared cache key names.
	cacheKey := fmt.Sprintf("ghost:%s:%s?%s", c.baseURL, resource, q.Encode())
	q.Set("key", c.key)
	endpoint := fmt.Sprintf("%s/ghost/api/content/%s/?%s", c.baseURL, resource, q.Encode())

	body, err := c.get(ctx, resource, endpoint, cacheKey)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("ghost: decoding %s: %w", resource, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, resource, endpoint, cacheKey string) ([]byte, error) {
	if c.cache != nil {
		if body, err := c.cache.Get(ctx, cacheKey); err == nil {
			c.log.Debug("ghost cache hit", "resource", resource)
			return body, nil
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			c.log.Warn("ghost cache read failed", "resource", resource, "error", err)
		}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("ghost: %s: %w", resource, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("ghost: building %s request: %w", resource, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Version", c.version)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ghost: fetching %s: %w", resource, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("ghost: reading %s: %w", resource, err)
	}
	c.log.Debug("ghost request", "resource", resource, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode != http.StatusOK {
		return nil, newAPIError(resource, resp.StatusCode, body)
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, cacheKey, body, c.cacheTTL); err != nil {
			c.log.Warn("ghost cache write failed", "resource", resource, "error", err)
		}
	}
	return body, nil
}
