// Package offline is the server-side rendition of the app's offline cache
// controller: an http.Handler fronting the frontend origin that applies
// cache-first, network-first and offline-fallback policies per request
// class. It holds named cache generations, pre-populates a fixed asset
// list on install, and prunes stale generations on activate.
package offline

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/arhub/ar-hub-backend/errs"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Current cache generation names. Bump the suffix to invalidate everything
// a previous generation stored; Activate drops the old generations.
const (
	StaticCacheName  = "arhub-static-v2"
	DynamicCacheName = "arhub-dynamic-v2"
)

// OfflinePath is the dedicated fallback page served when a navigation
// fails and no cached copy exists.
const OfflinePath = "/offline.html"

// DefaultPrecache is the fixed list of static assets warmed on install.
var DefaultPrecache = []string{
	"/",
	OfflinePath,
	"/manifest.json",
	"/favicon.ico",
}

const maxCachedBody = 4 * 1024 * 1024

type cachedResponse struct {
	status   int
	header   http.Header
	body     []byte
	storedAt time.Time
}

// Notifier displays a push notification. The push handler is a stub that
// only logs and re-dispatches here.
type Notifier interface {
	Show(title, body string)
}

// Controller intercepts GET traffic for the configured origin and serves
// it through the named caches. Everything else is proxied untouched.
type Controller struct {
	origin   *url.URL
	client   *http.Client
	precache []string
	notifier Notifier
	logger   zerolog.Logger

	mu     sync.RWMutex
	caches map[string]map[string]*cachedResponse
}

type Option func(*Controller)

func WithClient(client *http.Client) Option {
	return func(c *Controller) { c.client = client }
}

func WithPrecache(paths []string) Option {
	return func(c *Controller) { c.precache = paths }
}

func WithNotifier(n Notifier) Option {
	return func(c *Controller) { c.notifier = n }
}

func New(origin string, opts ...Option) (*Controller, error) {
	u, err := url.Parse(origin)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errs.NewConfigMissingError("FRONTEND_ORIGIN")
	}

	c := &Controller{
		origin:   u,
		client:   &http.Client{Timeout: 30 * time.Second},
		precache: DefaultPrecache,
		logger:   log.With().Str("handlerName", "offlineController").Logger(),
		caches: map[string]map[string]*cachedResponse{
			StaticCacheName:  {},
			DynamicCacheName: {},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Install warms the static cache with the precache list. A failed precache
// fetch fails the install, mirroring cache.addAll semantics.
func (c *Controller) Install(ctx context.Context) error {
	for _, path := range c.precache {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.upstreamURL(path), nil)
		if err != nil {
			return err
		}
		resp, err := c.fetch(req)
		if err != nil {
			c.logger.Error().Err(err).Str("path", path).Msg("precache fetch failed")
			return err
		}
		c.store(StaticCacheName, path, resp)
	}
	c.logger.Info().Int("assets", len(c.precache)).Msg("precache installed")
	return nil
}

// Activate deletes every cache generation that is not one of the current
// two names and takes over request handling.
func (c *Controller) Activate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for name := range c.caches {
		if name != StaticCacheName && name != DynamicCacheName {
			delete(c.caches, name)
			c.logger.Info().Str("cache", name).Msg("stale cache deleted")
		}
	}
	if c.caches[StaticCacheName] == nil {
		c.caches[StaticCacheName] = map[string]*cachedResponse{}
	}
	if c.caches[DynamicCacheName] == nil {
		c.caches[DynamicCacheName] = map[string]*cachedResponse{}
	}
}

// HandleSync is the background-sync stub: nothing to replay server-side.
func (c *Controller) HandleSync(tag string) {
	c.logger.Info().Str("tag", tag).Msg("background sync event")
}

// HandlePush logs the push payload and re-dispatches it to the notifier.
func (c *Controller) HandlePush(title, body string) {
	c.logger.Info().Str("title", title).Msg("push event")
	if c.notifier != nil {
		c.notifier.Show(title, body)
	}
}

func (c *Controller) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Only GET requests are intercepted; everything else is proxied.
	if r.Method != http.MethodGet {
		c.passthrough(w, r)
		return
	}
	// Cross-origin requests pass through untouched.
	if r.URL.IsAbs() && r.URL.Host != c.origin.Host {
		c.passthrough(w, r)
		return
	}

	switch classify(r) {
	case classImage, classScript, classStyle:
		c.cacheFirst(w, r, StaticCacheName)
	case classDocument:
		c.documentFetch(w, r)
	default:
		c.apiNetworkFirst(w, r)
	}
}

// cacheFirst serves from cache when present, otherwise fetches and stores a
// copy of a successful response before returning it.
func (c *Controller) cacheFirst(w http.ResponseWriter, r *http.Request, cacheName string) {
	if cached := c.lookup(cacheName, r.URL.Path); cached != nil {
		writeCached(w, cached)
		return
	}

	resp, err := c.fetchPath(r)
	if err != nil {
		c.networkError(w)
		return
	}
	if resp.status == http.StatusOK {
		c.store(cacheName, r.URL.Path, resp)
	}
	writeCached(w, resp)
}

// documentFetch is network-first. Navigations fall back to a cached copy
// and then to the offline page; other document requests get a plain
// network error.
func (c *Controller) documentFetch(w http.ResponseWriter, r *http.Request) {
	resp, err := c.fetchPath(r)
	if err == nil {
		if resp.status == http.StatusOK {
			c.store(DynamicCacheName, r.URL.Path, resp)
		}
		writeCached(w, resp)
		return
	}

	if !isNavigation(r) {
		c.networkError(w)
		return
	}
	if cached := c.lookup(DynamicCacheName, r.URL.Path); cached != nil {
		writeCached(w, cached)
		return
	}
	if offline := c.lookup(StaticCacheName, OfflinePath); offline != nil {
		writeCached(w, offline)
		return
	}
	c.networkError(w)
}

// apiNetworkFirst fetches live, opportunistically caching successful GET
// responses, and serves the cached copy on failure. Only GET requests
// reach this point, so the cached fallback is always permitted.
func (c *Controller) apiNetworkFirst(w http.ResponseWriter, r *http.Request) {
	key := r.URL.RequestURI()

	resp, err := c.fetchPath(r)
	if err == nil {
		if resp.status == http.StatusOK {
			c.store(DynamicCacheName, key, resp)
		}
		writeCached(w, resp)
		return
	}

	if cached := c.lookup(DynamicCacheName, key); cached != nil {
		writeCached(w, cached)
		return
	}
	c.networkError(w)
}

func (c *Controller) passthrough(w http.ResponseWriter, r *http.Request) {
	resp, err := c.fetchPath(r)
	if err != nil {
		c.networkError(w)
		return
	}
	writeCached(w, resp)
}

func (c *Controller) upstreamURL(path string) string {
	return c.origin.Scheme + "://" + c.origin.Host + path
}

func (c *Controller) fetchPath(r *http.Request) (*cachedResponse, error) {
	target := c.upstreamURL(r.URL.Path)
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}
	req, err := http.NewRequestWithContext(r.Context(), r.Method, target, r.Body)
	if err != nil {
		return nil, err
	}
	for k, v := range r.Header {
		req.Header[k] = v
	}
	req.Header.Del("Host")
	return c.fetch(req)
}

func (c *Controller) fetch(req *http.Request) (*cachedResponse, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errs.NewUpstreamFetchError(req.URL.String(), err)
	}
	defer resp.Body.Close()

	// The body is always read in full so clients never get a response
	// shorter than its Content-Length; store rejects oversized bodies.
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.NewUpstreamFetchError(req.URL.String(), err)
	}
	return &cachedResponse{
		status:   resp.StatusCode,
		header:   resp.Header.Clone(),
		body:     body,
		storedAt: time.Now(),
	}, nil
}

func (c *Controller) lookup(cacheName, key string) *cachedResponse {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cache, ok := c.caches[cacheName]
	if !ok {
		return nil
	}
	return cache[key]
}

// store caches a response unless its body exceeds the cache cap. Oversized
// responses are served live each time instead of being cached.
func (c *Controller) store(cacheName, key string, resp *cachedResponse) {
	if len(resp.body) > maxCachedBody {
		c.logger.Debug().Str("key", key).Int("size", len(resp.body)).Msg("response exceeds cache cap, not cached")
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	cache, ok := c.caches[cacheName]
	if !ok {
		cache = map[string]*cachedResponse{}
		c.caches[cacheName] = cache
	}
	cache[key] = resp
}

func (c *Controller) networkError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusServiceUnavailable)
	w.Write([]byte("Network error"))
}

func writeCached(w http.ResponseWriter, resp *cachedResponse) {
	for k, vals := range resp.header {
		for _, v := range vals {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(resp.status)
	w.Write(resp.body)
}

type requestClass int

const (
	classOther requestClass = iota
	classImage
	classScript
	classStyle
	classDocument
)

var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".webp": true, ".svg": true, ".ico": true, ".avif": true,
}

func classify(r *http.Request) requestClass {
	path := strings.ToLower(r.URL.Path)
	if idx := strings.LastIndex(path, "."); idx >= 0 {
		switch ext := path[idx:]; {
		case imageExts[ext]:
			return classImage
		case ext == ".js" || ext == ".mjs":
			return classScript
		case ext == ".css":
			return classStyle
		}
	}
	if strings.Contains(r.Header.Get("Accept"), "text/html") {
		return classDocument
	}
	return classOther
}

// isNavigation distinguishes page navigations from other document fetches.
// Browsers mark navigations with Sec-Fetch-Mode; requests without the
// header that accept HTML are treated as navigations too.
func isNavigation(r *http.Request) bool {
	mode := r.Header.Get("Sec-Fetch-Mode")
	return mode == "navigate" || mode == ""
}
