package collect

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"swellforecaster/config"
)

// Fetcher is the minimal fetch surface agents depend on, split out so tests
// can substitute canned responses.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// Context carries everything a source agent needs for one collection run:
// the shared HTTP client with retry and SSL-exception handling, the bundle
// directory to save into, and the parsed configuration.
type Context struct {
	Cfg    *config.Config
	RunID  string
	Bundle string

	client   *http.Client
	insecure *http.Client
	cache    *FetchCache

	mu       sync.Mutex
	lastCall map[string]time.Time
	breakers map[string]*gobreaker.CircuitBreaker
}

// NewContext creates the collection context and the bundle directory.
func NewContext(cfg *config.Config, runID string) (*Context, error) {
	bundle := filepath.Join(cfg.General.DataDir, runID)
	if err := os.MkdirAll(bundle, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create bundle directory: %w", err)
	}

	c := &Context{
		Cfg:    cfg,
		RunID:  runID,
		Bundle: bundle,
		client: &http.Client{Timeout: cfg.General.Timeout},
		insecure: &http.Client{
			Timeout: cfg.General.Timeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
		},
		lastCall: make(map[string]time.Time),
		breakers: make(map[string]*gobreaker.CircuitBreaker),
	}

	if cfg.General.RedisCache && cfg.General.RedisAddr != "" {
		cache, err := NewFetchCache(cfg.General.RedisAddr, cfg.General.CacheTTL)
		if err != nil {
			log.Printf("Warning: fetch cache unavailable, continuing without: %v", err)
		} else {
			c.cache = cache
		}
	}

	return c, nil
}

// Close releases the optional cache connection.
func (c *Context) Close() error {
	if c.cache != nil {
		return c.cache.Close()
	}
	return nil
}

// Fetch retrieves a URL with retries and exponential backoff. 404 and 403
// fail immediately without retrying; API-limit 400s from Windy and Stormglass
// are treated the same way. Hosts that keep failing trip a circuit breaker so
// later requests in the same run skip them immediately.
func (c *Context) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, rawURL, nil, nil, true)
}

// FetchHeaders is Fetch with extra request headers (API keys and the like).
// Responses are never cached since they may be credential-specific.
func (c *Context) FetchHeaders(ctx context.Context, rawURL string, headers map[string]string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, rawURL, nil, headers, false)
}

// Post sends a JSON body and returns the response bytes, with the same retry
// and breaker behavior as Fetch.
func (c *Context) Post(ctx context.Context, rawURL string, body any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	return c.do(ctx, http.MethodPost, rawURL, payload, map[string]string{"Content-Type": "application/json"}, false)
}

func (c *Context) do(ctx context.Context, method, rawURL string, body []byte, headers map[string]string, cacheable bool) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid url %s: %w", rawURL, err)
	}
	host := u.Hostname()

	if cacheable && c.cache != nil {
		if data, ok := c.cache.Get(ctx, rawURL); ok {
			log.Printf("Cache hit for %s", rawURL)
			return data, nil
		}
	}

	c.throttle(host)

	br := c.breaker(host)
	res, err := br.Execute(func() (interface{}, error) {
		return c.fetchWithRetry(ctx, method, rawURL, host, body, headers)
	})
	if err != nil {
		if err == gobreaker.ErrOpenState {
			return nil, fmt.Errorf("skipping %s: too many recent failures for %s", rawURL, host)
		}
		return nil, err
	}

	data, _ := res.([]byte)
	if cacheable && c.cache != nil && len(data) > 0 {
		c.cache.Put(ctx, rawURL, data)
	}
	return data, nil
}

func (c *Context) fetchWithRetry(ctx context.Context, method, rawURL, host string, body []byte, headers map[string]string) ([]byte, error) {
	client := c.client
	if c.Cfg.SkipVerify(host) {
		client = c.insecure
	}

	var lastErr error
	for attempt := 0; attempt < c.Cfg.General.MaxRetries; attempt++ {
		if attempt > 0 {
			back := time.Duration(1<<uint(attempt-1)) * time.Second
			select {
			case <-time.After(back):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		var rd io.Reader
		if body != nil {
			rd = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, rawURL, rd)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", c.Cfg.General.UserAgent)
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := client.Do(req)
		if err != nil {
			lastErr = err
			log.Printf("Fetch error for %s: %v", rawURL, err)
			continue
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			data, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			if err != nil {
				lastErr = err
				continue
			}
			c.markCall(host)
			return data, nil
		case resp.StatusCode == http.StatusNotFound:
			// 404s are common for rotating chart products; not worth retrying.
			resp.Body.Close()
			return nil, fmt.Errorf("HTTP 404: %s", rawURL)
		case resp.StatusCode == http.StatusForbidden:
			resp.Body.Close()
			return nil, fmt.Errorf("HTTP 403: %s", rawURL)
		case resp.StatusCode == http.StatusBadRequest && isAPILimitHost(host):
			// Windy and Stormglass free tiers answer 400 when the quota runs out.
			resp.Body.Close()
			return nil, fmt.Errorf("HTTP 400 (API limit): %s", rawURL)
		default:
			resp.Body.Close()
			lastErr = fmt.Errorf("HTTP %d: %s", resp.StatusCode, rawURL)
			log.Printf("Warning: %v", lastErr)
		}
	}
	return nil, fmt.Errorf("fetch failed after %d attempts: %w", c.Cfg.General.MaxRetries, lastErr)
}

// Save writes data under the bundle directory and returns the filename.
func (c *Context) Save(name string, data []byte) (string, error) {
	if err := os.WriteFile(filepath.Join(c.Bundle, name), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to save %s: %w", name, err)
	}
	return name, nil
}

// FetchAndSave fetches a URL and stores the body under name. Returns the
// saved filename, or an error when either step failed.
func (c *Context) FetchAndSave(ctx context.Context, rawURL, name string) (string, error) {
	data, err := c.Fetch(ctx, rawURL)
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", fmt.Errorf("empty response from %s", rawURL)
	}
	return c.Save(name, data)
}

// throttle enforces the configured minimum gap between calls to rate-limited
// hosts (currently just Windy).
func (c *Context) throttle(host string) {
	if c.Cfg.General.Throttle <= 0 || !isThrottledHost(host) {
		return
	}
	c.mu.Lock()
	last, ok := c.lastCall[host]
	c.mu.Unlock()
	if ok {
		if gap := time.Since(last); gap < c.Cfg.General.Throttle {
			time.Sleep(c.Cfg.General.Throttle - gap)
		}
	}
}

func (c *Context) markCall(host string) {
	c.mu.Lock()
	c.lastCall[host] = time.Now()
	c.mu.Unlock()
}

func (c *Context) breaker(host string) *gobreaker.CircuitBreaker {
	c.mu.Lock()
	defer c.mu.Unlock()
	br, ok := c.breakers[host]
	if !ok {
		br = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        host,
			MaxRequests: 1,
			Timeout:     2 * time.Minute,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		})
		c.breakers[host] = br
	}
	return br
}

func isThrottledHost(host string) bool {
	return hostContains(host, "windy.com")
}

func isAPILimitHost(host string) bool {
	return hostContains(host, "windy.com") || hostContains(host, "stormglass.io")
}

func hostContains(host, domain string) bool {
	return host == domain || len(host) > len(domain) && host[len(host)-len(domain)-1] == '.' &&
		host[len(host)-len(domain):] == domain
}
