package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"golang.org/x/time/rate"

	"novaflix/config"
)

const (
	tmdbPosterSize   = "w500"
	tmdbBackdropSize = "original"
)

var (
	// ErrNoCredentials is returned when no upstream API key is configured.
	ErrNoCredentials = errors.New("tmdb api key not configured")
	// ErrRateLimited is returned when every credential was rejected with 429.
	ErrRateLimited = errors.New("tmdb api rate limit exceeded, please try again later")
	// ErrUnavailable is returned when the upstream could not be reached with any credential.
	ErrUnavailable = errors.New("tmdb api unavailable")
)

// StatusError reports a non-2xx upstream response that is not a rate limit.
type StatusError struct {
	StatusCode int
	Path       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("tmdb %s returned status %d", e.Path, e.StatusCode)
}

// rotateError marks a failure that should move on to the next credential.
type rotateError struct {
	err         error
	rateLimited bool
}

func (e *rotateError) Error() string { return e.err.Error() }
func (e *rotateError) Unwrap() error { return e.err }

// tmdbClient issues GET calls against the catalog API. Credentials are tried
// in order; a 429 or transport failure moves on to the next one immediately.
type tmdbClient struct {
	baseURL      string
	imageBaseURL string
	keys         []string
	httpc        *http.Client
	limiter      *rate.Limiter
}

func newTMDBClient(settings config.TMDBSettings, httpc *http.Client) *tmdbClient {
	timeout := settings.Timeout
	if timeout <= 0 {
		timeout = config.DefaultTMDBTimeout
	}
	if httpc == nil {
		httpc = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(strings.TrimSpace(settings.BaseURL), "/")
	if baseURL == "" {
		baseURL = config.DefaultTMDBBaseURL
	}
	imageBaseURL := strings.TrimRight(strings.TrimSpace(settings.ImageBaseURL), "/")
	if imageBaseURL == "" {
		imageBaseURL = config.DefaultTMDBImageBaseURL
	}

	// Outbound pacing only; it never adds attempts.
	limiter := rate.NewLimiter(rate.Inf, 0)
	if settings.RequestsPerSecond > 0 {
		burst := int(settings.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(settings.RequestsPerSecond), burst)
	}

	return &tmdbClient{
		baseURL:      baseURL,
		imageBaseURL: imageBaseURL,
		keys:         settings.Keys(),
		httpc:        httpc,
		limiter:      limiter,
	}
}

// get fetches path with params and decodes the JSON body into v.
func (c *tmdbClient) get(ctx context.Context, path string, params url.Values, v any) error {
	if len(c.keys) == 0 {
		return ErrNoCredentials
	}

	attempt := 0
	body, err := retry.DoWithData(
		func() ([]byte, error) {
			key := c.keys[attempt]
			attempt++
			return c.fetch(ctx, path, params, key)
		},
		retry.Context(ctx),
		retry.Attempts(uint(len(c.keys))),
		retry.Delay(0),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			var rot *rotateError
			if errors.As(err, &rot) && attempt < len(c.keys) {
				log.Printf("[tmdb] %s failed with credential %d/%d, rotating: %v", path, attempt, len(c.keys), rot.err)
				return true
			}
			return false
		}),
	)
	if err != nil {
		var rot *rotateError
		if errors.As(err, &rot) {
			if rot.rateLimited {
				return ErrRateLimited
			}
			return fmt.Errorf("%w: %v", ErrUnavailable, rot.err)
		}
		return err
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode tmdb %s: %w", path, err)
	}
	return nil
}

// fetch performs a single attempt with one credential.
func (c *tmdbClient) fetch(ctx context.Context, path string, params url.Values, key string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	for k, vs := range params {
		q[k] = append([]string(nil), vs...)
	}
	q.Set("api_key", key)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build tmdb request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpc.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &rotateError{err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		io.Copy(io.Discard, resp.Body)
		return nil, &rotateError{err: fmt.Errorf("tmdb %s rate limited", path), rateLimited: true}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{StatusCode: resp.StatusCode, Path: path}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &rotateError{err: fmt.Errorf("read tmdb %s: %w", path, err)}
	}
	log.Printf("[tmdb] GET %s status=%d took=%s", path, resp.StatusCode, time.Since(start).Round(time.Millisecond))
	return body, nil
}

// imageURL joins a raw image path with the image host. An empty path yields "".
func (c *tmdbClient) imageURL(path, size string) string {
	if path == "" {
		return ""
	}
	if size == "" {
		size = tmdbPosterSize
	}
	return c.imageBaseURL + "/" + size + path
}
