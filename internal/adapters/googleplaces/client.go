package googleplaces

import (
	"context"
	crand "crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"kingston_guide/internal/adapters/observability"
	"kingston_guide/internal/domain"
)

const defaultBase = "https://maps.googleapis.com/maps/api/place"

// Fields requested from place details; masks keep response size and API
// cost down.
var detailsFields = strings.Join([]string{
	"place_id", "name", "formatted_address", "address_components", "geometry",
	"formatted_phone_number", "website", "opening_hours", "types",
	"price_level", "rating", "user_ratings_total", "business_status",
	"editorial_summary",
}, ",")

type Client struct {
	base string
	hc   *http.Client
	key  string
	rl   *rate.Limiter
}

// New builds a client. An empty key is allowed — the service starts without
// it and reports Configured()==false so callers can answer 503.
func New(base, key string, rps int) *Client {
	if base == "" {
		base = defaultBase
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base: base,
		hc:   &http.Client{Timeout: 20 * time.Second},
		key:  key,
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}
}

func (c *Client) Configured() bool { return c.key != "" }

type detailsEnvelope struct {
	Result       *domain.GooglePlace `json:"result"`
	Status       domain.PlacesStatus `json:"status"`
	ErrorMessage string              `json:"error_message"`
}

type searchEnvelope struct {
	Results      []domain.GooglePlaceSummary `json:"results"`
	Status       domain.PlacesStatus         `json:"status"`
	ErrorMessage string                      `json:"error_message"`
}

func (c *Client) Details(ctx context.Context, placeID string) (*domain.GooglePlace, error) {
	q := url.Values{}
	q.Set("place_id", placeID)
	q.Set("fields", detailsFields)
	q.Set("key", c.key)

	var env detailsEnvelope
	if err := c.get(ctx, c.base+"/details/json?"+q.Encode(), "details", &env); err != nil {
		return nil, err
	}
	if env.Status != domain.StatusOK {
		return nil, &domain.PlacesError{Status: normalizeStatus(env.Status), Message: env.ErrorMessage}
	}
	if env.Result == nil {
		return nil, &domain.PlacesError{Status: domain.StatusUnknownError, Message: "empty result"}
	}
	if env.Result.PlaceID == "" {
		env.Result.PlaceID = placeID
	}
	return env.Result, nil
}

func (c *Client) TextSearch(ctx context.Context, query string, bias *domain.Coordinates) ([]domain.GooglePlaceSummary, error) {
	q := url.Values{}
	q.Set("query", query)
	q.Set("key", c.key)
	if bias != nil {
		q.Set("location", fmt.Sprintf("%g,%g", bias.Lat, bias.Lng))
	}

	var env searchEnvelope
	if err := c.get(ctx, c.base+"/textsearch/json?"+q.Encode(), "textsearch", &env); err != nil {
		return nil, err
	}
	// ZERO_RESULTS is an empty success, not an error.
	if env.Status != domain.StatusOK && env.Status != domain.StatusZeroResults {
		return nil, &domain.PlacesError{Status: normalizeStatus(env.Status), Message: env.ErrorMessage}
	}
	return env.Results, nil
}

// normalizeStatus folds upstream variants into the supported set.
func normalizeStatus(s domain.PlacesStatus) domain.PlacesStatus {
	switch s {
	case domain.StatusOK, domain.StatusZeroResults, domain.StatusInvalidRequest,
		domain.StatusOverQueryLimit, domain.StatusRequestDenied, domain.StatusNotFound:
		return s
	case "OVER_DAILY_LIMIT":
		return domain.StatusOverQueryLimit
	default:
		return domain.StatusUnknownError
	}
}

// get performs a GET with client-side rate limiting, retries on 429 and
// transient 5xx (honoring Retry-After), and a JSON decode into out.
func (c *Client) get(ctx context.Context, rawURL, endpoint string, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	var lastErr error
	for i := 0; i < 4; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			if i < 3 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr
		}
		observability.ObserveExternal("googleplaces", endpoint, resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusOK:
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			return err

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("remote %d", resp.StatusCode)
			if i < 3 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}
	return lastErr
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After (seconds or HTTP-date). Zero if absent.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff doubles each attempt (200ms, 400ms, 800ms...) with up to +50%
// jitter to avoid thundering herds.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	j := time.Duration(0.5 * f * float64(base))
	return base + j
}
