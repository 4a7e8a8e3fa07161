// Package feeds wraps the external REST data sources (weather, currency
// rates, crypto spot prices, football fixtures). All clients are stateless
// fetch-and-parse wrappers: ctx-bound requests, bounded timeouts, and errors
// for the caller to map to a sentinel. An optional redis cache absorbs
// repeat lookups.
package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/abramau/gavrila/internal/store/redisstore"
)

type Client struct {
	WeatherAPIKey string
	RapidAPIKey   string

	// Base URLs are settable for tests.
	WeatherBaseURL  string
	RatesURL        string
	CryptoURL       string
	FootballBaseURL string

	HTTP  *http.Client
	Cache *redisstore.Store
}

func NewClient(weatherAPIKey, rapidAPIKey string, cache *redisstore.Store) *Client {
	return &Client{
		WeatherAPIKey:   weatherAPIKey,
		RapidAPIKey:     rapidAPIKey,
		WeatherBaseURL:  "https://api.openweathermap.org",
		RatesURL:        "https://cdn.jsdelivr.net/npm/@fawazahmed0/currency-api@latest/v1/currencies/usd.json",
		CryptoURL:       "https://api.coingecko.com/api/v3/simple/price?ids=bitcoin,worldcoin&vs_currencies=usd",
		FootballBaseURL: "https://api-football-v1.p.rapidapi.com",
		HTTP:            &http.Client{Timeout: 15 * time.Second},
		Cache:           cache,
	}
}

func (c *Client) getJSON(ctx context.Context, url string, headers map[string]string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("feeds: %s: status %d", req.URL.Host, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// cached runs fetch through the read-through cache. Cache failures are
// treated as misses; a failed Set is ignored.
func cached[T any](ctx context.Context, c *Client, key string, ttl time.Duration, fetch func() (T, error)) (T, error) {
	var v T
	if err := c.Cache.GetJSON(ctx, key, &v); err == nil {
		return v, nil
	}
	v, err := fetch()
	if err != nil {
		return v, err
	}
	_ = c.Cache.SetJSON(ctx, key, v, ttl)
	return v, nil
}
