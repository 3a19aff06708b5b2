// Package rates fetches USD quotes for the local currency.
package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"applestore/internal/domain"
	applog "applestore/internal/log"
	"applestore/internal/metrics"
)

const DefaultURL = "https://api.bluelytics.com.ar/v2/latest"

// Quote is a pair of sell rates. Fallback marks the built-in constants.
type Quote struct {
	Blue      float64   `json:"blue"`
	Official  float64   `json:"official"`
	Fallback  bool      `json:"fallback"`
	FetchedAt time.Time `json:"fetchedAt"`
}

// Provider never fails: on any error it returns the fallback quote.
type Provider interface {
	Fetch(ctx context.Context) Quote
}

func Fallback() Quote {
	return Quote{
		Blue:      domain.DefaultDollarRateBlue,
		Official:  domain.DefaultDollarRateOfficial,
		Fallback:  true,
		FetchedAt: time.Now().UTC(),
	}
}

type bluelyticsResponse struct {
	Oficial struct {
		ValueSell float64 `json:"value_sell"`
	} `json:"oficial"`
	Blue struct {
		ValueSell float64 `json:"value_sell"`
	} `json:"blue"`
}

type Bluelytics struct {
	url     string
	client  *http.Client
	metrics *metrics.Metrics
}

func NewBluelytics(url string, timeout time.Duration, m *metrics.Metrics) *Bluelytics {
	if url == "" {
		url = DefaultURL
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Bluelytics{
		url:     url,
		client:  &http.Client{Timeout: timeout},
		metrics: m,
	}
}

func (b *Bluelytics) Fetch(ctx context.Context) Quote {
	q, err := b.fetch(ctx)
	if err != nil {
		applog.Warn(nil, "rates.fetch.fallback", err, map[string]any{"url": b.url})
		b.metrics.RateFetched("fallback")
		q = Fallback()
	} else {
		b.metrics.RateFetched("ok")
	}
	b.metrics.DollarRate(q.Blue, q.Official)
	return q
}

func (b *Bluelytics) fetch(ctx context.Context) (Quote, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.url, nil)
	if err != nil {
		return Quote{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return Quote{}, fmt.Errorf("get rates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Quote{}, fmt.Errorf("rates API returned status: %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Quote{}, fmt.Errorf("read body: %w", err)
	}
	var r bluelyticsResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return Quote{}, fmt.Errorf("parse rates: %w", err)
	}
	if r.Blue.ValueSell <= 0 || r.Oficial.ValueSell <= 0 {
		return Quote{}, fmt.Errorf("rates API returned non-positive quotes: blue=%v official=%v", r.Blue.ValueSell, r.Oficial.ValueSell)
	}
	return Quote{
		Blue:      r.Blue.ValueSell,
		Official:  r.Oficial.ValueSell,
		FetchedAt: time.Now().UTC(),
	}, nil
}
