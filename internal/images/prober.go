package images

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/guideline-analyzer/backend/internal/metrics"
	"github.com/guideline-analyzer/backend/pkg/logger"
)

// Check is the outcome of probing one image URL. Failures are recorded in
// Reason and never returned as errors.
type Check struct {
	URL         string `json:"url"`
	Valid       bool   `json:"valid"`
	ContentType string `json:"content_type,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

type Prober struct {
	client        *http.Client
	timeout       time.Duration
	maxConcurrent int
}

func NewProber(timeout time.Duration, maxConcurrent int) *Prober {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}
	return &Prober{
		client:        &http.Client{Timeout: timeout},
		timeout:       timeout,
		maxConcurrent: maxConcurrent,
	}
}

// ProbeAll checks every URL concurrently and returns results in input order.
func (p *Prober) ProbeAll(ctx context.Context, urls []string) []Check {
	checks := make([]Check, len(urls))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.maxConcurrent)
	for i, u := range urls {
		g.Go(func() error {
			checks[i] = p.Probe(ctx, u)
			return nil
		})
	}
	_ = g.Wait()

	return checks
}

// Probe validates the URL's shape, then issues a HEAD request and expects an
// image content type.
func (p *Prober) Probe(ctx context.Context, raw string) Check {
	check := Check{URL: raw}

	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		check.Reason = "invalid url"
		return p.record(check)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, raw, nil)
	if err != nil {
		check.Reason = "invalid url"
		return p.record(check)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		check.Reason = fmt.Sprintf("request failed: %v", err)
		return p.record(check)
	}
	resp.Body.Close()

	check.ContentType = resp.Header.Get("Content-Type")
	switch {
	case resp.StatusCode >= 400:
		check.Reason = fmt.Sprintf("status %d", resp.StatusCode)
	case !strings.Contains(strings.ToLower(check.ContentType), "image"):
		check.Reason = "not an image"
	default:
		check.Valid = true
	}
	return p.record(check)
}

func (p *Prober) record(c Check) Check {
	if c.Valid {
		metrics.ImageProbes.WithLabelValues("valid").Inc()
		return c
	}
	metrics.ImageProbes.WithLabelValues("invalid").Inc()
	logger.Warn("Image unavailable", zap.String("url", c.URL), zap.String("reason", c.Reason))
	return c
}
