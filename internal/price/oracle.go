// Package price fetches spot prices from a plain-text price endpoint.
package price

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/artcava/XPoster/internal/logger"
	"github.com/artcava/XPoster/internal/retry"
)

// Unavailable is returned when no price could be obtained.
const Unavailable = 0.0

// Oracle reads prices from {baseURL}/{SYMBOL}, which answers with the bare
// decimal price as text.
type Oracle struct {
	client  *http.Client
	baseURL string
	retry   retry.Config
	log     logger.Logger
}

// NewOracle returns an Oracle for baseURL.
func NewOracle(client *http.Client, baseURL string, log logger.Logger) *Oracle {
	if log == nil {
		log = logger.NewNop()
	}
	return &Oracle{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		retry:   retry.DefaultConfig(),
		log:     log,
	}
}

// WithRetry overrides the retry policy.
func (o *Oracle) WithRetry(cfg retry.Config) *Oracle {
	o.retry = cfg
	return o
}

// Price returns the current price of symbol, or Unavailable.
func (o *Oracle) Price(ctx context.Context, symbol string) float64 {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	var value float64
	err := retry.Do(ctx, o.retry, func() error {
		v, err := o.fetch(ctx, symbol)
		if err != nil {
			return err
		}
		value = v
		return nil
	})
	if err != nil {
		o.log.Warn("price unavailable", logger.String("symbol", symbol), logger.Error(err))
		return Unavailable
	}
	if value <= 0 {
		o.log.Warn("price not positive", logger.String("symbol", symbol), logger.Float64("price", value))
		return Unavailable
	}
	return value
}

func (o *Oracle) fetch(ctx context.Context, symbol string) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"/"+symbol, http.NoBody)
	if err != nil {
		return 0, fmt.Errorf("price new request: %w", err)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("price do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
		return 0, &retry.Transient{Err: fmt.Errorf("price status %d", resp.StatusCode)}
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("price status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<10))
	if err != nil {
		return 0, fmt.Errorf("price read body: %w", err)
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(string(raw)), 64)
	if err != nil {
		return 0, fmt.Errorf("price parse %q: %w", strings.TrimSpace(string(raw)), err)
	}
	return value, nil
}
