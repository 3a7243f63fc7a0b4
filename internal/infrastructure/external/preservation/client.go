// Package preservation talks to the preservation catalog that reports which
// version of an object has been durably stored.
package preservation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/sul-dlss/dor-services-app-sub001/internal/domain/repository"
)

// Config configures the preservation client
type Config struct {
	BaseURL         string
	Timeout         time.Duration
	BreakerFailures uint32        // consecutive failures before the breaker opens
	BreakerTimeout  time.Duration // how long the breaker stays open
}

// Client is an HTTP implementation of repository.PreservationRegistry
type Client struct {
	baseURL *url.URL
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

type objectResponse struct {
	CurrentVersion int `json:"current_version"`
}

// NewClient creates a preservation client guarded by a circuit breaker
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("preservation base url is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid preservation base url: %w", err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = 5
	}
	if cfg.BreakerTimeout <= 0 {
		cfg.BreakerTimeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("preservation")

	c := &Client{
		baseURL: base,
		http:    &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "preservation",
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		// an unknown object is an answer, not an outage
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, repository.ErrPreservationNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return c, nil
}

// CurrentVersion returns the latest version preservation holds for the object
func (c *Client) CurrentVersion(ctx context.Context, externalID string) (int, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetch(ctx, externalID)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return 0, fmt.Errorf("preservation unavailable: %w", err)
		}
		return 0, err
	}
	return result.(int), nil
}

// State exposes the breaker state
func (c *Client) State() gobreaker.State {
	return c.breaker.State()
}

func (c *Client) fetch(ctx context.Context, externalID string) (int, error) {
	endpoint := c.baseURL.JoinPath("v1", "objects", externalID+".json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return 0, fmt.Errorf("build preservation request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("query preservation for %s: %w", externalID, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		_, _ = io.Copy(io.Discard, resp.Body)
		return 0, fmt.Errorf("%w: %s", repository.ErrPreservationNotFound, externalID)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, fmt.Errorf("preservation returned %d for %s: %s", resp.StatusCode, externalID, strings.TrimSpace(string(body)))
	}

	var payload objectResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("decode preservation response: %w", err)
	}
	if payload.CurrentVersion < 1 {
		return 0, fmt.Errorf("preservation reported invalid version %d for %s", payload.CurrentVersion, externalID)
	}
	c.logger.Debug("preserved version fetched", zap.String("object_id", externalID), zap.Int("version", payload.CurrentVersion))
	return payload.CurrentVersion, nil
}
