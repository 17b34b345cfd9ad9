// Package marketplace verifies license keys against a Gumroad compatible marketplace API.
package marketplace

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

	"github.com/sethvargo/go-retry"
	"github.com/sony/gobreaker"
)

const (
	verifyPath = "/licenses/verify"

	// maxResponseSize caps the marketplace response body
	maxResponseSize = 1 << 20

	defaultTimeout        = 10 * time.Second
	defaultRetryBaseDelay = 250 * time.Millisecond
	defaultBreakerTimeout = 30 * time.Second

	defaultRejectionMessage = "failed to verify license"
)

// Config configures a Client.
type Config struct {
	// BaseURL is the marketplace API root, e.g. https://api.gumroad.com/v2
	BaseURL string

	// Timeout bounds each attempt
	Timeout time.Duration

	// MaxRetries is the number of retries after the first attempt (0 = single attempt)
	MaxRetries int

	// RetryBaseDelay is the first backoff interval, doubled on each retry
	RetryBaseDelay time.Duration

	// BreakerFailures is the number of consecutive unavailable errors that opens the circuit (0 disables the breaker)
	BreakerFailures int

	// BreakerTimeout is how long the circuit stays open before a trial request is let through
	BreakerTimeout time.Duration

	// HTTPClient defaults to a client without a timeout (attempts are bounded by Timeout)
	HTTPClient *http.Client
}

// Client calls the marketplace licenses/verify endpoint.
type Client struct {
	verifyURL      string
	timeout        time.Duration
	maxRetries     int
	retryBaseDelay time.Duration
	httpClient     *http.Client
	breaker        *gobreaker.CircuitBreaker
	logger         *slog.Logger
}

// NewClient creates a marketplace client
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimSpace(cfg.BaseURL))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid marketplace API URL %q", cfg.BaseURL)
	}
	if cfg.MaxRetries < 0 {
		return nil, fmt.Errorf("marketplace max retries must not be negative")
	}

	c := &Client{
		verifyURL:      strings.TrimSuffix(base.String(), "/") + verifyPath,
		timeout:        cfg.Timeout,
		maxRetries:     cfg.MaxRetries,
		retryBaseDelay: cfg.RetryBaseDelay,
		httpClient:     cfg.HTTPClient,
		logger:         logger,
	}
	if c.timeout <= 0 {
		c.timeout = defaultTimeout
	}
	if c.retryBaseDelay <= 0 {
		c.retryBaseDelay = defaultRetryBaseDelay
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}

	if cfg.BreakerFailures > 0 {
		breakerTimeout := cfg.BreakerTimeout
		if breakerTimeout <= 0 {
			breakerTimeout = defaultBreakerTimeout
		}
		failures := uint32(cfg.BreakerFailures)

		c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "marketplace",
			MaxRequests: 1,
			Timeout:     breakerTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= failures
			},
			OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
				c.logger.Warn("circuit breaker state changed",
					slog.String("breaker", name),
					slog.String("from", from.String()),
					slog.String("to", to.String()),
				)
			},
			// only an unreachable marketplace counts against the breaker
			IsSuccessful: func(err error) bool {
				var mErr *Error
				if errors.As(err, &mErr) {
					return mErr.code != ErrCodeUnavailable
				}
				return err == nil
			},
		})
	}

	return c, nil
}

// VerifyLicense asks the marketplace whether licenseKey was sold for the product identified by permalink.
//
// It returns the purchase on success. Every failure is an *Error: ErrCodeRejected when the
// marketplace says the license is not valid (unknown, refunded, charged back, key mismatch) and
// ErrCodeUnavailable when it could not be reached.
func (c *Client) VerifyLicense(ctx context.Context, licenseKey, permalink string) (*Purchase, error) {
	if licenseKey == "" {
		return nil, NewRejectedError(0, "license key is required")
	}

	backoff := retry.WithMaxRetries(uint64(c.maxRetries), retry.WithJitterPercent(10, retry.NewExponential(c.retryBaseDelay)))

	var purchase *Purchase
	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++

		p, err := c.execute(ctx, licenseKey, permalink)
		if err != nil {
			var mErr *Error
			if errors.As(err, &mErr) && mErr.temporary {
				c.logger.Debug("marketplace verification attempt failed",
					slog.Int("attempt", attempt),
					slog.String("error", err.Error()),
				)
				return retry.RetryableError(err)
			}
			return err
		}
		purchase = p
		return nil
	})
	if err != nil {
		var mErr *Error
		if !errors.As(err, &mErr) {
			// context cancelled between attempts
			return nil, WrapUnavailableError(err, "license verification was cancelled")
		}
		return nil, err
	}

	return purchase, nil
}

// execute runs one attempt through the circuit breaker
func (c *Client) execute(ctx context.Context, licenseKey, permalink string) (*Purchase, error) {
	if c.breaker == nil {
		return c.verifyOnce(ctx, licenseKey, permalink)
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.verifyOnce(ctx, licenseKey, permalink)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, WrapUnavailableError(err, "marketplace is temporarily unavailable")
		}
		return nil, err
	}
	return result.(*Purchase), nil
}

func (c *Client) verifyOnce(ctx context.Context, licenseKey, permalink string) (*Purchase, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	form := url.Values{}
	form.Set("product_permalink", permalink)
	form.Set("license_key", licenseKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, WrapUnavailableError(err, "failed to create marketplace request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, newTemporaryError(err, 0, "marketplace is unreachable")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, newTemporaryError(err, resp.StatusCode, "failed to read marketplace response")
	}

	if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
		return nil, newTemporaryError(nil, resp.StatusCode, fmt.Sprintf("marketplace returned status %d", resp.StatusCode))
	}

	var verifyResp VerifyResponse
	decodeErr := json.Unmarshal(body, &verifyResp)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// the marketplace reports unknown licenses as 404 with a message
		if decodeErr == nil && verifyResp.Message != "" {
			return nil, NewRejectedError(resp.StatusCode, verifyResp.Message)
		}
		return nil, NewRejectedError(resp.StatusCode, defaultRejectionMessage)
	}

	if decodeErr != nil {
		return nil, &Error{code: ErrCodeUnavailable, message: "invalid response from marketplace", status: resp.StatusCode, wrapped: decodeErr}
	}

	return checkPurchase(resp.StatusCode, &verifyResp, licenseKey)
}

// checkPurchase turns a decoded 2xx response into a purchase or a rejection
func checkPurchase(status int, verifyResp *VerifyResponse, licenseKey string) (*Purchase, error) {
	if !verifyResp.Success {
		msg := verifyResp.Message
		if msg == "" {
			msg = defaultRejectionMessage
		}
		return nil, NewRejectedError(status, msg)
	}

	p := verifyResp.Purchase
	if p == nil || p.LicenseKey == "" {
		return nil, NewRejectedError(status, "marketplace response does not include a license key")
	}
	if !strings.EqualFold(p.LicenseKey, licenseKey) {
		return nil, NewRejectedError(status, "license key does not match the purchase")
	}
	if p.revoked() {
		return nil, NewRejectedError(status, "purchase has been refunded or charged back")
	}

	p.Uses = verifyResp.Uses
	return p, nil
}
