package caclient

import (
	"bytes"
	"context"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/juju/clock"
	"github.com/juju/retry"

	"certagent/internal/services"
	"certagent/internal/utils"
)

const signingAlgorithm = "SHA256WITHRSA"

type signingRequest struct {
	CertificateSigningRequest string          `json:"CertificateSigningRequest"`
	SigningAlgorithm          string          `json:"SigningAlgorithm"`
	Validity                  signingValidity `json:"Validity"`
}

type signingValidity struct {
	Type  string `json:"Type"`
	Value int    `json:"Value"`
}

type signingResponse struct {
	Certificate string `json:"Certificate"`
}

type Client struct {
	httpClient   *http.Client
	policy       RetryPolicy
	validityDays int
	clock        clock.Clock
	logger       *utils.Logger
	metrics      *services.MetricsService
}

func NewClient(config *utils.Config, logger *utils.Logger, metrics *services.MetricsService) (*Client, error) {
	policy, err := NewRetryPolicy(
		config.RetryMaxAttempts,
		config.RetryInitialDelay,
		config.RetryMaxDelay,
		config.RetryBackoffFactor,
	)
	if err != nil {
		return nil, fmt.Errorf("invalid retry policy: %w", err)
	}

	return &Client{
		httpClient:   &http.Client{Timeout: config.CARequestTimeout},
		policy:       policy,
		validityDays: config.CertificateValidityDays,
		clock:        clock.WallClock,
		logger:       logger,
		metrics:      metrics,
	}, nil
}

func (c *Client) Policy() RetryPolicy {
	return c.policy
}

func (c *Client) RequestCertificate(ctx context.Context, csrPEM, endpoint, authToken string) (*x509.Certificate, error) {
	payload, err := json.Marshal(signingRequest{
		CertificateSigningRequest: csrPEM,
		SigningAlgorithm:          signingAlgorithm,
		Validity:                  signingValidity{Type: "DAYS", Value: c.validityDays},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal signing request: %w", err)
	}

	var (
		cert        *x509.Certificate
		lastErr     error
		terminalErr error
	)

	err = retry.Call(retry.CallArgs{
		Func: func() error {
			issued, attemptErr := c.submit(ctx, endpoint, authToken, payload)
			if attemptErr != nil {
				lastErr = attemptErr
				var reqErr *RequestError
				if errors.As(attemptErr, &reqErr) && reqErr.Terminal() {
					terminalErr = attemptErr
				}
				c.metrics.RecordCAAttempt("failure")
				return attemptErr
			}
			cert = issued
			c.metrics.RecordCAAttempt("success")
			return nil
		},
		IsFatalError: func(err error) bool {
			if ctx.Err() != nil {
				return true
			}
			var reqErr *RequestError
			return errors.As(err, &reqErr) && reqErr.Terminal()
		},
		NotifyFunc: func(err error, attempt int) {
			c.logger.Warnf("CA request attempt %d failed: %v", attempt, err)
			c.metrics.RecordCARetry()
		},
		Attempts:    c.policy.MaxAttempts,
		Delay:       c.policy.InitialDelay,
		MaxDelay:    c.policy.MaxDelay,
		BackoffFunc: c.policy.backoffFunc(),
		Clock:       c.clock,
		Stop:        ctx.Done(),
	})

	if err == nil {
		return cert, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	if terminalErr != nil {
		return nil, terminalErr
	}

	if retry.IsAttemptsExceeded(err) {
		return nil, fmt.Errorf("certificate request failed after %d attempts: %w", c.policy.MaxAttempts, lastErr)
	}

	return nil, err
}

// status is classified before the body is parsed, so a malformed error
// body stays a RequestError
func (c *Client) submit(ctx context.Context, endpoint, authToken string, payload []byte) (*x509.Certificate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build CA request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+authToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("CA request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &RequestError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	return parseCertificateResponse(body)
}

func parseCertificateResponse(body []byte) (*x509.Certificate, error) {
	var response signingResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, &ParseError{Reason: "invalid JSON body", Cause: err}
	}

	if response.Certificate == "" {
		return nil, &ParseError{Reason: "missing Certificate field"}
	}

	block, _ := pem.Decode([]byte(response.Certificate))
	if block == nil || block.Type != "CERTIFICATE" {
		return nil, &ParseError{Reason: "certificate field is not a PEM certificate"}
	}

	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, &ParseError{Reason: "invalid certificate DER", Cause: err}
	}

	return cert, nil
}
