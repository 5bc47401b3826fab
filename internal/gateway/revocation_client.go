package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	apperrors "github.com/allisson/authgate/internal/errors"
)

// RevocationChecker answers whether a token is still live in the issuing
// service's ledger. The filter treats every error as revoked.
type RevocationChecker interface {
	IsActive(ctx context.Context, token string) (bool, error)
}

// HTTPRevocationClient checks token liveness against the auth service's
// internal endpoint. Each call gets its own deadline; the check is never
// retried inline.
type HTTPRevocationClient struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

// NewHTTPRevocationClient creates a client against the auth service at baseURL.
func NewHTTPRevocationClient(baseURL string, timeout time.Duration) *HTTPRevocationClient {
	return &HTTPRevocationClient{
		baseURL: baseURL,
		timeout: timeout,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// IsActive performs GET {baseURL}/internal/tokens/check?token=... and decodes
// the JSON boolean body. Non-200 responses and decode failures are errors.
func (c *HTTPRevocationClient) IsActive(ctx context.Context, token string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	checkURL := fmt.Sprintf("%s/internal/tokens/check?%s", c.baseURL,
		url.Values{"token": []string{token}}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, checkURL, nil)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to build revocation check request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, apperrors.Wrap(err, "revocation check request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return false, apperrors.New(fmt.Sprintf("revocation check returned status %d", resp.StatusCode))
	}

	var active bool
	if err := json.NewDecoder(resp.Body).Decode(&active); err != nil {
		return false, apperrors.Wrap(err, "failed to decode revocation check response")
	}

	return active, nil
}
