package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/saborlocal/payment-sync/internal/application"
	"github.com/saborlocal/payment-sync/internal/config"
)

type verifyResponse struct {
	UserID string `json:"userId"`
}

// HTTPAuthVerifier validates bearer tokens against the identity
// service's verify endpoint.
type HTTPAuthVerifier struct {
	verifyURL  string
	httpClient *http.Client
}

func NewAuthVerifier(cfg config.AuthConfig) *HTTPAuthVerifier {
	return &HTTPAuthVerifier{
		verifyURL: cfg.VerifyURL,
		httpClient: &http.Client{
			Timeout: cfg.ConnTimeout,
		},
	}
}

func (c *HTTPAuthVerifier) VerifyToken(ctx context.Context, token string) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.verifyURL, nil)
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}

	httpReq.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", application.NewTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return "", application.NewUnauthenticatedError()
	}
	if resp.StatusCode != http.StatusOK {
		return "", application.NewTransportError(fmt.Errorf("auth service returned status %d", resp.StatusCode))
	}

	var body verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", application.NewTransportError(fmt.Errorf("error decoding json response: %w", err))
	}

	if body.UserID == "" {
		return "", application.NewUnauthenticatedError()
	}

	return body.UserID, nil
}
