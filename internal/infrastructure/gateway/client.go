package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/saborlocal/payment-sync/internal/application"
	"github.com/saborlocal/payment-sync/internal/config"
)

type saleResponse struct {
	Payment struct {
		Status int    `json:"Status"`
		Amount int64  `json:"Amount"`
		Type   string `json:"Type"`
	} `json:"Payment"`
}

type HTTPGatewayClient struct {
	baseURL     string
	merchantID  string
	merchantKey string
	httpClient  *http.Client
}

func NewGatewayClient(cfg config.GatewayConfig) *HTTPGatewayClient {
	return &HTTPGatewayClient{
		baseURL:     cfg.QueryBaseURL,
		merchantID:  cfg.MerchantID,
		merchantKey: cfg.MerchantKey,
		httpClient: &http.Client{
			Timeout: cfg.ConnTimeout,
		},
	}
}

// Query looks up the sale identified by paymentID and returns the
// gateway's current view of it.
func (c *HTTPGatewayClient) Query(ctx context.Context, paymentID string) (*application.GatewayStatus, error) {
	url := fmt.Sprintf("%s/1/sales/%s", c.baseURL, paymentID)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("MerchantId", c.merchantID)
	httpReq.Header.Set("MerchantKey", c.merchantKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return nil, &GatewayError{
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	var sale saleResponse
	if err := json.NewDecoder(resp.Body).Decode(&sale); err != nil {
		return nil, fmt.Errorf("error decoding json response: %w", err)
	}

	return &application.GatewayStatus{
		Status: sale.Payment.Status,
		Amount: sale.Payment.Amount,
		Type:   sale.Payment.Type,
	}, nil
}
