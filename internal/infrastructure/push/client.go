package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/saborlocal/payment-sync/internal/application"
	"github.com/saborlocal/payment-sync/internal/config"
)

// Error codes the delivery transport reports for tokens that will never
// work again. Everything else is treated as transient.
const (
	CodeUnregistered    = "UNREGISTERED"
	CodeInvalidArgument = "INVALID_ARGUMENT"
)

// IsTokenDead reports whether a per-token error code proves the token is
// permanently invalid and safe to prune.
func IsTokenDead(code string) bool {
	return code == CodeUnregistered || code == CodeInvalidArgument
}

type multicastRequest struct {
	Tokens       []string          `json:"tokens"`
	Notification notificationBody  `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
}

type notificationBody struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type multicastResponse struct {
	SuccessCount int `json:"success_count"`
	FailureCount int `json:"failure_count"`
	Responses    []struct {
		Success   bool   `json:"success"`
		ErrorCode string `json:"error_code,omitempty"`
	} `json:"responses"`
}

type HTTPPushClient struct {
	baseURL    string
	serverKey  string
	httpClient *http.Client
}

func NewPushClient(cfg config.PushConfig) *HTTPPushClient {
	return &HTTPPushClient{
		baseURL:   cfg.BaseURL,
		serverKey: cfg.ServerKey,
		httpClient: &http.Client{
			Timeout: cfg.ConnTimeout,
		},
	}
}

// SendMulticast delivers one notification to every token in the batch
// and returns the transport's per-token verdicts, positionally aligned
// with the input tokens.
func (c *HTTPPushClient) SendMulticast(ctx context.Context, tokens []string, msg application.PushMessage) (*application.MulticastResult, error) {
	url := fmt.Sprintf("%s/v1/messages:sendMulticast", c.baseURL)

	reqBody := multicastRequest{
		Tokens: tokens,
		Notification: notificationBody{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Data: msg.Data,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("error marshalling json: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "key="+c.serverKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("push transport returned status %d: %s", resp.StatusCode, string(body))
	}

	var mcResp multicastResponse
	if err := json.NewDecoder(resp.Body).Decode(&mcResp); err != nil {
		return nil, fmt.Errorf("error decoding json response: %w", err)
	}

	result := &application.MulticastResult{
		SuccessCount: mcResp.SuccessCount,
		FailureCount: mcResp.FailureCount,
		Responses:    make([]application.SendResult, 0, len(mcResp.Responses)),
	}
	for _, r := range mcResp.Responses {
		result.Responses = append(result.Responses, application.SendResult{
			Success:   r.Success,
			ErrorCode: r.ErrorCode,
		})
	}

	return result, nil
}
