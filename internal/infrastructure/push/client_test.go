package push

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saborlocal/payment-sync/internal/application"
	"github.com/saborlocal/payment-sync/internal/config"
)

func newTestClient(url string) *HTTPPushClient {
	return NewPushClient(config.PushConfig{
		BaseURL:     url,
		ServerKey:   "server-key",
		ConnTimeout: 2 * time.Second,
	})
}

func TestSendMulticast(t *testing.T) {
	var gotAuth string
	var gotBody multicastRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"success_count": 1,
			"failure_count": 2,
			"responses": [
				{"success": true},
				{"success": false, "error_code": "UNREGISTERED"},
				{"success": false, "error_code": "UNAVAILABLE"}
			]
		}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	result, err := client.SendMulticast(context.Background(), []string{"tok-a", "tok-b", "tok-c"}, application.PushMessage{
		Title: "title",
		Body:  "body",
		Data:  map[string]string{"orderId": "order-1"},
	})
	require.NoError(t, err)

	assert.Equal(t, "key=server-key", gotAuth)
	assert.Equal(t, []string{"tok-a", "tok-b", "tok-c"}, gotBody.Tokens)
	assert.Equal(t, "title", gotBody.Notification.Title)
	assert.Equal(t, map[string]string{"orderId": "order-1"}, gotBody.Data)

	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, 2, result.FailureCount)
	require.Len(t, result.Responses, 3)
	assert.True(t, result.Responses[0].Success)
	assert.Equal(t, "UNREGISTERED", result.Responses[1].ErrorCode)
	assert.Equal(t, "UNAVAILABLE", result.Responses[2].ErrorCode)
}

func TestSendMulticast_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.SendMulticast(context.Background(), []string{"tok-a"}, application.PushMessage{Title: "t", Body: "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestIsTokenDead(t *testing.T) {
	assert.True(t, IsTokenDead(CodeUnregistered))
	assert.True(t, IsTokenDead(CodeInvalidArgument))
	assert.False(t, IsTokenDead("UNAVAILABLE"))
	assert.False(t, IsTokenDead("INTERNAL"))
	assert.False(t, IsTokenDead(""))
}
