package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saborlocal/payment-sync/internal/application"
	"github.com/saborlocal/payment-sync/internal/domain"
)

func TestNotify_MissingFields(t *testing.T) {
	svc := NewNotifyService(NewMockUserRepository(), &MockPushClient{}, testLogger())

	cases := []struct {
		name   string
		userID string
		title  string
		body   string
	}{
		{"missing user", "", "t", "b"},
		{"missing title", "user-1", "", "b"},
		{"missing body", "user-1", "t", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Notify(context.Background(), tc.userID, tc.title, tc.body, nil)
			svcErr, ok := application.IsServiceError(err)
			require.True(t, ok)
			assert.Equal(t, application.ErrCodeInvalidArgument, svcErr.Code)
		})
	}
}

func TestNotify_UserNotFound(t *testing.T) {
	svc := NewNotifyService(NewMockUserRepository(), &MockPushClient{}, testLogger())

	_, err := svc.Notify(context.Background(), "ghost", "title", "body", nil)
	require.Error(t, err)
	assert.True(t, application.IsNotFound(err))
}

func TestNotify_NoTokensIsNoOp(t *testing.T) {
	users := NewMockUserRepository()
	users.Put(&domain.User{ID: "user-1"})
	pushc := &MockPushClient{}

	svc := NewNotifyService(users, pushc, testLogger())

	result, err := svc.Notify(context.Background(), "user-1", "title", "body", nil)
	require.NoError(t, err)
	assert.Zero(t, result.SuccessCount)
	assert.Zero(t, result.FailureCount)
	assert.Zero(t, result.TokensResolved)
	assert.Empty(t, pushc.SentTokens, "no delivery call may be made")
}

func TestNotify_BatchedDelivery(t *testing.T) {
	users := NewMockUserRepository()
	users.Put(&domain.User{ID: "user-1", FCMTokens: []string{"tok-a", "tok-b", "tok-c"}})
	pushc := &MockPushClient{}

	svc := NewNotifyService(users, pushc, testLogger())

	result, err := svc.Notify(context.Background(), "user-1", "title", "body", map[string]string{"k": "v"})
	require.NoError(t, err)
	assert.Equal(t, 3, result.SuccessCount)
	assert.Zero(t, result.FailureCount)

	require.Len(t, pushc.SentTokens, 1, "all tokens must go in one batch")
	assert.Equal(t, []string{"tok-a", "tok-b", "tok-c"}, pushc.SentTokens[0])
	assert.Equal(t, "title", pushc.SentMessages[0].Title)
	assert.Equal(t, map[string]string{"k": "v"}, pushc.SentMessages[0].Data)
}

func TestNotify_PrunesOnlyDeadTokens(t *testing.T) {
	users := NewMockUserRepository()
	users.Put(&domain.User{ID: "user-1", FCMTokens: []string{"tok-a", "tok-b", "tok-c"}})

	pushc := &MockPushClient{
		SendMulticastFn: func(ctx context.Context, tokens []string, msg application.PushMessage) (*application.MulticastResult, error) {
			return &application.MulticastResult{
				SuccessCount: 1,
				FailureCount: 2,
				Responses: []application.SendResult{
					{Success: true},
					{Success: false, ErrorCode: "UNREGISTERED"},
					{Success: false, ErrorCode: "UNAVAILABLE"},
				},
			}, nil
		},
	}

	svc := NewNotifyService(users, pushc, testLogger())

	result, err := svc.Notify(context.Background(), "user-1", "title", "body", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, 2, result.FailureCount)
	assert.Equal(t, []string{"tok-b"}, result.PrunedTokens)

	user, err := users.FindByID(context.Background(), "user-1")
	require.NoError(t, err)
	// The transiently failing token survives.
	assert.Equal(t, []string{"tok-a", "tok-c"}, user.FCMTokens)
}

func TestNotify_PruneFailureIsSwallowed(t *testing.T) {
	users := NewMockUserRepository()
	users.Put(&domain.User{ID: "user-1", FCMTokens: []string{"tok-a"}})
	users.RemoveTokensFn = func(ctx context.Context, userID string, tokens []string) error {
		return application.NewPersistenceError(errors.New("update failed"))
	}

	pushc := &MockPushClient{
		SendMulticastFn: func(ctx context.Context, tokens []string, msg application.PushMessage) (*application.MulticastResult, error) {
			return &application.MulticastResult{
				FailureCount: 1,
				Responses: []application.SendResult{
					{Success: false, ErrorCode: "UNREGISTERED"},
				},
			}, nil
		},
	}

	svc := NewNotifyService(users, pushc, testLogger())

	result, err := svc.Notify(context.Background(), "user-1", "title", "body", nil)
	require.NoError(t, err, "a failed prune must not fail the dispatch")
	assert.Empty(t, result.PrunedTokens)
}

func TestNotify_TransportFailure(t *testing.T) {
	users := NewMockUserRepository()
	users.Put(&domain.User{ID: "user-1", FCMTokens: []string{"tok-a"}})

	pushc := &MockPushClient{
		SendMulticastFn: func(ctx context.Context, tokens []string, msg application.PushMessage) (*application.MulticastResult, error) {
			return nil, errors.New("push transport down")
		},
	}

	svc := NewNotifyService(users, pushc, testLogger())

	_, err := svc.Notify(context.Background(), "user-1", "title", "body", nil)
	svcErr, ok := application.IsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, application.ErrCodeTransport, svcErr.Code)
}
