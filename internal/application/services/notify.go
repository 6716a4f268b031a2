package services

import (
	"context"
	"log/slog"

	"github.com/saborlocal/payment-sync/internal/application"
	"github.com/saborlocal/payment-sync/internal/infrastructure/push"
)

// DispatchResult reports what one fan-out achieved.
type DispatchResult struct {
	SuccessCount   int
	FailureCount   int
	PrunedTokens   []string
	TokensResolved int
}

// NotifyService fans a notification out to all of a user's delivery
// tokens and garbage-collects tokens the transport proves dead.
type NotifyService struct {
	userRepo   application.UserRepository
	pushClient application.PushClient
	logger     *slog.Logger
}

func NewNotifyService(
	userRepo application.UserRepository,
	pushClient application.PushClient,
	logger *slog.Logger,
) *NotifyService {
	return &NotifyService{
		userRepo:   userRepo,
		pushClient: pushClient,
		logger:     logger,
	}
}

// Notify resolves the user's token set and performs one batched
// delivery. A user with no tokens is a no-op, not an error. Tokens that
// fail with a permanent error code are removed in a single follow-up
// update; transient failures leave the token in place.
func (s *NotifyService) Notify(ctx context.Context, userID, title, body string, data map[string]string) (*DispatchResult, error) {
	if userID == "" || title == "" || body == "" {
		return nil, application.NewInvalidArgumentError("missing required fields: userId, title, body")
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	tokens := user.FCMTokens
	if len(tokens) == 0 {
		s.logger.Info("no delivery tokens for user", "user_id", userID)
		return &DispatchResult{}, nil
	}

	msg := application.PushMessage{
		Title: title,
		Body:  body,
		Data:  data,
	}

	result, err := s.pushClient.SendMulticast(ctx, tokens, msg)
	if err != nil {
		return nil, application.NewTransportError(err)
	}

	s.logger.Info("notification sent",
		"user_id", userID,
		"success_count", result.SuccessCount,
		"failure_count", result.FailureCount,
	)

	dispatch := &DispatchResult{
		SuccessCount:   result.SuccessCount,
		FailureCount:   result.FailureCount,
		TokensResolved: len(tokens),
	}

	if result.FailureCount > 0 {
		dispatch.PrunedTokens = s.pruneDeadTokens(ctx, userID, tokens, result.Responses)
	}

	return dispatch, nil
}

// pruneDeadTokens collects the tokens whose failure is permanent and
// drops them in one update. A failed prune is logged and forgotten; the
// tokens will fail again next time and get another chance at removal.
func (s *NotifyService) pruneDeadTokens(ctx context.Context, userID string, tokens []string, responses []application.SendResult) []string {
	var dead []string
	for i, resp := range responses {
		if i >= len(tokens) {
			break
		}
		if !resp.Success && push.IsTokenDead(resp.ErrorCode) {
			dead = append(dead, tokens[i])
		}
	}

	if len(dead) == 0 {
		return nil
	}

	if err := s.userRepo.RemoveTokens(ctx, userID, dead); err != nil {
		s.logger.Error("failed to remove dead tokens",
			"user_id", userID,
			"count", len(dead),
			"error", err,
		)
		return nil
	}

	s.logger.Info("removed dead delivery tokens", "user_id", userID, "count", len(dead))
	return dead
}
