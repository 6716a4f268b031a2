package services

import (
	"context"
	"log/slog"

	"github.com/saborlocal/payment-sync/internal/application"
)

// TokenService manages a user's own delivery-token registrations.
type TokenService struct {
	userRepo application.UserRepository
	logger   *slog.Logger
}

func NewTokenService(userRepo application.UserRepository, logger *slog.Logger) *TokenService {
	return &TokenService{
		userRepo: userRepo,
		logger:   logger,
	}
}

func (s *TokenService) RegisterToken(ctx context.Context, userID, token string) error {
	if userID == "" {
		return application.NewUnauthenticatedError()
	}
	if token == "" {
		return application.NewInvalidArgumentError("missing token")
	}

	if err := s.userRepo.AddToken(ctx, userID, token); err != nil {
		return err
	}

	s.logger.Info("delivery token registered", "user_id", userID)
	return nil
}
