package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/saborlocal/payment-sync/internal/application"
	"github.com/saborlocal/payment-sync/internal/interfaces/rest/middleware"
)

type sendNotificationRequest struct {
	UserID string            `json:"userId"`
	Title  string            `json:"title"`
	Body   string            `json:"body"`
	Data   map[string]string `json:"data,omitempty"`
}

type sendNotificationResponse struct {
	Success      bool   `json:"success"`
	SuccessCount int    `json:"successCount,omitempty"`
	FailureCount int    `json:"failureCount,omitempty"`
	Error        string `json:"error,omitempty"`
}

// HandleSendNotification sends a push notification to every device the
// target user has registered. A missing user or an empty token set is a
// negative result, not an HTTP error: the caller asked a valid question
// and got a valid answer.
func (h *Handlers) HandleSendNotification(w http.ResponseWriter, r *http.Request) {
	var req sendNotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithJSON(w, http.StatusBadRequest, &APIError{
			Code:    "INVALID_BODY",
			Message: "request body is not valid JSON",
		})
		return
	}

	result, err := h.notifier.Notify(r.Context(), req.UserID, req.Title, req.Body, req.Data)
	if err != nil {
		if application.IsNotFound(err) {
			respondRaw(w, http.StatusOK, sendNotificationResponse{
				Success: false,
				Error:   "User not found",
			})
			return
		}
		respondWithError(w, err)
		return
	}

	if result.TokensResolved == 0 {
		respondRaw(w, http.StatusOK, sendNotificationResponse{
			Success: false,
			Error:   "No delivery tokens",
		})
		return
	}

	respondRaw(w, http.StatusOK, sendNotificationResponse{
		Success:      true,
		SuccessCount: result.SuccessCount,
		FailureCount: result.FailureCount,
	})
}

type registerTokenRequest struct {
	Token string `json:"token"`
}

// HandleRegisterToken adds a delivery token to the authenticated user's
// token set. The identity comes from the auth middleware, never from the
// request body.
func (h *Handlers) HandleRegisterToken(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	if userID == "" {
		respondWithJSON(w, http.StatusUnauthorized, &APIError{
			Code:    application.ErrCodeUnauthenticated,
			Message: "caller must be authenticated",
		})
		return
	}

	var req registerTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithJSON(w, http.StatusBadRequest, &APIError{
			Code:    "INVALID_BODY",
			Message: "request body is not valid JSON",
		})
		return
	}

	if err := h.tokenService.RegisterToken(r.Context(), userID, req.Token); err != nil {
		respondWithError(w, err)
		return
	}

	respondRaw(w, http.StatusOK, map[string]bool{"success": true})
}
