package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/saborlocal/payment-sync/internal/application/services"
)

// webhookRequest is the gateway's payment notification. ChangeType is
// json.Number because the gateway sends it as a string in some
// environments and as a number in others.
type webhookRequest struct {
	PaymentID  string      `json:"PaymentId"`
	ChangeType json.Number `json:"ChangeType"`
}

const changeTypePayment = "1"

// HandleGatewayWebhook receives the gateway's asynchronous payment
// notification. The notification is a hint, not a fact: the handler
// always re-queries the gateway through the reconciler before writing
// anything. Delivery is at-least-once, so every answer for a condition
// that is understood-and-done is a 2xx to stop redelivery.
func (h *Handlers) HandleGatewayWebhook(w http.ResponseWriter, r *http.Request) {
	var req webhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithJSON(w, http.StatusBadRequest, &APIError{
			Code:    "INVALID_BODY",
			Message: "request body is not valid JSON",
		})
		return
	}

	h.logger.Info("gateway webhook received",
		"payment_id", req.PaymentID,
		"change_type", req.ChangeType.String(),
	)

	if req.PaymentID == "" {
		respondWithJSON(w, http.StatusBadRequest, &APIError{
			Code:    "MISSING_PARAMETER",
			Message: "Missing PaymentId",
		})
		return
	}

	if req.ChangeType.String() != changeTypePayment {
		respondWithJSON(w, http.StatusOK, map[string]string{
			"result": "ignored: not a payment notification",
		})
		return
	}

	outcome, err := h.reconciler.Reconcile(r.Context(), req.PaymentID)
	if err != nil {
		h.logger.Error("webhook reconciliation failed",
			"payment_id", req.PaymentID,
			"error", err,
		)
		respondWithError(w, err)
		return
	}

	switch outcome {
	case services.OutcomeNotFound:
		respondWithJSON(w, http.StatusNotFound, &APIError{
			Code:    "NOT_FOUND",
			Message: "Order not found",
		})
	default:
		respondWithJSON(w, http.StatusOK, map[string]string{
			"result": string(outcome),
		})
	}
}
