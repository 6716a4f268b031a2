package handlers

import "net/http"

type checkPaymentResponse struct {
	Status int    `json:"status"`
	Amount int64  `json:"amount"`
	Type   string `json:"type"`
}

// HandleCheckPayment exposes the gateway's current view of a payment for
// manual inspection. No persisted state is touched.
func (h *Handlers) HandleCheckPayment(w http.ResponseWriter, r *http.Request) {
	paymentID := r.URL.Query().Get("paymentId")
	if paymentID == "" {
		respondWithJSON(w, http.StatusBadRequest, &APIError{
			Code:    "MISSING_PARAMETER",
			Message: "Missing paymentId",
		})
		return
	}

	status, err := h.reconciler.CheckPayment(r.Context(), paymentID)
	if err != nil {
		respondWithError(w, err)
		return
	}

	respondRaw(w, http.StatusOK, checkPaymentResponse{
		Status: status.Status,
		Amount: status.Amount,
		Type:   status.Type,
	})
}
