package handlers

import (
	"log/slog"
	"net/http"

	"github.com/saborlocal/payment-sync/internal/application"
	"github.com/saborlocal/payment-sync/internal/application/services"
	"github.com/saborlocal/payment-sync/internal/interfaces/rest/middleware"
)

type Handlers struct {
	reconciler   *services.ReconcileService
	notifier     *services.NotifyService
	tokenService *services.TokenService
	authVerifier application.AuthVerifier
	logger       *slog.Logger
}

func NewHandlers(
	reconciler *services.ReconcileService,
	notifier *services.NotifyService,
	tokenService *services.TokenService,
	authVerifier application.AuthVerifier,
	logger *slog.Logger,
) *Handlers {
	return &Handlers{
		reconciler:   reconciler,
		notifier:     notifier,
		tokenService: tokenService,
		authVerifier: authVerifier,
		logger:       logger,
	}
}

func (h *Handlers) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /webhooks/gateway", h.HandleGatewayWebhook)
	mux.HandleFunc("GET /payments/check", h.HandleCheckPayment)
	mux.HandleFunc("POST /notifications/send", h.HandleSendNotification)
	mux.Handle("POST /devices/tokens", middleware.Auth(h.authVerifier)(http.HandlerFunc(h.HandleRegisterToken)))
	mux.HandleFunc("GET /healthz", h.HandleHealth)
}

func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
