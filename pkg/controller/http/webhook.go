package http

import (
	"io"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	githubcontroller "github.com/m-mizutani/updraft/pkg/controller/github"
	"github.com/m-mizutani/updraft/pkg/domain/interfaces"
	"github.com/m-mizutani/updraft/pkg/domain/types"
	"github.com/m-mizutani/updraft/pkg/utils/signature"
)

// maxWebhookBodySize is the payload limit GitHub documents for webhook deliveries
const maxWebhookBodySize = 25 << 20

// WebhookHandler handles release webhooks
type WebhookHandler struct {
	secrets   interfaces.SecretProvider
	webhookUC interfaces.WebhookUseCase
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(secrets interfaces.SecretProvider, webhookUC interfaces.WebhookUseCase) *WebhookHandler {
	return &WebhookHandler{
		secrets:   secrets,
		webhookUC: webhookUC,
	}
}

// Handle processes webhook requests. Nothing on this path talks to the registry.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBodySize))
	if err != nil {
		writeError(ctx, w, goerr.Wrap(err, "failed to read request body"), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	// Verify signature before looking at the payload
	if !signature.Verify(h.secrets.WebhookSecret(), body, r.Header.Get(signature.HeaderName)) {
		writeError(ctx, w, goerr.New("invalid signature", goerr.T(types.ErrTagSignatureRejected)), http.StatusForbidden)
		return
	}

	event, err := githubcontroller.ParseReleaseEvent(r.Header.Get("X-GitHub-Delivery"), body)
	if err != nil {
		writeError(ctx, w, goerr.Wrap(err, "invalid JSON payload"), http.StatusBadRequest)
		return
	}

	if err := h.webhookUC.ProcessEvent(ctx, event); err != nil {
		writeError(ctx, w, err, http.StatusInternalServerError)
		return
	}

	status := "ignored"
	if event.IsActionable() {
		status = "scheduled"
	}
	writeJSON(ctx, w, http.StatusOK, map[string]string{"status": status})
}
