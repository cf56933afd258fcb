package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/diacritfix/diacritfix/api"
	"github.com/diacritfix/diacritfix/payment"
	"github.com/diacritfix/diacritfix/types"
	"go.uber.org/zap"
)

// =============================================================================
// Payment gateway webhook handler
// =============================================================================

// maxWebhookBody bounds the event payload read into memory.
const maxWebhookBody = 1 << 20 // 1 MB

// WebhookHandler receives signed payment gateway events.
type WebhookHandler struct {
	ctrl      Lifecycle
	secret    string
	tolerance time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

// NewWebhookHandler creates a webhook handler verifying events against secret.
func NewWebhookHandler(ctrl Lifecycle, secret string, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		ctrl:      ctrl,
		secret:    secret,
		tolerance: payment.DefaultTolerance,
		logger:    logger,
		now:       time.Now,
	}
}

// HandleWebhook handles a gateway event delivery.
// @Summary Receive a payment gateway event
// @Description Verifies the event signature and applies completed checkouts
// @Tags payments
// @Accept json
// @Produce json
// @Success 200 {object} Response "Event acknowledged"
// @Failure 401 {object} Response "Bad signature"
// @Router /webhook [post]
func (h *WebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		WriteError(w, types.NewError(types.ErrInvalidRequest, "failed to read event payload").WithCause(err), h.logger)
		return
	}

	header := r.Header.Get(payment.SignatureHeader)
	if err := payment.VerifySignature(payload, header, h.secret, h.now(), h.tolerance); err != nil {
		WriteError(w, types.AsError(err), h.logger)
		return
	}

	ev, err := payment.ParseEvent(payload)
	if err != nil {
		WriteError(w, types.AsError(err), h.logger)
		return
	}

	if ev.Type != payment.EventCheckoutCompleted {
		// Other event types are acknowledged and ignored.
		h.logger.Debug("ignoring webhook event", zap.String("type", ev.Type))
		WriteSuccess(w, api.WebhookResponse{Received: true})
		return
	}

	session, err := ev.CheckoutSession()
	if err != nil {
		WriteError(w, types.AsError(err), h.logger)
		return
	}

	if _, err := h.ctrl.ConfirmPaid(session); err != nil {
		// The referenced artifact may have expired or been delivered before
		// the event arrived. The event itself was handled; acknowledge it so
		// the gateway stops retrying.
		h.logger.Warn("webhook confirmation had no effect",
			zap.String("session_id", session.ID),
			zap.String("file_id", session.ClientReferenceID),
			zap.Error(err),
		)
		WriteSuccess(w, api.WebhookResponse{Received: true})
		return
	}

	h.logger.Info("webhook payment applied",
		zap.String("session_id", session.ID),
		zap.String("file_id", session.ClientReferenceID),
	)
	WriteSuccess(w, api.WebhookResponse{Received: true})
}
