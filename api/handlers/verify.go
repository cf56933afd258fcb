package handlers

import (
	"net/http"

	"github.com/diacritfix/diacritfix/api"
	"github.com/diacritfix/diacritfix/types"
	"go.uber.org/zap"
)

// =============================================================================
// Payment verification handler
// =============================================================================

// VerifyHandler confirms checkout sessions against the payment gateway.
type VerifyHandler struct {
	ctrl   Lifecycle
	logger *zap.Logger
}

// NewVerifyHandler creates a payment verification handler.
func NewVerifyHandler(ctrl Lifecycle, logger *zap.Logger) *VerifyHandler {
	return &VerifyHandler{ctrl: ctrl, logger: logger}
}

// HandleVerify handles payment verification.
// @Summary Verify a checkout session
// @Description Checks the session with the gateway and unlocks the artifact if paid
// @Tags payments
// @Accept json
// @Produce json
// @Param request body api.VerifyRequest true "Session to verify"
// @Success 200 {object} Response "Payment confirmed"
// @Failure 402 {object} Response "Payment not completed"
// @Failure 404 {object} Response "Artifact gone"
// @Router /verify-payment [post]
func (h *VerifyHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	if !ValidateContentType(w, r, h.logger) {
		return
	}

	var req api.VerifyRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}

	res, err := h.ctrl.Confirm(r.Context(), req.SessionID)
	if err != nil {
		WriteError(w, types.AsError(err), h.logger)
		return
	}

	h.logger.Info("payment verified",
		zap.String("file_id", res.ArtifactID),
		zap.String("session_id", req.SessionID),
	)

	WriteSuccess(w, api.VerifyResponse{
		FileID:   res.ArtifactID,
		FileName: res.DisplayName,
		Paid:     true,
	})
}
