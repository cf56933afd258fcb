package handlers

import (
	"context"
	"encoding/base64"
	"net/http"
	"time"

	"github.com/diacritfix/diacritfix/api"
	"github.com/diacritfix/diacritfix/lifecycle"
	"github.com/diacritfix/diacritfix/types"
	"go.uber.org/zap"
)

// =============================================================================
// Document submission handler
// =============================================================================

// Lifecycle is the controller surface the HTTP handlers drive.
type Lifecycle interface {
	Begin(ctx context.Context, content []byte, displayName string) (*lifecycle.BeginResult, error)
	Confirm(ctx context.Context, sessionID string) (*lifecycle.ConfirmResult, error)
	ConfirmPaid(session *types.CheckoutSession) (*lifecycle.ConfirmResult, error)
	Deliver(id string) (*lifecycle.Delivery, error)
}

// ProcessHandler accepts document submissions.
type ProcessHandler struct {
	ctrl           Lifecycle
	logger         *zap.Logger
	maxUploadBytes int64
}

// NewProcessHandler creates a document submission handler. maxUploadBytes
// bounds the decoded document size; zero means no limit.
func NewProcessHandler(ctrl Lifecycle, maxUploadBytes int64, logger *zap.Logger) *ProcessHandler {
	return &ProcessHandler{
		ctrl:           ctrl,
		logger:         logger,
		maxUploadBytes: maxUploadBytes,
	}
}

// HandleProcess handles document submission.
// @Summary Submit a document for repair
// @Description Processes the uploaded document and opens a checkout session for it
// @Tags documents
// @Accept json
// @Produce json
// @Param request body api.ProcessRequest true "Document submission"
// @Success 200 {object} Response "Checkout session opened"
// @Failure 400 {object} Response "Invalid request"
// @Failure 502 {object} Response "Processing or checkout setup failed"
// @Router /process-and-pay [post]
func (h *ProcessHandler) HandleProcess(w http.ResponseWriter, r *http.Request) {
	if !ValidateContentType(w, r, h.logger) {
		return
	}

	if h.maxUploadBytes > 0 {
		// Cap the wire size before buffering anything: base64 inflates the
		// document by 4/3, plus slack for the JSON framing around it.
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes*4/3+4096)
	}

	var req api.ProcessRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}

	if req.FileData == "" || req.FileName == "" {
		WriteError(w, types.NewError(types.ErrMissingInput, "fileData and fileName are required"), h.logger)
		return
	}

	content, err := base64.StdEncoding.DecodeString(req.FileData)
	if err != nil {
		WriteError(w, types.NewError(types.ErrInvalidRequest, "fileData is not valid base64").WithCause(err), h.logger)
		return
	}
	if h.maxUploadBytes > 0 && int64(len(content)) > h.maxUploadBytes {
		WriteError(w, types.NewError(types.ErrInvalidRequest, "document exceeds the upload size limit"), h.logger)
		return
	}

	start := time.Now()
	res, err := h.ctrl.Begin(r.Context(), content, req.FileName)
	if err != nil {
		WriteError(w, types.AsError(err), h.logger)
		return
	}

	h.logger.Info("document submitted",
		zap.String("file_id", res.ArtifactID),
		zap.String("file_name", req.FileName),
		zap.Int("size", len(content)),
		zap.Duration("duration", time.Since(start)),
	)

	WriteSuccess(w, api.ProcessResponse{
		FileID:     res.ArtifactID,
		SessionID:  res.SessionID,
		PaymentURL: res.PaymentURL,
	})
}
