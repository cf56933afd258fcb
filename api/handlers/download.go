package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/diacritfix/diacritfix/types"
	"go.uber.org/zap"
)

// =============================================================================
// One-shot download handler
// =============================================================================

// DownloadHandler serves a paid artifact exactly once.
type DownloadHandler struct {
	ctrl   Lifecycle
	logger *zap.Logger
}

// NewDownloadHandler creates a download handler.
func NewDownloadHandler(ctrl Lifecycle, logger *zap.Logger) *DownloadHandler {
	return &DownloadHandler{ctrl: ctrl, logger: logger}
}

// HandleDownload handles artifact download.
// @Summary Download the repaired document
// @Description Serves the artifact once and removes it; repeat requests get 404
// @Tags documents
// @Produce text/plain
// @Param file_id query string true "Artifact id"
// @Success 200 {string} string "Repaired document"
// @Failure 402 {object} Response "Payment not completed"
// @Failure 404 {object} Response "Unknown, expired, or already fetched"
// @Router /get-file [get]
func (h *DownloadHandler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("file_id")

	delivery, err := h.ctrl.Deliver(id)
	if err != nil {
		WriteError(w, types.AsError(err), h.logger)
		return
	}

	h.logger.Info("artifact downloaded",
		zap.String("file_id", id),
		zap.String("file_name", delivery.Filename),
		zap.Int("size", len(delivery.Content)),
	)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", delivery.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(delivery.Content)))
	w.WriteHeader(http.StatusOK)
	w.Write(delivery.Content)
}
