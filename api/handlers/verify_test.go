package handlers

import (
	"net/http"
	"testing"

	"github.com/diacritfix/diacritfix/api"
	"github.com/diacritfix/diacritfix/lifecycle"
	"github.com/diacritfix/diacritfix/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestVerifyHandler_Success(t *testing.T) {
	ctrl := &fakeLifecycle{
		confirmResult: &lifecycle.ConfirmResult{
			ArtifactID:  "art-1",
			DisplayName: "raport.pdf",
		},
	}
	h := NewVerifyHandler(ctrl, zap.NewNop())

	w := postJSON(t, h.HandleVerify, "/verify-payment", api.VerifyRequest{SessionID: "cs_1"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "cs_1", ctrl.confirmedWith)

	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "art-1", data["fileId"])
	assert.Equal(t, "raport.pdf", data["fileName"])
	assert.Equal(t, true, data["paid"])
}

func TestVerifyHandler_Failures(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   types.ErrorCode
	}{
		{
			name:       "not paid",
			err:        types.NewError(types.ErrNotPaid, "payment not completed"),
			wantStatus: http.StatusPaymentRequired,
			wantCode:   types.ErrNotPaid,
		},
		{
			name:       "artifact gone",
			err:        types.NewError(types.ErrNotFound, "artifact not found or expired"),
			wantStatus: http.StatusNotFound,
			wantCode:   types.ErrNotFound,
		},
		{
			name:       "missing session id",
			err:        types.NewError(types.ErrMissingHandle, "checkout session id is required"),
			wantStatus: http.StatusBadRequest,
			wantCode:   types.ErrMissingHandle,
		},
		{
			name:       "gateway error",
			err:        types.NewError(types.ErrGatewayError, "no such session"),
			wantStatus: http.StatusBadGateway,
			wantCode:   types.ErrGatewayError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := &fakeLifecycle{confirmErr: tt.err}
			h := NewVerifyHandler(ctrl, zap.NewNop())

			w := postJSON(t, h.HandleVerify, "/verify-payment", api.VerifyRequest{SessionID: "cs_1"})

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decodeResponse(t, w)
			require.NotNil(t, resp.Error)
			assert.Equal(t, string(tt.wantCode), resp.Error.Code)
		})
	}
}
