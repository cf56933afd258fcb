package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/diacritfix/diacritfix/lifecycle"
	"github.com/diacritfix/diacritfix/payment"
	"github.com/diacritfix/diacritfix/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testWebhookSecret = "whsec_test"

func checkoutEvent(t *testing.T, eventType string, session map[string]any) []byte {
	t.Helper()
	payload, err := json.Marshal(map[string]any{
		"id":   "evt_1",
		"type": eventType,
		"data": map[string]any{"object": session},
	})
	require.NoError(t, err)
	return payload
}

func postWebhook(h *WebhookHandler, payload []byte, header string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(string(payload)))
	if header != "" {
		r.Header.Set(payment.SignatureHeader, header)
	}
	w := httptest.NewRecorder()
	h.HandleWebhook(w, r)
	return w
}

func TestWebhookHandler_CheckoutCompleted(t *testing.T) {
	ctrl := &fakeLifecycle{
		confirmResult: &lifecycle.ConfirmResult{ArtifactID: "art-1", DisplayName: "raport.pdf"},
	}
	h := NewWebhookHandler(ctrl, testWebhookSecret, zap.NewNop())

	payload := checkoutEvent(t, payment.EventCheckoutCompleted, map[string]any{
		"id":                  "cs_1",
		"payment_status":      "paid",
		"client_reference_id": "art-1",
	})
	w := postWebhook(h, payload, payment.SignPayload(payload, testWebhookSecret, time.Now()))

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, ctrl.paidSessions, 1)
	assert.Equal(t, "cs_1", ctrl.paidSessions[0].ID)
	assert.Equal(t, "art-1", ctrl.paidSessions[0].ClientReferenceID)
}

func TestWebhookHandler_BadSignature(t *testing.T) {
	ctrl := &fakeLifecycle{}
	h := NewWebhookHandler(ctrl, testWebhookSecret, zap.NewNop())

	payload := checkoutEvent(t, payment.EventCheckoutCompleted, map[string]any{"id": "cs_1"})

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong secret", payment.SignPayload(payload, "whsec_other", time.Now())},
		{"stale timestamp", payment.SignPayload(payload, testWebhookSecret, time.Now().Add(-6*time.Minute))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postWebhook(h, payload, tt.header)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			resp := decodeResponse(t, w)
			require.NotNil(t, resp.Error)
			assert.Equal(t, string(types.ErrBadSignature), resp.Error.Code)
			assert.Empty(t, ctrl.paidSessions)
		})
	}
}

func TestWebhookHandler_OtherEventIgnored(t *testing.T) {
	ctrl := &fakeLifecycle{}
	h := NewWebhookHandler(ctrl, testWebhookSecret, zap.NewNop())

	payload := checkoutEvent(t, "invoice.paid", map[string]any{"id": "in_1"})
	w := postWebhook(h, payload, payment.SignPayload(payload, testWebhookSecret, time.Now()))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, ctrl.paidSessions)
}

func TestWebhookHandler_UnknownArtifactAcknowledged(t *testing.T) {
	// The artifact expired before the event arrived. The event is still
	// acknowledged with 200 so the gateway stops retrying a payment that can
	// never be applied.
	ctrl := &fakeLifecycle{
		confirmErr: types.NewError(types.ErrNotFound, "artifact not found or expired"),
	}
	h := NewWebhookHandler(ctrl, testWebhookSecret, zap.NewNop())

	payload := checkoutEvent(t, payment.EventCheckoutCompleted, map[string]any{
		"id":                  "cs_1",
		"payment_status":      "paid",
		"client_reference_id": "art-gone",
	})
	w := postWebhook(h, payload, payment.SignPayload(payload, testWebhookSecret, time.Now()))

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
}

func TestWebhookHandler_MalformedEvent(t *testing.T) {
	ctrl := &fakeLifecycle{}
	h := NewWebhookHandler(ctrl, testWebhookSecret, zap.NewNop())

	payload := []byte("not json")
	w := postWebhook(h, payload, payment.SignPayload(payload, testWebhookSecret, time.Now()))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, string(types.ErrMalformedEvent), resp.Error.Code)
}
