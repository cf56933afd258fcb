package api

// =============================================================================
// Document submission types
// =============================================================================

// ProcessRequest is the payload for submitting a document for repair.
// @Description Document submission request
type ProcessRequest struct {
	// Base64-encoded document bytes
	FileData string `json:"fileData" binding:"required"`
	// Original file name, echoed back at delivery
	FileName string `json:"fileName" binding:"required"`
}

// ProcessResponse is returned when a document has been processed and a
// checkout session opened for it.
// @Description Document submission response
type ProcessResponse struct {
	// Artifact id used to fetch the result after payment
	FileID string `json:"fileId" example:"d2f1c0a8-7c1e-4b9e-9f2a-3c5d8e0b1a42"`
	// Checkout session id
	SessionID string `json:"sessionId" example:"cs_test_a1B2c3"`
	// Hosted checkout page the client is redirected to
	PaymentURL string `json:"paymentUrl" example:"https://checkout.stripe.com/c/pay/cs_test_a1B2c3"`
}

// =============================================================================
// Payment verification types
// =============================================================================

// VerifyRequest asks the service to check a checkout session with the gateway.
// @Description Payment verification request
type VerifyRequest struct {
	// Checkout session id from the success redirect
	SessionID string `json:"sessionId" binding:"required" example:"cs_test_a1B2c3"`
}

// VerifyResponse reports a confirmed payment and the artifact it unlocked.
// @Description Payment verification response
type VerifyResponse struct {
	// Artifact id now available for download
	FileID string `json:"fileId"`
	// Display name of the repaired document
	FileName string `json:"fileName"`
	// Whether the payment is confirmed
	Paid bool `json:"paid"`
}

// =============================================================================
// Webhook types
// =============================================================================

// WebhookResponse acknowledges a received gateway event.
// @Description Webhook acknowledgement
type WebhookResponse struct {
	Received bool `json:"received"`
}
