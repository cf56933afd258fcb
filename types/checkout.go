package types

// Checkout session payment status values as reported by the gateway.
const (
	PaymentStatusPaid   = "paid"
	PaymentStatusUnpaid = "unpaid"
)

// CheckoutParams describes the checkout session requested from the payment
// gateway for a single artifact.
type CheckoutParams struct {
	// ArtifactID is attached to the session as the correlation reference.
	// It is the only link between the payment and the deliverable.
	ArtifactID string

	// DisplayName is the original file name, shown on the checkout page
	// and carried back in session metadata.
	DisplayName string

	// AmountCents is the price in the smallest currency unit.
	AmountCents int64

	// Currency is the ISO 4217 lowercase currency code, e.g. "eur".
	Currency string
}

// CheckoutSession is the gateway's handle for a payment to be completed
// out-of-band. ID is the opaque session identifier the client later presents
// for verification; URL is where the client is redirected to pay.
type CheckoutSession struct {
	ID                string            `json:"id"`
	URL               string            `json:"url"`
	PaymentStatus     string            `json:"payment_status"`
	ClientReferenceID string            `json:"client_reference_id"`
	Metadata          map[string]string `json:"metadata,omitempty"`
}

// Paid reports whether the session has been paid.
func (s *CheckoutSession) Paid() bool {
	return s.PaymentStatus == PaymentStatusPaid
}

// ProcessedDocument is the output of the document processor: the repaired
// content and the display name it should be delivered under.
type ProcessedDocument struct {
	Content     []byte
	DisplayName string
}
