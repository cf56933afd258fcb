// Package lifecycle implements the artifact lifecycle controller: the state
// machine that takes a submitted document through processing, payment
// pending, payment confirmed, and exactly-once delivery or TTL expiry.
//
//	Created --(processing succeeded)--> Pending
//	Pending --(payment confirmed)-->    Paid
//	Paid    --(fetched once)-->         Delivered (record removed)
//	Pending|Paid --(TTL elapsed)-->     Expired   (record removed)
//
// There is no transition out of Delivered or Expired; a payment confirmation
// for a record that is already gone is reported, never replayed into a new
// record. The controller holds no locks of its own: every transition is a
// single store call, and the store's critical section totally orders
// operations on the same id.
package lifecycle

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/diacritfix/diacritfix/internal/store"
	"github.com/diacritfix/diacritfix/types"
)

// DefaultDeliveryName is the filename used when a record carries no display
// name.
const DefaultDeliveryName = "document_reparat.txt"

// Processor transforms raw document bytes into deliverable content. It is
// purely functional; a failure must leave no trace.
type Processor interface {
	Process(ctx context.Context, data []byte, name string) (*types.ProcessedDocument, error)
}

// Gateway opens and inspects checkout sessions.
type Gateway interface {
	CreateCheckout(ctx context.Context, params types.CheckoutParams) (*types.CheckoutSession, error)
	RetrieveCheckout(ctx context.Context, sessionID string) (*types.CheckoutSession, error)
}

// Controller drives artifact state transitions against the store.
type Controller struct {
	store  *store.Store
	proc   Processor
	gw     Gateway
	logger *zap.Logger
	newID  func() string
}

// Option configures a Controller.
type Option func(*Controller)

// WithIDGenerator overrides artifact id generation. Used by tests.
func WithIDGenerator(gen func() string) Option {
	return func(c *Controller) { c.newID = gen }
}

// NewController creates a lifecycle controller.
func NewController(st *store.Store, proc Processor, gw Gateway, logger *zap.Logger, opts ...Option) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Controller{
		store:  st,
		proc:   proc,
		gw:     gw,
		logger: logger.With(zap.String("component", "lifecycle")),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BeginResult is the outcome of a successful submission: the artifact id and
// the checkout handle the client completes out-of-band.
type BeginResult struct {
	ArtifactID string
	SessionID  string
	PaymentURL string
}

// Begin processes the submitted document, stores the result as a pending
// record, and opens a checkout session correlated to it. Processing failures
// happen before anything is stored. A gateway failure after storage leaves
// the pending record in place with no checkout handle; it is unreachable and
// the TTL reclaims it. That failure is surfaced to the caller as retryable —
// never papered over with a fabricated checkout, which would disconnect
// payment from deliverable content.
func (c *Controller) Begin(ctx context.Context, content []byte, displayName string) (*BeginResult, error) {
	if len(content) == 0 {
		return nil, types.NewError(types.ErrMissingInput, "document content is required")
	}
	if displayName == "" {
		return nil, types.NewError(types.ErrMissingInput, "document name is required")
	}

	doc, err := c.proc.Process(ctx, content, displayName)
	if err != nil {
		return nil, err
	}

	id := c.newID()
	if err := c.store.Put(&store.Record{
		ID:           id,
		Content:      doc.Content,
		OriginalName: doc.DisplayName,
	}); err != nil {
		return nil, err
	}

	session, err := c.gw.CreateCheckout(ctx, types.CheckoutParams{
		ArtifactID:  id,
		DisplayName: displayName,
	})
	if err != nil {
		c.logger.Warn("checkout setup failed, pending record left to expire",
			zap.String("artifact_id", id),
			zap.Error(err),
		)
		return nil, err
	}

	c.logger.Info("artifact created",
		zap.String("artifact_id", id),
		zap.String("session_id", session.ID),
		zap.String("name", displayName),
	)
	return &BeginResult{
		ArtifactID: id,
		SessionID:  session.ID,
		PaymentURL: session.URL,
	}, nil
}

// ConfirmResult identifies the artifact a confirmed payment unlocked.
type ConfirmResult struct {
	ArtifactID  string
	DisplayName string
}

// Confirm looks up the checkout session at the gateway and, if it is paid,
// marks the referenced artifact deliverable. Reconfirming an already-paid
// artifact succeeds with no side effect.
func (c *Controller) Confirm(ctx context.Context, sessionID string) (*ConfirmResult, error) {
	if sessionID == "" {
		return nil, types.NewError(types.ErrMissingHandle, "checkout session id is required")
	}

	session, err := c.gw.RetrieveCheckout(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return c.confirmSession(session)
}

// ConfirmPaid applies an already-verified gateway event carrying a checkout
// session. The webhook handler verifies the event signature before calling.
func (c *Controller) ConfirmPaid(session *types.CheckoutSession) (*ConfirmResult, error) {
	return c.confirmSession(session)
}

func (c *Controller) confirmSession(session *types.CheckoutSession) (*ConfirmResult, error) {
	if !session.Paid() {
		return nil, types.NewError(types.ErrNotPaid, "payment not completed")
	}

	id := session.ClientReferenceID
	if id == "" {
		return nil, types.NewError(types.ErrGatewayError, "checkout session carries no artifact reference")
	}

	if !c.store.MarkPaid(id) {
		// The record was delivered or expired before confirmation landed.
		// Report it; deleted records are never recreated.
		c.logger.Warn("payment confirmed for absent artifact",
			zap.String("artifact_id", id),
			zap.String("session_id", session.ID),
		)
		return nil, types.NewError(types.ErrNotFound, "artifact not found or expired")
	}

	name := session.Metadata["file_name"]
	if name == "" {
		name = DefaultDeliveryName
	}
	c.logger.Info("artifact marked paid",
		zap.String("artifact_id", id),
		zap.String("session_id", session.ID),
	)
	return &ConfirmResult{ArtifactID: id, DisplayName: name}, nil
}

// Delivery is the one-shot payload handed to the client.
type Delivery struct {
	Content     []byte
	DisplayName string
	Filename    string
}

// Deliver returns the artifact content exactly once. It peeks the payment
// state first so an unpaid record is rejected without being consumed, then
// atomically removes the record. A sweep may expire the record between the
// two calls; that race degrades to NotFound, which is indistinguishable from
// the id never having existed — deliberately, so the fetch path leaks no
// existence information.
func (c *Controller) Deliver(id string) (*Delivery, error) {
	if id == "" {
		return nil, types.NewError(types.ErrMissingID, "artifact id is required")
	}

	state, ok := c.store.PeekStatus(id)
	if !ok {
		return nil, types.NewError(types.ErrNotFound, "artifact not found or expired")
	}
	if state != store.StatePaid {
		return nil, types.NewError(types.ErrNotPaid, "payment not completed")
	}

	rec, ok := c.store.GetAndRemove(id)
	if !ok {
		return nil, types.NewError(types.ErrNotFound, "artifact not found or expired")
	}

	filename := rec.OriginalName
	if filename == "" {
		filename = DefaultDeliveryName
	}
	c.logger.Info("artifact delivered",
		zap.String("artifact_id", id),
		zap.Int("size", len(rec.Content)),
	)
	return &Delivery{
		Content:     rec.Content,
		DisplayName: rec.OriginalName,
		Filename:    filename,
	}, nil
}
