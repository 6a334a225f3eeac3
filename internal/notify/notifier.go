// Package notify defines the outreach dispatch boundary. Verdict
// entries with a CALL or TEXT action can be pushed to an external
// channel; the pipeline itself never blocks on delivery.
package notify

import (
	"context"
)

// OutreachPayload contains the data needed to dispatch one seller
// contact message.
type OutreachPayload struct {
	VerdictID     string
	Rank          int
	Title         string
	SellerName    string
	SellerContact string
	DealClass     string
	Action        string
	OfferTarget   float64
	Message       string
}

// DispatchResult reports the outcome of one dispatch attempt. A remote
// rejection is a result, not an error: errors are reserved for local
// failures (marshaling, context cancellation, transport setup).
type DispatchResult struct {
	Delivered  bool
	Detail     string
	ExternalID string
}

// Notifier dispatches outreach messages for ranked verdicts.
type Notifier interface {
	Dispatch(ctx context.Context, payload OutreachPayload) (DispatchResult, error)
}
