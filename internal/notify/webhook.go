package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/time/rate"
)

// defaultDispatchRate caps outbound webhook calls. Outreach targets are
// chat/SMS bridges that throttle aggressively.
const defaultDispatchRate = rate.Limit(1) // 1 per second

// WebhookNotifier implements Notifier by POSTing JSON to a configured
// webhook URL.
type WebhookNotifier struct {
	webhookURL string
	client     *http.Client
	limiter    *rate.Limiter
	headers    map[string]string
}

// NewWebhookNotifier creates a new WebhookNotifier.
func NewWebhookNotifier(webhookURL string, opts ...WebhookOption) *WebhookNotifier {
	w := &WebhookNotifier{
		webhookURL: webhookURL,
		client:     http.DefaultClient,
		limiter:    rate.NewLimiter(defaultDispatchRate, 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// WebhookOption configures a WebhookNotifier.
type WebhookOption func(*WebhookNotifier)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) WebhookOption {
	return func(w *WebhookNotifier) {
		w.client = c
	}
}

// WithRateLimit overrides the dispatch rate limit.
func WithRateLimit(r rate.Limit, burst int) WebhookOption {
	return func(w *WebhookNotifier) {
		w.limiter = rate.NewLimiter(r, burst)
	}
}

// WithHeaders sets extra headers sent on every dispatch, e.g. webhook
// auth tokens.
func WithHeaders(h map[string]string) WebhookOption {
	return func(w *WebhookNotifier) {
		w.headers = h
	}
}

// webhookPayload is the JSON body posted to the webhook.
type webhookPayload struct {
	VerdictID     string  `json:"verdict_id"`
	Rank          int     `json:"rank"`
	Title         string  `json:"title"`
	SellerName    string  `json:"seller_name"`
	SellerContact string  `json:"seller_contact"`
	DealClass     string  `json:"deal_class"`
	Action        string  `json:"action"`
	OfferTarget   float64 `json:"offer_target"`
	Message       string  `json:"message"`
}

// webhookResponse is the optional JSON body returned by the webhook.
type webhookResponse struct {
	ID string `json:"id"`
}

// Dispatch posts the payload to the webhook. HTTP error statuses come
// back as an undelivered DispatchResult rather than an error.
func (w *WebhookNotifier) Dispatch(
	ctx context.Context,
	payload OutreachPayload,
) (DispatchResult, error) {
	if err := w.limiter.Wait(ctx); err != nil {
		return DispatchResult{}, fmt.Errorf("waiting for rate limiter: %w", err)
	}

	body, err := json.Marshal(webhookPayload{
		VerdictID:     payload.VerdictID,
		Rank:          payload.Rank,
		Title:         payload.Title,
		SellerName:    payload.SellerName,
		SellerContact: payload.SellerContact,
		DealClass:     payload.DealClass,
		Action:        payload.Action,
		OfferTarget:   payload.OfferTarget,
		Message:       payload.Message,
	})
	if err != nil {
		return DispatchResult{}, fmt.Errorf("marshaling webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		w.webhookURL,
		bytes.NewReader(body),
	)
	if err != nil {
		return DispatchResult{}, fmt.Errorf("creating webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range w.headers {
		req.Header.Set(k, v)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return DispatchResult{}, fmt.Errorf("sending webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return DispatchResult{
			Delivered: false,
			Detail:    fmt.Sprintf("webhook returned %d: %s", resp.StatusCode, respBody),
		}, nil
	}

	result := DispatchResult{Delivered: true}
	var wr webhookResponse
	if err := json.NewDecoder(resp.Body).Decode(&wr); err == nil {
		result.ExternalID = wr.ID
	}
	return result, nil
}
