package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	stripe "github.com/stripe/stripe-go/v82"

	"github.com/cityhelper/cityhelper/internal/auth"
	"github.com/cityhelper/cityhelper/internal/billing"
	"github.com/cityhelper/cityhelper/internal/model"
	"github.com/cityhelper/cityhelper/internal/store"
)

type BillingHandler struct {
	client        *billing.Client
	subscriptions *store.BillingStore
	logger        *slog.Logger
}

func NewBillingHandler(client *billing.Client, subscriptions *store.BillingStore, logger *slog.Logger) *BillingHandler {
	return &BillingHandler{client: client, subscriptions: subscriptions, logger: logger}
}

// CreateCheckout handles POST /api/billing/checkout
func (h *BillingHandler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	if !h.client.Configured() {
		writeError(w, http.StatusServiceUnavailable, "billing is not configured")
		return
	}

	email := auth.Email(r.Context())
	url, err := h.client.CreateCheckoutSession(email)
	if err != nil {
		h.logger.Error("create checkout session", "error", err)
		writeError(w, http.StatusBadGateway, "failed to start checkout")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

// GetSubscription handles GET /api/billing/subscription
func (h *BillingHandler) GetSubscription(w http.ResponseWriter, r *http.Request) {
	email := auth.Email(r.Context())

	sub, err := h.subscriptions.GetByEmail(email)
	if err != nil {
		h.logger.Error("get subscription", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load subscription")
		return
	}
	if sub == nil {
		writeJSON(w, http.StatusOK, map[string]string{"tier": "free"})
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

// HandleWebhook handles POST /api/billing/webhook (unauthenticated; the
// Stripe signature is the credential).
func (h *BillingHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 65536))
	if err != nil {
		writeError(w, http.StatusBadRequest, "read body")
		return
	}

	event, err := h.client.ConstructWebhookEvent(body, r.Header.Get("Stripe-Signature"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid signature")
		return
	}

	switch event.Type {
	case "checkout.session.completed":
		h.handleCheckoutCompleted(event)
	case "customer.subscription.updated":
		h.handleSubscriptionUpdated(event)
	case "customer.subscription.deleted":
		h.handleSubscriptionDeleted(event)
	case "invoice.payment_failed":
		h.handleInvoicePaymentFailed(event)
	}

	w.WriteHeader(http.StatusOK)
}

func (h *BillingHandler) handleCheckoutCompleted(event stripe.Event) {
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		h.logger.Error("unmarshal checkout session", "error", err)
		return
	}

	var email string
	if sess.CustomerDetails != nil {
		email = sess.CustomerDetails.Email
	}
	if email == "" || sess.Subscription == nil {
		h.logger.Warn("checkout session missing email or subscription")
		return
	}

	var customerID string
	if sess.Customer != nil {
		customerID = sess.Customer.ID
	}

	if _, err := h.subscriptions.Upsert(email, customerID, sess.Subscription.ID, "premium", model.SubscriptionActive); err != nil {
		h.logger.Error("record subscription", "error", err)
		return
	}
	h.logger.Info("checkout completed", "email", email)
}

func (h *BillingHandler) handleSubscriptionUpdated(event stripe.Event) {
	var stripeSub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &stripeSub); err != nil {
		h.logger.Error("unmarshal subscription", "error", err)
		return
	}

	var customerID string
	if stripeSub.Customer != nil {
		customerID = stripeSub.Customer.ID
	}
	if _, err := h.subscriptions.Upsert("", customerID, stripeSub.ID, "premium", string(stripeSub.Status)); err != nil {
		h.logger.Error("update subscription", "error", err)
	}
}

func (h *BillingHandler) handleSubscriptionDeleted(event stripe.Event) {
	var stripeSub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &stripeSub); err != nil {
		h.logger.Error("unmarshal subscription", "error", err)
		return
	}

	if err := h.subscriptions.SetStatus(stripeSub.ID, model.SubscriptionCanceled); err != nil {
		h.logger.Error("cancel subscription", "error", err)
	}
}

func (h *BillingHandler) handleInvoicePaymentFailed(event stripe.Event) {
	var invoice stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
		h.logger.Error("unmarshal invoice", "error", err)
		return
	}

	subID := subscriptionIDFromInvoice(invoice)
	if subID == "" {
		return
	}
	if err := h.subscriptions.SetStatus(subID, model.SubscriptionPastDue); err != nil {
		h.logger.Error("mark subscription past due", "error", err)
	}
}

func subscriptionIDFromInvoice(invoice stripe.Invoice) string {
	if invoice.Parent != nil &&
		invoice.Parent.SubscriptionDetails != nil &&
		invoice.Parent.SubscriptionDetails.Subscription != nil {
		return invoice.Parent.SubscriptionDetails.Subscription.ID
	}
	return ""
}
