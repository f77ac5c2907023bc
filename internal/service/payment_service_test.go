package service

import (
	"testing"

	"edushare/internal/domain"
	"edushare/internal/models"
	"edushare/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedPayment(t *testing.T, f *fixture, userID string) *models.Payment {
	t.Helper()
	p := &models.Payment{
		UserID:           userID,
		ResourceID:       "res-1",
		ResourceTitle:    "Linear Algebra Notes",
		AmountCents:      1250,
		Currency:         "usd",
		Status:           domain.PaymentStatusPending,
		ProviderIntentID: "pi_123",
	}
	require.NoError(t, repository.NewPaymentRepository(f.db).Create(f.ctx, p))
	return p
}

func checkoutEvent(paymentID string) *WebhookEvent {
	evt := &WebhookEvent{ID: "evt_1", Type: domain.WebhookCheckoutCompleted}
	evt.Data.Object = WebhookObject{ID: "cs_1", PaymentIntent: "pi_123", Metadata: map[string]string{"paymentId": paymentID}}
	return evt
}

func TestCheckoutCompleted(t *testing.T) {
	f := newFixture(t)
	ann := f.user(t, "ann", domain.RoleStudent)
	p := seedPayment(t, f, ann.ID)

	require.NoError(t, f.payments.HandleWebhook(f.ctx, checkoutEvent(p.ID), RequestMeta{IP: "10.0.0.1"}))
	require.NoError(t, f.payments.HandleWebhook(f.ctx, checkoutEvent(p.ID), RequestMeta{IP: "10.0.0.1"}))

	got, err := repository.NewPaymentRepository(f.db).GetByID(f.ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusCompleted, got.Status)
	assert.NotNil(t, got.CompletedAt)
	assert.Equal(t, "cs_1", got.ProviderSessionID)

	page, err := f.notify.List(f.ctx, ann.ID, 1, 10, false)
	require.NoError(t, err)
	require.Len(t, page.Notifications, 1)
	n := page.Notifications[0]
	assert.Equal(t, domain.KindPaymentSuccess, n.Kind)
	assert.Equal(t, p.ID, n.Metadata.PaymentID)
	assert.Contains(t, n.Body, "$12.50")

	logs, err := repository.NewAuditLogRepository(f.db).ListByResource(f.ctx, "payment", p.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "payment_completed", logs[0].Action)
	assert.Equal(t, "10.0.0.1", logs[0].IP)

	assert.Len(t, f.pusher.to("admin_room"), 1)
}

func TestPaymentFailed(t *testing.T) {
	f := newFixture(t)
	ann := f.user(t, "ann", domain.RoleStudent)
	p := seedPayment(t, f, ann.ID)

	evt := &WebhookEvent{Type: domain.WebhookPaymentFailed}
	evt.Data.Object.ID = "pi_123"
	evt.Data.Object.LastPaymentError = &struct {
		Message string `json:"message"`
	}{Message: "card declined"}
	require.NoError(t, f.payments.HandleWebhook(f.ctx, evt, RequestMeta{}))

	got, err := repository.NewPaymentRepository(f.db).GetByID(f.ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusFailed, got.Status)
	assert.Equal(t, "card declined", got.FailureReason)

	page, err := f.notify.List(f.ctx, ann.ID, 1, 10, false)
	require.NoError(t, err)
	require.Len(t, page.Notifications, 1)
	assert.Equal(t, domain.KindSystem, page.Notifications[0].Kind)
	assert.Equal(t, "Payment Failed", page.Notifications[0].Title)
}

func TestWebhookIgnoresUnknownEventsAndPayments(t *testing.T) {
	f := newFixture(t)
	assert.NoError(t, f.payments.HandleWebhook(f.ctx, &WebhookEvent{Type: "customer.created"}, RequestMeta{}))
	assert.NoError(t, f.payments.HandleWebhook(f.ctx, checkoutEvent("missing"), RequestMeta{}))
	assert.NoError(t, f.payments.HandleWebhook(f.ctx, checkoutEvent(""), RequestMeta{}))

	var count int64
	require.NoError(t, f.db.Model(&models.Notification{}).Count(&count).Error)
	assert.Zero(t, count)
}
