package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"edushare/internal/domain"
	"edushare/internal/models"
	"edushare/internal/repository"
	"edushare/pkg/apperror"

	"gorm.io/gorm"
)

// WebhookEvent is the provider's event envelope. Only the fields this service reads are decoded.
type WebhookEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object WebhookObject `json:"object"`
	} `json:"data"`
}

type WebhookObject struct {
	ID               string            `json:"id"`
	PaymentIntent    string            `json:"payment_intent"`
	Metadata         map[string]string `json:"metadata"`
	LastPaymentError *struct {
		Message string `json:"message"`
	} `json:"last_payment_error"`
}

// RequestMeta is recorded in the audit log.
type RequestMeta struct {
	IP        string
	UserAgent string
}

// PaymentService moves payments to their terminal state from provider webhooks and raises
// the matching notifications.
type PaymentService struct {
	payments *repository.PaymentRepository
	audit    *repository.AuditLogRepository
	notify   *NotificationService
	now      func() time.Time
}

func NewPaymentService(payments *repository.PaymentRepository, audit *repository.AuditLogRepository, notify *NotificationService) *PaymentService {
	return &PaymentService{payments: payments, audit: audit, notify: notify, now: time.Now}
}

// HandleWebhook applies one event. Unknown event types and unknown payments are acknowledged
// without error so the provider stops retrying; only storage failures are returned.
func (s *PaymentService) HandleWebhook(ctx context.Context, evt *WebhookEvent, meta RequestMeta) error {
	switch evt.Type {
	case domain.WebhookCheckoutCompleted:
		return s.completeCheckout(ctx, evt, meta)
	case domain.WebhookPaymentFailed:
		return s.failIntent(ctx, evt)
	default:
		log.Printf("[payment] unhandled event type %q", evt.Type)
		return nil
	}
}

func (s *PaymentService) completeCheckout(ctx context.Context, evt *WebhookEvent, meta RequestMeta) error {
	obj := evt.Data.Object
	paymentID := obj.Metadata["paymentId"]
	if paymentID == "" {
		log.Printf("[payment] checkout %s has no paymentId metadata", obj.ID)
		return nil
	}
	p, err := s.payments.GetByID(ctx, paymentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("[payment] checkout %s references unknown payment %s", obj.ID, paymentID)
		return nil
	}
	if err != nil {
		return storeError(err, "")
	}
	if p.Status == domain.PaymentStatusCompleted {
		return nil
	}
	now := s.now()
	p.Status = domain.PaymentStatusCompleted
	p.ProviderSessionID = obj.ID
	if obj.PaymentIntent != "" {
		p.ProviderIntentID = obj.PaymentIntent
	}
	p.FailureReason = ""
	p.CompletedAt = &now
	if err := s.payments.Update(ctx, p); err != nil {
		return apperror.Unavailable("update payment failed", err)
	}

	auditMeta, _ := json.Marshal(map[string]interface{}{"event": evt.ID, "amountCents": p.AmountCents, "currency": p.Currency})
	userID := p.UserID
	if err := s.audit.Create(ctx, &models.AuditLog{
		UserID:     &userID,
		Action:     "payment_completed",
		Resource:   "payment",
		ResourceID: p.ID,
		IP:         meta.IP,
		UserAgent:  meta.UserAgent,
		Metadata:   string(auditMeta),
	}); err != nil {
		log.Printf("[payment] audit log for %s: %v", p.ID, err)
	}
	if _, err := s.notify.NotifyPaymentSuccess(ctx, p); err != nil {
		log.Printf("[payment] notify success for %s: %v", p.ID, err)
	}
	s.notify.AlertAdmins("Payment received",
		fmt.Sprintf("%s paid for %q", formatAmount(p.AmountCents, p.Currency), p.ResourceTitle),
		models.NotificationMetadata{PaymentID: p.ID, ResourceID: p.ResourceID})
	return nil
}

func (s *PaymentService) failIntent(ctx context.Context, evt *WebhookEvent) error {
	obj := evt.Data.Object
	if obj.ID == "" {
		return nil
	}
	p, err := s.payments.GetByProviderIntentID(ctx, obj.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("[payment] failure for unknown intent %s", obj.ID)
		return nil
	}
	if err != nil {
		return storeError(err, "")
	}
	if p.Status != domain.PaymentStatusPending {
		return nil
	}
	p.Status = domain.PaymentStatusFailed
	p.FailureReason = "Payment failed"
	if obj.LastPaymentError != nil && obj.LastPaymentError.Message != "" {
		p.FailureReason = obj.LastPaymentError.Message
	}
	if err := s.payments.Update(ctx, p); err != nil {
		return apperror.Unavailable("update payment failed", err)
	}
	if _, err := s.notify.NotifyPaymentFailed(ctx, p); err != nil {
		log.Printf("[payment] notify failure for %s: %v", p.ID, err)
	}
	return nil
}
