package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"

	"edushare/config"
	"edushare/internal/service"
	"edushare/pkg/apperror"

	"github.com/gin-gonic/gin"
)

const maxWebhookBody = 1 << 20

type PaymentWebhookHandler struct {
	paymentSvc *service.PaymentService
	cfg        *config.PaymentConfig
}

func NewPaymentWebhookHandler(paymentSvc *service.PaymentService, cfg *config.PaymentConfig) *PaymentWebhookHandler {
	return &PaymentWebhookHandler{paymentSvc: paymentSvc, cfg: cfg}
}

// Handle verifies X-Webhook-Signature (hex HMAC-SHA256 of the raw body) when a secret is
// configured, then applies the event. Events that cannot be matched are acknowledged.
func (h *PaymentWebhookHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		respondError(c, apperror.InvalidInput("invalid body"))
		return
	}
	if h.cfg.WebhookSecret != "" && !verifySignature(h.cfg.WebhookSecret, body, c.GetHeader("X-Webhook-Signature")) {
		respondError(c, apperror.Unauthenticated("invalid signature"))
		return
	}
	var evt service.WebhookEvent
	if err := json.Unmarshal(body, &evt); err != nil || evt.Type == "" {
		respondError(c, apperror.InvalidInput("invalid json"))
		return
	}
	meta := service.RequestMeta{IP: c.ClientIP(), UserAgent: c.Request.UserAgent()}
	if err := h.paymentSvc.HandleWebhook(c.Request.Context(), &evt, meta); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}

func verifySignature(secret string, body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(signature), []byte(expected))
}
