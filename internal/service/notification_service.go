package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"edushare/internal/domain"
	"edushare/internal/models"
	"edushare/internal/repository"
	"edushare/internal/ws"
	"edushare/pkg/apperror"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	fcmTimeout = 10 * time.Second
	// maxBodyLength matches the Body validator below.
	maxBodyLength = 500
)

// CreateNotificationInput is everything a write path supplies to raise a notification.
type CreateNotificationInput struct {
	RecipientID string `validate:"required"`
	SenderID    string
	Kind        string `validate:"required,oneof=resource_upload new_feedback payment_success chat_message system admin"`
	Title       string `validate:"required,max=200"`
	Body        string `validate:"required,max=500"`
	Link        string `validate:"omitempty,max=512"`
	Metadata    models.NotificationMetadata
}

type NotificationPage struct {
	Notifications []models.Notification `json:"notifications"`
	Total         int64                 `json:"total"`
	Page          int                   `json:"page"`
	Pages         int                   `json:"pages"`
	UnreadCount   int64                 `json:"unreadCount"`
}

type NotificationService struct {
	repo     *repository.NotificationRepository
	userRepo *repository.UserRepository
	fcm      *FCMService
	push     Pusher
	validate *validator.Validate
	now      func() time.Time
}

func NewNotificationService(repo *repository.NotificationRepository, userRepo *repository.UserRepository, fcm *FCMService, push Pusher) *NotificationService {
	if push == nil {
		push = NopPusher{}
	}
	return &NotificationService{
		repo:     repo,
		userRepo: userRepo,
		fcm:      fcm,
		push:     push,
		validate: validator.New(),
		now:      time.Now,
	}
}

// Create persists the notification and then pushes new_notification to user:{recipient}.
// When FCM is configured the notification is mirrored to the recipient's device in the background.
func (s *NotificationService) Create(ctx context.Context, in CreateNotificationInput) (*models.Notification, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Body = strings.TrimSpace(in.Body)
	if err := s.validate.Struct(in); err != nil {
		return nil, apperror.InvalidInput(validationMessage(err))
	}
	n := &models.Notification{
		RecipientID: in.RecipientID,
		Kind:        in.Kind,
		Title:       in.Title,
		Body:        in.Body,
		Link:        in.Link,
		Metadata:    in.Metadata,
		CreatedAt:   s.now(),
	}
	if in.SenderID != "" {
		sender := in.SenderID
		n.SenderID = &sender
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, storeError(err, "")
	}
	s.push.PushToUser(n.RecipientID, domain.EventNewNotification, n)
	s.mirrorToDevice(n)
	return n, nil
}

func (s *NotificationService) mirrorToDevice(n *models.Notification) {
	if s.fcm == nil || s.userRepo == nil {
		return
	}
	copied := *n
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), fcmTimeout)
		defer cancel()
		u, err := s.userRepo.GetByID(ctx, copied.RecipientID)
		if err != nil || u.FCMToken == "" {
			return
		}
		if err := s.fcm.SendNotification(ctx, u.FCMToken, &copied); err != nil {
			log.Printf("[notify] fcm mirror of %s failed: %v", copied.ID, err)
		}
	}()
}

// List returns one newest-first page plus the recipient's total unread count.
func (s *NotificationService) List(ctx context.Context, userID string, page, pageSize int, unreadOnly bool) (*NotificationPage, error) {
	if page < 1 || pageSize < 1 {
		return nil, apperror.InvalidInput("page and limit must be at least 1")
	}
	total, err := s.repo.CountByRecipient(ctx, userID, unreadOnly)
	if err != nil {
		return nil, storeError(err, "")
	}
	unread, err := s.repo.CountByRecipient(ctx, userID, true)
	if err != nil {
		return nil, storeError(err, "")
	}
	out := &NotificationPage{
		Notifications: []models.Notification{},
		Total:         total,
		Page:          page,
		Pages:         pageCount(total, pageSize),
		UnreadCount:   unread,
	}
	offset := (page - 1) * pageSize
	if int64(offset) >= total {
		return out, nil
	}
	list, err := s.repo.ListByRecipient(ctx, userID, unreadOnly, pageSize, offset)
	if err != nil {
		return nil, storeError(err, "")
	}
	out.Notifications = list
	return out, nil
}

// MarkRead is idempotent; readAt keeps the time of the first transition.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID string) (*models.Notification, error) {
	n, err := s.repo.GetForRecipient(ctx, id, userID)
	if err != nil {
		return nil, storeError(err, "notification not found")
	}
	if n.Read {
		return n, nil
	}
	if _, err := s.repo.MarkRead(ctx, id, userID, s.now()); err != nil {
		return nil, storeError(err, "")
	}
	n, err = s.repo.GetForRecipient(ctx, id, userID)
	if err != nil {
		return nil, storeError(err, "notification not found")
	}
	return n, nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	n, err := s.repo.MarkAllRead(ctx, userID, s.now())
	if err != nil {
		return 0, storeError(err, "")
	}
	return n, nil
}

// Delete erases a notification owned by userID.
func (s *NotificationService) Delete(ctx context.Context, id, userID string) error {
	n, err := s.repo.Delete(ctx, id, userID)
	if err != nil {
		return storeError(err, "")
	}
	if n == 0 {
		return apperror.NotFound("notification not found")
	}
	return nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	n, err := s.repo.CountByRecipient(ctx, userID, true)
	if err != nil {
		return 0, storeError(err, "")
	}
	return n, nil
}

// PurgeReadBefore deletes notifications read before cutoff.
func (s *NotificationService) PurgeReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	n, err := s.repo.DeleteReadBefore(ctx, cutoff)
	if err != nil {
		return 0, storeError(err, "")
	}
	return n, nil
}

func (s *NotificationService) NotifyChatMessage(ctx context.Context, recipientID, senderID, senderName, chatID, content string) (*models.Notification, error) {
	if senderName == "" {
		senderName = "Someone"
	}
	return s.Create(ctx, CreateNotificationInput{
		RecipientID: recipientID,
		SenderID:    senderID,
		Kind:        domain.KindChatMessage,
		Title:       "New Message",
		Body:        senderName + ": " + preview(content, 50),
		Link:        "/chat/" + chatID,
		Metadata:    models.NotificationMetadata{ChatID: chatID},
	})
}

func (s *NotificationService) NotifyPaymentSuccess(ctx context.Context, p *models.Payment) (*models.Notification, error) {
	return s.Create(ctx, CreateNotificationInput{
		RecipientID: p.UserID,
		Kind:        domain.KindPaymentSuccess,
		Title:       "Payment Successful",
		Body:        fmt.Sprintf("Your payment of %s for %q was successful!", formatAmount(p.AmountCents, p.Currency), p.ResourceTitle),
		Link:        resourceLink(p.ResourceID),
		Metadata:    models.NotificationMetadata{PaymentID: p.ID, ResourceID: p.ResourceID},
	})
}

func (s *NotificationService) NotifyPaymentFailed(ctx context.Context, p *models.Payment) (*models.Notification, error) {
	return s.Create(ctx, CreateNotificationInput{
		RecipientID: p.UserID,
		Kind:        domain.KindSystem,
		Title:       "Payment Failed",
		Body:        fmt.Sprintf("Your payment for %q failed. Please try again.", p.ResourceTitle),
		Metadata:    models.NotificationMetadata{PaymentID: p.ID},
	})
}

func (s *NotificationService) NotifyNewFeedback(ctx context.Context, res *models.Resource, authorID, authorName string, rating int) (*models.Notification, error) {
	if authorName == "" {
		authorName = "Someone"
	}
	return s.Create(ctx, CreateNotificationInput{
		RecipientID: res.OwnerID,
		SenderID:    authorID,
		Kind:        domain.KindNewFeedback,
		Title:       "New Feedback",
		Body:        clip(fmt.Sprintf("%s rated %q %d/5", authorName, res.Title, rating), maxBodyLength),
		Link:        resourceLink(res.ID),
		Metadata:    models.NotificationMetadata{ResourceID: res.ID},
	})
}

// AlertAdmins pushes a live-only admin_notification to admin_room. Nothing is persisted.
func (s *NotificationService) AlertAdmins(title, body string, md models.NotificationMetadata) int {
	n := s.transient(domain.KindAdmin, title, body, "", md)
	return s.push.PushToRoom(ws.RoleRoom(domain.RoleAdmin), domain.EventAdminNotification, n)
}

// BroadcastSystem pushes a live-only system_notification to every connected session.
func (s *NotificationService) BroadcastSystem(title, body, link string) (*models.Notification, int, error) {
	title, body = strings.TrimSpace(title), strings.TrimSpace(body)
	if title == "" || body == "" {
		return nil, 0, apperror.InvalidInput("title and body are required")
	}
	if utf8.RuneCountInString(title) > 200 || utf8.RuneCountInString(body) > 500 {
		return nil, 0, apperror.InvalidInput("title or body too long")
	}
	n := s.transient(domain.KindSystem, title, body, link, models.NotificationMetadata{})
	return n, s.push.BroadcastAll(domain.EventSystemNotification, n), nil
}

func (s *NotificationService) transient(kind, title, body, link string, md models.NotificationMetadata) *models.Notification {
	return &models.Notification{
		ID:        uuid.NewString(),
		Kind:      kind,
		Title:     title,
		Body:      body,
		Link:      link,
		Metadata:  md,
		CreatedAt: s.now(),
	}
}

func preview(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max]) + "..."
}

// clip bounds s to max runes, ellipsis included.
func clip(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return preview(s, max-len("..."))
}

func resourceLink(resourceID string) string {
	if resourceID == "" {
		return ""
	}
	return "/resource/" + resourceID
}

func formatAmount(cents int64, currency string) string {
	amount := fmt.Sprintf("%d.%02d", cents/100, cents%100)
	if currency == "" || strings.EqualFold(currency, "usd") {
		return "$" + amount
	}
	return amount + " " + strings.ToUpper(currency)
}

func validationMessage(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return "invalid notification"
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return strings.ToLower(fe.Field()) + " is required"
	case "oneof":
		return fmt.Sprintf("unknown notification kind %q", fe.Value())
	case "max":
		return strings.ToLower(fe.Field()) + " is too long"
	}
	return "invalid " + strings.ToLower(fe.Field())
}
