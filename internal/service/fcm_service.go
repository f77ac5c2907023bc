package service

import (
	"context"
	"log"

	"edushare/internal/models"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// FCMService mirrors notifications to mobile devices via Firebase Cloud Messaging.
type FCMService struct {
	client *messaging.Client
}

// NewFCMService returns nil when Firebase is not configured.
func NewFCMService(serviceAccountPath string) *FCMService {
	if serviceAccountPath == "" {
		return nil
	}
	ctx := context.Background()
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(serviceAccountPath))
	if err != nil {
		log.Printf("[FCM] Failed to init Firebase app: %v", err)
		return nil
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		log.Printf("[FCM] Failed to get Messaging client: %v", err)
		return nil
	}
	return &FCMService{client: client}
}

// Send delivers a visible push to one device token.
func (s *FCMService) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	if s == nil || token == "" {
		return nil
	}
	_, err := s.client.Send(ctx, buildMessage(token, title, body, data))
	if err != nil {
		log.Printf("[FCM] Send error: %v", err)
		return err
	}
	return nil
}

// SendNotification mirrors a stored notification. FCM data values must be strings.
func (s *FCMService) SendNotification(ctx context.Context, token string, n *models.Notification) error {
	return s.Send(ctx, token, n.Title, n.Body, notificationData(n))
}

func notificationData(n *models.Notification) map[string]string {
	data := map[string]string{
		"type":           n.Kind,
		"notificationId": n.ID,
	}
	if n.Link != "" {
		data["link"] = n.Link
	}
	if n.Metadata.ChatID != "" {
		data["chatId"] = n.Metadata.ChatID
	}
	if n.Metadata.ResourceID != "" {
		data["resourceId"] = n.Metadata.ResourceID
	}
	if n.Metadata.PaymentID != "" {
		data["paymentId"] = n.Metadata.PaymentID
	}
	return data
}

func buildMessage(token, title, body string, data map[string]string) *messaging.Message {
	return &messaging.Message{
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data:  data,
		Token: token,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Sound: "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: "default",
				},
			},
		},
	}
}
