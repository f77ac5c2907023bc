package domain

const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

// Notification kinds. The set is closed; the store rejects anything else.
const (
	KindResourceUpload = "resource_upload"
	KindNewFeedback    = "new_feedback"
	KindPaymentSuccess = "payment_success"
	KindChatMessage    = "chat_message"
	KindSystem         = "system"
	KindAdmin          = "admin"
)

var NotificationKinds = []string{
	KindResourceUpload,
	KindNewFeedback,
	KindPaymentSuccess,
	KindChatMessage,
	KindSystem,
	KindAdmin,
}

func IsNotificationKind(k string) bool {
	for _, v := range NotificationKinds {
		if v == k {
			return true
		}
	}
	return false
}

// Server-pushed event names on the realtime channel.
const (
	EventConnected          = "connected"
	EventNewMessage         = "new_message"
	EventNewNotification    = "new_notification"
	EventAdminNotification  = "admin_notification"
	EventSystemNotification = "system_notification"
	EventUserTyping         = "user_typing"
	EventUserStopTyping     = "user_stop_typing"
	EventError              = "error"
)

// Client-initiated signals.
const (
	SignalAuth       = "auth"
	SignalJoinChat   = "join_chat"
	SignalLeaveChat  = "leave_chat"
	SignalJoinAdmin  = "join_admin"
	SignalTyping     = "typing"
	SignalStopTyping = "stop_typing"
)

const (
	PaymentStatusPending   = "PENDING"
	PaymentStatusCompleted = "COMPLETED"
	PaymentStatusFailed    = "FAILED"
)

// Payment provider webhook event types.
const (
	WebhookCheckoutCompleted = "checkout.session.completed"
	WebhookPaymentFailed     = "payment_intent.payment_failed"
)
