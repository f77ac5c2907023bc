package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Conversation is a two-party thread. Participants are stored sorted so that
// PairKey is canonical for the unordered pair.
type Conversation struct {
	ID               string      `gorm:"primaryKey;size:36" json:"id"`
	ParticipantA     string      `gorm:"size:36;not null;index" json:"-"`
	ParticipantB     string      `gorm:"size:36;not null;index" json:"-"`
	ParticipantAName string      `gorm:"size:255" json:"-"`
	ParticipantBName string      `gorm:"size:255" json:"-"`
	PairKey          string      `gorm:"size:80;not null;uniqueIndex" json:"-"`
	LastMessage      LastMessage `gorm:"embedded;embeddedPrefix:last_message_" json:"lastMessage"`
	Active           bool        `gorm:"not null;default:true;index" json:"active"`
	CreatedAt        time.Time   `json:"createdAt"`
	UpdatedAt        time.Time   `json:"updatedAt"`

	Participants []Participant `gorm:"-" json:"participants"`
}

// LastMessage mirrors the tail of the message log. Only the append path writes it.
type LastMessage struct {
	Content   string     `gorm:"type:text" json:"content"`
	Timestamp *time.Time `gorm:"index" json:"timestamp"`
	SenderID  string     `gorm:"size:36" json:"sender"`
}

type Participant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (Conversation) TableName() string {
	return "conversations"
}

func (c *Conversation) BeforeCreate(*gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

func (c *Conversation) AfterFind(*gorm.DB) error {
	c.fillParticipants()
	return nil
}

func (c *Conversation) AfterCreate(*gorm.DB) error {
	c.fillParticipants()
	return nil
}

func (c *Conversation) fillParticipants() {
	c.Participants = []Participant{
		{ID: c.ParticipantA, Name: c.ParticipantAName},
		{ID: c.ParticipantB, Name: c.ParticipantBName},
	}
}

// HasParticipant reports whether userID is one of the two participants.
func (c *Conversation) HasParticipant(userID string) bool {
	return userID != "" && (c.ParticipantA == userID || c.ParticipantB == userID)
}

// Other returns the participant that is not userID.
func (c *Conversation) Other(userID string) string {
	if c.ParticipantA == userID {
		return c.ParticipantB
	}
	return c.ParticipantA
}

// PairKey returns the canonical key for an unordered pair and the pair in sorted order.
func PairKey(a, b string) (key, first, second string) {
	if b < a {
		a, b = b, a
	}
	return a + ":" + b, a, b
}

// Message belongs to exactly one conversation. The auto-increment ID gives the append order.
type Message struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	ConversationID string     `gorm:"size:36;not null;index:idx_messages_conversation_read,priority:1" json:"chatId"`
	SenderID       string     `gorm:"size:36;not null" json:"sender"`
	SenderName     string     `gorm:"size:255" json:"senderName"`
	Content        string     `gorm:"type:text;not null" json:"content"`
	Read           bool       `gorm:"column:is_read;not null;default:false;index:idx_messages_conversation_read,priority:2" json:"read"`
	ReadAt         *time.Time `json:"readAt"`
	CreatedAt      time.Time  `json:"createdAt"`
}

func (Message) TableName() string {
	return "messages"
}

// ConversationHide records that a participant deleted the conversation from their list.
type ConversationHide struct {
	ConversationID string    `gorm:"primaryKey;size:36"`
	UserID         string    `gorm:"primaryKey;size:36"`
	CreatedAt      time.Time
}

func (ConversationHide) TableName() string {
	return "conversation_hides"
}
