package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"edushare/config"
	"edushare/internal/domain"
	"edushare/internal/models"
	"edushare/internal/repository"
	"edushare/internal/ws"
	"edushare/pkg/apperror"
)

// NewMessageEvent is the new_message payload pushed to chat:{id}.
type NewMessageEvent struct {
	ChatID  string          `json:"chatId"`
	Message *models.Message `json:"message"`
}

type MessagePage struct {
	Messages []models.Message `json:"messages"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	Pages    int              `json:"pages"`
}

type ChatService struct {
	cfg    *config.ChatConfig
	convs  *repository.ConversationRepository
	users  *repository.UserRepository
	notify *NotificationService
	push   Pusher
	now    func() time.Time
}

func NewChatService(cfg *config.ChatConfig, convs *repository.ConversationRepository, users *repository.UserRepository, notify *NotificationService, push Pusher) *ChatService {
	if push == nil {
		push = NopPusher{}
	}
	return &ChatService{cfg: cfg, convs: convs, users: users, notify: notify, push: push, now: time.Now}
}

// GetOrCreate returns the single conversation for the unordered pair {callerID, otherID},
// creating it on first contact. A concurrent creator that loses the unique pair-key race
// re-reads the winner's row.
func (s *ChatService) GetOrCreate(ctx context.Context, callerID, otherID string) (*models.Conversation, error) {
	callerID, otherID = strings.TrimSpace(callerID), strings.TrimSpace(otherID)
	if callerID == "" || otherID == "" {
		return nil, apperror.InvalidInput("participant id is required")
	}
	if callerID == otherID {
		return nil, apperror.InvalidInput("cannot start a conversation with yourself")
	}
	caller, err := s.users.GetByID(ctx, callerID)
	if err != nil {
		return nil, storeError(err, "user not found")
	}
	other, err := s.users.GetByID(ctx, otherID)
	if err != nil {
		return nil, storeError(err, "user not found")
	}

	key, first, second := models.PairKey(caller.ID, other.ID)
	existing, err := s.convs.GetByPairKey(ctx, key)
	if err == nil {
		return existing, nil
	}
	if err = storeError(err, ""); !apperror.Is(err, apperror.CodeNotFound) {
		return nil, err
	}

	names := map[string]string{caller.ID: caller.Name, other.ID: other.Name}
	conv := &models.Conversation{
		ParticipantA:     first,
		ParticipantB:     second,
		ParticipantAName: names[first],
		ParticipantBName: names[second],
		PairKey:          key,
		Active:           true,
	}
	if err := s.convs.Create(ctx, conv); err != nil {
		winner, rerr := s.convs.GetByPairKey(ctx, key)
		if rerr == nil {
			return winner, nil
		}
		return nil, apperror.Unavailable("create conversation failed", err)
	}
	log.Printf("[chat] conversation %s created for %s", conv.ID, key)
	return conv, nil
}

func (s *ChatService) ListForUser(ctx context.Context, userID string) ([]models.Conversation, error) {
	list, err := s.convs.ListForUser(ctx, userID)
	if err != nil {
		return nil, storeError(err, "")
	}
	if list == nil {
		list = []models.Conversation{}
	}
	return list, nil
}

// Get returns the conversation if callerID participates in it.
func (s *ChatService) Get(ctx context.Context, conversationID, callerID string) (*models.Conversation, error) {
	return s.load(ctx, conversationID, callerID, apperror.CodeForbidden)
}

// IsParticipant authorizes conversation room joins on the realtime channel.
func (s *ChatService) IsParticipant(ctx context.Context, conversationID, userID string) (bool, error) {
	_, err := s.Get(ctx, conversationID, userID)
	if err == nil {
		return true, nil
	}
	switch apperror.CodeOf(err) {
	case apperror.CodeForbidden, apperror.CodeNotFound:
		return false, nil
	default:
		return false, err
	}
}

// load fetches the conversation and rejects non-participants with the given code.
func (s *ChatService) load(ctx context.Context, conversationID, callerID string, nonParticipant apperror.Code) (*models.Conversation, error) {
	if conversationID == "" {
		return nil, apperror.NotFound("chat not found")
	}
	conv, err := s.convs.GetByID(ctx, conversationID)
	if err != nil {
		return nil, storeError(err, "chat not found")
	}
	if !conv.HasParticipant(callerID) {
		if nonParticipant == apperror.CodeNotFound {
			return nil, apperror.NotFound("chat not found")
		}
		return nil, apperror.Forbidden("not a participant of this chat")
	}
	return conv, nil
}

// SendMessage appends to the log, then pushes new_message to chat:{id} and notifies the
// other participant. Neither follow-up can fail the send.
func (s *ChatService) SendMessage(ctx context.Context, conversationID, senderID, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperror.InvalidInput("message content is required")
	}
	if n := utf8.RuneCountInString(content); n > s.cfg.MaxMessageLength {
		return nil, apperror.InvalidInput(fmt.Sprintf("message exceeds %d characters", s.cfg.MaxMessageLength))
	}
	conv, err := s.load(ctx, conversationID, senderID, apperror.CodeNotFound)
	if err != nil {
		return nil, err
	}
	senderName := conv.ParticipantAName
	if senderID == conv.ParticipantB {
		senderName = conv.ParticipantBName
	}
	msg := &models.Message{
		ConversationID: conv.ID,
		SenderID:       senderID,
		SenderName:     senderName,
		Content:        content,
		CreatedAt:      s.now(),
	}
	if err := s.convs.AppendMessage(ctx, msg); err != nil {
		return nil, storeError(err, "chat not found")
	}

	s.push.PushToRoom(ws.ConversationRoom(conv.ID), domain.EventNewMessage, NewMessageEvent{ChatID: conv.ID, Message: msg})
	if s.notify != nil {
		if _, err := s.notify.NotifyChatMessage(ctx, conv.Other(senderID), senderID, senderName, conv.ID, content); err != nil {
			log.Printf("[chat] notify recipient of message %d in %s: %v", msg.ID, conv.ID, err)
		}
	}
	return msg, nil
}

// ListMessages pages the log from the newest end; each page is returned oldest-first.
func (s *ChatService) ListMessages(ctx context.Context, conversationID, callerID string, page, pageSize int) (*MessagePage, error) {
	if page < 1 || pageSize < 1 {
		return nil, apperror.InvalidInput("page and limit must be at least 1")
	}
	conv, err := s.Get(ctx, conversationID, callerID)
	if err != nil {
		return nil, err
	}
	total, err := s.convs.CountMessages(ctx, conv.ID)
	if err != nil {
		return nil, storeError(err, "")
	}
	out := &MessagePage{Messages: []models.Message{}, Total: total, Page: page, Pages: pageCount(total, pageSize)}
	offset := (page - 1) * pageSize
	if int64(offset) >= total {
		return out, nil
	}
	list, err := s.convs.ListMessagesNewestFirst(ctx, conv.ID, pageSize, offset)
	if err != nil {
		return nil, storeError(err, "")
	}
	for i, j := 0, len(list)-1; i < j; i, j = i+1, j-1 {
		list[i], list[j] = list[j], list[i]
	}
	out.Messages = list
	return out, nil
}

// MarkRead marks every message the caller received in the conversation as read.
// It returns the number of messages that changed state.
func (s *ChatService) MarkRead(ctx context.Context, conversationID, callerID string) (int64, error) {
	conv, err := s.Get(ctx, conversationID, callerID)
	if err != nil {
		return 0, err
	}
	n, err := s.convs.MarkRead(ctx, conv.ID, callerID, s.now())
	if err != nil {
		return 0, storeError(err, "")
	}
	return n, nil
}

// SoftDelete hides the conversation from the caller's list. Unless per-participant hiding
// is enabled the shared active flag is cleared too, hiding it for both sides.
func (s *ChatService) SoftDelete(ctx context.Context, conversationID, callerID string) error {
	conv, err := s.Get(ctx, conversationID, callerID)
	if err != nil {
		return err
	}
	if err := s.convs.Hide(ctx, conv.ID, callerID); err != nil {
		return storeError(err, "")
	}
	if !s.cfg.PerParticipantHide {
		if err := s.convs.Deactivate(ctx, conv.ID); err != nil {
			return storeError(err, "")
		}
	}
	return nil
}

func (s *ChatService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	n, err := s.convs.CountUnreadForUser(ctx, userID)
	if err != nil {
		return 0, storeError(err, "")
	}
	return n, nil
}
