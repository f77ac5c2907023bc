package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"edushare/config"
	"edushare/internal/database/dbtest"
	"edushare/internal/models"
	"edushare/internal/repository"
	"edushare/internal/ws"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type pushRecord struct {
	Target  string
	Event   string
	Payload interface{}
}

type recordingPusher struct {
	mu     sync.Mutex
	pushes []pushRecord
}

func (p *recordingPusher) record(target, event string, payload interface{}) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pushes = append(p.pushes, pushRecord{Target: target, Event: event, Payload: payload})
	return 1
}

func (p *recordingPusher) PushToRoom(room ws.Room, event string, payload interface{}) int {
	return p.record(room.String(), event, payload)
}

func (p *recordingPusher) PushToUser(userID, event string, payload interface{}) int {
	return p.record(ws.PersonalRoom(userID).String(), event, payload)
}

func (p *recordingPusher) BroadcastAll(event string, payload interface{}) int {
	return p.record("*", event, payload)
}

func (p *recordingPusher) to(target string) []pushRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []pushRecord
	for _, r := range p.pushes {
		if r.Target == target {
			out = append(out, r)
		}
	}
	return out
}

// stepClock advances one second per reading so records get distinct, ordered timestamps.
type stepClock struct {
	mu sync.Mutex
	t  time.Time
}

func newStepClock() *stepClock {
	return &stepClock{t: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

type fixture struct {
	ctx      context.Context
	db       *gorm.DB
	cfg      *config.Config
	users    *repository.UserRepository
	convs    *repository.ConversationRepository
	notifs   *repository.NotificationRepository
	pusher   *recordingPusher
	clock    *stepClock
	chat     *ChatService
	notify   *NotificationService
	payments *PaymentService
	feedback *FeedbackService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.New(t)
	cfg := &config.Config{
		Chat: config.ChatConfig{MaxMessageLength: 1000, DefaultPageSize: 50},
	}
	f := &fixture{
		ctx:    context.Background(),
		db:     db,
		cfg:    cfg,
		users:  repository.NewUserRepository(db),
		convs:  repository.NewConversationRepository(db),
		notifs: repository.NewNotificationRepository(db),
		pusher: &recordingPusher{},
		clock:  newStepClock(),
	}
	f.notify = NewNotificationService(f.notifs, f.users, nil, f.pusher)
	f.notify.now = f.clock.Now
	f.chat = NewChatService(&cfg.Chat, f.convs, f.users, f.notify, f.pusher)
	f.chat.now = f.clock.Now
	f.payments = NewPaymentService(repository.NewPaymentRepository(db), repository.NewAuditLogRepository(db), f.notify)
	f.payments.now = f.clock.Now
	f.feedback = NewFeedbackService(repository.NewResourceRepository(db), f.users, f.notify)
	return f
}

func (f *fixture) user(t *testing.T, name, role string) *models.User {
	t.Helper()
	u := &models.User{Name: name, Email: name + "@example.com", Role: role}
	require.NoError(t, f.users.Create(f.ctx, u))
	return u
}

func (f *fixture) conversation(t *testing.T, a, b *models.User) *models.Conversation {
	t.Helper()
	c, err := f.chat.GetOrCreate(f.ctx, a.ID, b.ID)
	require.NoError(t, err)
	return c
}
