package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("CHAT_MAX_MESSAGE_LENGTH", "")
	t.Setenv("WS_AUTH_TIMEOUT", "")

	cfg := Load()
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, 1000, cfg.Chat.MaxMessageLength)
	assert.Equal(t, 5*time.Second, cfg.WS.AuthTimeout)
	assert.False(t, cfg.Chat.PerParticipantHide)
	assert.Nil(t, cfg.WS.AllowedOrigins)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("CHAT_PER_PARTICIPANT_HIDE", "true")
	t.Setenv("WS_AUTH_TIMEOUT", "2s")
	t.Setenv("WS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("NOTIFICATION_RETENTION_DAYS", "not-a-number")

	cfg := Load()
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.True(t, cfg.Chat.PerParticipantHide)
	assert.Equal(t, 2*time.Second, cfg.WS.AuthTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.WS.AllowedOrigins)
	assert.Equal(t, 90, cfg.Notification.RetentionDays)
}
