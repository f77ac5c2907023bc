package service

import (
	"errors"

	"edushare/internal/ws"
	"edushare/pkg/apperror"

	"gorm.io/gorm"
)

// Pusher is the live fan-out surface the stores call after a commit. *ws.Hub implements it.
// Push results are informational; a zero count means nobody was connected.
type Pusher interface {
	PushToRoom(room ws.Room, event string, payload interface{}) int
	PushToUser(userID, event string, payload interface{}) int
	BroadcastAll(event string, payload interface{}) int
}

// NopPusher drops every push.
type NopPusher struct{}

func (NopPusher) PushToRoom(ws.Room, string, interface{}) int { return 0 }
func (NopPusher) PushToUser(string, string, interface{}) int  { return 0 }
func (NopPusher) BroadcastAll(string, interface{}) int        { return 0 }

// storeError maps repository errors onto the public taxonomy.
func storeError(err error, notFound string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound(notFound)
	}
	return apperror.Unavailable("storage unavailable", err)
}

func pageCount(total int64, size int) int {
	if total == 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}
