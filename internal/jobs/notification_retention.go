package jobs

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// ReadNotificationPurger deletes notifications read before a cutoff.
type ReadNotificationPurger interface {
	PurgeReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// NotificationRetention removes read notifications older than the retention window.
type NotificationRetention struct {
	purger    ReadNotificationPurger
	retention time.Duration
	now       func() time.Time
}

func NewNotificationRetention(purger ReadNotificationPurger, retentionDays int) *NotificationRetention {
	return &NotificationRetention{
		purger:    purger,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		now:       time.Now,
	}
}

// Run performs one purge pass and returns the number of deleted notifications.
func (j *NotificationRetention) Run(ctx context.Context) (int64, error) {
	if j.retention <= 0 {
		return 0, nil
	}
	n, err := j.purger.PurgeReadBefore(ctx, j.now().Add(-j.retention))
	if err != nil {
		log.Printf("[jobs] notification retention failed: %v", err)
		return 0, err
	}
	if n > 0 {
		log.Printf("[jobs] purged %d read notifications", n)
	}
	return n, nil
}

// Schedule registers the job on c. A zero retention leaves c untouched.
func (j *NotificationRetention) Schedule(c *cron.Cron, spec string) (cron.EntryID, error) {
	if j.retention <= 0 {
		log.Printf("[jobs] notification retention disabled")
		return 0, nil
	}
	return c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		j.Run(ctx)
	})
}
