// Package jobs runs the portal's scheduled maintenance.
package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/otscheduler/portal/model"
	"github.com/otscheduler/portal/util"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// DefaultSweepSchedule is used when no schedule is configured.
const DefaultSweepSchedule = "@every 1h"

// SweepExpiredSessions soft-deletes the sessions expired at now, drops them from
// the hot store and logs each one. It returns how many were swept.
func SweepExpiredSessions(ctx context.Context, db *gorm.DB, now time.Time) (int, error) {
	expired, err := model.PurgeExpiredSessions(db, now)
	if err != nil {
		return 0, fmt.Errorf("purge expired sessions: %w", err)
	}
	for _, s := range expired {
		if err := util.RemoveSession(ctx, s.TokenID, s.Email); err != nil {
			log.Printf("session cache cleanup for %s failed: %v", s.TokenID, err)
		}
		util.LogSessionExpired(s)
	}
	return len(expired), nil
}

// StartSessionSweeper schedules SweepExpiredSessions and starts the scheduler.
// The caller stops it with Stop.
func StartSessionSweeper(db *gorm.DB, schedule string) (*cron.Cron, error) {
	if schedule == "" {
		schedule = DefaultSweepSchedule
	}
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		n, err := SweepExpiredSessions(context.Background(), db, time.Now())
		if err != nil {
			log.Println("Session sweep failed:", err)
			return
		}
		if n > 0 {
			log.Printf("Session sweep removed %d expired sessions", n)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid session sweep schedule %q: %w", schedule, err)
	}
	c.Start()
	return c, nil
}
