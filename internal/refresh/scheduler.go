package refresh

import (
	"context"
	"log/slog"
	"time"
)

// Runner is the refresh entry point the scheduler drives.
type Runner interface {
	Run(ctx context.Context)
}

// StartDailySchedule fires the runner once immediately and thereafter every
// day at hour:00 local time. It stops on ctx cancellation. Returns a channel
// that is closed when the scheduler goroutine has exited.
func StartDailySchedule(ctx context.Context, r Runner, hour int, log *slog.Logger) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)

		log.Info("running initial reference data refresh")
		r.Run(ctx)

		for {
			next := nextFire(time.Now(), hour)
			timer := time.NewTimer(time.Until(next))
			log.Info("next reference data refresh scheduled", "at", next)

			select {
			case <-ctx.Done():
				timer.Stop()
				log.Info("refresh scheduler stopped")
				return
			case <-timer.C:
				log.Info("running scheduled reference data refresh")
				r.Run(ctx)
			}
		}
	}()
	return done
}

// nextFire returns the next hour:00 strictly after now, in now's location.
func nextFire(now time.Time, hour int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
