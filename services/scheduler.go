// services/scheduler.go
package services

import (
	"time"

	"github.com/go-co-op/gocron/v2"
)

// StartResetScheduler sweeps quest windows in the background. Login and the
// quest endpoints already reset on demand; the sweep keeps long-idle users'
// windows honest so a claim right after a window rollover can't race a stale
// instance.
func (s *QuestService) StartResetScheduler() {
	sched, _ := gocron.NewScheduler(gocron.WithClock(s.clock))
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(15*time.Minute),
		gocron.NewTask(func() {
			s.SweepResets()
		}),
	)
}
