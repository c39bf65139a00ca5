package monitoring

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"plantcare-be/internal/auth"
	"plantcare-be/internal/uploads"
)

// maxUploadAge is how long an analyzed image stays on disk. The result page
// links it immediately after analysis; nothing references it afterwards.
const maxUploadAge = 24 * time.Hour

// Janitor periodically drops expired sessions and stale uploaded images.
type Janitor struct {
	sessions *auth.SessionStore
	uploads  *uploads.Store
	schedule cron.Schedule
	done     chan bool
}

// NewJanitor creates a janitor running on the given cron expression.
func NewJanitor(sessions *auth.SessionStore, up *uploads.Store, cronExpr string) (*Janitor, error) {
	schedule, err := cron.ParseStandard(cronExpr)
	if err != nil {
		return nil, err
	}
	return &Janitor{
		sessions: sessions,
		uploads:  up,
		schedule: schedule,
		done:     make(chan bool),
	}, nil
}

// Run starts the janitor loop. It wakes once a minute and sweeps whenever the
// schedule's next fire time has passed.
func (j *Janitor) Run() {
	log.Info().Msg("Starting background janitor...")
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	next := j.schedule.Next(time.Now())
	for {
		select {
		case <-j.done:
			log.Info().Msg("Stopping background janitor.")
			return
		case now := <-ticker.C:
			if now.After(next) {
				j.sweep()
				next = j.schedule.Next(now)
			}
		}
	}
}

// Stop halts the janitor.
func (j *Janitor) Stop() {
	j.done <- true
}

func (j *Janitor) sweep() {
	purgedSessions := j.sessions.PurgeExpired()

	purgedUploads, err := j.uploads.PurgeOlderThan(maxUploadAge)
	if err != nil {
		log.Error().Err(err).Msg("Janitor: failed to purge uploads")
	}

	if purgedSessions > 0 || purgedUploads > 0 {
		log.Info().
			Int("sessions", purgedSessions).
			Int("uploads", purgedUploads).
			Msg("Janitor sweep complete")
	}
}
