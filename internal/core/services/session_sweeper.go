package services

import (
	"context"
	"time"

	"ambika-sandledger/internal/adapters/persistence/repositories"
	"ambika-sandledger/internal/pkg/logger"

	"github.com/robfig/cron/v3"
)

// SessionSweeper periodically deletes expired session rows. Expiry is
// already enforced on every resolve; the sweeper only reclaims storage
// from sessions that were abandoned without logging out.
type SessionSweeper struct {
	sessionRepo repositories.SessionRepository
	cron        *cron.Cron
}

// NewSessionSweeper creates a new session sweeper
func NewSessionSweeper(sessionRepo repositories.SessionRepository) *SessionSweeper {
	return &SessionSweeper{
		sessionRepo: sessionRepo,
		cron:        cron.New(),
	}
}

// Start schedules the sweep every 15 minutes and runs one immediately
// to clear anything left over from before the last shutdown.
func (s *SessionSweeper) Start() error {
	if _, err := s.cron.AddFunc("@every 15m", s.sweep); err != nil {
		return err
	}
	s.cron.Start()
	go s.sweep()
	logger.Get().Info().Msg("session sweeper started")
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish
func (s *SessionSweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Get().Info().Msg("session sweeper stopped")
}

func (s *SessionSweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	purged, err := s.sessionRepo.DeleteExpired(ctx)
	if err != nil {
		logger.Get().Error().Err(err).Msg("session sweep failed")
		return
	}
	if purged > 0 {
		logger.Get().Info().Int64("purged", purged).Msg("expired sessions purged")
	}
}
