package monitoring

import (
	"log"

	"github.com/robfig/cron/v3"

	"github.com/glitchlobby/lobby-be/internal/services"
)

// Sweeper prunes expired sessions on a schedule. Reads already treat an
// expired row as missing, so the sweep is only housekeeping that keeps the
// sessions table from growing without bound.
type Sweeper struct {
	sessions services.SessionServiceProvider
	cron     *cron.Cron
}

// NewSweeper creates a sweeper running on the given cron schedule
// (e.g. "@every 1m").
func NewSweeper(sessions services.SessionServiceProvider, schedule string) (*Sweeper, error) {
	s := &Sweeper{
		sessions: sessions,
		cron:     cron.New(),
	}
	if _, err := s.cron.AddFunc(schedule, s.sweep); err != nil {
		return nil, err
	}
	return s, nil
}

// Run starts the sweep schedule and performs one sweep immediately.
func (s *Sweeper) Run() {
	log.Println("Starting session sweeper...")
	s.sweep()
	s.cron.Start()
}

// Stop halts the sweeper and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	log.Println("Stopping session sweeper.")
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Sweeper) sweep() {
	n, err := s.sessions.DeleteExpired()
	if err != nil {
		log.Printf("Sweeper: failed to delete expired sessions: %v", err)
		return
	}
	if n > 0 {
		log.Printf("Sweeper: deleted %d expired sessions", n)
	}
}
