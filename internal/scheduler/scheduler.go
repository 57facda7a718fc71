// Package scheduler runs the periodic session sweep. Lazy eviction in
// the registry keeps the state machine correct on its own; the sweep
// only bounds memory held by abandoned conversations.
package scheduler

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"github.com/dkazmin/pvzbot/config"
	"github.com/dkazmin/pvzbot/internal/session"
)

type Scheduler struct {
	cron     *cron.Cron
	registry *session.Registry
}

func New(cfg *config.Config, registry *session.Registry) *Scheduler {
	c := cron.New(cron.WithLocation(cfg.Timezone))
	return &Scheduler{
		cron:     c,
		registry: registry,
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc("*/5 * * * *", s.sweepSessions); err != nil {
		return fmt.Errorf("add session sweep: %w", err)
	}

	s.cron.Start()
	log.Println("Scheduler started")

	<-ctx.Done()
	return nil
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("Scheduler stopped")
}

func (s *Scheduler) sweepSessions() {
	if evicted := s.registry.Sweep(); evicted > 0 {
		log.Printf("Session sweep evicted %d idle workflows", evicted)
	}
}
