package lifecycle

import (
	"eigenkey/internal/lifecycle/interfaces"
	"eigenkey/internal/providers"
	"eigenkey/internal/structures"
	"sync"

	"github.com/roylee0704/gron"
)

type Scheduler struct {
	config   *structures.Config
	logger   providers.Logger
	archiver *Archiver
	cron     *gron.Cron
	opsMu    sync.Mutex
}

func (s *Scheduler) Init() {
	if !s.config.Archive.Enabled {
		s.logger.Infof(providers.TypeApp, "Usage log archival disabled")
		return
	}

	s.cron = gron.New()
	s.cron.AddFunc(gron.Every(s.config.Archive.Interval), func() {
		_ = s.Roll()
	})
	s.cron.Start()
	s.logger.Infof(providers.TypeApp, "Usage log archival every %s, retention %s", s.config.Archive.Interval, s.config.Archive.Retention)
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
	s.opsMu.Lock()
	defer s.opsMu.Unlock()
	s.archiver.Close()
}

func (s *Scheduler) Roll() error {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	_, _, err := s.archiver.Roll()
	if err != nil {
		s.logger.Errorf(providers.TypeApp, "Error while archiving usage log: %s", err)
		return err
	}
	return nil
}

func NewScheduler(config *structures.Config, logger providers.Logger, archiver *Archiver) interfaces.SchedulerInterface {
	return &Scheduler{
		config:   config,
		logger:   logger,
		archiver: archiver,
	}
}
