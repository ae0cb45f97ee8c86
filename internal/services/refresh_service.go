package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// GraphLoader is the part of RoutingService the refresh job needs
type GraphLoader interface {
	Load(ctx context.Context) error
}

// RefreshService reloads the transit graph on a cron schedule
type RefreshService struct {
	cron     *cron.Cron
	loader   GraphLoader
	logger   *logrus.Logger
	schedule string
	timeout  time.Duration
}

// NewRefreshService creates a refresh service. schedule uses the six-field
// cron format with seconds; an empty schedule disables the job.
func NewRefreshService(loader GraphLoader, logger *logrus.Logger, schedule string) *RefreshService {
	return &RefreshService{
		cron:     cron.New(cron.WithSeconds()),
		loader:   loader,
		logger:   logger,
		schedule: schedule,
		timeout:  10 * time.Minute,
	}
}

// Start schedules the reload job and starts the scheduler
func (s *RefreshService) Start() error {
	if s.schedule == "" {
		s.logger.Info("Graph refresh schedule not set, scheduled reloads disabled")
		return nil
	}

	if _, err := s.cron.AddFunc(s.schedule, s.reloadGraphJob); err != nil {
		return fmt.Errorf("failed to schedule graph reload %q: %w", s.schedule, err)
	}

	s.cron.Start()
	s.logger.WithField("schedule", s.schedule).Info("Graph refresh scheduled")
	return nil
}

// Stop stops the scheduler and waits for a running reload to finish
func (s *RefreshService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Graph refresh stopped")
}

// RunNow runs the reload job immediately
func (s *RefreshService) RunNow() error {
	return s.reload()
}

func (s *RefreshService) reloadGraphJob() {
	// errors are already logged by reload
	_ = s.reload()
}

func (s *RefreshService) reload() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	startTime := time.Now()
	if err := s.loader.Load(ctx); err != nil {
		s.logger.WithError(err).Error("[CRON] Scheduled graph reload failed, previous graph still serving")
		return err
	}

	s.logger.WithField("duration", time.Since(startTime).String()).Info("[CRON] Graph reloaded")
	return nil
}
