package tracker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/actionsum/appusage/internal/config"
	"github.com/actionsum/appusage/internal/models"
	"github.com/actionsum/appusage/pkg/window"
)

const pruneInterval = 24 * time.Hour

// Store persists tracker samples.
type Store interface {
	Create(event *models.FocusEvent) error
	CreateErrorLog(errorLog *models.ErrorLog) error
	DeleteOldEvents(before time.Time) (int64, error)
}

type Service struct {
	config   *config.Config
	repo     Store
	detector window.Detector
	logger   *zap.Logger
	now      func() time.Time

	mu       sync.Mutex
	stopChan chan struct{}
	running  bool
}

func NewService(cfg *config.Config, repo Store, detector window.Detector, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		config:   cfg,
		repo:     repo,
		detector: detector,
		logger:   logger,
		now:      time.Now,
	}
}

// Start samples the focused window every poll interval until ctx is done or
// Stop is called. Each active sample credits the focused package with one
// poll interval of foreground time.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("tracker is already running")
	}
	s.running = true
	s.stopChan = make(chan struct{})
	stop := s.stopChan
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	s.logger.Info("starting tracker",
		zap.Duration("poll_interval", s.config.Tracker.PollInterval),
		zap.Duration("retention", s.config.Tracker.Retention))

	ticker := time.NewTicker(s.config.Tracker.PollInterval)
	defer ticker.Stop()
	pruner := time.NewTicker(pruneInterval)
	defer pruner.Stop()

	s.prune()
	s.sample()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("tracker stopped by context")
			return ctx.Err()

		case <-stop:
			s.logger.Info("tracker stopped")
			return nil

		case <-ticker.C:
			s.sample()

		case <-pruner.C:
			s.prune()
		}
	}
}

func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running && s.stopChan != nil {
		close(s.stopChan)
		s.stopChan = nil
	}
}

func (s *Service) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Service) sample() {
	event, err := s.trackOnce()
	if err != nil {
		s.storeError(err)
		return
	}
	if event != nil {
		s.logger.Debug("tracked",
			zap.String("package", event.PackageID),
			zap.Int64("duration_ms", event.DurationMs))
	}
}

// trackOnce records one sample. It returns a nil event when the session is
// idle or locked.
func (s *Service) trackOnce() (*models.FocusEvent, error) {
	idleInfo, err := s.detector.GetIdleInfo()
	if err != nil {
		return nil, fmt.Errorf("failed to get idle info: %w", err)
	}

	if idleInfo.IsIdle || idleInfo.IsLocked {
		s.logger.Debug("skipping sample",
			zap.Bool("idle", idleInfo.IsIdle),
			zap.Bool("locked", idleInfo.IsLocked))
		return nil, nil
	}

	windowInfo, err := s.detector.GetFocusedWindow()
	if err != nil {
		return nil, fmt.Errorf("failed to get focused window: %w", err)
	}

	packageID := windowInfo.PackageID()
	if packageID == "" {
		return nil, fmt.Errorf("no valid window information available")
	}

	event := &models.FocusEvent{
		Timestamp:     s.now(),
		PackageID:     packageID,
		WindowTitle:   windowInfo.WindowTitle,
		DurationMs:    s.config.Tracker.PollInterval.Milliseconds(),
		DisplayServer: windowInfo.DisplayServer,
	}

	if err := s.repo.Create(event); err != nil {
		return nil, fmt.Errorf("failed to save event: %w", err)
	}

	return event, nil
}

func (s *Service) prune() {
	if s.config.Tracker.Retention <= 0 {
		return
	}
	cutoff := s.now().Add(-s.config.Tracker.Retention)
	n, err := s.repo.DeleteOldEvents(cutoff)
	if err != nil {
		s.storeError(fmt.Errorf("failed to prune events: %w", err))
		return
	}
	if n > 0 {
		s.logger.Info("pruned old events", zap.Int64("count", n), zap.Time("before", cutoff))
	}
}

func (s *Service) storeError(err error) {
	errorLog := &models.ErrorLog{
		Timestamp: s.now(),
		ErrorMsg:  err.Error(),
	}

	if dbErr := s.repo.CreateErrorLog(errorLog); dbErr != nil {
		s.logger.Error("failed to store error in database", zap.Error(dbErr), zap.NamedError("original", err))
	} else {
		s.logger.Warn("error logged to database", zap.Error(err))
	}
}

// GetCurrentWindow returns what a sample taken now would see.
func (s *Service) GetCurrentWindow() (*window.WindowInfo, *window.IdleInfo, error) {
	windowInfo, err := s.detector.GetFocusedWindow()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get focused window: %w", err)
	}

	idleInfo, err := s.detector.GetIdleInfo()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get idle info: %w", err)
	}

	return windowInfo, idleInfo, nil
}
