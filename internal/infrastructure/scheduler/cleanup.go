package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	inventoryapp "github.com/pantry/backend/internal/application/inventory"
)

// CleanupRunner writes off expired stock
type CleanupRunner interface {
	CleanupExpired(ctx context.Context) (*inventoryapp.CleanupResponse, error)
}

// Config holds cleanup scheduler configuration
type Config struct {
	Interval   time.Duration
	RunTimeout time.Duration
}

// DefaultConfig returns the default cleanup schedule
func DefaultConfig() Config {
	return Config{
		Interval:   1 * time.Hour,
		RunTimeout: 5 * time.Minute,
	}
}

// CleanupScheduler periodically writes off expired stock so the ledger does
// not accumulate dead batches between manual cleanup calls. Runs never
// overlap; a tick that fires while a run is in progress is skipped.
type CleanupScheduler struct {
	config Config
	runner CleanupRunner
	logger *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewCleanupScheduler creates a new CleanupScheduler
func NewCleanupScheduler(config Config, runner CleanupRunner, logger *zap.Logger) *CleanupScheduler {
	return &CleanupScheduler{
		config: config,
		runner: runner,
		logger: logger.Named("cleanup-scheduler"),
	}
}

// Start begins the periodic cleanup loop
func (s *CleanupScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.loop(ctx)

	s.logger.Info("Cleanup scheduler started",
		zap.Duration("interval", s.config.Interval),
		zap.Duration("run_timeout", s.config.RunTimeout),
	)
	return nil
}

// Stop gracefully stops the scheduler
func (s *CleanupScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Cleanup scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Cleanup scheduler stop timed out")
		return ctx.Err()
	}
}

func (s *CleanupScheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

// runOnce executes a single cleanup pass with a timeout
func (s *CleanupScheduler) runOnce(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, s.config.RunTimeout)
	defer cancel()

	result, err := s.runner.CleanupExpired(runCtx)
	if err != nil {
		s.logger.Error("Scheduled cleanup failed", zap.Error(err))
		return
	}

	if result.BatchesRemoved == 0 {
		return
	}
	s.logger.Info("Scheduled cleanup wrote off expired stock",
		zap.Int("ingredients_touched", result.IngredientsTouched),
		zap.Int("batches_removed", result.BatchesRemoved),
		zap.String("quantity_removed", result.QuantityRemoved.String()),
	)
}
