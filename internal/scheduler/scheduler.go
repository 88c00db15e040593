package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
)

// AlertRefresher reloads alerts for the active selection.
type AlertRefresher interface {
	RefreshAlerts(ctx context.Context) error
}

// Scheduler periodically refreshes alerts. It owns a lifecycle context that
// Stop cancels, so a run in progress is abandoned rather than applied late.
type Scheduler struct {
	scheduler *gocron.Scheduler
	refresher AlertRefresher
	interval  time.Duration
	timeout   time.Duration
	onResult  func(error)

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a new Scheduler. onResult, if set, sees the outcome of every run.
func New(interval time.Duration, refresher AlertRefresher, onResult func(error)) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		refresher: refresher,
		interval:  interval,
		timeout:   30 * time.Second,
		onResult:  onResult,
	}
}

// Start schedules the refresh job and starts the underlying scheduler. A
// non-positive interval disables periodic refresh.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		log.Println("INFO: scheduler: alert refresh disabled")
		return nil
	}

	s.mu.Lock()
	s.ctx, s.cancel = context.WithCancel(context.Background())
	lifecycle := s.ctx
	s.mu.Unlock()

	_, err := s.scheduler.Every(s.interval).Do(func() {
		if lifecycle.Err() != nil {
			return
		}

		ctx, cancel := context.WithTimeout(lifecycle, s.timeout)
		defer cancel()

		err := s.refresher.RefreshAlerts(ctx)
		if err != nil {
			log.Printf("ERROR: scheduler: alert refresh failed: %v", err)
		}
		if s.onResult != nil {
			s.onResult(err)
		}
	})
	if err != nil {
		s.cancel()
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop cancels any in-flight refresh and stops future runs.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()

	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
