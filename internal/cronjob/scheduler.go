package cronjob

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/edisonhq/edison/internal/config"
	"github.com/edisonhq/edison/internal/consts"
	"github.com/edisonhq/edison/internal/pkg/logs"
)

const (
	tickInterval     = 15 * time.Second
	defaultStorePath = "cronjob/jobs.json"
)

// DeliverFunc is the callback the scheduler uses to hand a due reminder to
// its delivery channel.
type DeliverFunc func(ctx context.Context, job *Job) error

// Scheduler manages periodic and one-shot reminders, persists them to disk,
// and delivers due ones through the gateway's channels.
type Scheduler struct {
	store      *Store
	deliver    DeliverFunc
	cfg        config.ReminderConfig
	concurrent chan struct{} // semaphore sized to MaxConcurrentFires

	runningMu sync.Mutex
	running   map[string]struct{} // jobIDs currently firing (singleton guard)

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler creates a scheduler backed by the configured store path.
func NewScheduler(cfg config.ReminderConfig, deliver DeliverFunc) *Scheduler {
	storePath := strings.TrimSpace(cfg.StorePath)
	if storePath == "" {
		storePath = filepath.Join(consts.EdisonHomeDir(), defaultStorePath)
	}

	maxConcurrent := cfg.MaxConcurrentFires
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}

	return &Scheduler{
		store:      NewStore(storePath),
		deliver:    deliver,
		cfg:        cfg,
		concurrent: make(chan struct{}, maxConcurrent),
		running:    make(map[string]struct{}),
	}
}

// Start loads persisted reminders and begins the scheduling loop.
func (s *Scheduler) Start(ctx context.Context) error {
	if err := s.store.Load(); err != nil {
		return fmt.Errorf("load reminder store: %w", err)
	}

	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop(ctx)
	}()

	logs.CtxInfo(ctx, "[cronjob] scheduler started (max_concurrent=%d)", cap(s.concurrent))
	return nil
}

// Stop cancels the scheduling loop and waits for in-flight deliveries.
func (s *Scheduler) Stop(ctx context.Context) {
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
	case <-ctx.Done():
		logs.CtxWarn(ctx, "[cronjob] stop timed out waiting for running deliveries")
	}

	if err := s.store.Save(); err != nil {
		logs.CtxWarn(ctx, "[cronjob] save store on shutdown: %v", err)
	}
	logs.CtxInfo(ctx, "[cronjob] scheduler stopped")
}

// AddJob registers a reminder and persists it.
func (s *Scheduler) AddJob(job Job) error {
	now := time.Now()
	if job.NextFireAt == nil {
		next, err := calcNextFire(&job, now)
		if err != nil {
			return fmt.Errorf("calc initial fire time: %w", err)
		}
		if next.IsZero() {
			return fmt.Errorf("schedule %q is already in the past", job.Schedule)
		}
		job.NextFireAt = &next
	}

	if err := s.store.Add(job); err != nil {
		return err
	}
	if err := s.store.Save(); err != nil {
		return fmt.Errorf("persist reminder: %w", err)
	}
	return nil
}

// RemoveJob removes a reminder by ID and persists the change. It reports
// whether the ID was known.
func (s *Scheduler) RemoveJob(jobID string) (bool, error) {
	if _, ok := s.store.Get(jobID); !ok {
		return false, nil
	}
	s.store.Remove(jobID)
	return true, s.store.Save()
}

// ListJobs returns all registered reminders in creation order.
func (s *Scheduler) ListJobs() []Job {
	return s.store.List()
}

// ---------------------------------------------------------------------------
// internal
// ---------------------------------------------------------------------------

func (s *Scheduler) loop(ctx context.Context) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	now := time.Now()
	for _, job := range s.store.ListDue(now) {
		if !s.tryAcquire() {
			break // hit concurrency limit, try next tick
		}
		if s.isRunning(job.ID) {
			s.release()
			continue // singleton: skip if still delivering
		}

		s.markRunning(job.ID)
		j := job // capture for goroutine
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.release()
			defer s.markNotRunning(j.ID)
			s.fire(ctx, j, now)
		}()
	}
}

func (s *Scheduler) fire(ctx context.Context, job Job, now time.Time) {
	// Bound delivery time so a blocked channel cannot freeze the
	// scheduler's concurrency semaphore.
	timeout := time.Duration(s.cfg.FireTimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := s.deliver(ctx, &job); err != nil {
		logs.CtxWarn(ctx, "[cronjob] deliver reminder %s failed: %v", job.ID, err)
		job.ConsecutiveErr++
		s.rescheduleWithBackoff(&job, now)
		return
	}

	logs.CtxInfo(ctx, "[cronjob] fired reminder %s", job.ID)
	job.LastFiredAt = &now
	job.ConsecutiveErr = 0
	s.reschedule(&job, now)
}

func (s *Scheduler) reschedule(job *Job, from time.Time) {
	next, err := calcNextFire(job, from)
	if err != nil {
		logs.Warn("[cronjob] reschedule %s failed: %v, disabling", job.ID, err)
		job.Enabled = false
		job.NextFireAt = nil
	} else if next.IsZero() {
		// One-shot that has fired.
		job.Enabled = false
		job.NextFireAt = nil
	} else {
		job.NextFireAt = &next
	}
	s.store.Update(*job)
	if err := s.store.Save(); err != nil {
		logs.Warn("[cronjob] persist after reschedule %s: %v", job.ID, err)
	}
}

func (s *Scheduler) rescheduleWithBackoff(job *Job, from time.Time) {
	delay := backoffDelay(job.ConsecutiveErr)
	next := from.Add(delay)
	job.NextFireAt = &next
	logs.Warn("[cronjob] reminder %s backoff %v (errors=%d)", job.ID, delay, job.ConsecutiveErr)
	s.store.Update(*job)
	if err := s.store.Save(); err != nil {
		logs.Warn("[cronjob] persist after backoff %s: %v", job.ID, err)
	}
}

// concurrency helpers

func (s *Scheduler) tryAcquire() bool {
	select {
	case s.concurrent <- struct{}{}:
		return true
	default:
		return false
	}
}

func (s *Scheduler) release() {
	<-s.concurrent
}

func (s *Scheduler) isRunning(jobID string) bool {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()
	_, ok := s.running[jobID]
	return ok
}

func (s *Scheduler) markRunning(jobID string) {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()
	s.running[jobID] = struct{}{}
}

func (s *Scheduler) markNotRunning(jobID string) {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()
	delete(s.running, jobID)
}
