package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dropcomb/dropcomb/app/airdrop"
	"github.com/dropcomb/dropcomb/app/cache"
	"github.com/dropcomb/dropcomb/app/cfg"
	"github.com/dropcomb/dropcomb/app/database"
	"github.com/dropcomb/dropcomb/app/notify"
	"github.com/dropcomb/dropcomb/app/source"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

type Scheduler struct {
	adapters    []source.Adapter
	repo        database.AirdropRepository
	fpCache     cache.FingerprintCache
	scorer      *airdrop.Scorer
	notifier    *notify.Notifier
	schedule    *notify.Schedule
	interval    time.Duration
	workerCount int
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	taskQueue   chan TaskInterface
}

func NewScheduler(adapters []source.Adapter, repo database.AirdropRepository,
	fpCache cache.FingerprintCache, scorer *airdrop.Scorer,
	notifier *notify.Notifier, schedule *notify.Schedule) TaskSchedulerInterface {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := cfg.Get()

	workerCount := cfg.WorkerCount
	if workerCount < 2 {
		// One worker would let a long crawl delay a dispatch tick.
		workerCount = 2
	}

	return &Scheduler{
		adapters:    adapters,
		repo:        repo,
		fpCache:     fpCache,
		scorer:      scorer,
		notifier:    notifier,
		schedule:    schedule,
		interval:    time.Duration(cfg.CrawlInterval) * time.Minute,
		workerCount: workerCount,
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, 100),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go s.runCrawlTimer()

	s.wg.Add(1)
	go s.runDispatchTimer()
}

// Stop cancels the scheduler context and waits for the workers and timers.
// The task queue is left open; detached retry goroutines may still attempt an
// enqueue after shutdown and EnqueueTask turns that into a context error.
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

// TriggerCrawl enqueues a crawl cycle outside the regular cadence, used by
// the manual-trigger API endpoint.
func (s *Scheduler) TriggerCrawl() error {
	return s.EnqueueTask(NewCrawlCycleTask(s.adapters, s.repo, s.fpCache, s.scorer))
}

// runCrawlTimer enqueues one crawl cycle at startup and then on every
// interval tick. Missed ticks are not backfilled.
func (s *Scheduler) runCrawlTimer() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	if err := s.TriggerCrawl(); err != nil {
		slog.Warn("Failed to enqueue startup crawl", "error", err)
	}

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			if err := s.TriggerCrawl(); err != nil {
				slog.Warn("Failed to enqueue CrawlCycleTask", "error", err)
			}
		}
	}
}

// runDispatchTimer sleeps until the next configured wall-clock window and
// enqueues a dispatch for it. Runs independently of the crawl ticker so
// neither timer can delay the other.
func (s *Scheduler) runDispatchTimer() {
	defer s.wg.Done()

	for {
		window := s.schedule.Next(time.Now())
		timer := time.NewTimer(time.Until(window))

		slog.Debug("Next dispatch window scheduled", "window", window.Format(time.RFC3339))

		select {
		case <-s.ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			task := NewDispatchTask(s.notifier, window, s.schedule.Previous(window))
			if err := s.EnqueueTask(task); err != nil {
				slog.Warn("Failed to enqueue DispatchTask", "window", window.Format(time.RFC3339), "error", err)
			}
		}
	}
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task := <-s.taskQueue:
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 10*time.Minute)
	defer cancel()

	err := task.Execute(taskCtx)

	if err != nil {
		slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

		if task.CanRetry() {
			task.IncrementRetryCount()
			retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * time.Second
			if retryDelay > 30*time.Second {
				retryDelay = 30 * time.Second
			}

			slog.Warn("Task retry scheduled", "type", string(task.GetType()), "subject", task.GetSubject(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

			go func() {
				time.Sleep(retryDelay)
				select {
				case <-s.ctx.Done():
					slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
					return
				default:
					if retryErr := s.EnqueueTask(task); retryErr != nil {
						slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
					}
				}
			}()
		} else {
			slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		}
	}
}
