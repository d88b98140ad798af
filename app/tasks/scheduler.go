package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/openkeywords/keyword-comb/app/cfg"
	"github.com/openkeywords/keyword-comb/app/database"
	"github.com/openkeywords/keyword-comb/app/gap"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

type Scheduler struct {
	configCache     *gap.ConfigCache
	targetRepo      database.TargetRepository
	analysisRepo    database.AnalysisRepository
	opportunityRepo database.OpportunityRepository
	comparisonAPI   gap.ComparisonAPI
	metrics         MetricsAPI
	interval        time.Duration
	workerCount     int
	ctx             context.Context
	cancel          context.CancelFunc
	wg              sync.WaitGroup
	taskQueue       chan TaskInterface
}

func NewScheduler(configCache *gap.ConfigCache, targetRepo database.TargetRepository,
	analysisRepo database.AnalysisRepository, opportunityRepo database.OpportunityRepository,
	comparisonAPI gap.ComparisonAPI, metrics MetricsAPI) TaskSchedulerInterface {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := cfg.Get()

	return &Scheduler{
		configCache:     configCache,
		targetRepo:      targetRepo,
		analysisRepo:    analysisRepo,
		opportunityRepo: opportunityRepo,
		comparisonAPI:   comparisonAPI,
		metrics:         metrics,
		interval:        time.Duration(cfg.SchedulerInterval) * time.Second,
		workerCount:     cfg.WorkerCount,
		ctx:             ctx,
		cancel:          cancel,
		taskQueue:       make(chan TaskInterface, 300),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueueStartupTasks()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueTasks()
			}
		}
	}()

}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	close(s.taskQueue)
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

func (s *Scheduler) enqueueStartupTasks() {
	targetConfigs := s.configCache.GetConfigs()
	if len(targetConfigs) == 0 {
		slog.Debug("No target configurations found")
		return
	}

	slog.Debug("Processing target configurations", "count", len(targetConfigs))

	for _, targetConfig := range targetConfigs {
		syncTask := NewSyncTargetConfigTask(targetConfig.Name, targetConfig, s.targetRepo)
		if err := s.EnqueueTask(syncTask); err != nil {
			slog.Warn("Failed to enqueue SyncTargetConfigTask", "target", targetConfig.Name, "error", err)
			continue
		}
	}
}

func (s *Scheduler) enqueueTasks() {
	targetConfigs := s.configCache.GetEnabledConfigs()
	if len(targetConfigs) == 0 {
		slog.Debug("No enabled target configurations found")
		return
	}

	slog.Debug("Processing enabled target configurations for task scheduling", "count", len(targetConfigs))

	for _, targetConfig := range targetConfigs {
		target, err := s.targetRepo.GetTarget(targetConfig.Name)
		if err != nil {
			slog.Warn("Failed to get target from database, skipping", "target", targetConfig.Name, "error", err)
			continue
		}
		if target == nil {
			slog.Warn("Target not found in database, skipping", "target", targetConfig.Name)
			continue
		}

		now := time.Now().UTC()
		if target.NextAnalysisAt != nil && target.NextAnalysisAt.After(now) {
			slog.Debug("Target not due for analysis yet", "target", targetConfig.Name, "next_analysis_at", target.NextAnalysisAt)
			continue
		}

		analyzeTask := NewAnalyzeGapTask(targetConfig.Name, targetConfig, s.comparisonAPI, s.metrics,
			s.targetRepo, s.analysisRepo, s.opportunityRepo)
		if err := s.EnqueueTask(analyzeTask); err != nil {
			slog.Warn("Failed to enqueue AnalyzeGapTask", "target", targetConfig.Name, "error", err)
		}
	}
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task, ok := <-s.taskQueue:
			if !ok {
				return
			}
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

			slog.Warn("Task retry scheduled", "type", string(task.GetType()), "target", task.GetTargetName(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

			// The retry goroutine participates in the WaitGroup so Stop
			// cannot close the queue while a re-enqueue is pending.
			s.wg.Add(1)
			go func() {
				defer s.wg.Done()

				timer := time.NewTimer(retryDelay)
				defer timer.Stop()

				select {
				case <-s.ctx.Done():
					slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
					return
				case <-timer.C:
				}

				if retryErr := s.EnqueueTask(task); retryErr != nil {
					slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
				}
			}()
		} else {
			slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		}
	}
}
