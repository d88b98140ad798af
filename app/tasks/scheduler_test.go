package tasks

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// recordingTask counts executions, optionally failing the first n attempts.
type recordingTask struct {
	Task
	mu        sync.Mutex
	execution int
	failures  int
	done      chan struct{}
}

func newRecordingTask(failures int) *recordingTask {
	return &recordingTask{
		Task:     NewTask(TaskTypeAnalyzeGap, "example"),
		failures: failures,
		done:     make(chan struct{}, 10),
	}
}

func (t *recordingTask) Execute(ctx context.Context) error {
	t.mu.Lock()
	t.execution++
	current := t.execution
	t.mu.Unlock()

	t.done <- struct{}{}

	if current <= t.failures {
		return errors.New("transient failure")
	}
	return nil
}

func (t *recordingTask) executions() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.execution
}

func newTestScheduler() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		interval:    time.Hour,
		workerCount: 2,
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, 10),
	}
}

func TestScheduler_ExecutesEnqueuedTask(t *testing.T) {
	scheduler := newTestScheduler()

	for i := 0; i < scheduler.workerCount; i++ {
		scheduler.wg.Add(1)
		go scheduler.worker(i)
	}
	defer scheduler.Stop()

	task := newRecordingTask(0)
	if err := scheduler.EnqueueTask(task); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	select {
	case <-task.done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Task was not executed")
	}

	if task.executions() != 1 {
		t.Errorf("Expected 1 execution, got %d", task.executions())
	}
}

func TestScheduler_RetriesFailedTask(t *testing.T) {
	scheduler := newTestScheduler()

	for i := 0; i < scheduler.workerCount; i++ {
		scheduler.wg.Add(1)
		go scheduler.worker(i)
	}
	defer scheduler.Stop()

	task := newRecordingTask(1)
	if err := scheduler.EnqueueTask(task); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// First attempt fails, the retry lands after a backoff delay.
	for i := 0; i < 2; i++ {
		select {
		case <-task.done:
		case <-time.After(5 * time.Second):
			t.Fatalf("Expected attempt %d", i+1)
		}
	}

	if task.executions() != 2 {
		t.Errorf("Expected 2 executions, got %d", task.executions())
	}
	if task.GetRetryCount() != 1 {
		t.Errorf("Expected retry count 1, got %d", task.GetRetryCount())
	}
}

func TestScheduler_EnqueueTask_QueueFull(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	scheduler := &Scheduler{
		ctx:       ctx,
		cancel:    cancel,
		taskQueue: make(chan TaskInterface, 1),
	}

	if err := scheduler.EnqueueTask(newRecordingTask(0)); err != nil {
		t.Fatalf("Unexpected error on first enqueue: %v", err)
	}
	if err := scheduler.EnqueueTask(newRecordingTask(0)); err == nil {
		t.Errorf("Expected error when queue is full")
	}

	cancel()
}

func TestScheduler_StopDrainsWorkers(t *testing.T) {
	scheduler := newTestScheduler()

	for i := 0; i < scheduler.workerCount; i++ {
		scheduler.wg.Add(1)
		go scheduler.worker(i)
	}

	stopped := make(chan struct{})
	go func() {
		scheduler.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatalf("Stop did not return")
	}
}

func TestScheduler_StopWithPendingRetry(t *testing.T) {
	scheduler := newTestScheduler()

	for i := 0; i < scheduler.workerCount; i++ {
		scheduler.wg.Add(1)
		go scheduler.worker(i)
	}

	// Fail every attempt so a retry goroutine is always in flight.
	task := newRecordingTask(10)
	if err := scheduler.EnqueueTask(task); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	select {
	case <-task.done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Task was not executed")
	}

	// Stop while the retry backoff is pending. The retry goroutine is
	// inside the WaitGroup, so the queue must not close under it.
	stopped := make(chan struct{})
	go func() {
		scheduler.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(3 * time.Second):
		t.Fatalf("Stop did not return with a retry pending")
	}
}
