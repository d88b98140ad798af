package tasks

// TaskSchedulerInterface defines the interface for task scheduling operations.
// Used by the main application and the API to manage background gap analysis.
// Example usage:
//
//	scheduler := NewScheduler(configCache, targetRepo, analysisRepo, opportunityRepo, comparisonAPI, metricsAPI)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.EnqueueTask(NewAnalyzeGapTask(...))
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}
