package tasks

// TaskSchedulerInterface defines the interface for background task
// scheduling. The scheduler owns two independent timers: the crawl ticker
// and the dispatch timer; both feed one worker pool so neither can starve
// the other as long as more than one worker runs.
// Example usage:
//
//	scheduler := NewScheduler(adapters, repo, fpCache, scorer, notifier, schedule)
//	scheduler.Start()
//	defer scheduler.Stop()
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
	TriggerCrawl() error
}
