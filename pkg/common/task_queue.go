package common

import (
	"time"

	log "github.com/sirupsen/logrus"
	"k8s.io/client-go/util/workqueue"
)

const (
	defaultBaseDelay = time.Second
	defaultMaxDelay  = time.Minute
)

// TaskQueue is a named rate limiting queue of string keys. Keys failing
// more than maxRetries times are dropped; maxRetries=0 retries forever
type TaskQueue struct {
	queue      workqueue.RateLimitingInterface
	logger     *log.Entry
	maxRetries int
}

// NewTaskQueue creates a queue backing off 1s, 2s, 4s, ... up to 60s
func NewTaskQueue(taskName string, maxRetries int) *TaskQueue {
	return NewTaskQueueWithBackoff(taskName, maxRetries, defaultBaseDelay, defaultMaxDelay)
}

// NewTaskQueueWithBackoff creates a queue with an exponential backoff
// between baseDelay and maxDelay
func NewTaskQueueWithBackoff(taskName string, maxRetries int, baseDelay, maxDelay time.Duration) *TaskQueue {
	return &TaskQueue{
		queue: workqueue.NewNamedRateLimitingQueue(
			workqueue.NewItemExponentialFailureRateLimiter(baseDelay, maxDelay),
			taskName,
		),
		maxRetries: maxRetries,
		logger:     log.WithField("TaskQueue", taskName),
	}
}

func (q *TaskQueue) Add(task string) {
	q.queue.Add(task)
}

// AddRateLimited requeues the task after its backoff, unless it ran out of retries
func (q *TaskQueue) AddRateLimited(task string) bool {
	if q.maxRetries > 0 && q.queue.NumRequeues(task) >= q.maxRetries {
		q.logger.WithField("Task", task).Infof("Exceeds maxRetries(%d), dropped", q.maxRetries)
		q.queue.Forget(task)
		return false
	}
	q.queue.AddRateLimited(task)
	return true
}

// Get blocks until a task is available or the queue shuts down
func (q *TaskQueue) Get() (string, bool) {
	item, shutdown := q.queue.Get()
	if item == nil {
		return "", true
	}
	return item.(string), shutdown
}

func (q *TaskQueue) Done(task string) {
	q.queue.Done(task)
}

func (q *TaskQueue) NumRequeues(task string) int {
	return q.queue.NumRequeues(task)
}

// Forget resets the backoff of the task
func (q *TaskQueue) Forget(task string) {
	q.queue.Forget(task)
}

func (q *TaskQueue) Len() int {
	return q.queue.Len()
}

func (q *TaskQueue) Shutdown() {
	q.queue.ShutDown()
}
