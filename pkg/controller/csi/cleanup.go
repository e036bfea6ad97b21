package csi

import (
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/hwameistor/array-csi/pkg/common"
)

const maxOrphanCleanupRetries = 10

// orphanCleaner retries in the background the deletion of volumes left
// behind by a failed copy whose inline rollback also failed
type orphanCleaner struct {
	queue *common.TaskQueue

	lock  sync.Mutex
	tasks map[string]func() error

	logger *log.Entry
}

func newOrphanCleaner() *orphanCleaner {
	return &orphanCleaner{
		queue:  common.NewTaskQueue("OrphanVolumeCleanup", maxOrphanCleanupRetries),
		tasks:  map[string]func() error{},
		logger: log.WithField("Module", "OrphanCleaner"),
	}
}

// add schedules fn under the volume id; a newer fn replaces a pending one
func (c *orphanCleaner) add(volumeID string, fn func() error) {
	c.lock.Lock()
	c.tasks[volumeID] = fn
	c.lock.Unlock()

	c.logger.WithField("volume", volumeID).Warning("Scheduled orphan volume for deletion")
	c.queue.Add(volumeID)
}

func (c *orphanCleaner) pending() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return len(c.tasks)
}

func (c *orphanCleaner) run(stopCh <-chan struct{}) {
	go func() {
		for c.processNextTask() {
		}
	}()

	<-stopCh
	c.queue.Shutdown()
}

func (c *orphanCleaner) processNextTask() bool {
	volumeID, shutdown := c.queue.Get()
	if shutdown {
		return false
	}
	defer c.queue.Done(volumeID)

	c.lock.Lock()
	fn, exists := c.tasks[volumeID]
	c.lock.Unlock()
	if !exists {
		c.queue.Forget(volumeID)
		return true
	}

	logCtx := c.logger.WithField("volume", volumeID)
	if err := fn(); err != nil {
		if !c.queue.AddRateLimited(volumeID) {
			logCtx.WithError(err).Error("Giving up deleting orphan volume")
			c.forget(volumeID)
			return true
		}
		logCtx.WithError(err).Warning("Failed to delete orphan volume, retrying")
		return true
	}

	logCtx.Info("Deleted orphan volume")
	c.forget(volumeID)
	return true
}

func (c *orphanCleaner) forget(volumeID string) {
	c.lock.Lock()
	delete(c.tasks, volumeID)
	c.lock.Unlock()
	c.queue.Forget(volumeID)
}
