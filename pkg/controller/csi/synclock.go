package csi

import (
	"sync"

	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/hwameistor/array-csi/pkg/apis/array"
)

// lock kinds
const (
	lockKindVolume   = "volume"
	lockKindSnapshot = "snapshot"
)

// syncLock rejects a second in-flight request on the same object instead of
// queueing it; the CO retries on ABORTED
type syncLock struct {
	lock sync.Mutex
	ids  map[string]sets.String
}

func newSyncLock() *syncLock {
	return &syncLock{ids: map[string]sets.String{}}
}

func (l *syncLock) add(kind string, id string) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	ids, exists := l.ids[kind]
	if !exists {
		ids = sets.NewString()
		l.ids[kind] = ids
	}
	if ids.Has(id) {
		return array.ErrObjectAlreadyProcessing(kind, id)
	}
	ids.Insert(id)
	return nil
}

func (l *syncLock) remove(kind string, id string) {
	l.lock.Lock()
	defer l.lock.Unlock()

	if ids, exists := l.ids[kind]; exists {
		ids.Delete(id)
	}
}

// run holds the object for the duration of fn
func (l *syncLock) run(kind string, id string, fn func() error) error {
	if err := l.add(kind, id); err != nil {
		return err
	}
	defer l.remove(kind, id)
	return fn()
}
