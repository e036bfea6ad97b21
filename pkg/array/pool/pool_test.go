package pool

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hwameistor/array-csi/pkg/apis/array"
)

type fakeMediator struct {
	array.Mediator

	active       int32
	disconnected int32
}

func (m *fakeMediator) IsActive() bool {
	return atomic.LoadInt32(&m.active) == 1
}

func (m *fakeMediator) Disconnect() {
	atomic.StoreInt32(&m.disconnected, 1)
	atomic.StoreInt32(&m.active, 0)
}

func (m *fakeMediator) kill() {
	atomic.StoreInt32(&m.active, 0)
}

type fakeFactory struct {
	lock    sync.Mutex
	created []*fakeMediator
	err     error
}

func (f *fakeFactory) create() (array.Mediator, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	m := &fakeMediator{active: 1}
	f.created = append(f.created, m)
	return m, nil
}

func (f *fakeFactory) count() int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return len(f.created)
}

func TestNew(t *testing.T) {
	factory := &fakeFactory{}
	p, err := New("1.1.1.1", factory.create, 1, 3, nil)
	assert.NoError(t, err)
	assert.Equal(t, 1, p.CurrentSize())
	assert.Equal(t, 1, p.IdleSize())
	assert.Equal(t, 1, factory.count())

	_, err = New("1.1.1.1", factory.create, 4, 3, nil)
	assert.Error(t, err)
	_, err = New("1.1.1.1", factory.create, 0, 0, nil)
	assert.Error(t, err)

	failing := &fakeFactory{err: errors.New("login failed")}
	_, err = New("1.1.1.1", failing.create, 1, 3, nil)
	assert.EqualError(t, err, "login failed")
}

func TestConnectionPool_GetReusesIdle(t *testing.T) {
	factory := &fakeFactory{}
	p, _ := New("p", factory.create, 1, 2, nil)

	first, err := p.Get(true, time.Second)
	assert.NoError(t, err)
	p.Put(first)
	second, err := p.Get(true, time.Second)
	assert.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, factory.count())
}

func TestConnectionPool_StaleItemIsReplaced(t *testing.T) {
	factory := &fakeFactory{}
	p, _ := New("p", factory.create, 1, 1, nil)

	factory.created[0].kill()
	item, err := p.Get(true, time.Second)
	assert.NoError(t, err)
	assert.True(t, item.IsActive())
	assert.NotSame(t, factory.created[0], item)
	assert.Equal(t, int32(1), atomic.LoadInt32(&factory.created[0].disconnected))
	assert.Equal(t, 1, p.CurrentSize())
}

func TestConnectionPool_SaturatedTimesOut(t *testing.T) {
	factory := &fakeFactory{}
	p, _ := New("p", factory.create, 0, 1, nil)

	item, err := p.Get(true, time.Second)
	assert.NoError(t, err)

	start := time.Now()
	_, err = p.Get(true, 50*time.Millisecond)
	assert.Equal(t, ErrEmpty, err)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)

	_, err = p.Get(false, time.Second)
	assert.Equal(t, ErrEmpty, err)

	p.Put(item)
	_, err = p.Get(false, 0)
	assert.NoError(t, err)
}

func TestConnectionPool_BlockedGetIsServedByPut(t *testing.T) {
	factory := &fakeFactory{}
	p, _ := New("p", factory.create, 0, 1, nil)
	item, _ := p.Get(true, time.Second)

	go func() {
		time.Sleep(20 * time.Millisecond)
		p.Put(item)
	}()
	got, err := p.Get(true, 2*time.Second)
	assert.NoError(t, err)
	assert.Same(t, item, got)
}

func TestConnectionPool_CreateFailureReleasesSlot(t *testing.T) {
	factory := &fakeFactory{}
	p, _ := New("p", factory.create, 0, 1, nil)

	factory.err = errors.New("unreachable")
	_, err := p.Get(true, time.Second)
	assert.EqualError(t, err, "unreachable")
	assert.Equal(t, 0, p.CurrentSize())

	factory.err = nil
	_, err = p.Get(true, time.Second)
	assert.NoError(t, err)
	assert.Equal(t, 1, p.CurrentSize())
}

func TestConnectionPool_Shrink(t *testing.T) {
	factory := &fakeFactory{}
	p, _ := New("p", factory.create, 0, 2, nil)
	a, _ := p.Get(true, time.Second)
	b, _ := p.Get(true, time.Second)

	assert.NoError(t, p.SetMaxSize(1))
	assert.Error(t, p.SetMaxSize(3))

	p.Put(a)
	assert.Equal(t, 1, p.CurrentSize())
	assert.True(t, a.(*fakeMediator).disconnected == 1)
	p.Put(b)
	assert.Equal(t, 1, p.CurrentSize())
	assert.Equal(t, 1, p.IdleSize())
}

func TestConnectionPool_Close(t *testing.T) {
	factory := &fakeFactory{}
	p, _ := New("p", factory.create, 2, 3, nil)
	out, _ := p.Get(true, time.Second)

	p.Close()
	assert.Equal(t, 1, p.CurrentSize())
	p.Put(out)
	assert.Equal(t, 0, p.CurrentSize())
	for _, m := range factory.created {
		assert.Equal(t, int32(1), atomic.LoadInt32(&m.disconnected))
	}
	_, err := p.Get(false, 0)
	assert.Equal(t, ErrClosed, err)
}

func TestConnectionPool_SizeBoundUnderConcurrency(t *testing.T) {
	const maxSize = 4
	factory := &fakeFactory{}
	p, _ := New("p", factory.create, 1, maxSize, nil)

	var outstanding, peak int32
	var wg sync.WaitGroup
	for w := 0; w < 16; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				item, err := p.Get(true, 5*time.Second)
				if err != nil {
					t.Errorf("Get() error = %v", err)
					return
				}
				if !item.IsActive() {
					t.Errorf("Get() returned an inactive mediator")
				}
				n := atomic.AddInt32(&outstanding, 1)
				for {
					old := atomic.LoadInt32(&peak)
					if n <= old || atomic.CompareAndSwapInt32(&peak, old, n) {
						break
					}
				}
				if (w+i)%7 == 0 {
					item.(*fakeMediator).kill()
				}
				atomic.AddInt32(&outstanding, -1)
				p.Put(item)
			}
		}(w)
	}
	wg.Wait()

	assert.LessOrEqual(t, int(peak), maxSize)
	assert.LessOrEqual(t, p.CurrentSize(), maxSize)
	assert.GreaterOrEqual(t, p.CurrentSize(), 0)
	assert.LessOrEqual(t, p.IdleSize(), p.CurrentSize())
}

type recordingObserver struct {
	lock    sync.Mutex
	results map[string]int
}

func (o *recordingObserver) ObserveSize(string, int) {}

func (o *recordingObserver) ObserveCheckout(_ string, result string, _ time.Duration) {
	o.lock.Lock()
	defer o.lock.Unlock()
	o.results[result]++
}

func TestConnectionPool_Observer(t *testing.T) {
	factory := &fakeFactory{}
	observer := &recordingObserver{results: map[string]int{}}
	p, _ := New("p", factory.create, 0, 1, observer)

	item, _ := p.Get(true, time.Second)
	_, _ = p.Get(false, 0)
	p.Put(item)
	_, _ = p.Get(false, 0)

	assert.Equal(t, map[string]int{CheckoutResultCreated: 1, CheckoutResultEmpty: 1, CheckoutResultReused: 1}, observer.results)
}
