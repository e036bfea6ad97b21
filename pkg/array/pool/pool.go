package pool

import (
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/hwameistor/array-csi/pkg/apis/array"
)

// ErrEmpty is returned when no mediator became available within the timeout
var ErrEmpty = errors.New("connection pool is empty")

// ErrClosed is returned by Get after Close
var ErrClosed = errors.New("connection pool is closed")

// consts
const (
	CheckoutResultReused  = "reused"
	CheckoutResultCreated = "created"
	CheckoutResultEmpty   = "empty"
	CheckoutResultError   = "error"
)

// CreateFunc connects a new mediator
type CreateFunc func() (array.Mediator, error)

// Observer receives the pool's size and checkout events, e.g. for metrics
type Observer interface {
	ObserveSize(pool string, size int)
	ObserveCheckout(pool string, result string, wait time.Duration)
}

// ConnectionPool is a bounded reservoir of live mediators for one endpoint set.
// The count of checked out plus idle mediators never exceeds maxSize.
type ConnectionPool struct {
	name   string
	create CreateFunc

	minSize     int
	maxSize     int
	currentSize int
	closed      bool

	items chan array.Mediator
	lock  sync.Mutex

	observer Observer
	logger   *log.Entry
}

// New creates a pool and pre-populates it with minSize mediators
func New(name string, create CreateFunc, minSize int, maxSize int, observer Observer) (*ConnectionPool, error) {
	if maxSize < 1 {
		return nil, fmt.Errorf("invalid pool max size %d", maxSize)
	}
	if minSize < 0 || minSize > maxSize {
		return nil, fmt.Errorf("invalid pool min size %d (max %d)", minSize, maxSize)
	}

	p := &ConnectionPool{
		name:     name,
		create:   create,
		minSize:  minSize,
		maxSize:  maxSize,
		items:    make(chan array.Mediator, maxSize),
		observer: observer,
		logger:   log.WithFields(log.Fields{"Module": "ConnectionPool", "pool": name}),
	}

	for i := 0; i < minSize; i++ {
		item, err := p.create()
		if err != nil {
			p.Close()
			return nil, err
		}
		p.lock.Lock()
		p.currentSize++
		p.lock.Unlock()
		p.Put(item)
	}
	return p, nil
}

// Get checks out a mediator which is live at the moment of return. When the
// pool is saturated and block is set, it waits up to timeout for a mediator
// to be returned, then fails with ErrEmpty.
func (p *ConnectionPool) Get(block bool, timeout time.Duration) (array.Mediator, error) {
	start := time.Now()
	deadline := start.Add(timeout)

	for {
		// 1. reuse an idle mediator
		if item := p.takeIdle(); item != nil {
			p.observeCheckout(CheckoutResultReused, start)
			return item, nil
		}

		// 2. grow the pool
		item, grown, err := p.grow()
		if err != nil {
			p.observeCheckout(CheckoutResultError, start)
			return nil, err
		}
		if grown {
			p.observeCheckout(CheckoutResultCreated, start)
			return item, nil
		}

		// 3. wait for a mediator to come back
		remaining := time.Until(deadline)
		if !block || remaining <= 0 {
			p.observeCheckout(CheckoutResultEmpty, start)
			return nil, ErrEmpty
		}
		timer := time.NewTimer(remaining)
		select {
		case item := <-p.items:
			timer.Stop()
			if item.IsActive() {
				p.observeCheckout(CheckoutResultReused, start)
				return item, nil
			}
			p.discard(item)
		case <-timer.C:
			p.observeCheckout(CheckoutResultEmpty, start)
			return nil, ErrEmpty
		}
	}
}

// Put returns a mediator for reuse. It is disconnected instead when the pool
// was shrunk or closed meanwhile, or when the idle channel is full.
func (p *ConnectionPool) Put(item array.Mediator) {
	p.lock.Lock()
	if p.closed || p.currentSize > p.maxSize {
		p.currentSize--
		p.observeSize()
		p.lock.Unlock()
		p.disconnect(item)
		return
	}
	p.lock.Unlock()

	select {
	case p.items <- item:
	default:
		p.logger.Warning("Idle channel is full, dropping mediator")
		p.discard(item)
	}
}

// SetMaxSize shrinks the pool, or grows it back up to its initial size.
// Surplus mediators are disconnected as they come back.
func (p *ConnectionPool) SetMaxSize(maxSize int) error {
	if maxSize < 1 || maxSize < p.minSize || maxSize > cap(p.items) {
		return fmt.Errorf("invalid pool max size %d", maxSize)
	}
	p.lock.Lock()
	defer p.lock.Unlock()

	p.maxSize = maxSize
	return nil
}

// Close disconnects all idle mediators; checked out ones are disconnected when put back
func (p *ConnectionPool) Close() {
	p.lock.Lock()
	defer p.lock.Unlock()

	p.closed = true
	for {
		select {
		case item := <-p.items:
			p.currentSize--
			p.disconnect(item)
		default:
			p.observeSize()
			return
		}
	}
}

// CurrentSize is the number of mediators checked out or idle
func (p *ConnectionPool) CurrentSize() int {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.currentSize
}

// MaxSize of the pool
func (p *ConnectionPool) MaxSize() int {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.maxSize
}

// IdleSize is the number of mediators waiting for reuse
func (p *ConnectionPool) IdleSize() int {
	return len(p.items)
}

func (p *ConnectionPool) takeIdle() array.Mediator {
	for {
		select {
		case item := <-p.items:
			if item.IsActive() {
				return item
			}
			p.logger.Debug("Dropping inactive mediator")
			p.discard(item)
		default:
			return nil
		}
	}
}

func (p *ConnectionPool) grow() (array.Mediator, bool, error) {
	p.lock.Lock()
	if p.closed {
		p.lock.Unlock()
		return nil, false, ErrClosed
	}
	if p.currentSize >= p.maxSize {
		p.lock.Unlock()
		return nil, false, nil
	}
	p.currentSize++
	p.observeSize()
	p.lock.Unlock()

	item, err := p.create()
	if err != nil {
		p.lock.Lock()
		p.currentSize--
		p.observeSize()
		p.lock.Unlock()
		p.logger.WithError(err).Error("Failed to create mediator")
		return nil, false, err
	}
	return item, true, nil
}

func (p *ConnectionPool) discard(item array.Mediator) {
	p.lock.Lock()
	p.currentSize--
	p.observeSize()
	p.lock.Unlock()
	p.disconnect(item)
}

func (p *ConnectionPool) disconnect(item array.Mediator) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.WithField("panic", r).Error("Failed to disconnect mediator")
		}
	}()
	item.Disconnect()
}

// must be called with the lock held
func (p *ConnectionPool) observeSize() {
	if p.observer != nil {
		p.observer.ObserveSize(p.name, p.currentSize)
	}
}

func (p *ConnectionPool) observeCheckout(result string, start time.Time) {
	if p.observer != nil {
		p.observer.ObserveCheckout(p.name, result, time.Since(start))
	}
}
