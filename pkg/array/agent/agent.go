package agent

import (
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/hwameistor/array-csi/pkg/apis/array"
	"github.com/hwameistor/array-csi/pkg/array/pool"
)

// DefaultCheckoutTimeout bounds how long an RPC waits for a pooled mediator
const DefaultCheckoutTimeout = 10 * time.Second

// Agent holds the connection pool of one (user, endpoints) pair
type Agent struct {
	user      string
	password  string
	endpoints []string
	arrayType string
	traits    array.MediatorTraits

	pool *pool.ConnectionPool

	checkoutTimeout time.Duration
	logger          *log.Entry
}

// ArrayType of the storage system behind the agent
func (a *Agent) ArrayType() string {
	return a.arrayType
}

// Traits of the storage system behind the agent
func (a *Agent) Traits() array.MediatorTraits {
	return a.traits
}

// Endpoints the agent connects to
func (a *Agent) Endpoints() []string {
	return a.endpoints
}

// Pool backing the agent
func (a *Agent) Pool() *pool.ConnectionPool {
	return a.pool
}

// Get checks out a mediator, waiting up to timeout when block is set
func (a *Agent) Get(block bool, timeout time.Duration) (array.Mediator, error) {
	mediator, err := a.pool.Get(block, timeout)
	if err == pool.ErrEmpty || err == pool.ErrClosed {
		a.logger.WithError(err).Warning("No mediator available")
		return nil, array.ErrNoConnectionAvailable(strings.Join(a.endpoints, ","))
	}
	return mediator, err
}

// Put returns a mediator to the pool
func (a *Agent) Put(mediator array.Mediator) {
	a.pool.Put(mediator)
}

// Do runs fn with a pooled mediator and returns it afterwards
func (a *Agent) Do(fn func(mediator array.Mediator) error) error {
	return a.DoWithTimeout(true, a.checkoutTimeout, fn)
}

// DoWithTimeout is Do with an explicit checkout timeout
func (a *Agent) DoWithTimeout(block bool, timeout time.Duration, fn func(mediator array.Mediator) error) error {
	mediator, err := a.Get(block, timeout)
	if err != nil {
		return err
	}
	defer a.Put(mediator)
	return fn(mediator)
}

func (a *Agent) close() {
	a.logger.Debug("Closing agent")
	a.pool.Close()
}
