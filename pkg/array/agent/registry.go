package agent

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/hwameistor/array-csi/pkg/apis/array"
	"github.com/hwameistor/array-csi/pkg/array/pool"
)

const endpointKeySeparator = ","

// VendorLookup resolves the traits and mediator factory of an array type
type VendorLookup func(arrayType string) (array.MediatorTraits, array.MediatorFactory, error)

// Detector identifies the array type behind the endpoints
type Detector interface {
	Detect(endpoints []string) (string, error)
}

type agentKey struct {
	user      string
	endpoints string
}

// Registry caches one Agent per (user, endpoints). A changed password
// evicts the agent and with it every mediator of the old session. The
// lock guards the map only; pools are built and closed outside it.
type Registry struct {
	lock   sync.Mutex
	agents map[agentKey]*Agent

	detector Detector
	lookup   VendorLookup
	workers  int
	observer pool.Observer

	checkoutTimeout time.Duration
	logger          *log.Entry
}

// NewRegistry creates an empty registry; workers caps every pool's size
func NewRegistry(detector Detector, lookup VendorLookup, workers int, observer pool.Observer) *Registry {
	return &Registry{
		agents:          map[agentKey]*Agent{},
		detector:        detector,
		lookup:          lookup,
		workers:         workers,
		observer:        observer,
		checkoutTimeout: DefaultCheckoutTimeout,
		logger:          log.WithField("Module", "AgentRegistry"),
	}
}

// WithCheckoutTimeout overrides the default checkout timeout of new agents
func (r *Registry) WithCheckoutTimeout(timeout time.Duration) *Registry {
	r.checkoutTimeout = timeout
	return r
}

// GetAgent returns the cached agent or builds one. arrayType may be empty,
// in which case the array type is detected.
func (r *Registry) GetAgent(user string, password string, endpoints []string, arrayType string) (*Agent, error) {
	if len(endpoints) == 0 {
		return nil, array.ErrValidation("no management address given")
	}
	key := agentKey{user: user, endpoints: endpointKey(endpoints)}
	logCtx := r.logger.WithFields(log.Fields{"user": user, "endpoints": key.endpoints})

	r.lock.Lock()
	cached, exists := r.agents[key]
	if exists && cached.password == password {
		r.lock.Unlock()
		return cached, nil
	}
	if exists {
		delete(r.agents, key)
	}
	r.lock.Unlock()

	if exists {
		logCtx.Info("Credentials changed, evicting agent")
		cached.close()
	}

	// detection and the first login run unlocked; a racing caller may
	// insert the same key meanwhile
	logCtx.Debug("Creating agent")
	agent, err := r.newAgent(user, password, endpoints, arrayType)
	if err != nil {
		logCtx.WithError(err).Error("Failed to create agent")
		return nil, err
	}

	r.lock.Lock()
	current, exists := r.agents[key]
	if exists && current.password == password {
		r.lock.Unlock()
		logCtx.Debug("Agent created concurrently, dropping ours")
		agent.close()
		return current, nil
	}
	r.agents[key] = agent
	r.lock.Unlock()

	if exists {
		current.close()
	}
	return agent, nil
}

// ClearAgents evicts all agents
func (r *Registry) ClearAgents() {
	r.lock.Lock()
	defer r.lock.Unlock()

	for key, agent := range r.agents {
		agent.close()
		delete(r.agents, key)
	}
}

// Len is the number of cached agents
func (r *Registry) Len() int {
	r.lock.Lock()
	defer r.lock.Unlock()
	return len(r.agents)
}

// AgentStats is a point-in-time view of one cached agent's pool
type AgentStats struct {
	ArrayType   string
	Endpoints   string
	CurrentSize int
	IdleSize    int
	MaxSize     int
}

// Stats lists the cached agents ordered by endpoints
func (r *Registry) Stats() []AgentStats {
	r.lock.Lock()
	defer r.lock.Unlock()

	stats := make([]AgentStats, 0, len(r.agents))
	for key, agent := range r.agents {
		stats = append(stats, AgentStats{
			ArrayType:   agent.arrayType,
			Endpoints:   key.endpoints,
			CurrentSize: agent.pool.CurrentSize(),
			IdleSize:    agent.pool.IdleSize(),
			MaxSize:     agent.pool.MaxSize(),
		})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Endpoints < stats[j].Endpoints })
	return stats
}

func (r *Registry) newAgent(user string, password string, endpoints []string, arrayType string) (*Agent, error) {
	if arrayType == "" {
		detected, err := r.detector.Detect(endpoints)
		if err != nil {
			return nil, err
		}
		arrayType = detected
	}
	traits, factory, err := r.lookup(arrayType)
	if err != nil {
		return nil, err
	}

	maxSize := traits.MaxConnections
	if r.workers > 0 && r.workers < maxSize {
		maxSize = r.workers
	}
	if maxSize < 1 {
		return nil, fmt.Errorf("invalid connection limit %d for array type %s", maxSize, arrayType)
	}

	ownEndpoints := append([]string(nil), endpoints...)
	create := func() (array.Mediator, error) {
		return factory(user, password, ownEndpoints)
	}
	p, err := pool.New(endpointKey(endpoints), create, 1, maxSize, r.observer)
	if err != nil {
		return nil, err
	}

	return &Agent{
		user:            user,
		password:        password,
		endpoints:       ownEndpoints,
		arrayType:       arrayType,
		traits:          traits,
		pool:            p,
		checkoutTimeout: r.checkoutTimeout,
		logger:          r.logger.WithFields(log.Fields{"arrayType": arrayType, "endpoints": endpointKey(endpoints)}),
	}, nil
}

func endpointKey(endpoints []string) string {
	sorted := make([]string, 0, len(endpoints))
	for _, endpoint := range endpoints {
		sorted = append(sorted, strings.TrimSpace(endpoint))
	}
	sort.Strings(sorted)
	return strings.Join(sorted, endpointKeySeparator)
}
