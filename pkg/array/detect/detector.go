package detect

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/hwameistor/array-csi/pkg/apis/array"
)

// DefaultProbeTimeout bounds one TCP probe
const DefaultProbeTimeout = 1 * time.Second

// Probe is the management port which identifies an array type
type Probe struct {
	ArrayType string
	Port      int
}

// DialFunc opens a TCP connection, net.DialTimeout by default
type DialFunc func(network string, address string, timeout time.Duration) (net.Conn, error)

// Detector identifies the array type behind a set of management endpoints.
// Probes are tried in order and the first array type with an open port on
// any endpoint wins, so overlapping ports (e.g. SSH) must be listed after the
// more specific ones.
type Detector struct {
	probes  []Probe
	timeout time.Duration
	dial    DialFunc
	logger  *log.Entry
}

// New creates a detector for the ordered probes
func New(probes []Probe) *Detector {
	return &Detector{
		probes:  probes,
		timeout: DefaultProbeTimeout,
		dial:    net.DialTimeout,
		logger:  log.WithField("Module", "ArrayDetector"),
	}
}

// WithTimeout overrides the per probe timeout
func (d *Detector) WithTimeout(timeout time.Duration) *Detector {
	d.timeout = timeout
	return d
}

// WithDialer overrides how connections are opened
func (d *Detector) WithDialer(dial DialFunc) *Detector {
	d.dial = dial
	return d
}

// Detect returns the array type of the first probe that answers
func (d *Detector) Detect(endpoints []string) (string, error) {
	for _, probe := range d.probes {
		if d.anyEndpointAnswers(endpoints, probe.Port) {
			d.logger.WithFields(log.Fields{"endpoints": endpoints, "arrayType": probe.ArrayType, "port": probe.Port}).Debug("Detected storage system type")
			return probe.ArrayType, nil
		}
	}
	d.logger.WithField("endpoints", endpoints).Error("Failed to detect storage system type")
	return "", array.ErrFailedToFindStorageSystemType(endpoints)
}

// anyEndpointAnswers probes all endpoints of one port in parallel
func (d *Detector) anyEndpointAnswers(endpoints []string, port int) bool {
	eg, ctx := errgroup.WithContext(context.Background())
	found := make(chan string, len(endpoints))
	for _, endpoint := range endpoints {
		endpoint := endpoint
		eg.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			if d.isPortOpen(endpoint, port) {
				found <- endpoint
				return errFound
			}
			return nil
		})
	}
	_ = eg.Wait()
	close(found)
	_, ok := <-found
	return ok
}

var errFound = fmt.Errorf("found")

func (d *Detector) isPortOpen(endpoint string, port int) bool {
	address := net.JoinHostPort(endpoint, strconv.Itoa(port))
	conn, err := d.dial("tcp", address, d.timeout)
	if err != nil {
		d.logger.WithFields(log.Fields{"address": address}).WithError(err).Debug("Port is closed")
		return false
	}
	conn.Close()
	return true
}
