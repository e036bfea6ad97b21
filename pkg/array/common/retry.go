package common

import (
	"time"

	log "github.com/sirupsen/logrus"
	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/hwameistor/array-csi/pkg/apis/array"
)

// consts
const (
	NoConnectionRetryAttempts = 11
	NoConnectionRetryInterval = 1 * time.Second

	RollbackRetryAttempts = 5
	RollbackRetryInterval = 1 * time.Second
)

// Retry runs fn up to attempts times, interval apart, as long as it fails
// with an error accepted by retriable. The last error is returned.
func Retry(attempts int, interval time.Duration, retriable func(error) bool, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	tried := 0
	backoff := wait.Backoff{Duration: interval, Factor: 1, Steps: attempts}
	err := wait.ExponentialBackoff(backoff, func() (bool, error) {
		tried++
		lastErr = fn()
		if lastErr == nil {
			return true, nil
		}
		if !retriable(lastErr) {
			return false, lastErr
		}
		log.WithFields(log.Fields{"attempt": tried, "attempts": attempts}).WithError(lastErr).Debug("Retrying")
		return false, nil
	})
	if err == wait.ErrWaitTimeout {
		return lastErr
	}
	return err
}

// RetryOnNoConnectionAvailable retries fn while the connection pool is saturated
func RetryOnNoConnectionAvailable(fn func() error) error {
	return Retry(NoConnectionRetryAttempts, NoConnectionRetryInterval, isNoConnectionAvailable, fn)
}

// Rollback retries a cleanup action on any error
func Rollback(fn func() error) error {
	return Retry(RollbackRetryAttempts, RollbackRetryInterval, func(error) bool { return true }, fn)
}

func isNoConnectionAvailable(err error) bool {
	return array.IsKind(err, array.ErrorKindNoConnectionAvailable)
}
