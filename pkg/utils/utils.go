package utils

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/gofrs/uuid"
	"github.com/kubernetes-csi/csi-lib-utils/leaderelection"
	"github.com/kubernetes-csi/csi-lib-utils/protosanitizer"
	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	k8sutils "github.com/hwameistor/array-csi/pkg/utils/kubernetes"
)

const (
	leaderLeaseDuration      = 30 * time.Second
	leaderLeaseRenewDeadLine = 25 * time.Second
	leaderLeaseRetryDuration = 15 * time.Second

	probeMethod = "/csi.v1.Identity/Probe"
)

var unitArray = []string{"B", "KB", "MB", "GB", "TB", "PB"}

type requestIDKey struct{}

// RequestID returns the id LogGRPC assigned to the call
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// LogGRPC logs every call but Probe with its secrets stripped, tagged with a request id
func LogGRPC(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	if info.FullMethod == probeMethod {
		return handler(ctx, req)
	}

	requestID := newRequestID()
	ctx = context.WithValue(ctx, requestIDKey{}, requestID)
	logCtx := log.WithFields(log.Fields{"call": info.FullMethod, "requestID": requestID})
	logCtx.WithField("request", protosanitizer.StripSecrets(req)).Debug("GRPC request")

	start := time.Now()
	resp, err := handler(ctx, req)
	logCtx = logCtx.WithField("duration", time.Since(start))
	if err != nil {
		logCtx.WithFields(log.Fields{"code": status.Code(err), "error": err}).Error("GRPC error")
	} else {
		logCtx.WithField("response", protosanitizer.StripSecrets(resp)).Debug("GRPC response")
	}
	return resp, err
}

func newRequestID() string {
	id, err := uuid.NewV4()
	if err != nil {
		return "unknown"
	}
	return id.String()
}

// LogREST log rest api call info
func LogREST(inner http.Handler, name string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		inner.ServeHTTP(w, r)

		log.Debugf(
			"%s  %s  %s  %s",
			r.Method,
			r.RequestURI,
			name,
			time.Since(start),
		)
	})
}

// ConvertBytesToStr convert size into string
func ConvertBytesToStr(size int64) string {
	unitIndex := 0
	for size >= 1024 && unitIndex < len(unitArray)-1 {
		size /= 1024
		unitIndex++
	}
	return fmt.Sprintf("%d%s", size, unitArray[unitIndex])
}

// RunWithLease run a process with acquired leader lease. It's a blocking function
func RunWithLease(ns string, identity string, lockName string, runFunc func(ctx context.Context)) error {
	clientset, err := k8sutils.NewClientSet()
	if err != nil {
		log.WithError(err).Error("Failed to build kubernetes clientset")
		return err
	}
	// Become the leader before proceeding. The lock will be released only after the Pod is terminated
	le := leaderelection.NewLeaderElectionWithLeases(clientset, SanitizeName(lockName), runFunc)
	le.WithNamespace(ns)
	le.WithIdentity(identity)
	le.WithLeaseDuration(leaderLeaseDuration)
	le.WithRenewDeadline(leaderLeaseRenewDeadLine)
	le.WithRetryPeriod(leaderLeaseRetryDuration)

	return le.Run()
}

// SanitizeName sanitizes the provided string so it can be consumed by leader election library
// copy from github.com/kubernetes-csi/csi-lib-utils/leaderelection
func SanitizeName(name string) string {
	re := regexp.MustCompile("[^a-zA-Z0-9-]")
	name = re.ReplaceAllString(name, "-")
	if name[len(name)-1] == '-' {
		// name must not end with '-'
		name = name + "X"
	}
	return name
}
