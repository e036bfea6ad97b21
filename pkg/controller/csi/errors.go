package csi

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hwameistor/array-csi/pkg/apis/array"
)

var errorCodes = map[array.ErrorKind]codes.Code{
	array.ErrorKindValidation:                         codes.InvalidArgument,
	array.ErrorKindIllegalObjectName:                  codes.InvalidArgument,
	array.ErrorKindPoolDoesNotExist:                   codes.InvalidArgument,
	array.ErrorKindPoolDoesNotMatchCapabilities:       codes.InvalidArgument,
	array.ErrorKindStorageClassCapabilityNotSupported: codes.InvalidArgument,
	array.ErrorKindBadNodeID:                          codes.InvalidArgument,
	array.ErrorKindUnsupportedConnectivityType:        codes.InvalidArgument,

	array.ErrorKindVolumeNotFound:   codes.NotFound,
	array.ErrorKindSnapshotNotFound: codes.NotFound,
	array.ErrorKindHostNotFound:     codes.NotFound,

	array.ErrorKindNoISCSITargetsFound: codes.NotFound,

	array.ErrorKindVolumeAlreadyExists:         codes.AlreadyExists,
	array.ErrorKindSnapshotAlreadyExists:       codes.AlreadyExists,
	array.ErrorKindSnapshotNameBelongsToVolume: codes.AlreadyExists,

	array.ErrorKindNoAvailableLUN:  codes.ResourceExhausted,
	array.ErrorKindLUNAlreadyInUse: codes.ResourceExhausted,

	array.ErrorKindMultipleHostsFound:          codes.FailedPrecondition,
	array.ErrorKindVolumeMappedToMultipleHosts: codes.FailedPrecondition,
	array.ErrorKindSnapshotIsStillInUse:        codes.FailedPrecondition,

	array.ErrorKindCredentials:      codes.PermissionDenied,
	array.ErrorKindPermissionDenied: codes.PermissionDenied,

	array.ErrorKindObjectAlreadyProcessing: codes.Aborted,
	array.ErrorKindNotSupported:            codes.Unimplemented,
}

// toGRPCError maps an array error to its status code. Status errors pass
// through and anything uncategorised is Internal.
func toGRPCError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	if kind, ok := array.KindOf(err); ok {
		if code, exists := errorCodes[kind]; exists {
			return status.Error(code, err.Error())
		}
	}
	return status.Error(codes.Internal, err.Error())
}

func isNotFound(err error) bool {
	return array.IsKind(err, array.ErrorKindVolumeNotFound) || array.IsKind(err, array.ErrorKindSnapshotNotFound)
}
