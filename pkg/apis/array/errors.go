package array

import (
	"errors"
	"fmt"
)

// ErrorKind is the canonical category of an array error
type ErrorKind string

// consts
const (
	ErrorKindNoConnectionAvailable              ErrorKind = "NoConnectionAvailable"
	ErrorKindCredentials                        ErrorKind = "CredentialsError"
	ErrorKindFailedToFindStorageSystemType      ErrorKind = "FailedToFindStorageSystemType"
	ErrorKindUnsupportedStorageVersion          ErrorKind = "UnsupportedStorageVersion"
	ErrorKindVolumeNotFound                     ErrorKind = "VolumeNotFound"
	ErrorKindVolumeAlreadyExists                ErrorKind = "VolumeAlreadyExists"
	ErrorKindVolumeCreation                     ErrorKind = "VolumeCreationError"
	ErrorKindVolumeDeletion                     ErrorKind = "VolumeDeletionError"
	ErrorKindSnapshotNotFound                   ErrorKind = "SnapshotNotFound"
	ErrorKindSnapshotAlreadyExists              ErrorKind = "SnapshotAlreadyExists"
	ErrorKindSnapshotNameBelongsToVolume        ErrorKind = "SnapshotNameBelongsToVolume"
	ErrorKindSnapshotIsStillInUse               ErrorKind = "SnapshotIsStillInUse"
	ErrorKindPoolDoesNotExist                   ErrorKind = "PoolDoesNotExist"
	ErrorKindPoolDoesNotMatchCapabilities       ErrorKind = "PoolDoesNotMatchCapabilities"
	ErrorKindStorageClassCapabilityNotSupported ErrorKind = "StorageClassCapabilityNotSupported"
	ErrorKindIllegalObjectName                  ErrorKind = "IllegalObjectName"
	ErrorKindHostNotFound                       ErrorKind = "HostNotFound"
	ErrorKindNoISCSITargetsFound                ErrorKind = "NoIscsiTargetsFound"
	ErrorKindMultipleHostsFound                 ErrorKind = "MultipleHostsFound"
	ErrorKindNoAvailableLUN                     ErrorKind = "NoAvailableLun"
	ErrorKindLUNAlreadyInUse                    ErrorKind = "LunAlreadyInUse"
	ErrorKindMapping                            ErrorKind = "MappingError"
	ErrorKindUnMapping                          ErrorKind = "UnMappingError"
	ErrorKindVolumeAlreadyUnmapped              ErrorKind = "VolumeAlreadyUnmapped"
	ErrorKindVolumeMappedToMultipleHosts        ErrorKind = "VolumeMappedToMultipleHosts"
	ErrorKindPermissionDenied                   ErrorKind = "PermissionDenied"
	ErrorKindUnsupportedConnectivityType        ErrorKind = "UnsupportedConnectivityType"
	ErrorKindBadNodeID                          ErrorKind = "BadNodeId"
	ErrorKindObjectAlreadyProcessing            ErrorKind = "ObjectAlreadyProcessing"
	ErrorKindValidation                         ErrorKind = "ValidationException"
	ErrorKindNotSupported                       ErrorKind = "NotSupported"
)

// Error is an array error in the canonical taxonomy
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error of the same kind, so a bare &Error{Kind: k} works as a target
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// NewError creates an error of the given kind
func NewError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError creates an error of the given kind caused by err
func WrapError(kind ErrorKind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: err}
}

// KindOf returns the kind of the first *Error in err's chain
func KindOf(err error) (ErrorKind, bool) {
	var arrayErr *Error
	if errors.As(err, &arrayErr) {
		return arrayErr.Kind, true
	}
	return "", false
}

// IsKind reports whether err carries the given kind
func IsKind(err error, kind ErrorKind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// ErrNoConnectionAvailable reports a saturated connection pool
func ErrNoConnectionAvailable(endpoint string) *Error {
	return NewError(ErrorKindNoConnectionAvailable, "no connection available to %s", endpoint)
}

// ErrCredentials reports a login rejected by the array
func ErrCredentials(endpoint string) *Error {
	return NewError(ErrorKindCredentials, "invalid credentials for %s", endpoint)
}

// ErrFailedToFindStorageSystemType reports that no vendor answered on any endpoint
func ErrFailedToFindStorageSystemType(endpoints []string) *Error {
	return NewError(ErrorKindFailedToFindStorageSystemType, "could not identify the storage system behind %v", endpoints)
}

// ErrUnsupportedStorageVersion reports an array code level below the minimal one
func ErrUnsupportedStorageVersion(version string, minimal string) *Error {
	return NewError(ErrorKindUnsupportedStorageVersion, "storage version %s is not supported, minimal version is %s", version, minimal)
}

// ErrVolumeNotFound reports a missing volume
func ErrVolumeNotFound(volume string) *Error {
	return NewError(ErrorKindVolumeNotFound, "volume %s was not found", volume)
}

// ErrVolumeAlreadyExists reports a volume name taken on the array
func ErrVolumeAlreadyExists(volume string, endpoint string) *Error {
	return NewError(ErrorKindVolumeAlreadyExists, "volume %s already exists on %s", volume, endpoint)
}

// ErrSnapshotNotFound reports a missing snapshot
func ErrSnapshotNotFound(snapshot string) *Error {
	return NewError(ErrorKindSnapshotNotFound, "snapshot %s was not found", snapshot)
}

// ErrSnapshotAlreadyExists reports a snapshot name taken on the array
func ErrSnapshotAlreadyExists(snapshot string, endpoint string) *Error {
	return NewError(ErrorKindSnapshotAlreadyExists, "snapshot %s already exists on %s", snapshot, endpoint)
}

// ErrSnapshotNameBelongsToVolume reports a snapshot name used by a plain volume
func ErrSnapshotNameBelongsToVolume(snapshot string, endpoint string) *Error {
	return NewError(ErrorKindSnapshotNameBelongsToVolume, "name %s belongs to a volume on %s", snapshot, endpoint)
}

// ErrSnapshotIsStillInUse reports a snapshot that other objects still depend on
func ErrSnapshotIsStillInUse(snapshot string, users string) *Error {
	return NewError(ErrorKindSnapshotIsStillInUse, "snapshot %s is still in use by %s", snapshot, users)
}

// ErrPoolDoesNotExist reports an unknown pool
func ErrPoolDoesNotExist(pool string, endpoint string) *Error {
	return NewError(ErrorKindPoolDoesNotExist, "pool %s does not exist on %s", pool, endpoint)
}

// ErrPoolDoesNotMatchCapabilities reports a pool that can not provide the space efficiency
func ErrPoolDoesNotMatchCapabilities(pool string, spaceEfficiency string) *Error {
	return NewError(ErrorKindPoolDoesNotMatchCapabilities, "pool %s does not match space efficiency %s", pool, spaceEfficiency)
}

// ErrStorageClassCapabilityNotSupported reports a StorageClass capability the array lacks
func ErrStorageClassCapabilityNotSupported(capability string) *Error {
	return NewError(ErrorKindStorageClassCapabilityNotSupported, "storage class capability %s is not supported", capability)
}

// ErrIllegalObjectName reports a name the array refuses
func ErrIllegalObjectName(msg string) *Error {
	return NewError(ErrorKindIllegalObjectName, "%s", msg)
}

// ErrHostNotFound reports that no host matches the initiators
func ErrHostNotFound(initiators Initiators) *Error {
	return NewError(ErrorKindHostNotFound, "no host matches initiators iqn=%q wwns=%v", initiators.ISCSIIQN, initiators.FCWWNs)
}

// ErrMultipleHostsFound reports initiators shared by several hosts
func ErrMultipleHostsFound(initiators Initiators, hosts []string) *Error {
	return NewError(ErrorKindMultipleHostsFound, "initiators iqn=%q wwns=%v match hosts %v", initiators.ISCSIIQN, initiators.FCWWNs, hosts)
}

// ErrNoISCSITargetsFound reports an iSCSI host on an array without iSCSI portals
func ErrNoISCSITargetsFound(host string) *Error {
	return NewError(ErrorKindNoISCSITargetsFound, "no iSCSI targets found for host %s", host)
}

// ErrNoAvailableLUN reports a host with every LUN taken
func ErrNoAvailableLUN(host string) *Error {
	return NewError(ErrorKindNoAvailableLUN, "no available LUN for host %s", host)
}

// ErrLUNAlreadyInUse reports a LUN collision on the host
func ErrLUNAlreadyInUse(lun int, host string) *Error {
	return NewError(ErrorKindLUNAlreadyInUse, "LUN %d is already in use on host %s", lun, host)
}

// ErrMapping wraps a failed map
func ErrMapping(volume string, host string, err error) *Error {
	return WrapError(ErrorKindMapping, err, "failed to map volume %s to host %s", volume, host)
}

// ErrUnMapping wraps a failed unmap
func ErrUnMapping(volume string, host string, err error) *Error {
	return WrapError(ErrorKindUnMapping, err, "failed to unmap volume %s from host %s", volume, host)
}

// ErrVolumeAlreadyUnmapped reports an unmap of a volume with no mapping
func ErrVolumeAlreadyUnmapped(volume string) *Error {
	return NewError(ErrorKindVolumeAlreadyUnmapped, "volume %s is already unmapped", volume)
}

// ErrVolumeMappedToMultipleHosts reports a volume mapped to a host other than the requested one
func ErrVolumeMappedToMultipleHosts(volume string, hosts []string) *Error {
	return NewError(ErrorKindVolumeMappedToMultipleHosts, "Volume is already mapped to a different host, volume %s hosts %v", volume, hosts)
}

// ErrPermissionDenied reports an action the array user may not run
func ErrPermissionDenied(action string) *Error {
	return NewError(ErrorKindPermissionDenied, "permission denied for %s", action)
}

// ErrUnsupportedConnectivityType reports a connectivity type other than fc or iscsi
func ErrUnsupportedConnectivityType(connectivity string) *Error {
	return NewError(ErrorKindUnsupportedConnectivityType, "unsupported connectivity type %q", connectivity)
}

// ErrBadNodeID reports a node id that does not parse
func ErrBadNodeID(nodeID string) *Error {
	return NewError(ErrorKindBadNodeID, "bad node id %q", nodeID)
}

// ErrObjectAlreadyProcessing reports a resource with an operation in flight
func ErrObjectAlreadyProcessing(kind string, id string) *Error {
	return NewError(ErrorKindObjectAlreadyProcessing, "%s %s is already being processed", kind, id)
}

// ErrValidation reports a malformed request
func ErrValidation(format string, args ...interface{}) *Error {
	return NewError(ErrorKindValidation, format, args...)
}

// ErrNotSupported reports an operation the array type does not implement
func ErrNotSupported(arrayType string, operation string) *Error {
	return NewError(ErrorKindNotSupported, "%s is not supported by %s arrays", operation, arrayType)
}
