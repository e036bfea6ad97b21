package a9000

import (
	"errors"

	"github.com/hwameistor/array-csi/pkg/apis/array"
)

// XCLI return codes the mediator handles
const (
	codeVolumeBadName         = "VOLUME_BAD_NAME"
	codeVolumeExists          = "VOLUME_EXISTS"
	codeVolumeBadPrefix       = "VOLUME_BAD_PREFIX"
	codeIllegalName           = "ILLEGAL_NAME"
	codePoolDoesNotExist      = "POOL_DOES_NOT_EXIST"
	codeNoSpace               = "NOT_ENOUGH_SPACE"
	codeHostBadName           = "HOST_BAD_NAME"
	codeLUNAlreadyInUse       = "LUN_ALREADY_IN_USE"
	codeVolumeNotMapped       = "VOLUME_NOT_MAPPED_TO_HOST"
	codeVolumeHasSnapshots    = "VOLUME_HAS_SNAPSHOTS"
	codeSnapshotIsMapped      = "SNAPSHOT_IS_MAPPED"
	codeUserNameDoesNotExist  = "USER_NAME_DOES_NOT_EXIST"
	codePasswordIsIncorrect   = "PASSWORD_IS_INCORRECT"
	codeLoginFailure          = "LOGIN_FAILURE"
	codeAccessDenied          = "ACCESS_DENIED"
	codeIllegalValue          = "ILLEGAL_VALUE"
	codeVolumeSizeAboveLimit  = "VOLUME_SIZE_ABOVE_LIMIT"
	codeTargetVolumeBadName   = "TARGET_VOLUME_BAD_NAME"
	codeSourceVolumeBadName   = "SOURCE_VOLUME_BAD_NAME"
	codeTargetVolumeNotLarger = "TARGET_VOLUME_NOT_LARGER_THAN_SOURCE"
)

func commandCode(err error) string {
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Code
	}
	return ""
}

// translateError maps the codes common to all commands; callers handle the
// object specific ones before falling back to it
func (m *Mediator) translateError(err error) error {
	if err == nil {
		return nil
	}
	switch commandCode(err) {
	case codeUserNameDoesNotExist, codePasswordIsIncorrect, codeLoginFailure:
		return array.ErrCredentials(m.endpoint)
	case codeAccessDenied:
		return array.WrapError(array.ErrorKindPermissionDenied, err, "access denied on %s", m.endpoint)
	case codePoolDoesNotExist:
		return array.WrapError(array.ErrorKindPoolDoesNotExist, err, "pool does not exist on %s", m.endpoint)
	case codeIllegalName, codeVolumeBadPrefix:
		return array.WrapError(array.ErrorKindIllegalObjectName, err, "illegal object name")
	case codeIllegalValue, codeVolumeSizeAboveLimit, codeTargetVolumeNotLarger:
		return array.WrapError(array.ErrorKindValidation, err, "illegal value")
	}
	return err
}
