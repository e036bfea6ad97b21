package ds8k

import (
	"errors"
	"net/http"

	"github.com/hwameistor/array-csi/pkg/apis/array"
)

// DS8K REST codes the mediator handles
const (
	codeInvalidCredentials = "BE7A002D"
	codeVolumeNotFound     = "BE7A0001"
	codePoolNotFound       = "BE7A0005"
	codeHostNotFound       = "BE7A0012"
	codeFlashCopyNotFound  = "BE7A0021"
	codeNotEnoughSpace     = "BE534010"
	codeTargetIsSource     = "BE74121B"
	codeIllegalName        = "BE7A0040"
)

func restCode(err error) (int, string) {
	var restErr *RESTError
	if errors.As(err, &restErr) {
		return restErr.HTTPStatus, restErr.Code
	}
	return 0, ""
}

func isNotFound(err error, code string) bool {
	status, c := restCode(err)
	return c == code || (c == "" && status == http.StatusNotFound)
}

// translateError maps the failures common to all requests
func (m *Mediator) translateError(err error) error {
	if err == nil {
		return nil
	}
	status, code := restCode(err)
	switch {
	case code == codeInvalidCredentials || status == http.StatusUnauthorized:
		return array.ErrCredentials(m.endpoint)
	case status == http.StatusForbidden:
		return array.WrapError(array.ErrorKindPermissionDenied, err, "access denied on %s", m.endpoint)
	case code == codeIllegalName:
		return array.WrapError(array.ErrorKindIllegalObjectName, err, "illegal object name")
	}
	return err
}
