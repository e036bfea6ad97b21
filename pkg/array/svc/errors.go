package svc

import (
	"errors"
	"strings"

	"github.com/hwameistor/array-csi/pkg/apis/array"
)

// CLI message codes the mediator handles
const (
	codeObjectDoesNotExist   = "CMMVC5753E"
	codeObjectNotFound       = "CMMVC5754E"
	codeNameAlreadyExists    = "CMMVC6035E"
	codeInvalidName          = "CMMVC6527E"
	codeNotEnoughExtents     = "CMMVC5860E"
	codeNotEnoughSpace       = "CMMVC8710E"
	codeLUNAlreadyInUse      = "CMMVC5879E"
	codeAlreadyMapped        = "CMMVC5878E"
	codeNotMapped            = "CMMVC5842E"
	codeAccessDenied         = "CMMVC7205E"
	codeInvalidSize          = "CMMVC5731E"
	codeFCMapDoesNotExist    = "CMMVC5804E"
	codeRelationshipNotFound = "CMMVC5957E"
)

func cliCode(err error) string {
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return cliErr.Code
	}
	return ""
}

func isAuthenticationError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "unable to authenticate")
}

// translateError maps the codes common to all commands
func (m *Mediator) translateError(err error) error {
	if err == nil {
		return nil
	}
	switch cliCode(err) {
	case codeAccessDenied:
		return array.WrapError(array.ErrorKindPermissionDenied, err, "access denied on %s", m.endpoint)
	case codeInvalidName:
		return array.WrapError(array.ErrorKindIllegalObjectName, err, "illegal object name")
	case codeInvalidSize:
		return array.WrapError(array.ErrorKindValidation, err, "illegal size")
	}
	return err
}
