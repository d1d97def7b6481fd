package common

import (
	"github.com/icon-project/govote/common/errors"
)

var (
	ErrUnknown         = errors.ErrUnknown
	ErrIllegalArgument = errors.ErrIllegalArgument
	ErrInvalidState    = errors.ErrInvalidState
	ErrUnsupported     = errors.ErrUnsupported
	ErrNotFound        = errors.ErrNotFound
)
