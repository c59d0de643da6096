package crypto

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownModule = errors.New("crypto: unknown module")
	ErrNotLegacy     = errors.New("crypto: module cannot read legacy parameters")
	ErrEmptySecret   = errors.New("crypto: empty secret")
	ErrMissingParam  = errors.New("crypto: missing parameter")
	ErrBadParam      = errors.New("crypto: malformed parameter")
)

type ModuleError struct {
	Identity string
	Op       string
	Err      error
}

func (e *ModuleError) Error() string {
	return fmt.Sprintf("crypto: %s %s: %v", e.Identity, e.Op, e.Err)
}

func (e *ModuleError) Unwrap() error { return e.Err }
