package header

import (
	"errors"
	"fmt"
)

var (
	ErrShortMagic    = errors.New("header: stream shorter than magic")
	ErrTruncated     = errors.New("header: truncated")
	ErrCorrupt       = errors.New("header: corrupt")
	ErrUnknownModule = errors.New("header: unknown crypto module")
	ErrCrypto        = errors.New("header: crypto setup failed")
)

type HeaderErrorKind uint8

const (
	KindShortMagic HeaderErrorKind = iota
	KindTruncated
	KindCorrupt
	KindUnknownModule
	KindCrypto
	KindIO
)

func (k HeaderErrorKind) String() string {
	switch k {
	case KindShortMagic:
		return "short_magic"
	case KindTruncated:
		return "truncated"
	case KindCorrupt:
		return "corrupt"
	case KindUnknownModule:
		return "unknown_module"
	case KindCrypto:
		return "crypto"
	case KindIO:
		return "io_error"
	default:
		return "unknown"
	}
}

type HeaderError struct {
	Kind    HeaderErrorKind
	Version Version
	Field   string
	Want    int
	Have    int
	Err     error
}

func (e *HeaderError) Error() string {
	return fmt.Sprintf("header: %s version=%s field=%s want=%d have=%d: %v",
		e.Kind, e.Version, e.Field, e.Want, e.Have, e.Err)
}

func (e *HeaderError) Unwrap() error { return e.Err }

func (e *HeaderError) Is(target error) bool {
	switch target {
	case ErrShortMagic:
		return e.Kind == KindShortMagic
	case ErrTruncated:
		return e.Kind == KindTruncated
	case ErrCorrupt:
		return e.Kind == KindCorrupt
	case ErrUnknownModule:
		return e.Kind == KindUnknownModule
	case ErrCrypto:
		return e.Kind == KindCrypto
	}
	return false
}
