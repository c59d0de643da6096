package compress

import (
	"errors"
	"fmt"
	"io"
)

var (
	ErrUnknownCodec = errors.New("compress: unknown codec")
	ErrTruncated    = errors.New("compress: truncated frame")
	ErrCorrupt      = errors.New("compress: corrupt frame")
	ErrFrameTooBig  = errors.New("compress: frame too large")
	ErrInvalidRange = errors.New("compress: invalid read range")
)

type CodecError struct {
	Codec string
	Op    string
	Err   error
}

func (e *CodecError) Error() string {
	return fmt.Sprintf("compress: %s %s: %v", e.Codec, e.Op, e.Err)
}

func (e *CodecError) Unwrap() error { return e.Err }

type FrameErrorKind uint8

const (
	FrameTruncated FrameErrorKind = iota
	FrameCorrupt
	FrameTooLarge
	FrameIO
)

func (k FrameErrorKind) String() string {
	switch k {
	case FrameTruncated:
		return "truncated"
	case FrameCorrupt:
		return "corrupt"
	case FrameTooLarge:
		return "too_large"
	case FrameIO:
		return "io_error"
	default:
		return "unknown"
	}
}

// FrameError describes a failure to produce the next decompressed frame.
type FrameError struct {
	Kind FrameErrorKind
	// Offset is the compressed stream offset of the frame's length prefix.
	Offset      int64
	DeclaredLen uint32
	Want        int
	Have        int
	Err         error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("compress: frame %s offset=%d len=%d want=%d have=%d: %v",
		e.Kind, e.Offset, e.DeclaredLen, e.Want, e.Have, e.Err)
}

func (e *FrameError) Unwrap() error { return e.Err }

// Is matches the package sentinels by kind. A truncated frame also matches
// io.ErrUnexpectedEOF so readers layered on top treat it as a short read.
func (e *FrameError) Is(target error) bool {
	switch target {
	case ErrTruncated, io.ErrUnexpectedEOF:
		return e.Kind == FrameTruncated
	case ErrCorrupt:
		return e.Kind == FrameCorrupt
	case ErrFrameTooBig:
		return e.Kind == FrameTooLarge
	}
	return false
}

// IsTruncation reports whether err is a truncated compressed frame.
func IsTruncation(err error) bool {
	return errors.Is(err, ErrTruncated)
}
