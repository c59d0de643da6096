package record

import (
	"errors"
	"fmt"
	"io"
)

// Frame-level failures. A ParseError matches the sentinel of its Kind.
var (
	ErrTruncated        = errors.New("record: frame cut short")
	ErrCorrupt          = errors.New("record: frame corrupt")
	ErrTooLarge         = errors.New("record: frame exceeds size limit")
	ErrInvalidType      = errors.New("record: unknown record type")
	ErrInvalidLength    = errors.New("record: bad frame length")
	ErrChecksumMismatch = errors.New("record: crc32c mismatch")
)

type ParseErrorKind uint8

const (
	KindTruncated ParseErrorKind = iota
	KindInvalidLength
	KindTooLarge
	KindChecksumMismatch
	KindInvalidType
	KindCorrupt
	KindIO
)

var parseKinds = [...]struct {
	name     string
	sentinel error
}{
	KindTruncated:        {"truncated", ErrTruncated},
	KindInvalidLength:    {"invalid_length", ErrInvalidLength},
	KindTooLarge:         {"too_large", ErrTooLarge},
	KindChecksumMismatch: {"checksum_mismatch", ErrChecksumMismatch},
	KindInvalidType:      {"invalid_type", ErrInvalidType},
	KindCorrupt:          {"corrupt", ErrCorrupt},
	KindIO:               {"io_error", nil},
}

func (k ParseErrorKind) String() string {
	if int(k) < len(parseKinds) {
		return parseKinds[k].name
	}
	return "unknown"
}

// ParseError describes a frame that could not be read back. Offset is where
// the frame's length prefix starts; SafeTruncateOffset is where a log could be
// cut to drop everything from the bad frame on.
type ParseError struct {
	Kind               ParseErrorKind
	Offset             int64
	SafeTruncateOffset int64
	DeclaredLen        uint32
	RawType            byte
	RecordType         RecordType
	Want               int
	Have               int
	Err                error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("record: %s frame at %d", e.Kind, e.Offset)
	if e.DeclaredLen != 0 {
		msg += fmt.Sprintf(" len=%d", e.DeclaredLen)
	}
	if e.RecordType != RecordTypeUnknown || e.RawType != 0 {
		msg += fmt.Sprintf(" type=0x%02x", e.RawType)
	}
	if e.Want != 0 || e.Have != 0 {
		msg += fmt.Sprintf(" want=%d have=%d", e.Want, e.Have)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool {
	if int(e.Kind) >= len(parseKinds) || parseKinds[e.Kind].sentinel == nil {
		return false
	}
	return target == parseKinds[e.Kind].sentinel
}

func AsParseError(err error) (*ParseError, bool) {
	var pe *ParseError
	ok := errors.As(err, &pe)
	return pe, ok
}

// IsCleanEOF reports a stream that ended exactly on a frame boundary.
func IsCleanEOF(err error) bool { return errors.Is(err, io.EOF) }

// IsTruncation reports a stream that ended inside a frame.
func IsTruncation(err error) bool { return errors.Is(err, ErrTruncated) }

// IsCorruption reports a frame whose bytes are present but wrong.
func IsCorruption(err error) bool {
	for _, s := range []error{ErrCorrupt, ErrInvalidLength, ErrTooLarge, ErrInvalidType, ErrChecksumMismatch} {
		if errors.Is(err, s) {
			return true
		}
	}
	return false
}

// Payload-level failures, raised while decoding an event out of a frame that
// itself checked out.
var (
	ErrCodecTruncated = errors.New("record: payload cut short")
	ErrCodecCorrupt   = errors.New("record: payload corrupt")
	ErrCodecInvalid   = errors.New("record: payload field out of range")
)

type CodecErrorKind uint8

const (
	CodecTruncated CodecErrorKind = iota
	CodecCorrupt
	CodecInvalid
)

var codecKinds = [...]struct {
	name     string
	sentinel error
}{
	CodecTruncated: {"truncated", ErrCodecTruncated},
	CodecCorrupt:   {"corrupt", ErrCodecCorrupt},
	CodecInvalid:   {"invalid", ErrCodecInvalid},
}

func (k CodecErrorKind) String() string {
	if int(k) < len(codecKinds) {
		return codecKinds[k].name
	}
	return "unknown"
}

type CodecError struct {
	Kind  CodecErrorKind
	Field string // "seq", "tablet_id", "mutation_len", ...
	At    int    // offset within the payload
	Want  int
	Have  int
	Err   error
}

func (e *CodecError) Error() string {
	return fmt.Sprintf("record: %s payload field %s at %d (want %d, have %d): %v",
		e.Kind, e.Field, e.At, e.Want, e.Have, e.Err)
}

func (e *CodecError) Unwrap() error { return e.Err }

func (e *CodecError) Is(target error) bool {
	return int(e.Kind) < len(codecKinds) && target == codecKinds[e.Kind].sentinel
}
