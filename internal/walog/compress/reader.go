package compress

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Reader decompresses a stream of length-prefixed frames one frame at a time.
//
// A stream that ends exactly between frames is a clean io.EOF. A stream that
// ends inside a frame, including inside its length prefix, yields a
// FrameError of kind FrameTruncated. Errors are sticky.
type Reader struct {
	r      io.Reader
	codec  Codec
	buf    []byte
	pos    int
	offset int64
	err    error
}

var (
	_ io.Reader     = (*Reader)(nil)
	_ io.ByteReader = (*Reader)(nil)
)

func NewReader(r io.Reader, c Codec) *Reader {
	return &Reader{r: r, codec: c}
}

// Codec returns the codec frames are decompressed with.
func (r *Reader) Codec() Codec { return r.codec }

// Offset returns the number of compressed bytes consumed so far.
func (r *Reader) Offset() int64 { return r.offset }

// ReadByte returns the next decompressed byte. A truncated final frame is
// reported as io.EOF.
func (r *Reader) ReadByte() (byte, error) {
	if err := r.fill(); err != nil {
		if IsTruncation(err) {
			return 0, io.EOF
		}
		return 0, err
	}
	b := r.buf[r.pos]
	r.pos++
	return b, nil
}

func (r *Reader) Read(p []byte) (int, error) {
	return r.ReadRange(p, 0, len(p))
}

// ReadRange fills b[off:off+n] and returns how many bytes were copied. Once
// at least one byte was copied, a failing refill ends the read early without
// an error; the error is returned by the next call.
func (r *Reader) ReadRange(b []byte, off, n int) (int, error) {
	if off < 0 || n < 0 || n > len(b)-off {
		return 0, fmt.Errorf("%w: off=%d len=%d size=%d", ErrInvalidRange, off, n, len(b))
	}
	if n == 0 {
		return 0, nil
	}

	copied := 0
	for copied < n {
		if err := r.fill(); err != nil {
			if copied > 0 {
				return copied, nil
			}
			return 0, err
		}
		c := copy(b[off+copied:off+n], r.buf[r.pos:])
		r.pos += c
		copied += c
	}
	return copied, nil
}

// fill makes at least one decompressed byte available.
func (r *Reader) fill() error {
	for r.pos >= len(r.buf) {
		if r.err != nil {
			return r.err
		}
		r.err = r.next()
	}
	return nil
}

func (r *Reader) next() error {
	start := r.offset

	var hdr [FrameHeaderSize]byte
	n, err := io.ReadFull(r.r, hdr[:])
	r.offset += int64(n)
	if err != nil {
		if err == io.EOF {
			return io.EOF
		}
		return &FrameError{Kind: failureKind(err), Offset: start, Want: FrameHeaderSize, Have: n, Err: cause(err)}
	}

	size := binary.BigEndian.Uint32(hdr[:])
	if size > MaxFrameSize {
		return &FrameError{
			Kind:        FrameTooLarge,
			Offset:      start,
			DeclaredLen: size,
			Want:        MaxFrameSize,
			Have:        int(size),
			Err:         ErrFrameTooBig,
		}
	}

	body := make([]byte, size)
	n, err = io.ReadFull(r.r, body)
	r.offset += int64(n)
	if err != nil {
		return &FrameError{Kind: failureKind(err), Offset: start, DeclaredLen: size, Want: int(size), Have: n, Err: cause(err)}
	}

	out, err := r.codec.Decompress(body)
	if err != nil {
		return &FrameError{Kind: FrameCorrupt, Offset: start, DeclaredLen: size, Err: err}
	}
	r.buf, r.pos = out, 0
	return nil
}

func failureKind(err error) FrameErrorKind {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return FrameTruncated
	}
	return FrameIO
}

func cause(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
