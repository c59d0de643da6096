package record

import (
	"encoding/binary"
	"errors"
	"io"
)

type FrameReader struct {
	r      io.Reader
	offset int64
}

// NewFrameReader creates a new FrameReader that reads framed records from the given io.Reader.
func NewFrameReader(r io.Reader) *FrameReader {
	return &FrameReader{r: r}
}

// Next reads the next record from the underlying reader.
// A stream ending exactly on a record boundary yields io.EOF; any shorter
// read yields a ParseError of kind KindTruncated.
func (rr *FrameReader) Next() (FramedRecord, error) {
	recordStart := rr.offset

	hdr := make([]byte, RecordHeaderSize)
	n, err := io.ReadFull(rr.r, hdr)
	if err != nil {
		rr.offset += int64(n)
		if err == io.EOF && n == 0 {
			return FramedRecord{}, io.EOF
		}
		return FramedRecord{}, &ParseError{
			Kind:               readFailureKind(err),
			Offset:             recordStart,
			SafeTruncateOffset: recordStart,
			Want:               RecordHeaderSize,
			Have:               n,
			Err:                readFailureCause(err),
		}
	}

	recordLen := binary.LittleEndian.Uint32(hdr)
	if err = ValidateRecordLength(recordLen); err != nil {
		if pe, ok := AsParseError(err); ok {
			pe.Offset = recordStart
			pe.SafeTruncateOffset = recordStart
			return FramedRecord{}, pe
		}
		return FramedRecord{}, err
	}

	body := make([]byte, recordLen+RecordCRCSize)
	n, err = io.ReadFull(rr.r, body)
	if err != nil {
		rr.offset += int64(RecordHeaderSize + n)
		return FramedRecord{}, &ParseError{
			Kind:               readFailureKind(err),
			Offset:             recordStart,
			SafeTruncateOffset: recordStart,
			DeclaredLen:        recordLen,
			Want:               int(recordLen) + RecordCRCSize,
			Have:               n,
			Err:                readFailureCause(err),
		}
	}
	rr.offset += int64(RecordHeaderSize + len(body))

	return parseBody(body, recordLen, recordStart)
}

// Offset returns the number of bytes consumed from the underlying reader.
func (rr *FrameReader) Offset() int64 {
	return rr.offset
}

// readFailureKind treats any end-of-data condition, including one reported by a
// wrapping reader that matches io.ErrUnexpectedEOF, as truncation.
func readFailureKind(err error) ParseErrorKind {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return KindTruncated
	}
	return KindIO
}

func readFailureCause(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
