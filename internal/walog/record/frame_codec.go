package record

import (
	"encoding/binary"
	"io"
)

// AppendFrame appends a framed record to dst.
// Layout: [len u32 LE][type u8][payload][crc32c u32 LE], len = 1 + len(payload).
func AppendFrame(dst []byte, recordType RecordType, payload []byte) ([]byte, error) {
	if !ValidRecordType(recordType) {
		return dst, &ParseError{
			Kind:       KindInvalidType,
			RawType:    byte(recordType),
			RecordType: recordType,
			Err:        ErrInvalidType,
		}
	}
	recordLen := uint32(len(payload)) + 1 //nolint:gosec
	if err := ValidateRecordLength(recordLen); err != nil {
		return dst, err
	}

	start := len(dst)
	dst = binary.LittleEndian.AppendUint32(dst, recordLen)
	dst = append(dst, byte(recordType))
	dst = append(dst, payload...)

	crc := ComputeChecksum(dst[start+RecordHeaderSize:])
	return binary.LittleEndian.AppendUint32(dst, crc), nil
}

// DecodeFrame decodes exactly one record from data.
func DecodeFrame(data []byte) (FramedRecord, error) {
	if len(data) < RecordHeaderSize+RecordCRCSize {
		return FramedRecord{}, &ParseError{
			Kind: KindTruncated,
			Want: RecordHeaderSize + RecordCRCSize,
			Have: len(data),
			Err:  io.ErrUnexpectedEOF,
		}
	}

	recordLen := binary.LittleEndian.Uint32(data[:RecordHeaderSize])
	if err := ValidateRecordLength(recordLen); err != nil {
		return FramedRecord{}, err
	}

	wantTotal := RecordHeaderSize + int(recordLen) + RecordCRCSize
	if len(data) < wantTotal {
		return FramedRecord{}, &ParseError{
			Kind:        KindTruncated,
			DeclaredLen: recordLen,
			Want:        wantTotal,
			Have:        len(data),
			Err:         io.ErrUnexpectedEOF,
		}
	}
	if len(data) != wantTotal {
		return FramedRecord{}, &ParseError{
			Kind:        KindCorrupt,
			DeclaredLen: recordLen,
			Want:        wantTotal,
			Have:        len(data),
			Err:         ErrInvalidLength,
		}
	}

	return parseBody(data[RecordHeaderSize:], recordLen, 0)
}

// parseBody validates [type][payload][crc] for a record starting at offset.
func parseBody(body []byte, recordLen uint32, offset int64) (FramedRecord, error) {
	rawType := body[0]
	recordType := RecordType(rawType)
	if !ValidRecordType(recordType) {
		return FramedRecord{}, &ParseError{
			Kind:               KindInvalidType,
			Offset:             offset,
			SafeTruncateOffset: offset,
			DeclaredLen:        recordLen,
			RawType:            rawType,
			RecordType:         recordType,
			Err:                ErrInvalidType,
		}
	}

	rec := FramedRecord{
		Offset: offset,
		Size:   int64(RecordHeaderSize + recordLen + RecordCRCSize),
		Record: Record{
			Len:     recordLen,
			Type:    recordType,
			Payload: body[1:recordLen],
			CRC:     binary.LittleEndian.Uint32(body[recordLen : recordLen+RecordCRCSize]),
		},
	}

	if !VerifyChecksum(body[:recordLen], rec.Record.CRC) {
		return FramedRecord{}, &ParseError{
			Kind:               KindChecksumMismatch,
			Offset:             offset,
			SafeTruncateOffset: offset,
			DeclaredLen:        recordLen,
			RawType:            rawType,
			RecordType:         recordType,
			Err:                ErrChecksumMismatch,
		}
	}
	return rec, nil
}
