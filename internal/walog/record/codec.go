package record

import (
	"encoding/binary"
	"fmt"
)

// Helpers

func need(data []byte, at, want int, field string) error {
	if at < 0 {
		at = 0
	}
	have := len(data) - at
	if have >= want {
		return nil
	}
	return &CodecError{
		Kind:  CodecTruncated,
		Field: field,
		At:    at,
		Want:  want,
		Have:  have,
		Err:   ErrCodecTruncated,
	}
}

func u32le(data []byte, at int, field string) (uint32, error) {
	if err := need(data, at, PayloadHeaderSize, field); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(data[at : at+PayloadHeaderSize]), nil
}

func u64le(data []byte, at int, field string) (uint64, error) {
	if err := need(data, at, SeqSize, field); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(data[at : at+SeqSize]), nil
}

func rejectTrailing(data []byte, expectedLen int, field string) error {
	if len(data) == expectedLen {
		return nil
	}
	return &CodecError{
		Kind:  CodecCorrupt,
		Field: field,
		At:    expectedLen,
		Want:  expectedLen,
		Have:  len(data),
		Err:   fmt.Errorf("%w: trailing bytes", ErrCodecCorrupt),
	}
}

func tooLong(field string, limit, have int) error {
	return &CodecError{
		Kind:  CodecInvalid,
		Field: field,
		Want:  limit,
		Have:  have,
		Err:   ErrCodecInvalid,
	}
}

// str reads [len u32][bytes] at off and returns the string and the next offset.
func str(data []byte, off int, field string) (string, int, error) {
	n, err := u32le(data, off, field+"_len")
	if err != nil {
		return "", off, err
	}
	off += PayloadHeaderSize
	if n > MaxStringSize {
		e := tooLong(field+"_len", MaxStringSize, int(n)).(*CodecError)
		e.At = off - PayloadHeaderSize
		return "", off, e
	}
	if err := need(data, off, int(n), field); err != nil {
		return "", off, err
	}
	return string(data[off : off+int(n)]), off + int(n), nil
}

// optBytes reads [present u8][len u32][bytes]; an absent value decodes as nil.
func optBytes(data []byte, off int, field string) ([]byte, int, error) {
	if err := need(data, off, PresenceSize, field+"_present"); err != nil {
		return nil, off, err
	}
	present := data[off]
	off += PresenceSize
	switch present {
	case 0:
		return nil, off, nil
	case 1:
	default:
		return nil, off, &CodecError{
			Kind:  CodecCorrupt,
			Field: field + "_present",
			At:    off - PresenceSize,
			Want:  1,
			Have:  int(present),
			Err:   ErrCodecCorrupt,
		}
	}
	n, err := u32le(data, off, field+"_len")
	if err != nil {
		return nil, off, err
	}
	off += PayloadHeaderSize
	if err := need(data, off, int(n), field); err != nil {
		return nil, off, err
	}
	return data[off : off+int(n)], off + int(n), nil
}

func appendStr(dst []byte, s string, field string) ([]byte, error) {
	if len(s) > MaxStringSize {
		return dst, tooLong(field+"_len", MaxStringSize, len(s))
	}
	dst = binary.LittleEndian.AppendUint32(dst, uint32(len(s))) //nolint:gosec
	return append(dst, s...), nil
}

func appendOptBytes(dst []byte, b []byte) []byte {
	if b == nil {
		return append(dst, 0)
	}
	dst = append(dst, 1)
	dst = binary.LittleEndian.AppendUint32(dst, uint32(len(b))) //nolint:gosec
	return append(dst, b...)
}

func appendTabletHeader(dst []byte, seq uint64, tabletID uint32) []byte {
	dst = binary.LittleEndian.AppendUint64(dst, seq)
	return binary.LittleEndian.AppendUint32(dst, tabletID)
}

func tabletHeader(data []byte) (uint64, uint32, int, error) {
	seq, err := u64le(data, 0, "seq")
	if err != nil {
		return 0, 0, 0, err
	}
	tid, err := u32le(data, SeqSize, "tablet_id")
	if err != nil {
		return 0, 0, 0, err
	}
	return seq, tid, SeqSize + TabletIDSize, nil
}

// Open payloads

// EncodeOpenPayload encodes the payload for an Open record.
// Format: [session str][filename str]
func EncodeOpenPayload(sessionID, filename string) ([]byte, error) {
	data, err := appendStr(make([]byte, 0, 2*PayloadHeaderSize+len(sessionID)+len(filename)), sessionID, "session")
	if err != nil {
		return nil, err
	}
	return appendStr(data, filename, "filename")
}

// DecodeOpenPayload decodes the payload for an Open record.
func DecodeOpenPayload(data []byte) (*OpenEvent, error) {
	session, off, err := str(data, 0, "session")
	if err != nil {
		return nil, err
	}
	filename, off, err := str(data, off, "filename")
	if err != nil {
		return nil, err
	}
	if err := rejectTrailing(data, off, "payload_length"); err != nil {
		return nil, err
	}
	return &OpenEvent{SessionID: session, Filename: filename}, nil
}

// DefineTablet payloads

// EncodeDefineTabletPayload encodes the payload for a DefineTablet record.
// Format: [seq (8)][tablet_id (4)][table str][end_row opt][prev_end_row opt]
func EncodeDefineTabletPayload(seq uint64, tabletID uint32, extent Extent) ([]byte, error) {
	data := appendTabletHeader(nil, seq, tabletID)
	data, err := appendStr(data, extent.TableID, "table_id")
	if err != nil {
		return nil, err
	}
	data = appendOptBytes(data, extent.EndRow)
	return appendOptBytes(data, extent.PrevEndRow), nil
}

// DecodeDefineTabletPayload decodes the payload for a DefineTablet record.
func DecodeDefineTabletPayload(data []byte) (*DefineTabletEvent, error) {
	seq, tid, off, err := tabletHeader(data)
	if err != nil {
		return nil, err
	}
	var ext Extent
	if ext.TableID, off, err = str(data, off, "table_id"); err != nil {
		return nil, err
	}
	if ext.EndRow, off, err = optBytes(data, off, "end_row"); err != nil {
		return nil, err
	}
	if ext.PrevEndRow, off, err = optBytes(data, off, "prev_end_row"); err != nil {
		return nil, err
	}
	if err := rejectTrailing(data, off, "payload_length"); err != nil {
		return nil, err
	}
	return &DefineTabletEvent{Seq: seq, TabletID: tid, Extent: ext}, nil
}

// ManyMutations payloads

// EncodeManyMutationsPayload encodes the payload for a ManyMutations record.
// Format: [seq (8)][tablet_id (4)][count (4)]{[mutation_len (4)][mutation]}*
func EncodeManyMutationsPayload(seq uint64, tabletID uint32, mutations []Mutation) ([]byte, error) {
	data := appendTabletHeader(nil, seq, tabletID)
	data = binary.LittleEndian.AppendUint32(data, uint32(len(mutations))) //nolint:gosec

	var scratch []byte
	for i := range mutations {
		scratch = AppendMutation(scratch[:0], &mutations[i])
		data = binary.LittleEndian.AppendUint32(data, uint32(len(scratch))) //nolint:gosec
		data = append(data, scratch...)
		if len(data) > MaxRecordSize {
			return nil, tooLong("mutations", MaxRecordSize, len(data))
		}
	}
	return data, nil
}

// DecodeManyMutationsPayload decodes the payload for a ManyMutations record.
// Decoded byte fields alias data.
func DecodeManyMutationsPayload(data []byte) (*ManyMutationsEvent, error) {
	seq, tid, off, err := tabletHeader(data)
	if err != nil {
		return nil, err
	}
	count, err := u32le(data, off, "mutation_count")
	if err != nil {
		return nil, err
	}
	off += PayloadHeaderSize

	// every mutation carries at least its length prefix
	if int(count) > (len(data)-off)/PayloadHeaderSize {
		return nil, &CodecError{
			Kind:  CodecCorrupt,
			Field: "mutation_count",
			At:    off - PayloadHeaderSize,
			Want:  (len(data) - off) / PayloadHeaderSize,
			Have:  int(count),
			Err:   ErrCodecCorrupt,
		}
	}

	var muts []Mutation
	if count > 0 {
		muts = make([]Mutation, 0, count)
	}
	for i := uint32(0); i < count; i++ {
		n, err := u32le(data, off, "mutation_len")
		if err != nil {
			return nil, err
		}
		off += PayloadHeaderSize
		if err := need(data, off, int(n), "mutation"); err != nil {
			return nil, err
		}
		m, err := DecodeMutation(data[off : off+int(n)])
		if err != nil {
			if ce, ok := err.(*CodecError); ok {
				ce.At += off
			}
			return nil, err
		}
		muts = append(muts, m)
		off += int(n)
	}
	if err := rejectTrailing(data, off, "payload_length"); err != nil {
		return nil, err
	}
	return &ManyMutationsEvent{Seq: seq, TabletID: tid, Mutations: muts}, nil
}

// Compaction payloads

// EncodeCompactionStartPayload encodes the payload for a CompactionStart record.
// Format: [seq (8)][tablet_id (4)][file str]
func EncodeCompactionStartPayload(seq uint64, tabletID uint32, fileName string) ([]byte, error) {
	return appendStr(appendTabletHeader(nil, seq, tabletID), fileName, "file_name")
}

// DecodeCompactionStartPayload decodes the payload for a CompactionStart record.
func DecodeCompactionStartPayload(data []byte) (*CompactionStartEvent, error) {
	seq, tid, off, err := tabletHeader(data)
	if err != nil {
		return nil, err
	}
	file, off, err := str(data, off, "file_name")
	if err != nil {
		return nil, err
	}
	if err := rejectTrailing(data, off, "payload_length"); err != nil {
		return nil, err
	}
	return &CompactionStartEvent{Seq: seq, TabletID: tid, FileName: file}, nil
}

// EncodeCompactionFinishPayload encodes the payload for a CompactionFinish record.
// Format: [seq (8)][tablet_id (4)]
func EncodeCompactionFinishPayload(seq uint64, tabletID uint32) ([]byte, error) {
	return appendTabletHeader(make([]byte, 0, SeqSize+TabletIDSize), seq, tabletID), nil
}

// DecodeCompactionFinishPayload decodes the payload for a CompactionFinish record.
func DecodeCompactionFinishPayload(data []byte) (*CompactionFinishEvent, error) {
	seq, tid, off, err := tabletHeader(data)
	if err != nil {
		return nil, err
	}
	if err := rejectTrailing(data, off, "payload_length"); err != nil {
		return nil, err
	}
	return &CompactionFinishEvent{Seq: seq, TabletID: tid}, nil
}
