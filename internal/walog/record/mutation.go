package record

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Mutation wire fields.
const (
	fieldRow    protowire.Number = 1
	fieldUpdate protowire.Number = 2
)

// ColumnUpdate wire fields.
const (
	fieldFamily       protowire.Number = 1
	fieldQualifier    protowire.Number = 2
	fieldVisibility   protowire.Number = 3
	fieldTimestamp    protowire.Number = 4
	fieldHasTimestamp protowire.Number = 5
	fieldDeleted      protowire.Number = 6
	fieldValue        protowire.Number = 7
)

// AppendMutation appends the protobuf wire encoding of m to b.
// Nil byte fields are omitted so they decode back to nil.
func AppendMutation(b []byte, m *Mutation) []byte {
	b = appendBytesField(b, fieldRow, m.Row)
	var ub []byte
	for i := range m.Updates {
		ub = appendColumnUpdate(ub[:0], &m.Updates[i])
		b = protowire.AppendTag(b, fieldUpdate, protowire.BytesType)
		b = protowire.AppendBytes(b, ub)
	}
	return b
}

func appendColumnUpdate(b []byte, u *ColumnUpdate) []byte {
	b = appendBytesField(b, fieldFamily, u.Family)
	b = appendBytesField(b, fieldQualifier, u.Qualifier)
	b = appendBytesField(b, fieldVisibility, u.Visibility)
	if u.Timestamp != 0 {
		b = protowire.AppendTag(b, fieldTimestamp, protowire.VarintType)
		b = protowire.AppendVarint(b, protowire.EncodeZigZag(u.Timestamp))
	}
	if u.HasTimestamp {
		b = protowire.AppendTag(b, fieldHasTimestamp, protowire.VarintType)
		b = protowire.AppendVarint(b, protowire.EncodeBool(true))
	}
	if u.Deleted {
		b = protowire.AppendTag(b, fieldDeleted, protowire.VarintType)
		b = protowire.AppendVarint(b, protowire.EncodeBool(true))
	}
	return appendBytesField(b, fieldValue, u.Value)
}

func appendBytesField(b []byte, num protowire.Number, v []byte) []byte {
	if v == nil {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

// DecodeMutation parses a protobuf wire encoded mutation. Unknown fields are skipped.
func DecodeMutation(b []byte) (Mutation, error) {
	var m Mutation
	err := walkFields(b, "mutation", func(num protowire.Number, typ protowire.Type, v []byte, at int) (int, error) {
		switch {
		case num == fieldRow && typ == protowire.BytesType:
			row, n := protowire.ConsumeBytes(v)
			if n < 0 {
				return 0, wireErr("row", at, n)
			}
			m.Row = row
			return n, nil
		case num == fieldUpdate && typ == protowire.BytesType:
			raw, n := protowire.ConsumeBytes(v)
			if n < 0 {
				return 0, wireErr("update", at, n)
			}
			u, err := decodeColumnUpdate(raw, at)
			if err != nil {
				return 0, err
			}
			m.Updates = append(m.Updates, u)
			return n, nil
		}
		return -1, nil
	})
	if err != nil {
		return Mutation{}, err
	}
	return m, nil
}

func decodeColumnUpdate(b []byte, base int) (ColumnUpdate, error) {
	var u ColumnUpdate
	err := walkFields(b, "update", func(num protowire.Number, typ protowire.Type, v []byte, at int) (int, error) {
		at += base
		if typ == protowire.BytesType {
			var dst *[]byte
			switch num {
			case fieldFamily:
				dst = &u.Family
			case fieldQualifier:
				dst = &u.Qualifier
			case fieldVisibility:
				dst = &u.Visibility
			case fieldValue:
				dst = &u.Value
			default:
				return -1, nil
			}
			val, n := protowire.ConsumeBytes(v)
			if n < 0 {
				return 0, wireErr("update", at, n)
			}
			*dst = val
			return n, nil
		}
		if typ != protowire.VarintType {
			return -1, nil
		}
		x, n := protowire.ConsumeVarint(v)
		if n < 0 {
			return 0, wireErr("update", at, n)
		}
		switch num {
		case fieldTimestamp:
			u.Timestamp = protowire.DecodeZigZag(x)
		case fieldHasTimestamp:
			u.HasTimestamp = protowire.DecodeBool(x)
		case fieldDeleted:
			u.Deleted = protowire.DecodeBool(x)
		}
		return n, nil
	})
	if err != nil {
		return ColumnUpdate{}, err
	}
	return u, nil
}

// walkFields iterates the tagged fields of b. fn returns the number of value
// bytes it consumed, or -1 to have the field skipped.
func walkFields(b []byte, field string, fn func(protowire.Number, protowire.Type, []byte, int) (int, error)) error {
	at := 0
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return wireErr(field+"_tag", at, n)
		}
		b, at = b[n:], at+n

		n, err := fn(num, typ, b, at)
		if err != nil {
			return err
		}
		if n < 0 {
			if n = protowire.ConsumeFieldValue(num, typ, b); n < 0 {
				return wireErr(field, at, n)
			}
		}
		b, at = b[n:], at+n
	}
	return nil
}

func wireErr(field string, at, code int) error {
	return &CodecError{
		Kind:  CodecCorrupt,
		Field: field,
		At:    at,
		Err:   fmt.Errorf("%w: %v", ErrCodecCorrupt, protowire.ParseError(code)),
	}
}
