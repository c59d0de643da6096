package record

const (
	RecordHeaderSize     = 4                // Length of the record length field
	RecordTypeHeaderSize = 1                // Length of the record type field
	RecordCRCSize        = 4                // Length of the CRC32 field
	MaxStringSize        = 64 * 1024        // 64 KB, session ids, file names, table ids
	MaxRecordSize        = 64 * 1024 * 1024 // 64 MB
	SeqSize              = 8                // Size of the sequence number field (uint64)
	TabletIDSize         = 4                // Size of the tablet id field (uint32)
	PayloadHeaderSize    = 4                // Size of a length prefix inside a payload
	PresenceSize         = 1                // Size of an optional-field presence flag
)

// ValidateRecordLength checks if the given record length is within valid bounds.
func ValidateRecordLength(length uint32) error {
	if length < 1 {
		return &ParseError{
			Kind:        KindInvalidLength,
			DeclaredLen: length,
			Err:         ErrInvalidLength,
		}
	}

	if length > MaxRecordSize {
		return &ParseError{
			Kind:        KindTooLarge,
			DeclaredLen: length,
			Want:        MaxRecordSize,
			Have:        int(length),
			Err:         ErrTooLarge,
		}
	}
	return nil
}

// ValidateRecordFrame checks the payload against the minimum size of its record type.
func ValidateRecordFrame(recordType RecordType, payload []byte) error {
	if err := ValidateRecordLength(uint32(len(payload)) + 1); err != nil { //nolint:gosec
		return err
	}

	var minLen int
	exact := false
	switch recordType {
	case RecordTypeOpen:
		minLen = 2 * PayloadHeaderSize
	case RecordTypeDefineTablet:
		minLen = SeqSize + TabletIDSize + PayloadHeaderSize + 2*PresenceSize
	case RecordTypeManyMutations:
		minLen = SeqSize + TabletIDSize + PayloadHeaderSize
	case RecordTypeCompactionStart:
		minLen = SeqSize + TabletIDSize + PayloadHeaderSize
	case RecordTypeCompactionFinish:
		minLen = SeqSize + TabletIDSize
		exact = true
	default:
		return &ParseError{
			Kind:       KindInvalidType,
			RecordType: recordType,
			Err:        ErrInvalidType,
		}
	}

	if len(payload) < minLen || (exact && len(payload) != minLen) {
		return &ParseError{
			Kind:       KindInvalidLength,
			RecordType: recordType,
			Want:       minLen,
			Have:       len(payload),
			Err:        ErrInvalidLength,
		}
	}
	return nil
}

func EncodedRecordSize(payloadLen int) int64 {
	return RecordHeaderSize + RecordTypeHeaderSize + int64(payloadLen) + RecordCRCSize
}
