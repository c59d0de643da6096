package record

// EncodePayload serializes the payload of ev without framing.
func EncodePayload(ev Event) ([]byte, error) {
	switch e := ev.(type) {
	case *OpenEvent:
		return EncodeOpenPayload(e.SessionID, e.Filename)
	case *DefineTabletEvent:
		return EncodeDefineTabletPayload(e.Seq, e.TabletID, e.Extent)
	case *ManyMutationsEvent:
		return EncodeManyMutationsPayload(e.Seq, e.TabletID, e.Mutations)
	case *CompactionStartEvent:
		return EncodeCompactionStartPayload(e.Seq, e.TabletID, e.FileName)
	case *CompactionFinishEvent:
		return EncodeCompactionFinishPayload(e.Seq, e.TabletID)
	default:
		return nil, &CodecError{Kind: CodecInvalid, Field: "event", Err: ErrCodecInvalid}
	}
}

// AppendEvent appends the framed encoding of ev to dst.
func AppendEvent(dst []byte, ev Event) ([]byte, error) {
	payload, err := EncodePayload(ev)
	if err != nil {
		return dst, err
	}
	return AppendFrame(dst, ev.Type(), payload)
}

// DecodeEvent decodes the payload of a verified record into its event.
func DecodeEvent(rec Record) (Event, error) {
	if err := ValidateRecordFrame(rec.Type, rec.Payload); err != nil {
		return nil, err
	}
	switch rec.Type {
	case RecordTypeOpen:
		return event(DecodeOpenPayload(rec.Payload))
	case RecordTypeDefineTablet:
		return event(DecodeDefineTabletPayload(rec.Payload))
	case RecordTypeManyMutations:
		return event(DecodeManyMutationsPayload(rec.Payload))
	case RecordTypeCompactionStart:
		return event(DecodeCompactionStartPayload(rec.Payload))
	default:
		return event(DecodeCompactionFinishPayload(rec.Payload))
	}
}

func event[T Event](ev T, err error) (Event, error) {
	if err != nil {
		return nil, err
	}
	return ev, nil
}
