package storage

type SyncKind uint8

const (
	SyncNone SyncKind = iota
	SyncFlush
	SyncStrict
)

func (k SyncKind) String() string {
	switch k {
	case SyncFlush:
		return "flush"
	case SyncStrict:
		return "sync"
	default:
		return "none"
	}
}

// Durability is the sync primitive negotiated for a target.
type Durability struct {
	Kind SyncKind
	fn   func() error
}

// Sync invokes the negotiated primitive.
func (d Durability) Sync() error {
	if d.fn == nil {
		return ErrNoDurability
	}
	return d.fn()
}

// NegotiateSync picks the strongest primitive t offers, preferring Sync over Flush.
func NegotiateSync(t Target) (Durability, error) {
	if s, ok := t.(Syncer); ok {
		return Durability{Kind: SyncStrict, fn: s.Sync}, nil
	}
	if f, ok := t.(Flusher); ok {
		return Durability{Kind: SyncFlush, fn: f.Flush}, nil
	}
	return Durability{}, ErrNoDurability
}
