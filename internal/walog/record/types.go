package record

type RecordType uint8

const (
	RecordTypeUnknown RecordType = iota
	RecordTypeOpen
	RecordTypeDefineTablet
	RecordTypeManyMutations
	RecordTypeCompactionStart
	RecordTypeCompactionFinish
)

func (t RecordType) String() string {
	switch t {
	case RecordTypeOpen:
		return "open"
	case RecordTypeDefineTablet:
		return "define_tablet"
	case RecordTypeManyMutations:
		return "many_mutations"
	case RecordTypeCompactionStart:
		return "compaction_start"
	case RecordTypeCompactionFinish:
		return "compaction_finish"
	default:
		return "unknown"
	}
}

// ValidRecordType reports whether t is one of the known record types.
func ValidRecordType(t RecordType) bool {
	return t > RecordTypeUnknown && t <= RecordTypeCompactionFinish
}

type Record struct {
	Type    RecordType `json:"type"`
	Payload []byte     `json:"payload"`
	CRC     uint32     `json:"crc"`
	// The length of the record type + payload (excluding CRC)
	Len uint32 `json:"len"`
}

type FramedRecord struct {
	Record Record `json:"record"`
	Size   int64  `json:"size"`
	Offset int64  `json:"offset"`
}

// Extent identifies a tablet by table and row range. A nil row bound is open.
type Extent struct {
	TableID    string `json:"table_id"`
	EndRow     []byte `json:"end_row,omitempty"`
	PrevEndRow []byte `json:"prev_end_row,omitempty"`
}

type ColumnUpdate struct {
	Family       []byte `json:"family"`
	Qualifier    []byte `json:"qualifier"`
	Visibility   []byte `json:"visibility,omitempty"`
	Timestamp    int64  `json:"timestamp,omitempty"`
	HasTimestamp bool   `json:"has_timestamp,omitempty"`
	Deleted      bool   `json:"deleted,omitempty"`
	Value        []byte `json:"value,omitempty"`
}

type Mutation struct {
	Row     []byte         `json:"row"`
	Updates []ColumnUpdate `json:"updates"`
}

// TabletMutations groups the mutations destined for one tablet under one sequence number.
type TabletMutations struct {
	TabletID  uint32     `json:"tablet_id"`
	Seq       uint64     `json:"seq"`
	Mutations []Mutation `json:"mutations"`
}

// Event is a decoded log record payload.
type Event interface {
	Type() RecordType
}

type OpenEvent struct {
	SessionID string `json:"session_id"`
	Filename  string `json:"filename"`
}

type DefineTabletEvent struct {
	Seq      uint64 `json:"seq"`
	TabletID uint32 `json:"tablet_id"`
	Extent   Extent `json:"extent"`
}

type ManyMutationsEvent struct {
	Seq       uint64     `json:"seq"`
	TabletID  uint32     `json:"tablet_id"`
	Mutations []Mutation `json:"mutations"`
}

type CompactionStartEvent struct {
	Seq      uint64 `json:"seq"`
	TabletID uint32 `json:"tablet_id"`
	FileName string `json:"file_name"`
}

type CompactionFinishEvent struct {
	Seq      uint64 `json:"seq"`
	TabletID uint32 `json:"tablet_id"`
}

func (*OpenEvent) Type() RecordType             { return RecordTypeOpen }
func (*DefineTabletEvent) Type() RecordType     { return RecordTypeDefineTablet }
func (*ManyMutationsEvent) Type() RecordType    { return RecordTypeManyMutations }
func (*CompactionStartEvent) Type() RecordType  { return RecordTypeCompactionStart }
func (*CompactionFinishEvent) Type() RecordType { return RecordTypeCompactionFinish }
