package errorutil

import (
	"fmt"
	"strings"
)

// Coordinates holds positional information (log file, offset, sequence number)
// attached to read-side errors.
type Coordinates struct {
	// Log is the name or path of the log file.
	Log *string

	// Offset is the byte offset within the decoded record stream.
	Offset *int64

	// Seq is the tablet sequence number of the record, when it was decoded.
	Seq *uint64
}

// FormatCoordinates renders the non-nil coordinates as "log=X at=Y seq=Z".
// Returns an empty string if all coordinates are nil.
func (c *Coordinates) FormatCoordinates() string {
	if c == nil {
		return ""
	}

	parts := make([]string, 0, 3)
	if c.Log != nil {
		parts = append(parts, "log="+*c.Log)
	}
	if c.Offset != nil {
		parts = append(parts, fmt.Sprintf("at=%d", *c.Offset))
	}
	if c.Seq != nil {
		parts = append(parts, fmt.Sprintf("seq=%d", *c.Seq))
	}
	return strings.Join(parts, " ")
}

func (c *Coordinates) String() string {
	return c.FormatCoordinates()
}

// At is shorthand for coordinates carrying a log name and offset.
func At(log string, offset int64) *Coordinates {
	return &Coordinates{Log: &log, Offset: &offset}
}

// WithSeq returns a copy of c with the sequence number set.
func (c *Coordinates) WithSeq(seq uint64) *Coordinates {
	out := Coordinates{Seq: &seq}
	if c != nil {
		out.Log, out.Offset = c.Log, c.Offset
	}
	return &out
}
