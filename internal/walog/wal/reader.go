package wal

import (
	"encoding/binary"
	"io"

	"github.com/julianstephens/walog/internal/walog/crypto"
	"github.com/julianstephens/walog/internal/walog/errorutil"
	"github.com/julianstephens/walog/internal/walog/header"
	"github.com/julianstephens/walog/internal/walog/record"
	"github.com/julianstephens/walog/internal/walog/storage"
)

// Entry is one decoded record.
type Entry struct {
	// Offset is the record's position in the decoded (plaintext, decompressed) stream.
	Offset int64
	Type   record.RecordType
	Event  record.Event
}

// LogReader reads a log file back record by record.
type LogReader struct {
	name   string
	rc     io.Closer
	info   *header.Info
	frames *record.FrameReader
	err    error
}

// OpenReader opens path through volumes and negotiates its header.
func OpenReader(volumes storage.VolumeManager, path string, reg *crypto.Registry) (*LogReader, error) {
	rc, err := volumes.Open(path)
	if err != nil {
		return nil, &ReadError{Coordinates: &errorutil.Coordinates{Log: &path}, Err: err}
	}
	lr, err := newLogReader(rc, reg, path)
	if err != nil {
		_ = rc.Close()
		return nil, err
	}
	lr.rc = rc
	return lr, nil
}

// NewReader reads a log from r. The caller keeps ownership of r.
func NewReader(r io.Reader, reg *crypto.Registry) (*LogReader, error) {
	return newLogReader(r, reg, "")
}

func newLogReader(r io.Reader, reg *crypto.Registry, name string) (*LogReader, error) {
	payload, info, err := header.Read(r, reg)
	if err != nil {
		return nil, &ReadError{Coordinates: coordinates(name, 0), Err: err}
	}
	return &LogReader{name: name, info: info, frames: record.NewFrameReader(payload)}, nil
}

// Header describes the negotiated header.
func (r *LogReader) Header() *header.Info { return r.info }

// Next returns the next record. The end of a log that stops on a record
// boundary is io.EOF; a log cut inside a record or frame returns a
// *ReadError matching record.ErrTruncated. Errors are sticky.
func (r *LogReader) Next() (Entry, error) {
	if r.err != nil {
		return Entry{}, r.err
	}

	fr, err := r.frames.Next()
	if err != nil {
		if record.IsCleanEOF(err) {
			r.err = io.EOF
			return Entry{}, io.EOF
		}
		offset := r.frames.Offset()
		if pe, ok := record.AsParseError(err); ok {
			offset = pe.Offset
		}
		r.err = &ReadError{Coordinates: coordinates(r.name, offset), Err: err}
		return Entry{}, r.err
	}

	ev, err := record.DecodeEvent(fr.Record)
	if err != nil {
		c := coordinates(r.name, fr.Offset)
		if fr.Record.Type != record.RecordTypeOpen && len(fr.Record.Payload) >= record.SeqSize {
			c = c.WithSeq(binary.LittleEndian.Uint64(fr.Record.Payload))
		}
		r.err = &ReadError{Coordinates: c, Err: err}
		return Entry{}, r.err
	}
	return Entry{Offset: fr.Offset, Type: fr.Record.Type, Event: ev}, nil
}

// ReadAll reads until the end of the log. On failure the entries read so far
// are returned with the error.
func (r *LogReader) ReadAll() ([]Entry, error) {
	var out []Entry
	for {
		e, err := r.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, e)
	}
}

// Close releases the file opened by OpenReader.
func (r *LogReader) Close() error {
	if r.rc == nil {
		return nil
	}
	rc := r.rc
	r.rc = nil
	return rc.Close()
}

func coordinates(name string, offset int64) *errorutil.Coordinates {
	if name == "" {
		return &errorutil.Coordinates{Offset: &offset}
	}
	return errorutil.At(name, offset)
}
