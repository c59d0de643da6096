package compress_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	tst "github.com/julianstephens/go-utils/tests"

	"github.com/julianstephens/walog/internal/walog/compress"
)

const (
	val1 = byte(0x81)
	val2 = byte(0xC0)
)

func frames(t *testing.T, c compress.Codec, chunks ...[]byte) []byte {
	t.Helper()
	var out []byte
	for _, chunk := range chunks {
		var err error
		out, err = compress.AppendFrame(out, c, chunk)
		tst.RequireNoError(t, err)
	}
	return out
}

// truncatedFrame declares more bytes than it carries.
func truncatedFrame(t *testing.T, c compress.Codec, data []byte) []byte {
	t.Helper()
	compressed, err := c.Compress(data)
	tst.RequireNoError(t, err)
	out := binary.BigEndian.AppendUint32(nil, uint32(len(compressed)+8)) //nolint:gosec
	return append(out, compressed...)
}

func snappyCodec(t *testing.T) compress.Codec {
	t.Helper()
	c, err := compress.Lookup(compress.Snappy)
	tst.RequireNoError(t, err)
	return c
}

func TestReadByte_AcrossFrames(t *testing.T) {
	c := snappyCodec(t)
	r := compress.NewReader(bytes.NewReader(frames(t, c, []byte{val1}, []byte{val2})), c)

	b, err := r.ReadByte()
	tst.RequireNoError(t, err)
	tst.AssertEqual(t, b, val1, "first byte")

	b, err = r.ReadByte()
	tst.RequireNoError(t, err)
	tst.AssertEqual(t, b, val2, "second byte")

	_, err = r.ReadByte()
	tst.AssertTrue(t, err == io.EOF, "expected io.EOF at end of stream")
}

func TestReadByte_TruncatedFrameIsEOF(t *testing.T) {
	c := snappyCodec(t)
	stream := append(frames(t, c, []byte{val1}), truncatedFrame(t, c, []byte{val2})...)
	r := compress.NewReader(bytes.NewReader(stream), c)

	b, err := r.ReadByte()
	tst.RequireNoError(t, err)
	tst.AssertEqual(t, b, val1, "byte from complete frame")

	_, err = r.ReadByte()
	tst.AssertTrue(t, err == io.EOF, "expected truncation collapsed to io.EOF")
}

func TestReadRange_StopsAtTruncation(t *testing.T) {
	c := snappyCodec(t)
	stream := append(frames(t, c, []byte{1, 2, 3}, []byte{4, 5}), truncatedFrame(t, c, []byte{6, 7})...)
	r := compress.NewReader(bytes.NewReader(stream), c)

	buf := make([]byte, 10)
	n, err := r.ReadRange(buf, 0, len(buf))
	tst.RequireNoError(t, err)
	tst.AssertEqual(t, n, 5, "bytes from complete frames")
	tst.RequireDeepEqual(t, buf[:n], []byte{1, 2, 3, 4, 5})

	n, err = r.ReadRange(buf, 0, len(buf))
	tst.AssertEqual(t, n, 0, "no bytes after truncation")
	tst.AssertTrue(t, compress.IsTruncation(err), "expected truncation error")
	tst.AssertTrue(t, errors.Is(err, io.ErrUnexpectedEOF), "expected short-read identity")

	var fe *compress.FrameError
	tst.AssertTrue(t, errors.As(err, &fe), "expected *compress.FrameError")
	tst.AssertEqual(t, fe.Kind, compress.FrameTruncated, "frame error kind")
}

func TestReadRange_HonorsOffset(t *testing.T) {
	c := snappyCodec(t)
	r := compress.NewReader(bytes.NewReader(frames(t, c, []byte{9, 8}, []byte{7})), c)

	buf := []byte{0, 0, 0, 0, 0}
	n, err := r.ReadRange(buf, 2, 3)
	tst.RequireNoError(t, err)
	tst.AssertEqual(t, n, 3, "bytes copied")
	tst.RequireDeepEqual(t, buf, []byte{0, 0, 9, 8, 7})
}

func TestReadRange_SmallReadsWithinOneFrame(t *testing.T) {
	c := snappyCodec(t)
	r := compress.NewReader(bytes.NewReader(frames(t, c, []byte("abcdef"))), c)

	buf := make([]byte, 4)
	n, err := r.ReadRange(buf, 0, 4)
	tst.RequireNoError(t, err)
	tst.AssertEqual(t, string(buf[:n]), "abcd", "first read")

	n, err = r.ReadRange(buf, 0, 4)
	tst.RequireNoError(t, err)
	tst.AssertEqual(t, string(buf[:n]), "ef", "second read stops at end of stream")

	n, err = r.ReadRange(buf, 0, 4)
	tst.AssertEqual(t, n, 0, "nothing left")
	tst.AssertTrue(t, err == io.EOF, "expected io.EOF")
}

func TestReadRange_ContractViolations(t *testing.T) {
	c := snappyCodec(t)
	r := compress.NewReader(bytes.NewReader(frames(t, c, []byte{1})), c)
	buf := make([]byte, 4)

	testCases := []struct {
		name    string
		off, n  int
		wantErr bool
	}{
		{"negative_offset", -1, 1, true},
		{"negative_length", 0, -1, true},
		{"past_end", 2, 3, true},
		{"offset_beyond_buffer", 5, 0, true},
		{"zero_length", 4, 0, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			n, err := r.ReadRange(buf, tc.off, tc.n)
			tst.AssertEqual(t, n, 0, "no bytes copied")
			if tc.wantErr {
				tst.AssertTrue(t, errors.Is(err, compress.ErrInvalidRange), "expected invalid range")
			} else {
				tst.RequireNoError(t, err)
			}
		})
	}

	b, err := r.ReadByte()
	tst.RequireNoError(t, err)
	tst.AssertEqual(t, b, byte(1), "stream untouched by rejected reads")
}

func TestReader_EmptyStream(t *testing.T) {
	c := snappyCodec(t)
	r := compress.NewReader(bytes.NewReader(nil), c)

	_, err := r.ReadByte()
	tst.AssertTrue(t, err == io.EOF, "expected io.EOF from ReadByte")

	n, err := r.Read(make([]byte, 8))
	tst.AssertEqual(t, n, 0, "no bytes")
	tst.AssertTrue(t, err == io.EOF, "expected io.EOF from Read")
}

func TestReader_PartialLengthPrefixIsTruncation(t *testing.T) {
	c := snappyCodec(t)
	stream := append(frames(t, c, []byte{val1}), 0x00, 0x00)
	r := compress.NewReader(bytes.NewReader(stream), c)

	_, err := io.ReadAll(r)
	tst.AssertTrue(t, compress.IsTruncation(err), "expected truncation error")
}

func TestReader_EmptyFramesSkipped(t *testing.T) {
	c := snappyCodec(t)
	r := compress.NewReader(bytes.NewReader(frames(t, c, []byte{}, []byte{val1}, []byte{})), c)

	got, err := io.ReadAll(r)
	tst.RequireNoError(t, err)
	tst.RequireDeepEqual(t, got, []byte{val1})
}

func TestReader_CorruptFrame(t *testing.T) {
	c := snappyCodec(t)
	garbage := []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF}
	stream := binary.BigEndian.AppendUint32(nil, uint32(len(garbage)))
	stream = append(stream, garbage...)
	r := compress.NewReader(bytes.NewReader(stream), c)

	_, err := r.ReadByte()
	tst.AssertTrue(t, errors.Is(err, compress.ErrCorrupt), "expected corrupt frame")
	tst.AssertFalse(t, err == io.EOF, "corruption is not EOF")
}

func TestReader_FrameTooLarge(t *testing.T) {
	c := snappyCodec(t)
	stream := binary.BigEndian.AppendUint32(nil, compress.MaxFrameSize+1)
	r := compress.NewReader(bytes.NewReader(stream), c)

	_, err := r.Read(make([]byte, 1))
	tst.AssertTrue(t, errors.Is(err, compress.ErrFrameTooBig), "expected oversized frame rejection")
}

func TestCodecs_RoundTrip(t *testing.T) {
	payload := bytes.Repeat([]byte("tablet-server write-ahead log "), 200)

	for _, name := range compress.Names() {
		t.Run(name, func(t *testing.T) {
			c, err := compress.Lookup(name)
			tst.RequireNoError(t, err)
			tst.AssertEqual(t, len(c.Marker()), compress.MarkerSize, "marker size")

			found, ok := compress.ByMarker(c.Marker())
			tst.AssertTrue(t, ok, "marker resolves")
			tst.AssertEqual(t, found.Name(), name, "marker resolves to its codec")

			stream := frames(t, c, payload[:100], payload[100:])
			got, err := io.ReadAll(compress.NewReader(bytes.NewReader(stream), c))
			tst.RequireNoError(t, err)
			tst.RequireDeepEqual(t, got, payload)
		})
	}
}

func TestLookup_Unknown(t *testing.T) {
	_, err := compress.Lookup("brotli")
	tst.AssertTrue(t, errors.Is(err, compress.ErrUnknownCodec), "expected unknown codec")

	_, ok := compress.ByMarker([]byte("Not A Marker!!!"))
	tst.AssertFalse(t, ok, "unknown marker")
}
