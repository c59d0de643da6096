package compress

import (
	"bytes"
	"io"
	"sort"
	"sync"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// MarkerSize is the length of every compression marker written after the header.
const MarkerSize = 15

// Codec compresses one frame worth of bytes. Implementations are safe for concurrent use.
type Codec interface {
	Name() string
	// Marker is the MarkerSize byte tag identifying the codec in a log header.
	Marker() []byte
	Compress(src []byte) ([]byte, error)
	Decompress(src []byte) ([]byte, error)
}

const (
	Snappy = "snappy"
	Zstd   = "zstd"
	Gzip   = "gzip"
	LZ4    = "lz4"
)

// Default is the codec used when compression is enabled without naming one.
const Default = Snappy

var codecs = map[string]Codec{
	Snappy: snappyCodec{},
	Zstd:   &zstdCodec{},
	Gzip:   gzipCodec{},
	LZ4:    lz4Codec{},
}

// Lookup returns the codec registered under name.
func Lookup(name string) (Codec, error) {
	c, ok := codecs[name]
	if !ok {
		return nil, &CodecError{Codec: name, Op: "lookup", Err: ErrUnknownCodec}
	}
	return c, nil
}

// ByMarker returns the codec whose marker equals p.
func ByMarker(p []byte) (Codec, bool) {
	if len(p) != MarkerSize {
		return nil, false
	}
	for _, c := range codecs {
		if bytes.Equal(c.Marker(), p) {
			return c, true
		}
	}
	return nil, false
}

// Names lists the registered codec names in sorted order.
func Names() []string {
	names := make([]string, 0, len(codecs))
	for n := range codecs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

type snappyCodec struct{}

func (snappyCodec) Name() string   { return Snappy }
func (snappyCodec) Marker() []byte { return []byte("File Compressed") }

func (snappyCodec) Compress(src []byte) ([]byte, error) {
	return snappy.Encode(nil, src), nil
}

func (snappyCodec) Decompress(src []byte) ([]byte, error) {
	out, err := snappy.Decode(nil, src)
	if err != nil {
		return nil, &CodecError{Codec: Snappy, Op: "decompress", Err: err}
	}
	return out, nil
}

// zstdCodec shares one encoder and decoder; EncodeAll/DecodeAll are concurrency safe.
type zstdCodec struct {
	once sync.Once
	enc  *zstd.Encoder
	dec  *zstd.Decoder
	err  error
}

func (*zstdCodec) Name() string   { return Zstd }
func (*zstdCodec) Marker() []byte { return []byte("Zstd Compressed") }

func (z *zstdCodec) init() error {
	z.once.Do(func() {
		if z.enc, z.err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest)); z.err != nil {
			return
		}
		z.dec, z.err = zstd.NewReader(nil)
	})
	return z.err
}

func (z *zstdCodec) Compress(src []byte) ([]byte, error) {
	if err := z.init(); err != nil {
		return nil, &CodecError{Codec: Zstd, Op: "compress", Err: err}
	}
	return z.enc.EncodeAll(src, nil), nil
}

func (z *zstdCodec) Decompress(src []byte) ([]byte, error) {
	if err := z.init(); err != nil {
		return nil, &CodecError{Codec: Zstd, Op: "decompress", Err: err}
	}
	out, err := z.dec.DecodeAll(src, nil)
	if err != nil {
		return nil, &CodecError{Codec: Zstd, Op: "decompress", Err: err}
	}
	return out, nil
}

type gzipCodec struct{}

func (gzipCodec) Name() string   { return Gzip }
func (gzipCodec) Marker() []byte { return []byte("Gzip Compressed") }

func (gzipCodec) Compress(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(src); err != nil {
		return nil, &CodecError{Codec: Gzip, Op: "compress", Err: err}
	}
	if err := w.Close(); err != nil {
		return nil, &CodecError{Codec: Gzip, Op: "compress", Err: err}
	}
	return buf.Bytes(), nil
}

func (gzipCodec) Decompress(src []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(src))
	if err != nil {
		return nil, &CodecError{Codec: Gzip, Op: "decompress", Err: err}
	}
	defer r.Close() //nolint:errcheck
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, &CodecError{Codec: Gzip, Op: "decompress", Err: err}
	}
	return out, nil
}

type lz4Codec struct{}

func (lz4Codec) Name() string   { return LZ4 }
func (lz4Codec) Marker() []byte { return []byte("LZ4F Compressed") }

func (lz4Codec) Compress(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if _, err := w.Write(src); err != nil {
		return nil, &CodecError{Codec: LZ4, Op: "compress", Err: err}
	}
	if err := w.Close(); err != nil {
		return nil, &CodecError{Codec: LZ4, Op: "compress", Err: err}
	}
	return buf.Bytes(), nil
}

func (lz4Codec) Decompress(src []byte) ([]byte, error) {
	out, err := io.ReadAll(lz4.NewReader(bytes.NewReader(src)))
	if err != nil {
		return nil, &CodecError{Codec: LZ4, Op: "decompress", Err: err}
	}
	return out, nil
}
