package header

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"
	"math"

	"github.com/julianstephens/walog/internal/walog/compress"
	"github.com/julianstephens/walog/internal/walog/crypto"
)

const (
	MagicV2 = "--- Log File Header (v2) ---"
	MagicV3 = "--- Log File Header (v3) ---"
	// MagicSize is shared by every versioned magic.
	MagicSize = len(MagicV3)

	// MaxLegacyParams bounds the key/value count of a V2 header.
	MaxLegacyParams = 1024

	readBufferSize = 64 * 1024
)

type Version uint8

const (
	VersionLegacy Version = iota
	VersionV2
	VersionV3
)

func (v Version) String() string {
	switch v {
	case VersionLegacy:
		return "legacy"
	case VersionV2:
		return "v2"
	case VersionV3:
		return "v3"
	default:
		return "unknown"
	}
}

// Info describes a negotiated header.
type Info struct {
	Version        Version
	CryptoIdentity string
	// Codec is nil when the payload is not compress-framed.
	Codec        compress.Codec
	LegacyParams map[string]string
}

// Compressed reports whether payload frames carry a compression codec.
func (i *Info) Compressed() bool { return i.Codec != nil }

// Write writes a V3 header: magic, module identity, the module's own
// parameters, then the codec marker when codec is non-nil. It returns the
// writer payload bytes must go through.
func Write(w io.Writer, module crypto.Module, codec compress.Codec) (io.Writer, error) {
	if module == nil {
		module = crypto.Null()
	}
	if _, err := io.WriteString(w, MagicV3); err != nil {
		return nil, &HeaderError{Kind: KindIO, Version: VersionV3, Field: "magic", Err: err}
	}
	if err := writeUTF(w, module.Identity()); err != nil {
		return nil, err
	}
	out, err := module.EncryptingWriter(w)
	if err != nil {
		return nil, &HeaderError{Kind: KindCrypto, Version: VersionV3, Field: "crypto_params", Err: err}
	}
	// the marker precedes the enciphered payload and is written in the clear
	if codec != nil {
		if _, err := w.Write(codec.Marker()); err != nil {
			return nil, &HeaderError{Kind: KindIO, Version: VersionV3, Field: "compression_marker", Err: err}
		}
	}
	return out, nil
}

// Read negotiates the header at the start of r and returns a reader yielding
// the plaintext record stream. Magics are tried newest first; a stream with no
// known magic is legacy plaintext from offset 0.
func Read(r io.Reader, reg *crypto.Registry) (io.Reader, *Info, error) {
	if reg == nil {
		reg = crypto.NewRegistry()
	}
	br, ok := r.(*bufio.Reader)
	if !ok || br.Size() < readBufferSize {
		br = bufio.NewReaderSize(r, readBufferSize)
	}

	magic, err := br.Peek(MagicSize)
	if err != nil {
		kind := KindIO
		if errors.Is(err, io.EOF) {
			kind = KindShortMagic
		}
		return nil, nil, &HeaderError{Kind: kind, Field: "magic", Want: MagicSize, Have: len(magic), Err: err}
	}

	switch string(magic) {
	case MagicV3:
		_, _ = br.Discard(MagicSize)
		return readV3(br, reg)
	case MagicV2:
		_, _ = br.Discard(MagicSize)
		return readV2(br, reg)
	}
	return br, &Info{Version: VersionLegacy, CryptoIdentity: crypto.NullIdentity}, nil
}

func readV3(br *bufio.Reader, reg *crypto.Registry) (io.Reader, *Info, error) {
	identity, err := readUTF(br, VersionV3, "crypto_identity")
	if err != nil {
		return nil, nil, err
	}
	module, err := reg.Lookup(identity)
	if err != nil {
		return nil, nil, &HeaderError{Kind: KindUnknownModule, Version: VersionV3, Field: "crypto_identity", Err: err}
	}
	dec, err := module.DecryptingReader(br)
	if err != nil {
		return nil, nil, cryptoErr(VersionV3, err)
	}

	info := &Info{Version: VersionV3, CryptoIdentity: identity}
	var plain io.Reader = dec

	// Bytes that are not a known marker belong to the payload and stay unread.
	p, err := br.Peek(compress.MarkerSize)
	switch {
	case err == nil:
		if c, ok := compress.ByMarker(p); ok {
			_, _ = br.Discard(compress.MarkerSize)
			info.Codec = c
			plain = compress.NewReader(dec, c)
		}
	case !errors.Is(err, io.EOF):
		return nil, nil, &HeaderError{Kind: KindIO, Version: VersionV3, Field: "compression_marker", Err: err}
	}
	return plain, info, nil
}

func readV2(br *bufio.Reader, reg *crypto.Registry) (io.Reader, *Info, error) {
	var raw [4]byte
	if err := readFull(br, raw[:], VersionV2, "param_count"); err != nil {
		return nil, nil, err
	}
	count := int32(binary.BigEndian.Uint32(raw[:])) //nolint:gosec
	if count < 0 || count > MaxLegacyParams {
		return nil, nil, &HeaderError{
			Kind:    KindCorrupt,
			Version: VersionV2,
			Field:   "param_count",
			Want:    MaxLegacyParams,
			Have:    int(count),
			Err:     ErrCorrupt,
		}
	}

	info := &Info{Version: VersionV2, CryptoIdentity: crypto.NullIdentity}
	if count == 0 {
		return br, info, nil
	}

	params := make(map[string]string, count)
	for i := int32(0); i < count; i++ {
		k, err := readUTF(br, VersionV2, "param_key")
		if err != nil {
			return nil, nil, err
		}
		v, err := readUTF(br, VersionV2, "param_value")
		if err != nil {
			return nil, nil, err
		}
		params[k] = v
	}
	info.LegacyParams = params

	module := reg.Default()
	legacy, ok := module.(crypto.LegacyModule)
	if !ok {
		return nil, nil, &HeaderError{Kind: KindCrypto, Version: VersionV2, Field: "crypto_params", Err: crypto.ErrNotLegacy}
	}
	dec, err := legacy.DecryptingReaderFromParams(br, params)
	if err != nil {
		return nil, nil, cryptoErr(VersionV2, err)
	}
	info.CryptoIdentity = module.Identity()
	return dec, info, nil
}

func writeUTF(w io.Writer, s string) error {
	if len(s) > math.MaxUint16 {
		return &HeaderError{Kind: KindCorrupt, Version: VersionV3, Field: "crypto_identity", Want: math.MaxUint16, Have: len(s), Err: ErrCorrupt}
	}
	buf := binary.BigEndian.AppendUint16(make([]byte, 0, 2+len(s)), uint16(len(s))) //nolint:gosec
	if _, err := w.Write(append(buf, s...)); err != nil {
		return &HeaderError{Kind: KindIO, Version: VersionV3, Field: "crypto_identity", Err: err}
	}
	return nil
}

func readUTF(br *bufio.Reader, v Version, field string) (string, error) {
	var raw [2]byte
	if err := readFull(br, raw[:], v, field+"_len"); err != nil {
		return "", err
	}
	buf := make([]byte, binary.BigEndian.Uint16(raw[:]))
	if err := readFull(br, buf, v, field); err != nil {
		return "", err
	}
	return string(buf), nil
}

func readFull(br *bufio.Reader, buf []byte, v Version, field string) error {
	n, err := io.ReadFull(br, buf)
	if err == nil {
		return nil
	}
	kind := KindIO
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		kind = KindTruncated
	}
	return &HeaderError{Kind: kind, Version: v, Field: field, Want: len(buf), Have: n, Err: err}
}

func cryptoErr(v Version, err error) error {
	kind := KindCrypto
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		kind = KindTruncated
	}
	return &HeaderError{Kind: kind, Version: v, Field: "crypto_params", Err: err}
}
