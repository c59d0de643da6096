package header_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	tst "github.com/julianstephens/go-utils/tests"

	"github.com/julianstephens/walog/internal/walog/compress"
	"github.com/julianstephens/walog/internal/walog/crypto"
	"github.com/julianstephens/walog/internal/walog/header"
)

var payload = []byte("0123456789 record bytes follow the header 0123456789")

func writeLog(t *testing.T, m crypto.Module, c compress.Codec, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	out, err := header.Write(&buf, m, c)
	tst.RequireNoError(t, err)

	if c != nil {
		data, err = compress.AppendFrame(nil, c, data)
		tst.RequireNoError(t, err)
	}
	_, err = out.Write(data)
	tst.RequireNoError(t, err)
	return buf.Bytes()
}

func readAll(t *testing.T, raw []byte, reg *crypto.Registry) ([]byte, *header.Info) {
	t.Helper()
	plain, info, err := header.Read(bytes.NewReader(raw), reg)
	tst.RequireNoError(t, err)
	out, err := io.ReadAll(plain)
	tst.RequireNoError(t, err)
	return out, info
}

func utf(s string) []byte {
	return append(binary.BigEndian.AppendUint16(nil, uint16(len(s))), s...) //nolint:gosec
}

func TestV3_PlainRoundTrip(t *testing.T) {
	raw := writeLog(t, crypto.Null(), nil, payload)

	expected := append([]byte(header.MagicV3), utf(crypto.NullIdentity)...)
	tst.RequireDeepEqual(t, raw[:len(expected)], expected)

	out, info := readAll(t, raw, nil)
	tst.RequireDeepEqual(t, out, payload)
	tst.AssertEqual(t, info.Version, header.VersionV3, "version")
	tst.AssertEqual(t, info.CryptoIdentity, crypto.NullIdentity, "identity")
	tst.AssertFalse(t, info.Compressed(), "no codec")
}

func TestV3_CompressionOnly(t *testing.T) {
	c, err := compress.Lookup(compress.Snappy)
	tst.RequireNoError(t, err)

	raw := writeLog(t, crypto.Null(), c, payload)
	markerAt := header.MagicSize + 2 + len(crypto.NullIdentity)
	tst.AssertEqual(t, string(raw[markerAt:markerAt+compress.MarkerSize]), "File Compressed", "marker follows identity")

	out, info := readAll(t, raw, nil)
	tst.RequireDeepEqual(t, out, payload)
	tst.AssertTrue(t, info.Compressed(), "codec negotiated")
	tst.AssertEqual(t, info.Codec.Name(), compress.Snappy, "codec")
}

func TestV3_EncryptedAndCompressed(t *testing.T) {
	m, err := crypto.NewChaCha20([]byte("secret"))
	tst.RequireNoError(t, err)
	c, err := compress.Lookup(compress.Zstd)
	tst.RequireNoError(t, err)

	raw := writeLog(t, m, c, payload)
	markerAt := header.MagicSize + 2 + len(crypto.ChaCha20Identity) + crypto.NonceSize + crypto.SaltSize
	tst.AssertEqual(t, string(raw[markerAt:markerAt+compress.MarkerSize]), "Zstd Compressed", "marker written in the clear")

	out, info := readAll(t, raw, crypto.NewRegistry(m))
	tst.RequireDeepEqual(t, out, payload)
	tst.AssertEqual(t, info.CryptoIdentity, crypto.ChaCha20Identity, "identity")
	tst.AssertEqual(t, info.Codec.Name(), compress.Zstd, "codec")
}

func TestV3_NonMarkerBytesArePayload(t *testing.T) {
	for _, data := range [][]byte{[]byte("Not a marker at all"), []byte("abc"), {}} {
		raw := writeLog(t, crypto.Null(), nil, data)
		out, info := readAll(t, raw, nil)
		tst.RequireDeepEqual(t, out, data)
		tst.AssertFalse(t, info.Compressed(), "no codec for "+string(data))
	}
}

func TestV3_UnknownModule(t *testing.T) {
	raw := append([]byte(header.MagicV3), utf("AESCryptoModule")...)
	_, _, err := header.Read(bytes.NewReader(raw), nil)
	tst.AssertTrue(t, errors.Is(err, header.ErrUnknownModule), "expected unknown module")
	tst.AssertTrue(t, errors.Is(err, crypto.ErrUnknownModule), "expected registry cause")
}

func TestV3_TruncatedIdentity(t *testing.T) {
	raw := append([]byte(header.MagicV3), utf(crypto.NullIdentity)...)
	_, _, err := header.Read(bytes.NewReader(raw[:len(raw)-3]), nil)
	tst.AssertTrue(t, errors.Is(err, header.ErrTruncated), "expected truncated header")
}

func TestV3_TruncatedModuleParams(t *testing.T) {
	m, err := crypto.NewChaCha20([]byte("secret"))
	tst.RequireNoError(t, err)

	raw := append([]byte(header.MagicV3), utf(crypto.ChaCha20Identity)...)
	raw = append(raw, 1, 2, 3)
	_, _, err = header.Read(bytes.NewReader(raw), crypto.NewRegistry(m))
	tst.AssertTrue(t, errors.Is(err, header.ErrTruncated), "expected truncated params")
}

func TestV2_EmptyParamsIsPlaintext(t *testing.T) {
	raw := append([]byte(header.MagicV2), 0, 0, 0, 0)
	raw = append(raw, payload...)

	out, info := readAll(t, raw, nil)
	tst.RequireDeepEqual(t, out, payload)
	tst.AssertEqual(t, info.Version, header.VersionV2, "version")
}

func TestV2_LegacyCryptoParams(t *testing.T) {
	m, err := crypto.NewChaCha20([]byte("secret"))
	tst.RequireNoError(t, err)

	var enc bytes.Buffer
	w, err := m.EncryptingWriter(&enc)
	tst.RequireNoError(t, err)
	_, err = w.Write(payload)
	tst.RequireNoError(t, err)
	params := crypto.LegacyParams(enc.Bytes()[:crypto.NonceSize], enc.Bytes()[crypto.NonceSize:crypto.NonceSize+crypto.SaltSize])

	raw := append([]byte(header.MagicV2), 0, 0, 0, 2)
	raw = append(raw, utf(crypto.ParamNonce)...)
	raw = append(raw, utf(params[crypto.ParamNonce])...)
	raw = append(raw, utf(crypto.ParamSalt)...)
	raw = append(raw, utf(params[crypto.ParamSalt])...)
	raw = append(raw, enc.Bytes()[crypto.NonceSize+crypto.SaltSize:]...)

	out, info := readAll(t, raw, crypto.NewRegistry(m))
	tst.RequireDeepEqual(t, out, payload)
	tst.AssertEqual(t, info.CryptoIdentity, crypto.ChaCha20Identity, "legacy module")
	tst.RequireDeepEqual(t, info.LegacyParams, params)
}

func TestV2_NegativeCount(t *testing.T) {
	raw := append([]byte(header.MagicV2), 0xFF, 0xFF, 0xFF, 0xFF)
	_, _, err := header.Read(bytes.NewReader(raw), nil)
	tst.AssertTrue(t, errors.Is(err, header.ErrCorrupt), "expected corrupt count")
}

func TestLegacy_NoMagicIsPlaintext(t *testing.T) {
	raw := []byte("an unversioned log written before headers existed")
	out, info := readAll(t, raw, nil)
	tst.RequireDeepEqual(t, out, raw)
	tst.AssertEqual(t, info.Version, header.VersionLegacy, "version")
}

func TestShortMagicIsFatal(t *testing.T) {
	_, _, err := header.Read(bytes.NewReader([]byte("short")), nil)
	tst.AssertTrue(t, errors.Is(err, header.ErrShortMagic), "expected short magic error")

	var he *header.HeaderError
	tst.AssertTrue(t, errors.As(err, &he), "expected *header.HeaderError")
	tst.AssertEqual(t, he.Have, 5, "bytes available")
}
