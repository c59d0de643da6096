package crypto_test

import (
	"bytes"
	"errors"
	"io"
	"testing"

	tst "github.com/julianstephens/go-utils/tests"

	"github.com/julianstephens/walog/internal/walog/crypto"
)

var plaintext = []byte("row-0001 cf:cq -> value; row-0002 cf:cq -> value")

func encrypt(t *testing.T, m crypto.Module, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := m.EncryptingWriter(&buf)
	tst.RequireNoError(t, err)
	_, err = w.Write(data)
	tst.RequireNoError(t, err)
	return buf.Bytes()
}

func decrypt(t *testing.T, m crypto.Module, data []byte) []byte {
	t.Helper()
	r, err := m.DecryptingReader(bytes.NewReader(data))
	tst.RequireNoError(t, err)
	out, err := io.ReadAll(r)
	tst.RequireNoError(t, err)
	return out
}

func TestChaCha20_RoundTrip(t *testing.T) {
	m, err := crypto.NewChaCha20([]byte("cluster secret"))
	tst.RequireNoError(t, err)

	enc := encrypt(t, m, plaintext)
	tst.AssertEqual(t, len(enc), crypto.NonceSize+crypto.SaltSize+len(plaintext), "params prefix plus ciphertext")
	tst.AssertFalse(t, bytes.Contains(enc, plaintext[:8]), "plaintext must not appear in output")

	tst.RequireDeepEqual(t, decrypt(t, m, enc), plaintext)
}

func TestChaCha20_FreshParamsPerWriter(t *testing.T) {
	m, err := crypto.NewChaCha20([]byte("cluster secret"))
	tst.RequireNoError(t, err)

	a := encrypt(t, m, plaintext)
	b := encrypt(t, m, plaintext)
	tst.AssertFalse(t, bytes.Equal(a, b), "expected distinct nonce/salt per log")
}

func TestChaCha20_WrongSecret(t *testing.T) {
	writer, err := crypto.NewChaCha20([]byte("secret-a"))
	tst.RequireNoError(t, err)
	reader, err := crypto.NewChaCha20([]byte("secret-b"))
	tst.RequireNoError(t, err)

	out := decrypt(t, reader, encrypt(t, writer, plaintext))
	tst.AssertFalse(t, bytes.Equal(out, plaintext), "wrong secret must not decrypt")
}

func TestChaCha20_ShortParams(t *testing.T) {
	m, err := crypto.NewChaCha20([]byte("secret"))
	tst.RequireNoError(t, err)

	_, err = m.DecryptingReader(bytes.NewReader([]byte{1, 2, 3}))
	var me *crypto.ModuleError
	tst.AssertTrue(t, errors.As(err, &me), "expected *crypto.ModuleError")
	tst.AssertTrue(t, errors.Is(err, io.ErrUnexpectedEOF), "expected short read")
}

func TestChaCha20_LegacyParams(t *testing.T) {
	m, err := crypto.NewChaCha20([]byte("secret"))
	tst.RequireNoError(t, err)

	enc := encrypt(t, m, plaintext)
	nonce := enc[:crypto.NonceSize]
	salt := enc[crypto.NonceSize : crypto.NonceSize+crypto.SaltSize]

	r, err := m.DecryptingReaderFromParams(bytes.NewReader(enc[crypto.NonceSize+crypto.SaltSize:]), crypto.LegacyParams(nonce, salt))
	tst.RequireNoError(t, err)
	out, err := io.ReadAll(r)
	tst.RequireNoError(t, err)
	tst.RequireDeepEqual(t, out, plaintext)

	_, err = m.DecryptingReaderFromParams(bytes.NewReader(nil), map[string]string{crypto.ParamNonce: "zz"})
	tst.AssertTrue(t, errors.Is(err, crypto.ErrBadParam), "expected malformed parameter")

	_, err = m.DecryptingReaderFromParams(bytes.NewReader(nil), map[string]string{})
	tst.AssertTrue(t, errors.Is(err, crypto.ErrMissingParam), "expected missing parameter")
}

func TestNewChaCha20_EmptySecret(t *testing.T) {
	_, err := crypto.NewChaCha20(nil)
	tst.AssertTrue(t, errors.Is(err, crypto.ErrEmptySecret), "expected empty secret error")
}

func TestNull_Passthrough(t *testing.T) {
	m := crypto.Null()
	enc := encrypt(t, m, plaintext)
	tst.RequireDeepEqual(t, enc, plaintext)
	tst.RequireDeepEqual(t, decrypt(t, m, enc), plaintext)
}

func TestRegistry(t *testing.T) {
	chacha, err := crypto.NewChaCha20([]byte("secret"))
	tst.RequireNoError(t, err)

	reg := crypto.NewRegistry(chacha)
	tst.AssertEqual(t, reg.Default().Identity(), crypto.ChaCha20Identity, "first module is the default")
	tst.RequireDeepEqual(t, reg.Identities(), []string{crypto.ChaCha20Identity, crypto.NullIdentity})

	m, err := reg.Lookup(crypto.NullIdentity)
	tst.RequireNoError(t, err)
	tst.AssertEqual(t, m.Identity(), crypto.NullIdentity, "null always registered")

	_, err = reg.Lookup("AESCryptoModule")
	tst.AssertTrue(t, errors.Is(err, crypto.ErrUnknownModule), "expected unknown module")

	tst.AssertEqual(t, crypto.NewRegistry().Default().Identity(), crypto.NullIdentity, "empty registry defaults to null")
}
