package crypto

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20"
	"golang.org/x/crypto/hkdf"
)

const (
	ChaCha20Identity = "ChaCha20CryptoModule"

	NonceSize = chacha20.NonceSize
	SaltSize  = 16
	// ParamNonce and ParamSalt are the V2 header keys carrying hex encoded parameters.
	ParamNonce = "crypto.cipher.nonce"
	ParamSalt  = "crypto.cipher.salt"

	hkdfInfo = "walog"
)

// ChaCha20Module enciphers the payload with a ChaCha20 key stream. Every log
// gets a fresh nonce and salt; the key is derived from the shared secret with HKDF-SHA256.
type ChaCha20Module struct {
	secret []byte
	rand   io.Reader
}

// NewChaCha20 builds the module from a shared secret.
func NewChaCha20(secret []byte) (*ChaCha20Module, error) {
	if len(secret) == 0 {
		return nil, &ModuleError{Identity: ChaCha20Identity, Op: "init", Err: ErrEmptySecret}
	}
	return &ChaCha20Module{secret: append([]byte(nil), secret...), rand: rand.Reader}, nil
}

func (m *ChaCha20Module) Identity() string { return ChaCha20Identity }

func (m *ChaCha20Module) EncryptingWriter(w io.Writer) (io.Writer, error) {
	params := make([]byte, NonceSize+SaltSize)
	if _, err := io.ReadFull(m.rand, params); err != nil {
		return nil, &ModuleError{Identity: ChaCha20Identity, Op: "generate params", Err: err}
	}
	if _, err := w.Write(params); err != nil {
		return nil, &ModuleError{Identity: ChaCha20Identity, Op: "write params", Err: err}
	}
	stream, err := m.stream(params[:NonceSize], params[NonceSize:])
	if err != nil {
		return nil, err
	}
	return &cipher.StreamWriter{S: stream, W: w}, nil
}

func (m *ChaCha20Module) DecryptingReader(r io.Reader) (io.Reader, error) {
	params := make([]byte, NonceSize+SaltSize)
	if _, err := io.ReadFull(r, params); err != nil {
		return nil, &ModuleError{Identity: ChaCha20Identity, Op: "read params", Err: err}
	}
	stream, err := m.stream(params[:NonceSize], params[NonceSize:])
	if err != nil {
		return nil, err
	}
	return &cipher.StreamReader{S: stream, R: r}, nil
}

// DecryptingReaderFromParams rebuilds the decryptor from V2 header parameters.
func (m *ChaCha20Module) DecryptingReaderFromParams(r io.Reader, params map[string]string) (io.Reader, error) {
	nonce, err := hexParam(params, ParamNonce, NonceSize)
	if err != nil {
		return nil, err
	}
	salt, err := hexParam(params, ParamSalt, SaltSize)
	if err != nil {
		return nil, err
	}
	stream, err := m.stream(nonce, salt)
	if err != nil {
		return nil, err
	}
	return &cipher.StreamReader{S: stream, R: r}, nil
}

// LegacyParams returns the V2 header parameters describing nonce and salt.
func LegacyParams(nonce, salt []byte) map[string]string {
	return map[string]string{
		ParamNonce: hex.EncodeToString(nonce),
		ParamSalt:  hex.EncodeToString(salt),
	}
}

func (m *ChaCha20Module) stream(nonce, salt []byte) (*chacha20.Cipher, error) {
	key := make([]byte, chacha20.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, m.secret, salt, []byte(hkdfInfo)), key); err != nil {
		return nil, &ModuleError{Identity: ChaCha20Identity, Op: "derive key", Err: err}
	}
	c, err := chacha20.NewUnauthenticatedCipher(key, nonce)
	if err != nil {
		return nil, &ModuleError{Identity: ChaCha20Identity, Op: "init cipher", Err: err}
	}
	return c, nil
}

func hexParam(params map[string]string, key string, size int) ([]byte, error) {
	raw, ok := params[key]
	if !ok {
		return nil, &ModuleError{Identity: ChaCha20Identity, Op: "legacy params", Err: fmt.Errorf("%w: %s", ErrMissingParam, key)}
	}
	b, err := hex.DecodeString(raw)
	if err != nil || len(b) != size {
		return nil, &ModuleError{Identity: ChaCha20Identity, Op: "legacy params", Err: fmt.Errorf("%w: %s", ErrBadParam, key)}
	}
	return b, nil
}
