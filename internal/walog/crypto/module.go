package crypto

import (
	"io"
	"sort"
)

// Module enciphers a log payload. The module writes any parameters it needs
// (nonces, salts) at the start of the payload and reads them back when decrypting.
type Module interface {
	// Identity is written into the log header and used to resolve the module on read.
	Identity() string
	// EncryptingWriter writes the module parameters to w and returns a writer
	// that enciphers onto w.
	EncryptingWriter(w io.Writer) (io.Writer, error)
	// DecryptingReader reads the module parameters from r and returns a reader
	// yielding plaintext.
	DecryptingReader(r io.Reader) (io.Reader, error)
}

// LegacyModule can rebuild a decryptor from the key/value parameters stored in a V2 header.
type LegacyModule interface {
	Module
	DecryptingReaderFromParams(r io.Reader, params map[string]string) (io.Reader, error)
}

// Registry resolves modules by identity.
type Registry struct {
	modules map[string]Module
	def     Module
}

// NewRegistry registers the given modules. The first module is the default used
// for legacy headers; the null module is always available.
func NewRegistry(modules ...Module) *Registry {
	r := &Registry{modules: map[string]Module{NullIdentity: Null()}}
	for _, m := range modules {
		r.modules[m.Identity()] = m
		if r.def == nil {
			r.def = m
		}
	}
	if r.def == nil {
		r.def = Null()
	}
	return r
}

// Lookup returns the module registered under identity.
func (r *Registry) Lookup(identity string) (Module, error) {
	m, ok := r.modules[identity]
	if !ok {
		return nil, &ModuleError{Identity: identity, Op: "lookup", Err: ErrUnknownModule}
	}
	return m, nil
}

// Default returns the module used to reconstruct legacy V2 parameters.
func (r *Registry) Default() Module { return r.def }

// Identities lists the registered identities in sorted order.
func (r *Registry) Identities() []string {
	ids := make([]string, 0, len(r.modules))
	for id := range r.modules {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
