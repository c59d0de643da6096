package catalog

import (
	"errors"
	"fmt"
)

type CatalogErrorKind int

const (
	CatalogErrorKindOpen CatalogErrorKind = iota + 1
	CatalogErrorKindClosed
	CatalogErrorKindNotFound
	CatalogErrorKindExists
	CatalogErrorKindInvalid
	CatalogErrorKindEncode
	CatalogErrorKindDecode
	CatalogErrorKindRead
	CatalogErrorKindWrite
	CatalogErrorKindClose
)

var (
	ErrCatalogOpen     = errors.New("catalog: unable to open store")
	ErrCatalogClosed   = errors.New("catalog: closed")
	ErrCatalogNotFound = errors.New("catalog: entry not found")
	ErrCatalogExists   = errors.New("catalog: entry already exists")
	ErrCatalogInvalid  = errors.New("catalog: invalid entry")
	ErrCatalogEncode   = errors.New("catalog: unable to encode entry")
	ErrCatalogDecode   = errors.New("catalog: unable to decode entry")
	ErrCatalogRead     = errors.New("catalog: read failed")
	ErrCatalogWrite    = errors.New("catalog: write failed")
	ErrCatalogClose    = errors.New("catalog: close failed")
)

func (k CatalogErrorKind) String() string {
	switch k {
	case CatalogErrorKindOpen:
		return "open"
	case CatalogErrorKindClosed:
		return "closed"
	case CatalogErrorKindNotFound:
		return "not_found"
	case CatalogErrorKindExists:
		return "exists"
	case CatalogErrorKindInvalid:
		return "invalid"
	case CatalogErrorKindEncode:
		return "encode"
	case CatalogErrorKindDecode:
		return "decode"
	case CatalogErrorKindRead:
		return "read"
	case CatalogErrorKindWrite:
		return "write"
	case CatalogErrorKindClose:
		return "close"
	default:
		return "unknown"
	}
}

type CatalogError struct {
	Kind CatalogErrorKind
	Name string
	Err  error
}

func (e *CatalogError) Error() string {
	msg := fmt.Sprintf("catalog error (%v)", e.Kind)
	if e.Name != "" {
		msg += " for " + e.Name
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *CatalogError) Unwrap() error {
	switch e.Kind {
	case CatalogErrorKindOpen:
		return ErrCatalogOpen
	case CatalogErrorKindClosed:
		return ErrCatalogClosed
	case CatalogErrorKindNotFound:
		return ErrCatalogNotFound
	case CatalogErrorKindExists:
		return ErrCatalogExists
	case CatalogErrorKindInvalid:
		return ErrCatalogInvalid
	case CatalogErrorKindEncode:
		return ErrCatalogEncode
	case CatalogErrorKindDecode:
		return ErrCatalogDecode
	case CatalogErrorKindRead:
		return ErrCatalogRead
	case CatalogErrorKindWrite:
		return ErrCatalogWrite
	case CatalogErrorKindClose:
		return ErrCatalogClose
	default:
		return e.Err
	}
}

// CauseErr returns the underlying store error, if any.
func (e *CatalogError) CauseErr() error { return e.Err }
