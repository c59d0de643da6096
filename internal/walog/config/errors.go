package config

import (
	"errors"
	"fmt"
)

type ConfigErrorKind int

const (
	ConfigErrorKindNotFound ConfigErrorKind = iota + 1
	ConfigErrorKindUnsupportedVersion
	ConfigErrorKindInvalid
	ConfigErrorKindEncode
	ConfigErrorKindDecode
	ConfigErrorKindWrite
	ConfigErrorKindAlreadyExists
)

var (
	ErrConfigNotFound           = errors.New("config: file not found")
	ErrConfigUnsupportedVersion = errors.New("config: unsupported version")
	ErrConfigInvalid            = errors.New("config: invalid value")
	ErrConfigEncode             = errors.New("config: unable to encode to JSON")
	ErrConfigDecode             = errors.New("config: unable to decode from JSON")
	ErrConfigWrite              = errors.New("config: unable to write to file")
	ErrConfigAlreadyExists      = errors.New("config: file already exists")
)

type ConfigError struct {
	Kind  ConfigErrorKind
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error (%v): %v", e.Kind, e.Err)
}

func (e *ConfigError) Unwrap() error {
	switch e.Kind {
	case ConfigErrorKindNotFound:
		return ErrConfigNotFound
	case ConfigErrorKindUnsupportedVersion:
		return ErrConfigUnsupportedVersion
	case ConfigErrorKindInvalid:
		return ErrConfigInvalid
	case ConfigErrorKindEncode:
		return ErrConfigEncode
	case ConfigErrorKindDecode:
		return ErrConfigDecode
	case ConfigErrorKindWrite:
		return ErrConfigWrite
	case ConfigErrorKindAlreadyExists:
		return ErrConfigAlreadyExists
	default:
		return e.Err
	}
}

// CauseErr returns the underlying error.
func (e *ConfigError) CauseErr() error { return e.Err }
