package model

import "fmt"

// ParseError means the contract artifact itself is malformed. It aborts the
// run; the offending path and byte offset are kept for the caller.
type ParseError struct {
	Path   string
	Offset int
	Cause  error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parse %s at offset %d: %v", e.Path, e.Offset, e.Cause)
	}
	return fmt.Sprintf("parse %s at offset %d", e.Path, e.Offset)
}

func (e *ParseError) Unwrap() error { return e.Cause }

// ConfigError means the configuration or project layout is unusable. It
// aborts before any analysis begins.
type ConfigError struct {
	Reason string
	Cause  error
}

func (e *ConfigError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("config: %s: %v", e.Reason, e.Cause)
	}
	return "config: " + e.Reason
}

func (e *ConfigError) Unwrap() error { return e.Cause }

// IOError means an artifact could not be read.
type IOError struct {
	Path  string
	Cause error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Cause)
}

func (e *IOError) Unwrap() error { return e.Cause }
