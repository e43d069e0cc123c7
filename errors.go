package coroexec

import (
	"errors"
	"fmt"
	"strings"
)

// ErrContextAlreadyRunning is returned by Run when a context already has a
// consumer thread attached, or when an earlier Run call has already returned.
var ErrContextAlreadyRunning = errors.New("coroexec: context is already running")

// ErrServiceAlreadyRunning is returned by Run when a service already has a
// driver thread attached, or when an earlier Run call has already returned.
var ErrServiceAlreadyRunning = errors.New("coroexec: service is already running")

// ErrServiceClosed is returned by operations attempted against a closed
// Service.
var ErrServiceClosed = errors.New("coroexec: service is closed")

// Category identifies the origin of an ErrorCode, matching the three-way
// split of the original error taxonomy (native platform code, portable
// system code, domain-specific code).
type Category uint32

const (
	// CategoryNative holds a raw platform error (errno / GetLastError).
	CategoryNative Category = 0
	// CategorySystem holds a portable, POSIX-like error enumeration.
	CategorySystem Category = 1 << 31
	// CategoryDomain holds a code private to this module.
	CategoryDomain Category = 1<<31 | 1<<30
)

const categoryMask = uint32(CategoryNative | CategorySystem | CategoryDomain)

// Domain is a library-specific error code, analogous to ice::errc.
type Domain uint32

const (
	// DomainEOF indicates an unexpected end of stream.
	DomainEOF Domain = iota + 1
	// DomainVersion indicates a Winsock (or equivalent) version mismatch.
	DomainVersion
)

func (d Domain) String() string {
	switch d {
	case DomainEOF:
		return "eof"
	case DomainVersion:
		return "version mismatch"
	default:
		return fmt.Sprintf("domain(%d)", uint32(d))
	}
}

// ErrorCode is a tagged error code: the two high bits of the value carry the
// Category, the remainder carries the category-specific code. The zero value
// means "no error", regardless of category.
type ErrorCode struct {
	combined uint32
}

// NativeError wraps a raw platform error code (errno, GetLastError, ...).
func NativeError(code uint32) ErrorCode {
	return ErrorCode{combined: code&^categoryMask | uint32(CategoryNative)}
}

// SystemError wraps a portable code, such as one from golang.org/x/sys/unix.
func SystemError(code uint32) ErrorCode {
	return ErrorCode{combined: code&^categoryMask | uint32(CategorySystem)}
}

// DomainError wraps one of this module's own Domain codes.
func DomainError(code Domain) ErrorCode {
	return ErrorCode{combined: uint32(code)&^categoryMask | uint32(CategoryDomain)}
}

// IsZero reports whether the code represents "no error".
func (e ErrorCode) IsZero() bool { return e.Value() == 0 }

// Category returns the code's category.
func (e ErrorCode) Category() Category { return Category(e.combined & categoryMask) }

// Value returns the code with the category bits masked out.
func (e ErrorCode) Value() uint32 { return e.combined &^ categoryMask }

// Combined returns the full packed representation.
func (e ErrorCode) Combined() uint32 { return e.combined }

// Error implements the error interface. The message is lower-cased,
// trimmed, and limited to its first sentence.
func (e ErrorCode) Error() string {
	if e.IsZero() {
		return "no error"
	}
	var msg string
	switch e.Category() {
	case CategoryDomain:
		msg = Domain(e.Value()).String()
	case CategorySystem:
		msg = fmt.Sprintf("system error %d", e.Value())
	default:
		msg = fmt.Sprintf("native error %d", e.Value())
	}
	return firstSentence(msg)
}

func firstSentence(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if i := strings.IndexByte(s, '.'); i >= 0 {
		s = s[:i]
	}
	return s
}

// PanicError wraps a recovered panic value, surfaced through the logging
// channel rather than propagated, matching the "terminal coroutine fault"
// handling described for Task and Sync.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("coroexec: task panicked: %v", e.Value)
}

// Unwrap allows errors.Is/errors.As to see through to an underlying error
// panic value.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
