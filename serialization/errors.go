// Package serialization implements the binary wire format shared by
// Constants, ErgoTree expressions and the ErgoTree container itself: a
// VLQ/ZigZag byte stream, a packed type-code alphabet, and the
// ConstantStore that threads constant-segregation state through a
// read/write pass (spec component C).
package serialization

import "fmt"

// ErrorCode enumerates serializer failure kinds, per spec §7.
type ErrorCode string

const (
	ErrInvalidTypeCode       ErrorCode = "INVALID_TYPE_CODE"
	ErrInvalidOpCode         ErrorCode = "INVALID_OP_CODE"
	ErrValueOutOfBounds      ErrorCode = "VALUE_OUT_OF_BOUNDS"
	ErrTupleItemsOutOfBounds ErrorCode = "TUPLE_ITEMS_OUT_OF_BOUNDS"
	ErrNotImplementedOpCode  ErrorCode = "NOT_IMPLEMENTED_OP_CODE"
	ErrIo                    ErrorCode = "IO"
	ErrMisc                  ErrorCode = "MISC"
)

// Error is the value-typed error returned by this package's readers and
// writers; never a panic, per spec §7's propagation policy.
type Error struct {
	Code ErrorCode
	Msg  string
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Msg == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

func serr(code ErrorCode, format string, args ...any) error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...)}
}
