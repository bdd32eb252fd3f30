package ntro

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrUnknownFieldType   = errors.New("unknown field type")
	ErrUnknownIndirection = errors.New("unknown indirection")
	ErrUnknownStruct      = errors.New("unknown struct id")
	ErrNestingTooDeep     = errors.New("struct nesting too deep")
	ErrZeroStride         = errors.New("array of zero-size elements")
)

// FieldError reports which field of which struct failed to decode.
type FieldError struct {
	Struct string
	Field  string
	Err    error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s.%s: %v", e.Struct, e.Field, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }
