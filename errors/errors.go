package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseLoad     Phase = "load"     // schema document decoding
	PhaseLower    Phase = "lower"    // type classification and record planning
	PhaseGenerate Phase = "generate" // source rendering
	PhaseEncode   Phase = "encode"   // value to wire bytes
	PhaseDecode   Phase = "decode"   // wire bytes to value
)

// Kind categorizes the error
type Kind string

const (
	KindUnresolvedReference  Kind = "unresolved_reference"
	KindUnsupported          Kind = "unsupported"
	KindInvalidDiscriminator Kind = "invalid_discriminator"
	KindTypeMismatch         Kind = "type_mismatch"
	KindOutOfBounds          Kind = "out_of_bounds"
	KindInvalidData          Kind = "invalid_data"
	KindInvalidUTF8          Kind = "invalid_utf8"
	KindOverflow             Kind = "overflow"
	KindNotFound             Kind = "not_found"
	KindDuplicate            Kind = "duplicate"
)

// Error is the structured error type used throughout the compiler
type Error struct {
	Value      any
	Cause      error
	Phase      Phase
	Kind       Kind
	Definition string
	WireType   string
	Detail     string
	Path       []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Definition != "" {
		b.WriteString(" in ")
		b.WriteString(e.Definition)
	}

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.WireType != "" {
		b.WriteString(": wire type ")
		b.WriteString(e.WireType)
	}

	if e.Detail != "" {
		if e.WireType != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Definition sets the schema definition name
func (b *Builder) Definition(name string) *Builder {
	b.err.Definition = name
	return b
}

// WireType sets the wire type name
func (b *Builder) WireType(t string) *Builder {
	b.err.WireType = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// UnresolvedReference creates an error for a by-name type reference that is
// absent from the definition table.
func UnresolvedReference(phase Phase, definition, name string) *Error {
	return &Error{
		Phase:      phase,
		Kind:       KindUnresolvedReference,
		Definition: definition,
		Detail:     fmt.Sprintf("reference to undefined type %q", name),
	}
}

// Unsupported creates an unsupported construct error. It signals an internal
// invariant violation: dispatch over the closed type set reached no case.
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// InvalidDiscriminator creates the decode error for a union discriminator
// byte that matches no declared branch.
func InvalidDiscriminator(definition string, disc uint8) *Error {
	return &Error{
		Phase:      PhaseDecode,
		Kind:       KindInvalidDiscriminator,
		Definition: definition,
		Detail:     fmt.Sprintf("discriminator %d matches no branch", disc),
		Value:      disc,
	}
}

// TypeMismatch creates a type mismatch error
func TypeMismatch(phase Phase, path []string, goType, wireType string) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindTypeMismatch,
		Path:     path,
		WireType: wireType,
		Detail:   fmt.Sprintf("Go value of type %s", goType),
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, path []string, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Path:   path,
		Detail: fmt.Sprintf("index %d out of bounds (length %d)", index, length),
		Value:  index,
	}
}

// InvalidUTF8 creates an invalid UTF-8 error
func InvalidUTF8(phase Phase, path []string, data []byte) *Error {
	preview := data
	if len(preview) > 32 {
		preview = preview[:32]
	}
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidUTF8,
		Path:   path,
		Detail: fmt.Sprintf("invalid UTF-8 sequence: %x", preview),
	}
}

// Overflow creates an overflow error
func Overflow(phase Phase, path []string, value any, targetType string) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindOverflow,
		Path:     path,
		WireType: targetType,
		Detail:   fmt.Sprintf("value %v overflows %s", value, targetType),
		Value:    value,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
