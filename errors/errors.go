package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in the bridge the error occurred
type Phase string

const (
	PhaseLoad     Phase = "load"     // module loading and instantiation
	PhaseRegistry Phase = "registry" // control resolution
	PhaseFocus    Phase = "focus"    // surface lookup and focus
	PhaseDispatch Phase = "dispatch" // synthetic event delivery
	PhaseConfig   Phase = "config"   // configuration loading
	PhaseHost     Phase = "host"     // host function registration
)

// Kind categorizes the error
type Kind string

const (
	KindNotFound          Kind = "not_found"
	KindInvalidInput      Kind = "invalid_input"
	KindInvalidData       Kind = "invalid_data"
	KindMissingExport     Kind = "missing_export"
	KindMissingImport     Kind = "missing_import"
	KindSignatureMismatch Kind = "signature_mismatch"
	KindInstantiation     Kind = "instantiation"
	KindRegistration      Kind = "registration"
	KindPanic             Kind = "panic"
)

// Error is the structured error type used throughout the bridge
type Error struct {
	Value   any
	Cause   error
	Phase   Phase
	Kind    Kind
	Element string
	Detail  string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Element != "" {
		b.WriteString(" at #")
		b.WriteString(e.Element)
	}

	if e.Detail != "" {
		b.WriteString(": ")
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

// Element sets the id of the DOM element involved
func (b *Builder) Element(id string) *Builder {
	b.err.Element = id
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

// Load creates a module loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidData,
		Detail: detail,
		Cause:  cause,
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

// SurfaceMissing reports that the focus target could not be located.
func SurfaceMissing(id string) *Error {
	return &Error{
		Phase:   PhaseFocus,
		Kind:    KindNotFound,
		Element: id,
		Detail:  fmt.Sprintf("no surface element found with id %q", id),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// MissingExport reports a guest export the bridge requires but the module lacks.
func MissingExport(name string) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindMissingExport,
		Detail: fmt.Sprintf("module does not export %q", name),
	}
}

// SignatureMismatch reports an export whose core signature differs from the declared one.
func SignatureMismatch(name, want, got string) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindSignatureMismatch,
		Detail: fmt.Sprintf("export %q has signature %s, want %s", name, got, want),
	}
}

// Instantiation creates an instantiation error
func Instantiation(cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInstantiation,
		Detail: "instantiate module",
		Cause:  cause,
	}
}

// Registration creates a host function registration error
func Registration(namespace, name string, cause error) *Error {
	return &Error{
		Phase:  PhaseHost,
		Kind:   KindRegistration,
		Detail: fmt.Sprintf("register %s#%s", namespace, name),
		Cause:  cause,
	}
}

// Panic wraps a recovered panic value.
func Panic(phase Phase, value any, stack string) *Error {
	detail := fmt.Sprintf("panic: %v", value)
	if stack != "" {
		detail += "\n" + stack
	}
	return &Error{
		Phase:  phase,
		Kind:   KindPanic,
		Value:  value,
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

// MissingImport is a guest import no host module provides.
type MissingImport struct {
	Module string
	Name   string
}

func (m MissingImport) String() string {
	return m.Module + "." + m.Name
}

// MissingImportsError lists every unresolved import of a compiled module, so
// one failed load reports all of them.
type MissingImportsError struct {
	Imports []MissingImport
}

// MissingImports builds the error from "module#name" keys.
func MissingImports(keys []string) *MissingImportsError {
	e := &MissingImportsError{Imports: make([]MissingImport, 0, len(keys))}
	for _, k := range keys {
		mod, name, _ := strings.Cut(k, "#")
		e.Imports = append(e.Imports, MissingImport{Module: mod, Name: name})
	}
	return e
}

func (e *MissingImportsError) Error() string {
	names := make([]string, len(e.Imports))
	for i, imp := range e.Imports {
		names[i] = imp.String()
	}
	return fmt.Sprintf("[%s] %s: %s", PhaseLoad, KindMissingImport, strings.Join(names, ", "))
}

// Is matches any *MissingImportsError and the load/missing_import *Error.
func (e *MissingImportsError) Is(target error) bool {
	switch t := target.(type) {
	case *MissingImportsError:
		return true
	case *Error:
		return t.Phase == PhaseLoad && t.Kind == KindMissingImport
	}
	return false
}
