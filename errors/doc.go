// Package errors provides structured error types for the keybridge library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the id of the DOM element involved, a detail message and the
// cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseRegistry, errors.KindInvalidInput).
//		Element("jump").
//		Detail("duplicate control id").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.SurfaceMissing("canvas")
//	err := errors.MissingExport("key_event")
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
