// Package errors provides structured error types for the halcyon bindings.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). Construction-time misuse (bad arity, out-of-range values,
// unencodable types, invalid UTF-8) is raised synchronously under
// PhaseValidate/PhaseEncode and never reaches the native boundary; failures
// the library reports through its wire error channel surface under
// PhaseLifecycle with KindNative.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseEncode, errors.KindTypeMismatch).
//		Path("options", "host").
//		GoType("int").
//		Detail("expected string").
//		Build()
//
// Or the convenience constructors for common patterns:
//
//	err := errors.ArityMismatch("binary condition", 2, 1)
//	err := errors.Timeout("db_connect", 5000)
//
// All errors implement the standard error interface and support errors.Is/As;
// Is matches on Phase and Kind.
package errors
