// Package abi holds numeric coercion and arithmetic helpers shared by the
// ffi encoders. Coercions are strict: a value either fits the target width
// exactly or the coercion reports failure; nothing is truncated.
package abi
