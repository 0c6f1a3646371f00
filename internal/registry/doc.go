// Package registry provides a typed client for the crates.io read API.
//
// Client fetches the crate summary envelope to learn the highest published
// version and the version detail envelope to confirm that a specific version
// is visible. Every failure is reported as an OperationError naming the step
// that was attempted.
package registry
