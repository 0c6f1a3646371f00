// Package cargo scaffolds a throwaway crate and publishes it with cargo.
//
// Publisher creates a TemporaryWorkspace, runs `cargo new --lib`, replaces
// the generated Cargo.toml and README.md with content embedding the target
// version, and runs `cargo publish` against a named registry. The registry
// token reaches cargo only through the environment of that single child
// process.
package cargo
