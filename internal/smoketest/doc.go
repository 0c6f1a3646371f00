// Package smoketest runs the registry publish smoke test.
//
// Service reads the highest published version of the test crate, publishes
// the next patch version unless publishing is skipped, and verifies the
// registry reports the expected crate name and version afterwards.
// CommandBuilder exposes the run as the root Cobra command.
package smoketest
