// Package cli constructs the crates-smoke command-line interface. It wires
// the smoke test root command to the layered configuration loader and the
// structured logger, and flushes the logger when execution finishes.
package cli
