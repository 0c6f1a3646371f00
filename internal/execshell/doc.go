// Package execshell provides structured helpers for invoking external tools.
//
// It wraps os/exec with logging via ShellExecutor, exposes OSCommandRunner
// for default process execution, and defines the CommandRunner abstraction
// used to run cargo in a testable manner. Environment overrides handed to a
// child process are applied to that process only and their values are never
// logged.
package execshell
