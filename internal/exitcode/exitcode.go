// Package exitcode defines exit codes for the CLI.
package exitcode

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates invalid input or a missing task.
	UserError = 1

	// RuntimeError indicates a configuration, database, or I/O failure.
	RuntimeError = 2

	// Interrupted indicates the process was cancelled by a signal.
	Interrupted = 130
)
