// Package logging constructs the application's slog loggers. Output goes
// to stdout and, when a log directory is configured, to rvuweb.log inside
// it. Text output is key=value oriented for terminals; json output is one
// object per line for collectors.
package logging
