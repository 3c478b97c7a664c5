// Package logging builds the log/slog logger used by the lookup service and the CLI.
// The server logs JSON to stdout; the CLI logs text to stderr so stdout carries only answers.
package logging
