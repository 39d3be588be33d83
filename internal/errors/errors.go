// Package errors holds the CLI-facing error helpers: consistent
// "Error: " formatting for stderr, and fatal exits that also reach
// the log file.
package errors

import (
	"fmt"
	"os"

	"github.com/ksakurai/memoplan/internal/logger"
)

// Format renders an error for the terminal. A nil error renders as
// the empty string.
func Format(err error) string {
	if err == nil {
		return ""
	}
	return "Error: " + err.Error()
}

// Formatf renders a formatted message the way Format renders an
// error.
func Formatf(format string, args ...interface{}) string {
	return "Error: " + fmt.Sprintf(format, args...)
}

// Fatal logs the error, prints it to stderr and exits with code 1. A
// nil error is a no-op.
func Fatal(err error) {
	if err == nil {
		return
	}
	logger.Error("command failed", "error", err)
	fmt.Fprintln(os.Stderr, Format(err))
	os.Exit(1)
}

// Fatalf is Fatal for a formatted message.
func Fatalf(format string, args ...interface{}) {
	logger.Error("command failed", "error", fmt.Sprintf(format, args...))
	fmt.Fprintln(os.Stderr, Formatf(format, args...))
	os.Exit(1)
}
