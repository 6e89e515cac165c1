package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/habitloop/internal/logger"
)

var (
	// ErrInvalidArgument is returned when a caller passes a value outside its
	// documented domain. Values are never clamped.
	ErrInvalidArgument = stderrors.New("invalid argument")
	// ErrNotFound is returned when an id that must exist is missing.
	// Lookups that may legitimately miss return a nil result instead.
	ErrNotFound = stderrors.New("not found")
	// ErrInconsistentState is returned when derived habit state disagrees with
	// the raw entries and must be rebuilt.
	ErrInconsistentState = stderrors.New("inconsistent state")
)

// InvalidArgument wraps ErrInvalidArgument with a formatted message
func InvalidArgument(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// NotFound wraps ErrNotFound with a formatted message
func NotFound(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// InconsistentState wraps ErrInconsistentState with a formatted message
func InconsistentState(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInconsistentState, fmt.Sprintf(format, args...))
}

func IsInvalidArgument(err error) bool {
	return stderrors.Is(err, ErrInvalidArgument)
}

func IsNotFound(err error) bool {
	return stderrors.Is(err, ErrNotFound)
}

func IsInconsistentState(err error) bool {
	return stderrors.Is(err, ErrInconsistentState)
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
