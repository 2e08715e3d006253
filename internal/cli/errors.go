// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Error types, display and exit codes for docchat commands.
//
// Commands always return errors; Execute decides how to show them and
// which exit code to use.

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jeranaias/docchat-tui/internal/commands"
	"github.com/jeranaias/docchat-tui/internal/config"
	"github.com/jeranaias/docchat-tui/internal/service"
	"github.com/jeranaias/docchat-tui/internal/submit"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitConfigError indicates a configuration file or settings error
	ExitConfigError = 3
	// ExitServiceError indicates the document service rejected a request
	ExitServiceError = 4
	// ExitNetworkError indicates the document service could not be reached
	ExitNetworkError = 5
	// ExitNotFoundError indicates a resource was not found
	ExitNotFoundError = 7
	// ExitTimeoutError indicates an operation timed out
	ExitTimeoutError = 8
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// CommandError represents a CLI command error with context.
type CommandError struct {
	Command string // Command that failed (e.g., "ask", "config")
	Action  string // Action being performed (e.g., "upload", "set")
	Reason  string // Human-readable reason
	Err     error  // Underlying error (if any)
}

func (e *CommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s failed: %s: %v", e.Command, e.Action, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %s", e.Command, e.Action, e.Reason)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ValidationError represents a validation failure for user input.
type ValidationError struct {
	Field   string // Field that failed validation
	Value   string // Value that was provided
	Reason  string // Why validation failed
	Example string // Example of valid value (optional)
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	if e.Value != "" {
		msg += fmt.Sprintf(" (got: %s)", e.Value)
	}
	if e.Example != "" {
		msg += fmt.Sprintf("\nExample: %s", e.Example)
	}
	return msg
}

// NotFoundError represents a resource not found error.
type NotFoundError struct {
	Resource string // Type of resource (e.g., "document", "file")
	ID       string // Identifier that was not found
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// displayedError marks an error the command already reported, such as a
// --json failure envelope. Execute only maps it to an exit code.
type displayedError struct {
	err error
}

func (e *displayedError) Error() string { return e.err.Error() }

func (e *displayedError) Unwrap() error { return e.err }

// NewCommandError creates a new command error.
func NewCommandError(command, action, reason string, err error) error {
	return &CommandError{Command: command, Action: action, Reason: reason, Err: err}
}

// NewValidationError creates a validation error with an example of a valid value.
func NewValidationError(field, value, reason, example string) error {
	return &ValidationError{Field: field, Value: value, Reason: reason, Example: example}
}

// NewNotFoundError creates a new not found error.
func NewNotFoundError(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// =============================================================================
// ERROR DISPLAY
// =============================================================================

// DisplayError writes err to w. In JSON mode the error is a JSON object
// carrying an error_type; otherwise it is a styled single line.
func DisplayError(w io.Writer, err error, jsonMode bool) {
	if err == nil {
		return
	}
	if jsonMode {
		DisplayErrorJSON(w, err)
		return
	}
	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("[ERROR]"), err.Error())
}

// DisplayErrorJSON writes err as a JSON object.
func DisplayErrorJSON(w io.Writer, err error) {
	output := map[string]interface{}{
		"error":     err.Error(),
		"success":   false,
		"exit_code": GetExitCode(err),
	}

	var (
		cmdErr      *CommandError
		validErr    *ValidationError
		notFoundErr *NotFoundError
		clientErr   *service.ClientError
		cfgErrs     config.ValidateErrors
	)
	switch {
	case errors.As(err, &validErr):
		output["error_type"] = "validation_error"
		output["field"] = validErr.Field
		output["value"] = validErr.Value
		output["reason"] = validErr.Reason
		if validErr.Example != "" {
			output["example"] = validErr.Example
		}
	case errors.As(err, &notFoundErr):
		output["error_type"] = "not_found_error"
		output["resource"] = notFoundErr.Resource
		output["id"] = notFoundErr.ID
	case errors.As(err, &cfgErrs):
		output["error_type"] = "config_error"
		fields := make([]string, 0, len(cfgErrs))
		for _, fe := range cfgErrs {
			fields = append(fields, fe.Field)
		}
		output["fields"] = fields
	case errors.As(err, &clientErr):
		output["error_type"] = "service_error"
		if clientErr.StatusCode != 0 {
			output["status_code"] = clientErr.StatusCode
		}
	case errors.As(err, &cmdErr):
		output["error_type"] = "command_error"
		output["command"] = cmdErr.Command
		output["action"] = cmdErr.Action
		output["reason"] = cmdErr.Reason
	default:
		output["error_type"] = "generic_error"
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	_ = encoder.Encode(output)
}

// =============================================================================
// EXIT CODE MAPPING
// =============================================================================

// GetExitCode determines the exit code for an error. Typed errors are
// checked first; the message heuristics only catch errors that crossed a
// boundary without a type.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) || errors.Is(err, commands.ErrUnknownCommand) {
		return ExitUsageError
	}
	var notFoundErr *NotFoundError
	if errors.As(err, &notFoundErr) {
		return ExitNotFoundError
	}
	var cfgErrs config.ValidateErrors
	if errors.As(err, &cfgErrs) {
		return ExitConfigError
	}
	if errors.Is(err, submit.ErrBusy) {
		return ExitGeneralError
	}

	switch {
	case service.IsType(err, service.ErrTypeTimeout):
		return ExitTimeoutError
	case service.IsType(err, service.ErrTypeConnection):
		return ExitNetworkError
	case service.IsType(err, service.ErrTypeStatus), service.IsType(err, service.ErrTypeDecode):
		return ExitServiceError
	}

	errMsg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errMsg, "config"):
		return ExitConfigError
	case strings.Contains(errMsg, "timed out"), strings.Contains(errMsg, "deadline exceeded"):
		return ExitTimeoutError
	case strings.Contains(errMsg, "connection refused"), strings.Contains(errMsg, "unreachable"):
		return ExitNetworkError
	}
	return ExitGeneralError
}

// WrapError wraps an error with additional context.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// ErrMissingArgument creates an error for a missing required argument.
func ErrMissingArgument(argName, usage string) error {
	return NewValidationError(argName, "", "required argument missing", usage)
}
