package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the recommended HTTP status code for this error.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// Wrap converts any error into an AppError. A nil error stays nil, an
// AppError anywhere in the chain is returned as is, and everything else
// becomes an internal error with the original as cause.
func Wrap(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}

// --- Graph Structure Errors ---

// DuplicateNode creates a new AppError for a node id that is already taken.
func DuplicateNode(id string) *AppError {
	return &AppError{
		Code: ErrCodeDuplicateNode, Message: fmt.Sprintf("A node with id %q already exists.", id),
		HTTPStatus: http.StatusConflict, Retryable: false,
		Details: map[string]any{"node": id},
	}
}

// NodeNotFound creates a new AppError for a node reference that does not resolve.
func NodeNotFound(id string) *AppError {
	return &AppError{
		Code: ErrCodeNodeNotFound, Message: fmt.Sprintf("The node %q was not found.", id),
		HTTPStatus: http.StatusNotFound, Retryable: false,
		Details: map[string]any{"node": id},
	}
}

// Cycle creates a new AppError for an edge that would make the graph cyclic.
func Cycle(source, target string) *AppError {
	return &AppError{
		Code: ErrCodeCycleDetected, Message: fmt.Sprintf("Adding edge %s -> %s would create a cycle.", source, target),
		HTTPStatus: http.StatusConflict, Retryable: false,
		Details: map[string]any{"source": source, "target": target},
	}
}

// Inconsistent creates a new AppError for a graph that failed an internal
// consistency check. It signals a defect, not a user mistake.
func Inconsistent(reason string) *AppError {
	return &AppError{
		Code: ErrCodeGraphInconsistent, Message: fmt.Sprintf("Graph inconsistency detected: %s.", reason),
		HTTPStatus: http.StatusInternalServerError, Retryable: false,
	}
}

// --- Operation and Parameter Errors ---

// UnknownKind creates a new AppError for an unregistered operation type.
func UnknownKind(kind string) *AppError {
	return &AppError{
		Code: ErrCodeUnknownKind, Message: fmt.Sprintf("Unknown operation type %q.", kind),
		HTTPStatus: http.StatusBadRequest, Retryable: false,
		Details: map[string]any{"type": kind},
	}
}

// MissingParameters creates a new AppError naming every required parameter
// that remained unbound, in declaration order.
func MissingParameters(kind string, missing []string) *AppError {
	return &AppError{
		Code: ErrCodeMissingParameter, Message: fmt.Sprintf("Missing required parameters for %s: %s.", kind, strings.Join(missing, ", ")),
		HTTPStatus: http.StatusBadRequest, Retryable: false,
		Details: map[string]any{"type": kind, "missing": missing},
	}
}

// InvalidParameter creates a new AppError for a parameter that is present but unusable.
func InvalidParameter(name, reason string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidParameter, Message: fmt.Sprintf("Invalid parameter %s: %s.", name, reason),
		HTTPStatus: http.StatusBadRequest, Retryable: false,
		Details: map[string]any{"parameter": name},
	}
}

// --- Execution Errors ---

// NodeExecution creates a new AppError for a failed node attempt.
func NodeExecution(node string, attempt int, cause error) *AppError {
	return &AppError{
		Code: ErrCodeNodeExecutionFailed, Message: fmt.Sprintf("Node %q failed on attempt %d.", node, attempt),
		HTTPStatus: http.StatusBadGateway, Retryable: true,
		Details: map[string]any{"node": node, "attempt": attempt}, Cause: cause,
	}
}

// ExecutionAborted creates a new AppError for a run that stopped because a
// node exhausted its retry budget.
func ExecutionAborted(node string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeExecutionAborted, Message: fmt.Sprintf("Execution aborted: node %q exhausted its retry budget.", node),
		HTTPStatus: http.StatusInternalServerError, Retryable: false,
		Details: map[string]any{"node": node}, Cause: cause,
	}
}

// Timeout creates a new AppError for an operation that timed out.
func Timeout(operation string) *AppError {
	return &AppError{
		Code: ErrCodeTimeout, Message: "The operation took too long. Please try again.",
		HTTPStatus: http.StatusGatewayTimeout, Retryable: true,
		Details: map[string]any{"operation": operation},
	}
}

// --- Input and Internal Errors ---

// InvalidInput creates a new AppError for invalid input.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("Invalid input: %s", reason),
		HTTPStatus: http.StatusBadRequest, Retryable: false, Details: details,
	}
}

// Validation creates a new AppError for validation errors.
func Validation(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidInput, Message: message,
		HTTPStatus: http.StatusBadRequest, Retryable: false,
	}
}

// Internal creates a new AppError for an internal server error.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred. Please try again or contact support.",
		HTTPStatus: http.StatusInternalServerError, Retryable: false, Cause: cause,
	}
}
