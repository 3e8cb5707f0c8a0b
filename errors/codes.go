package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Graph structure errors
const (
	// ErrCodeDuplicateNode indicates a node with the same id already exists.
	ErrCodeDuplicateNode ErrorCode = "DUPLICATE_NODE"
	// ErrCodeNodeNotFound indicates a referenced node does not exist.
	ErrCodeNodeNotFound ErrorCode = "NODE_NOT_FOUND"
	// ErrCodeCycleDetected indicates a mutation would make the graph cyclic.
	ErrCodeCycleDetected ErrorCode = "CYCLE_DETECTED"
	// ErrCodeGraphInconsistent indicates the graph failed an internal consistency check.
	ErrCodeGraphInconsistent ErrorCode = "GRAPH_INCONSISTENT"
)

// Operation and parameter errors
const (
	// ErrCodeUnknownKind indicates the operation type is not registered.
	ErrCodeUnknownKind ErrorCode = "UNKNOWN_KIND"
	// ErrCodeMissingParameter indicates one or more required parameters are absent.
	ErrCodeMissingParameter ErrorCode = "MISSING_PARAMETER"
	// ErrCodeInvalidParameter indicates a parameter is present but malformed.
	ErrCodeInvalidParameter ErrorCode = "INVALID_PARAMETER"
)

// Execution errors
const (
	// ErrCodeNodeExecutionFailed indicates a single node attempt failed.
	ErrCodeNodeExecutionFailed ErrorCode = "NODE_EXECUTION_FAILED"
	// ErrCodeExecutionAborted indicates a run was aborted after a node exhausted its retries.
	ErrCodeExecutionAborted ErrorCode = "EXECUTION_ABORTED"
	// ErrCodeTimeout indicates the operation timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
)

// Input and internal errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeNodeExecutionFailed: true,
	ErrCodeTimeout:             true,
	ErrCodeInternal:            false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
