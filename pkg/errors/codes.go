package errors

import "strings"

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal     ErrorCode = "COMMON_001"
	ErrCodeBadRequest   ErrorCode = "COMMON_002"
	ErrCodeNotFound     ErrorCode = "COMMON_005"
	ErrCodeConflict     ErrorCode = "COMMON_006"
	ErrCodeValidation   ErrorCode = "COMMON_010"
	ErrCodeConfigLoad   ErrorCode = "COMMON_017"
	ErrCodeInvalidState ErrorCode = "COMMON_018"
)

// Catalog Module Error Codes
const (
	ErrCodeCatalogEmpty        ErrorCode = "CAT_001"
	ErrCodeCatalogEntryInvalid ErrorCode = "CAT_002"
	ErrCodeBrandTableEmpty     ErrorCode = "CAT_003"
)

// Matching Module Error Codes
const (
	ErrCodeNotInitialized     ErrorCode = "MAT_001"
	ErrCodeAlreadyInitialized ErrorCode = "MAT_002"
	ErrCodeSelectorFailed     ErrorCode = "MAT_003"
	ErrCodeSelectorPanic      ErrorCode = "MAT_004"
	ErrCodePreprocessFailed   ErrorCode = "MAT_005"
)

// Short aliases used at call sites.
const (
	CodeInternal           = ErrCodeInternal
	CodeInvalidParam       = ErrCodeBadRequest
	CodeNotFound           = ErrCodeNotFound
	CodeConflict           = ErrCodeConflict
	CodeConfigLoad         = ErrCodeConfigLoad
	CodeInvalidState       = ErrCodeInvalidState
	CodeCatalogEmpty       = ErrCodeCatalogEmpty
	CodeCatalogEntryBad    = ErrCodeCatalogEntryInvalid
	CodeBrandTableEmpty    = ErrCodeBrandTableEmpty
	CodeNotInitialized     = ErrCodeNotInitialized
	CodeAlreadyInitialized = ErrCodeAlreadyInitialized
	CodeSelectorFailed     = ErrCodeSelectorFailed
	CodeSelectorPanic      = ErrCodeSelectorPanic
	CodeOK                 = ErrorCode("OK")
	CodeUnknown            = ErrorCode("UNKNOWN")
)

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:     "internal error",
	ErrCodeBadRequest:   "bad request",
	ErrCodeNotFound:     "resource not found",
	ErrCodeConflict:     "resource conflict",
	ErrCodeValidation:   "validation failed",
	ErrCodeConfigLoad:   "configuration could not be loaded",
	ErrCodeInvalidState: "invalid state",

	ErrCodeCatalogEmpty:        "catalog snapshot is empty",
	ErrCodeCatalogEntryInvalid: "catalog entry is malformed",
	ErrCodeBrandTableEmpty:     "brand table is empty",

	ErrCodeNotInitialized:     "matcher used before initialize",
	ErrCodeAlreadyInitialized: "matcher already initialized",
	ErrCodeSelectorFailed:     "candidate selector failed",
	ErrCodeSelectorPanic:      "candidate selector panicked",
	ErrCodePreprocessFailed:   "text preprocessing failed",
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsUsageError reports whether code denotes a caller mistake that must never be
// retried (calling match before initialize, initializing twice, bad arguments).
func IsUsageError(code ErrorCode) bool {
	switch code {
	case ErrCodeNotInitialized, ErrCodeAlreadyInitialized, ErrCodeBadRequest, ErrCodeInvalidState:
		return true
	}
	return false
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}

//Personal.AI order the ending
