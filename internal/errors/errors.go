// Package errors provides the structured error taxonomy for sitectl.
//
// Every failure the tool can report maps to one ErrorCode, so callers
// (and the --json output) can distinguish validation problems from
// checker rejections, rollbacks, lock contention, and collaborator
// failures without parsing message text.
//
// # Error Types
//
// SiteError is the primary error type, containing:
//   - Code: categorizes the error (VALIDATION, REJECTED, BUSY, ...)
//   - Message: human-readable error description
//   - Domain: the domain name involved (if applicable)
//   - Err: the underlying wrapped error (if any)
//
// # Sentinel Errors
//
// Common scenarios have pre-defined sentinel errors:
//
//	errors.ErrUnknownArchetype // no template for the requested archetype
//	errors.ErrRenderIncomplete // placeholders survived the second pass
//	errors.ErrArtifactMissing  // no rendered artifact for the domain
//	errors.ErrAnchorNotFound   // TLS insertion anchor absent
//	errors.ErrBusy             // lock acquisition timed out
//
// # Error Checking
//
// Use errors.Is for sentinel comparison:
//
//	if errors.Is(err, errors.ErrAnchorNotFound) {
//	    // augmentation precondition failed, artifact untouched
//	}
//
// Use errors.As to reach the code and diagnostics:
//
//	var siteErr *errors.SiteError
//	if errors.As(err, &siteErr) {
//	    fmt.Println(siteErr.Code, siteErr.Domain)
//	}
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode categorizes errors for programmatic handling.
type ErrorCode string

// Error codes for different failure categories.
const (
	ErrCodeValidation   ErrorCode = "VALIDATION"    // Input rejected before any mutation
	ErrCodeTemplate     ErrorCode = "TEMPLATE"      // Unknown archetype or bad template body
	ErrCodeRender       ErrorCode = "RENDER"        // Placeholder expansion defect
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"     // Artifact or site missing
	ErrCodeAnchor       ErrorCode = "ANCHOR"        // Augmentation anchor line not found
	ErrCodeRejected     ErrorCode = "REJECTED"      // Syntax checker refused the configuration
	ErrCodeRolledBack   ErrorCode = "ROLLED_BACK"   // Augmentation reverted, prior config restored
	ErrCodeBusy         ErrorCode = "BUSY"          // Lock held elsewhere, retry later
	ErrCodeChecker      ErrorCode = "CHECKER"       // Syntax checker could not be run
	ErrCodeReload       ErrorCode = "RELOAD"        // Proxy reload failed
	ErrCodeCert         ErrorCode = "CERT"          // Certificate issuance failed
	ErrCodePermission   ErrorCode = "PERMISSION"    // Insufficient privileges
	ErrCodeInconsistent ErrorCode = "INCONSISTENT"  // Restore after rollback failed validation
	ErrCodeInternal     ErrorCode = "INTERNAL"      // Unexpected internal error
)

// SiteError represents a structured error with context about the operation.
type SiteError struct {
	Code    ErrorCode // Error category
	Message string    // Human-readable message
	Domain  string    // Domain name (if applicable)
	Err     error     // Underlying error (if any)
}

// Error implements the error interface. Empty fields are skipped so
// an error built without a message does not render a dangling colon.
func (e *SiteError) Error() string {
	parts := make([]string, 0, 3)
	if e.Domain != "" {
		parts = append(parts, fmt.Sprintf("site %s", e.Domain))
	}
	if e.Message != "" {
		parts = append(parts, e.Message)
	}
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	return strings.Join(parts, ": ")
}

// Unwrap returns the underlying error for error chain traversal.
func (e *SiteError) Unwrap() error {
	return e.Err
}

// Is reports whether target matches this error.
// Comparison is based on error code.
func (e *SiteError) Is(target error) bool {
	t, ok := target.(*SiteError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Sentinel errors for common scenarios.
// Use these with errors.Is() for error checking.
var (
	// ErrUnknownArchetype indicates no template is registered for the archetype.
	ErrUnknownArchetype = &SiteError{Code: ErrCodeTemplate, Message: "unknown archetype"}

	// ErrRenderIncomplete indicates placeholder tokens survived the final pass.
	ErrRenderIncomplete = &SiteError{Code: ErrCodeRender, Message: "render incomplete"}

	// ErrArtifactMissing indicates no rendered artifact exists for the domain.
	ErrArtifactMissing = &SiteError{Code: ErrCodeNotFound, Message: "artifact missing"}

	// ErrAnchorNotFound indicates the TLS insertion anchor is absent.
	ErrAnchorNotFound = &SiteError{Code: ErrCodeAnchor, Message: "anchor line not found"}

	// ErrBusy indicates the per-domain lock could not be acquired in time.
	ErrBusy = &SiteError{Code: ErrCodeBusy, Message: "domain is locked by another operation"}

	// ErrInvalidDomain indicates the domain name is not a valid hostname.
	ErrInvalidDomain = &SiteError{Code: ErrCodeValidation, Message: "invalid domain"}

	// ErrInvalidPort indicates the port is outside 1-65535.
	ErrInvalidPort = &SiteError{Code: ErrCodeValidation, Message: "invalid port"}

	// ErrRejected indicates the syntax checker refused the configuration set.
	ErrRejected = &SiteError{Code: ErrCodeRejected, Message: "configuration rejected by syntax check"}

	// ErrRolledBack indicates augmentation was reverted and the prior
	// artifact content is live again. Recoverable: the site still serves
	// over the non-TLS path.
	ErrRolledBack = &SiteError{Code: ErrCodeRolledBack, Message: "tls augmentation rolled back"}

	// ErrInconsistent indicates a restored artifact failed validation.
	// The system cannot determine which content is currently live; this
	// is the only condition reported as an internal fault.
	ErrInconsistent = &SiteError{Code: ErrCodeInconsistent, Message: "restored configuration failed validation"}

	// ErrRootRequired indicates root privileges are required.
	ErrRootRequired = &SiteError{Code: ErrCodePermission, Message: "root privileges required"}
)

// NotFound creates an error for an artifact that doesn't exist.
func NotFound(domain string) error {
	return &SiteError{
		Code:    ErrCodeNotFound,
		Message: "artifact missing",
		Domain:  domain,
	}
}

// Validation creates a validation error with a custom message.
func Validation(msg string) error {
	return &SiteError{
		Code:    ErrCodeValidation,
		Message: msg,
	}
}

// Rejected creates a checker-rejection error carrying the checker's
// diagnostic output verbatim.
func Rejected(domain string, diag error) error {
	return &SiteError{
		Code:    ErrCodeRejected,
		Message: "configuration rejected by syntax check",
		Domain:  domain,
		Err:     diag,
	}
}

// RolledBack creates a rollback notice carrying the failure that
// triggered the revert.
func RolledBack(domain string, cause error) error {
	return &SiteError{
		Code:    ErrCodeRolledBack,
		Message: "tls augmentation rolled back",
		Domain:  domain,
		Err:     cause,
	}
}

// Inconsistent creates the fatal restore-failed-validation error.
func Inconsistent(domain string, diag error) error {
	return &SiteError{
		Code:    ErrCodeInconsistent,
		Message: "restored configuration failed validation",
		Domain:  domain,
		Err:     diag,
	}
}

// Busy creates a lock-timeout error for the domain.
func Busy(domain string) error {
	return &SiteError{
		Code:    ErrCodeBusy,
		Message: "domain is locked by another operation",
		Domain:  domain,
	}
}

// Wrap creates an error with the specified code, message, and underlying error.
func Wrap(code ErrorCode, msg string, err error) error {
	return &SiteError{
		Code:    code,
		Message: msg,
		Err:     err,
	}
}

// WrapDomain creates an error with domain context and underlying error.
func WrapDomain(code ErrorCode, domain string, err error) error {
	return &SiteError{
		Code:   code,
		Domain: domain,
		Err:    err,
	}
}

// Code returns the ErrorCode of err if it is (or wraps) a SiteError,
// or ErrCodeInternal otherwise.
func Code(err error) ErrorCode {
	var siteErr *SiteError
	if errors.As(err, &siteErr) {
		return siteErr.Code
	}
	return ErrCodeInternal
}

// Is reports whether any error in err's chain matches target.
// This is a re-export of errors.Is for convenience.
var Is = errors.Is

// As finds the first error in err's chain that matches target.
// This is a re-export of errors.As for convenience.
var As = errors.As

// New creates a plain error. Re-export of errors.New for convenience.
var New = errors.New
