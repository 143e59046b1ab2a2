package framework

import (
	"errors"
	"fmt"
)

// ErrNotInitialized is returned by operations that need an organization scope
// before Initialize has loaded one.
var ErrNotInitialized = errors.New("translation engine not initialized for an organization")

// UnsupportedFrameworkError reports a framework key with no registered translator.
type UnsupportedFrameworkError struct {
	Framework string
}

func (e *UnsupportedFrameworkError) Error() string {
	return fmt.Sprintf("unsupported framework: %q", e.Framework)
}

// HybridNotEnabledError is returned when hybrid routing is requested for an
// organization whose configuration does not allow it.
type HybridNotEnabledError struct {
	OrganizationID string
}

func (e *HybridNotEnabledError) Error() string {
	if e.OrganizationID == "" {
		return "hybrid framework mode is not enabled"
	}
	return fmt.Sprintf("hybrid framework mode is not enabled for organization %s", e.OrganizationID)
}

// MalformedObjectiveError reports an objective that cannot be interpreted at all.
// Business rule failures are reported through ValidationResult instead.
type MalformedObjectiveError struct {
	Field  string
	Reason string
}

func (e *MalformedObjectiveError) Error() string {
	if e.Field == "" {
		return "malformed objective: " + e.Reason
	}
	return fmt.Sprintf("malformed objective: %s: %s", e.Field, e.Reason)
}

// AuditWriteError wraps a failed audit append. It is logged and never returned
// from a translation.
type AuditWriteError struct {
	Op  string
	Err error
}

func (e *AuditWriteError) Error() string {
	return fmt.Sprintf("audit write %s failed: %v", e.Op, e.Err)
}

func (e *AuditWriteError) Unwrap() error { return e.Err }

// IsUnsupported reports whether err is an UnsupportedFrameworkError.
func IsUnsupported(err error) bool {
	var target *UnsupportedFrameworkError
	return errors.As(err, &target)
}

// IsHybridNotEnabled reports whether err is a HybridNotEnabledError.
func IsHybridNotEnabled(err error) bool {
	var target *HybridNotEnabledError
	return errors.As(err, &target)
}

// IsMalformed reports whether err is a MalformedObjectiveError.
func IsMalformed(err error) bool {
	var target *MalformedObjectiveError
	return errors.As(err, &target)
}
