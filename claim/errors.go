/*
errors.go - Centralized error types for the claim engine and its adapters

PURPOSE:
  All error types in one place for consistency and discoverability.
  The track engines themselves never return errors - input-shape problems
  surface as all-unset results, and business-rule violations are reflected
  faithfully in the computed totals. These errors belong to the adapter
  boundary: request validation before submission, and history lookups.

ERROR CATEGORIES:
  1. Validation errors - Submission blocked by the adapter
  2. Lookup errors - Missing records in the history store

USAGE:
  if errors.Is(err, claim.ErrApprovedExceedsClaimed) {
      // 400, never silently clamped
  }

SEE ALSO:
  - api/handlers.go: Maps these to HTTP status codes
  - store/sqlite: Returns ErrResponseNotFound
*/
package claim

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrApprovedExceedsClaimed is returned when an approved amount is
	// greater than the claimed amount. The engine never clamps; the adapter
	// must block submission.
	ErrApprovedExceedsClaimed = errors.New("approved amount exceeds claimed amount")

	// ErrJustificationTooShort is returned when a track's rules require a
	// justification and the text is below the minimum length.
	ErrJustificationTooShort = errors.New("justification below minimum length")

	// ErrNoClaimLines is returned when a Compensation submission arrives
	// with no claim lines at all.
	ErrNoClaimLines = errors.New("no claim lines to evaluate")

	// ErrIncompleteForm is returned when a required field of a visible
	// section is missing or malformed.
	ErrIncompleteForm = errors.New("required fields missing for visible sections")

	// ErrUnknownTrack is returned for a track name outside the vocabulary.
	ErrUnknownTrack = errors.New("unknown claim track")

	// ErrOutcomeNotAvailable is returned when the chosen outcome is not in
	// the track's outcome vocabulary for the given configuration.
	ErrOutcomeNotAvailable = errors.New("outcome not available for this track")

	// ErrResponseNotFound is returned when a stored response doesn't exist.
	ErrResponseNotFound = errors.New("response not found")
)

// MinJustificationLength is the minimum justification text length required
// whenever a line reaches a non-trivial outcome.
const MinJustificationLength = 10

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ExcessApprovalError reports which line's approval exceeded its claim.
type ExcessApprovalError struct {
	Line     string
	Claimed  Money
	Approved Money
}

func (e *ExcessApprovalError) Error() string {
	return fmt.Sprintf("line %q: approved %v exceeds claimed %v",
		e.Line, e.Approved.Value, e.Claimed.Value)
}

func (e *ExcessApprovalError) Unwrap() error {
	return ErrApprovedExceedsClaimed
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsValidation returns true if the error is due to invalid evaluator input.
func IsValidation(err error) bool {
	return errors.Is(err, ErrApprovedExceedsClaimed) ||
		errors.Is(err, ErrJustificationTooShort) ||
		errors.Is(err, ErrNoClaimLines) ||
		errors.Is(err, ErrIncompleteForm) ||
		errors.Is(err, ErrOutcomeNotAvailable)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrResponseNotFound) ||
		errors.Is(err, ErrUnknownTrack)
}
