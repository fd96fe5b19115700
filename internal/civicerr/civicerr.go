// Package civicerr defines the stable error kinds the platform surfaces to
// callers. Handlers map each kind to an HTTP status; core components wrap a
// kind with fmt.Errorf("...: %w", kind) so errors.Is keeps working across
// layers.
package civicerr

import "errors"

var (
	// ErrValidation marks malformed or out-of-bounds user input.
	// No side effects were committed.
	ErrValidation = errors.New("validation failed")
	// ErrModerationRejected marks a submission rejected by the AI verdict
	// (or by the fail-closed policy when analysis itself failed).
	// Tentative records and files have been cleaned up.
	ErrModerationRejected = errors.New("complaint rejected by moderation")
	// ErrServiceUnavailable marks an unreachable or misconfigured AI
	// provider. Treated identically to a moderation rejection.
	ErrServiceUnavailable = errors.New("moderation service unavailable")
	// ErrDelivery marks a failed notification send. The state transition
	// that triggered the notice stays committed.
	ErrDelivery = errors.New("notice delivery failed")
	// ErrAuthorization marks a bad resolution token, a non-owner delete,
	// or a self-verification attempt. No state change.
	ErrAuthorization = errors.New("not authorized")
	// ErrConflict marks a duplicate verification or an attempt to delete
	// a processed complaint. No state change.
	ErrConflict = errors.New("conflicting action")
	// ErrNotFound marks a missing complaint, ward or profile.
	ErrNotFound = errors.New("not found")
)
