package repository

import (
	"context"

	"edumaster-order-bot/internal/domain/model"
)

// SessionStore is the port for the per-user conversation session records.
//
// Implementations must serialize mutation per user key: the update pipeline
// runs several workers over one shared store. All returned sessions are
// snapshot copies; mutation only happens through store methods.
type SessionStore interface {
	// Get returns the current session for the user, touching its activity
	// timestamp. ok is false when the user has no active flow.
	Get(ctx context.Context, userID int64) (s *model.Session, ok bool)

	// Create starts a fresh session at the given step, unconditionally
	// replacing any existing session for that user.
	Create(ctx context.Context, userID int64, step model.Step) *model.Session

	// Update moves the session to step (when non-empty) and merges the patch
	// into the order data. A missing session is implicitly created at the
	// menu step before the patch is applied.
	Update(ctx context.Context, userID int64, step model.Step, patch *model.OrderPatch) *model.Session

	// AddFile appends an attachment to the user's session and returns the new
	// attachment count. Returns domain.ErrNotFound when no session exists and
	// domain.ErrTooManyFiles at the per-order cap.
	AddFile(ctx context.Context, userID int64, att model.Attachment) (int, error)

	// Clear removes the session. No-op when absent.
	Clear(ctx context.Context, userID int64)

	// SweepExpired evicts every session idle beyond the configured timeout
	// and returns how many were removed.
	SweepExpired(ctx context.Context) int
}
