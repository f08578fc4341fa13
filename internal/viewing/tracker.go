package viewing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrActionNotAvailable is returned when the current status does not offer the requested action.
var ErrActionNotAvailable = errors.New("action not available for current viewing status")

// Backend is the subset of the marketplace API a Tracker needs.
type Backend interface {
	LatestViewing(ctx context.Context, propertyID string) (*ScheduledViewing, error)
	RequestViewing(ctx context.Context, req CreateRequest) (*ScheduledViewing, error)
	SelectSlot(ctx context.Context, viewingID string, req SelectSlotRequest) (*ScheduledViewing, error)
	CancelViewing(ctx context.Context, viewingID, reason string) (*ScheduledViewing, error)
}

// Recorder logs transitions issued by this client.
type Recorder interface {
	Record(from Status, v *ScheduledViewing) error
}

// Tracker holds the viewer's current viewing for one property and drives the
// customer side of the workflow. It is not safe for concurrent use.
type Tracker struct {
	backend    Backend
	recorder   Recorder
	propertyID string
	current    *ScheduledViewing
	degraded   bool
}

// NewTracker creates a tracker for a property. recorder may be nil.
func NewTracker(backend Backend, propertyID string, recorder Recorder) *Tracker {
	return &Tracker{backend: backend, recorder: recorder, propertyID: propertyID}
}

// Load fetches the latest viewing for the property once.
//
// A failed fetch is treated as "no viewing exists" so the page still renders,
// but it is logged and reported by Degraded.
func (t *Tracker) Load(ctx context.Context) {
	v, err := t.backend.LatestViewing(ctx, t.propertyID)
	if err != nil {
		slog.Warn("viewing status unavailable, showing as not requested",
			"property_id", t.propertyID,
			"error", err,
		)
		t.current = nil
		t.degraded = true
		return
	}
	t.current = v
	t.degraded = false
}

// Set adopts a viewing the caller already fetched, in place of Load.
func (t *Tracker) Set(v *ScheduledViewing) {
	t.current = v
	t.degraded = false
}

// Viewing returns the current viewing, or nil when none exists.
func (t *Tracker) Viewing() *ScheduledViewing {
	return t.current
}

// Status returns the current status.
func (t *Tracker) Status() Status {
	return t.current.CurrentStatus()
}

// Degraded reports whether the last Load failed and the status is a fallback.
func (t *Tracker) Degraded() bool {
	return t.degraded
}

// Action returns the primary call-to-action for the current status.
func (t *Tracker) Action() Action {
	return ActionFor(t.current)
}

// Request asks for a viewing of the property.
func (t *Tracker) Request(ctx context.Context, notes string) (*ScheduledViewing, error) {
	from := t.Status()
	if !CanTransition(from, StatusRequested) {
		return nil, fmt.Errorf("requesting viewing: %w", ErrActionNotAvailable)
	}

	req := CreateRequest{PropertyID: t.propertyID, Notes: notes}
	if t.current != nil {
		req.RequestID = t.current.RequestID
	}

	v, err := t.backend.RequestViewing(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("requesting viewing: %w", err)
	}
	return t.apply(ctx, from, v)
}

// SelectSlot submits the customer's chosen slot from a ready form.
func (t *Tracker) SelectSlot(ctx context.Context, form *SelectSlotForm) (*ScheduledViewing, error) {
	from := t.Status()
	if from != StatusOptionsSent {
		return nil, fmt.Errorf("selecting slot: %w", ErrActionNotAvailable)
	}

	body, err := form.Request()
	if err != nil {
		return nil, err
	}

	v, err := t.backend.SelectSlot(ctx, t.current.ID, body)
	if err != nil {
		return nil, fmt.Errorf("selecting slot: %w", err)
	}
	return t.apply(ctx, from, v)
}

// Cancel withdraws the current viewing.
func (t *Tracker) Cancel(ctx context.Context, reason string) (*ScheduledViewing, error) {
	from := t.Status()
	if !CanTransition(from, StatusCancelled) {
		return nil, fmt.Errorf("cancelling viewing: %w", ErrActionNotAvailable)
	}

	v, err := t.backend.CancelViewing(ctx, t.current.ID, reason)
	if err != nil {
		return nil, fmt.Errorf("cancelling viewing: %w", err)
	}
	return t.apply(ctx, from, v)
}

// apply adopts the resource the server returned as the new state. A response
// without a status is re-fetched rather than guessed.
func (t *Tracker) apply(ctx context.Context, from Status, v *ScheduledViewing) (*ScheduledViewing, error) {
	if v == nil || v.Status == "" {
		latest, err := t.backend.LatestViewing(ctx, t.propertyID)
		if err != nil {
			return nil, fmt.Errorf("refreshing viewing: %w", err)
		}
		v = latest
	}

	t.current = v
	t.degraded = false

	if t.recorder != nil && v != nil {
		if err := t.recorder.Record(from, v); err != nil {
			slog.Warn("recording viewing transition", "viewing_id", v.ID, "error", err)
		}
	}

	return v, nil
}
