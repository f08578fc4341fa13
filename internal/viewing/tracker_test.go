package viewing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend keeps one viewing per property and moves it the way the API does.
type fakeBackend struct {
	viewings  map[string]*ScheduledViewing
	latestErr error
	sparse    bool // mutations return an empty body

	requests []CreateRequest
	selected []SelectSlotRequest
	cancels  []string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{viewings: make(map[string]*ScheduledViewing)}
}

func (b *fakeBackend) LatestViewing(_ context.Context, propertyID string) (*ScheduledViewing, error) {
	if b.latestErr != nil {
		return nil, b.latestErr
	}
	v, ok := b.viewings[propertyID]
	if !ok {
		return nil, nil
	}
	cp := *v
	return &cp, nil
}

func (b *fakeBackend) RequestViewing(_ context.Context, req CreateRequest) (*ScheduledViewing, error) {
	b.requests = append(b.requests, req)
	v := &ScheduledViewing{ID: "v-" + req.PropertyID, PropertyID: req.PropertyID, Status: StatusRequested, Notes: req.Notes}
	b.viewings[req.PropertyID] = v
	return b.respond(v), nil
}

func (b *fakeBackend) SelectSlot(_ context.Context, id string, req SelectSlotRequest) (*ScheduledViewing, error) {
	b.selected = append(b.selected, req)
	v := b.byID(id)
	if v == nil {
		return nil, errors.New("not found")
	}
	v.Status = StatusSlotSelected
	v.SelectedDate = req.SelectedDate
	v.SelectedTime = req.SelectedTime
	return b.respond(v), nil
}

func (b *fakeBackend) CancelViewing(_ context.Context, id, reason string) (*ScheduledViewing, error) {
	b.cancels = append(b.cancels, reason)
	v := b.byID(id)
	if v == nil {
		return nil, errors.New("not found")
	}
	v.Status = StatusCancelled
	return b.respond(v), nil
}

func (b *fakeBackend) byID(id string) *ScheduledViewing {
	for _, v := range b.viewings {
		if v.ID == id {
			return v
		}
	}
	return nil
}

func (b *fakeBackend) respond(v *ScheduledViewing) *ScheduledViewing {
	if b.sparse {
		return &ScheduledViewing{ID: v.ID}
	}
	cp := *v
	return &cp
}

type recordedTransition struct {
	from Status
	to   Status
}

type fakeRecorder struct {
	got []recordedTransition
	err error
}

func (r *fakeRecorder) Record(from Status, v *ScheduledViewing) error {
	r.got = append(r.got, recordedTransition{from: from, to: v.Status})
	return r.err
}

func TestTrackerRequestFromNone(t *testing.T) {
	backend := newFakeBackend()
	rec := &fakeRecorder{}
	tr := NewTracker(backend, "P123", rec)

	tr.Load(context.Background())
	assert.Equal(t, StatusNone, tr.Status())
	assert.False(t, tr.Degraded())

	action := tr.Action()
	assert.Equal(t, "Schedule a Viewing", action.Label)
	assert.True(t, action.Enabled)

	v, err := tr.Request(context.Background(), "weekday mornings")
	require.NoError(t, err)
	assert.Equal(t, StatusRequested, v.Status)
	assert.Equal(t, StatusRequested, tr.Status())

	action = tr.Action()
	assert.Equal(t, "Viewing Request Submitted", action.Label)
	assert.False(t, action.Enabled)

	require.Len(t, backend.requests, 1)
	assert.Equal(t, "P123", backend.requests[0].PropertyID)
	assert.Equal(t, []recordedTransition{{StatusNone, StatusRequested}}, rec.got)
}

func TestTrackerLoadFailureFallsBackToNone(t *testing.T) {
	backend := newFakeBackend()
	backend.latestErr = errors.New("connection refused")
	tr := NewTracker(backend, "P123", nil)

	tr.Load(context.Background())
	assert.True(t, tr.Degraded())
	assert.Equal(t, StatusNone, tr.Status())
	assert.Equal(t, ActionRequest, tr.Action().Kind)
}

func TestTrackerSelectSlot(t *testing.T) {
	backend := newFakeBackend()
	backend.viewings["P123"] = &ScheduledViewing{
		ID:            "v-1",
		PropertyID:    "P123",
		Status:        StatusOptionsSent,
		ProposedDates: []string{"2026-04-01", "2026-04-02"},
		ProposedTimes: []string{"10:00"},
	}
	tr := NewTracker(backend, "P123", nil)
	tr.Load(context.Background())
	assert.Equal(t, ActionSelectSlot, tr.Action().Kind)

	form := NewSelectSlotForm(tr.Viewing())
	_, err := tr.SelectSlot(context.Background(), form)
	require.Error(t, err)
	assert.Empty(t, backend.selected)

	require.NoError(t, form.ChooseDate("2026-04-02"))
	v, err := tr.SelectSlot(context.Background(), form)
	require.NoError(t, err)
	assert.Equal(t, StatusSlotSelected, v.Status)
	assert.Equal(t, "2026-04-02", v.SelectedDate)
	assert.Equal(t, "10:00", v.SelectedTime)
	assert.Equal(t, "Waiting for Confirmation", tr.Action().Label)
}

func TestTrackerSelectSlotWrongStatus(t *testing.T) {
	backend := newFakeBackend()
	backend.viewings["P123"] = &ScheduledViewing{ID: "v-1", PropertyID: "P123", Status: StatusRequested}
	tr := NewTracker(backend, "P123", nil)
	tr.Load(context.Background())

	_, err := tr.SelectSlot(context.Background(), &SelectSlotForm{Date: "2026-04-01", Time: "10:00"})
	assert.ErrorIs(t, err, ErrActionNotAvailable)
}

func TestTrackerRequestWhileActive(t *testing.T) {
	backend := newFakeBackend()
	backend.viewings["P123"] = &ScheduledViewing{ID: "v-1", PropertyID: "P123", Status: StatusConfirmed}
	tr := NewTracker(backend, "P123", nil)
	tr.Load(context.Background())

	_, err := tr.Request(context.Background(), "")
	assert.ErrorIs(t, err, ErrActionNotAvailable)
	assert.Empty(t, backend.requests)
}

func TestTrackerCancelThenRequestAnother(t *testing.T) {
	backend := newFakeBackend()
	backend.viewings["P123"] = &ScheduledViewing{ID: "v-1", PropertyID: "P123", Status: StatusSlotSelected}
	tr := NewTracker(backend, "P123", nil)
	tr.Load(context.Background())

	v, err := tr.Cancel(context.Background(), "travelling")
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, v.Status)
	assert.Equal(t, []string{"travelling"}, backend.cancels)
	assert.Equal(t, "Schedule Another Viewing", tr.Action().Label)

	_, err = tr.Cancel(context.Background(), "")
	assert.ErrorIs(t, err, ErrActionNotAvailable)

	v, err = tr.Request(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, StatusRequested, v.Status)
}

func TestTrackerRefetchesSparseResponse(t *testing.T) {
	backend := newFakeBackend()
	backend.sparse = true
	tr := NewTracker(backend, "P123", nil)
	tr.Load(context.Background())

	v, err := tr.Request(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, StatusRequested, v.Status)
	assert.Equal(t, "P123", v.PropertyID)
}

func TestTrackerRecorderFailureDoesNotFail(t *testing.T) {
	backend := newFakeBackend()
	rec := &fakeRecorder{err: errors.New("disk full")}
	tr := NewTracker(backend, "P123", rec)
	tr.Load(context.Background())

	_, err := tr.Request(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, rec.got, 1)
}

func TestTrackerSetSkipsFetch(t *testing.T) {
	backend := newFakeBackend()
	backend.latestErr = errors.New("must not be called")
	tr := NewTracker(backend, "P123", nil)

	tr.Set(&ScheduledViewing{ID: "v-7", PropertyID: "P123", Status: StatusConfirmed, ViewingDate: "2026-04-09"})
	assert.False(t, tr.Degraded())
	assert.Equal(t, "Viewing Confirmed: 2026-04-09", tr.Action().Label)
}
