package viewing

// forward maps each status to the single status staff or customer can move it to next.
var forward = map[Status]Status{
	StatusNone:         StatusRequested,
	StatusRequested:    StatusOptionsSent,
	StatusOptionsSent:  StatusSlotSelected,
	StatusSlotSelected: StatusConfirmed,
	StatusConfirmed:    StatusCompleted,
}

// CanTransition reports whether moving from one status to another is a legal step.
// The backend is authoritative; callers use this only to decide which actions to offer.
//
// A completed or cancelled viewing may be followed by a fresh request, which the
// backend records as a new viewing.
func CanTransition(from, to Status) bool {
	if to == StatusCancelled {
		return from != StatusNone && !from.IsTerminal()
	}
	if to == StatusRequested && from.IsTerminal() {
		return true
	}
	next, ok := forward[from]
	return ok && next == to
}

// ActionKind identifies the primary call-to-action for a viewing status.
type ActionKind string

const (
	ActionRequest        ActionKind = "request"
	ActionAwaitOptions   ActionKind = "await_options"
	ActionSelectSlot     ActionKind = "select_slot"
	ActionAwaitConfirm   ActionKind = "await_confirmation"
	ActionViewConfirmed  ActionKind = "view_confirmed"
	ActionRequestAnother ActionKind = "request_another"
)

// Action is the single primary call-to-action shown to a customer on a property page.
type Action struct {
	Kind      ActionKind `json:"kind"`
	Label     string     `json:"label"`
	Enabled   bool       `json:"enabled"`
	Next      Status     `json:"next,omitempty"` // status the action leads to, if it triggers one
	ViewingID string     `json:"viewing_id,omitempty"`
}

// ActionFor returns the primary action for the viewer's current viewing on a property.
// A nil viewing means none exists.
func ActionFor(v *ScheduledViewing) Action {
	var id string
	if v != nil {
		id = v.ID
	}

	switch v.CurrentStatus() {
	case StatusRequested:
		return Action{Kind: ActionAwaitOptions, Label: "Viewing Request Submitted", ViewingID: id}
	case StatusOptionsSent:
		return Action{Kind: ActionSelectSlot, Label: "Select Viewing Slot", Enabled: true, Next: StatusSlotSelected, ViewingID: id}
	case StatusSlotSelected:
		return Action{Kind: ActionAwaitConfirm, Label: "Waiting for Confirmation", ViewingID: id}
	case StatusConfirmed:
		return Action{Kind: ActionViewConfirmed, Label: "Viewing Confirmed: " + v.ViewingDate, Enabled: true, ViewingID: id}
	case StatusCompleted, StatusCancelled:
		return Action{Kind: ActionRequestAnother, Label: "Schedule Another Viewing", Enabled: true, Next: StatusRequested, ViewingID: id}
	}

	// StatusNone
	return Action{Kind: ActionRequest, Label: "Schedule a Viewing", Enabled: true, Next: StatusRequested}
}

// StaffAction is an operation sales-ops staff can perform on a viewing.
type StaffAction string

const (
	StaffPropose  StaffAction = "propose"
	StaffConfirm  StaffAction = "confirm"
	StaffComplete StaffAction = "complete"
	StaffCancel   StaffAction = "cancel"
)

// Label returns a button label for the staff action.
func (a StaffAction) Label() string {
	switch a {
	case StaffPropose:
		return "Propose Slots"
	case StaffConfirm:
		return "Confirm Viewing"
	case StaffComplete:
		return "Mark Completed"
	case StaffCancel:
		return "Cancel Viewing"
	default:
		return string(a)
	}
}

// StaffActions lists the actions a sales-ops dashboard offers for a status.
// Proposing again while options are out lets staff revise the candidates.
func StaffActions(s Status) []StaffAction {
	var actions []StaffAction
	switch s {
	case StatusRequested, StatusOptionsSent:
		actions = append(actions, StaffPropose)
	case StatusSlotSelected:
		actions = append(actions, StaffConfirm)
	case StatusConfirmed:
		actions = append(actions, StaffComplete)
	}
	if CanTransition(s, StatusCancelled) {
		actions = append(actions, StaffCancel)
	}
	return actions
}
