package viewing

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// FieldErrors maps a form field key (e.g. "dates[1]" or "times") to its inline error.
type FieldErrors map[string]string

// Has reports whether the field has an error.
func (fe FieldErrors) Has(key string) bool {
	_, ok := fe[key]
	return ok
}

// Error joins all field errors in key order so FieldErrors can be returned as an error.
func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fe[k])
	}
	return strings.Join(parts, "; ")
}

// ProposeSlotsForm holds the candidate dates and times staff edit before proposing.
// Both lists always keep at least one entry. MaxSlots caps each list; zero means no cap.
type ProposeSlotsForm struct {
	Dates        []string
	Times        []string
	PrivateNotes string
	MaxSlots     int
}

// NewProposeSlotsForm returns a form with one empty date and one empty time.
func NewProposeSlotsForm() *ProposeSlotsForm {
	return &ProposeSlotsForm{Dates: []string{""}, Times: []string{""}}
}

// AddDate appends an empty date field unless the form is at its cap.
func (f *ProposeSlotsForm) AddDate() {
	if f.CanAddDate() {
		f.Dates = append(f.Dates, "")
	}
}

// AddTime appends an empty time field unless the form is at its cap.
func (f *ProposeSlotsForm) AddTime() {
	if f.CanAddTime() {
		f.Times = append(f.Times, "")
	}
}

// CanAddDate reports whether another date row fits under MaxSlots.
func (f *ProposeSlotsForm) CanAddDate() bool { return f.MaxSlots <= 0 || len(f.Dates) < f.MaxSlots }

// CanAddTime reports whether another time row fits under MaxSlots.
func (f *ProposeSlotsForm) CanAddTime() bool { return f.MaxSlots <= 0 || len(f.Times) < f.MaxSlots }

// RemoveDate drops the date at i unless it is the last remaining one.
func (f *ProposeSlotsForm) RemoveDate(i int) {
	f.Dates = removeAt(f.Dates, i)
}

// RemoveTime drops the time at i unless it is the last remaining one.
func (f *ProposeSlotsForm) RemoveTime(i int) {
	f.Times = removeAt(f.Times, i)
}

func removeAt(list []string, i int) []string {
	if len(list) <= 1 || i < 0 || i >= len(list) {
		return list
	}
	return slices.Delete(slices.Clone(list), i, i+1)
}

// Validate checks every date and time and returns the inline errors to show.
// An empty result means the form may be submitted.
func (f *ProposeSlotsForm) Validate() FieldErrors {
	errs := FieldErrors{}

	if len(f.Dates) == 0 {
		errs["dates"] = "At least one date is required"
	}
	if len(f.Times) == 0 {
		errs["times"] = "At least one time is required"
	}

	seenDates := make(map[string]bool)
	for i, d := range f.Dates {
		key := fmt.Sprintf("dates[%d]", i)
		d = strings.TrimSpace(d)
		switch {
		case d == "":
			errs[key] = "Date is required"
		case !validDate(d):
			errs[key] = "Date must be in YYYY-MM-DD format"
		case seenDates[d]:
			errs["dates"] = "Duplicate dates are not allowed"
		}
		seenDates[d] = true
	}

	seenTimes := make(map[string]bool)
	for i, t := range f.Times {
		key := fmt.Sprintf("times[%d]", i)
		t = strings.TrimSpace(t)
		switch {
		case t == "":
			errs[key] = "Time is required"
		case !validTime(t):
			errs[key] = "Time must be in HH:MM format"
		case seenTimes[t]:
			errs["times"] = "Duplicate times are not allowed"
		}
		seenTimes[t] = true
	}

	if f.MaxSlots > 0 {
		if len(f.Dates) > f.MaxSlots {
			errs["dates"] = fmt.Sprintf("At most %d dates can be proposed", f.MaxSlots)
		}
		if len(f.Times) > f.MaxSlots {
			errs["times"] = fmt.Sprintf("At most %d times can be proposed", f.MaxSlots)
		}
	}

	return errs
}

// Request validates the form and builds the propose-slots body.
// It returns the FieldErrors as the error when validation fails.
func (f *ProposeSlotsForm) Request() (ProposeSlotsRequest, error) {
	if errs := f.Validate(); len(errs) > 0 {
		return ProposeSlotsRequest{}, errs
	}
	return ProposeSlotsRequest{
		ProposedDates: trimAll(f.Dates),
		ProposedTimes: trimAll(f.Times),
		PrivateNotes:  strings.TrimSpace(f.PrivateNotes),
	}, nil
}

// SelectSlotForm holds a customer's choice among the proposed dates and times.
type SelectSlotForm struct {
	Dates []string
	Times []string
	Date  string
	Time  string
	Notes string
}

// NewSelectSlotForm builds the form from a viewing's proposals, pre-selecting a
// date or time when it is the only candidate.
func NewSelectSlotForm(v *ScheduledViewing) *SelectSlotForm {
	f := &SelectSlotForm{}
	if v == nil {
		return f
	}
	f.Dates = slices.Clone(v.ProposedDates)
	f.Times = slices.Clone(v.ProposedTimes)
	if len(f.Dates) == 1 {
		f.Date = f.Dates[0]
	}
	if len(f.Times) == 1 {
		f.Time = f.Times[0]
	}
	return f
}

// ChooseDate selects one of the proposed dates.
func (f *SelectSlotForm) ChooseDate(d string) error {
	if !slices.Contains(f.Dates, d) {
		return fmt.Errorf("date %q was not proposed", d)
	}
	f.Date = d
	return nil
}

// ChooseTime selects one of the proposed times.
func (f *SelectSlotForm) ChooseTime(t string) error {
	if !slices.Contains(f.Times, t) {
		return fmt.Errorf("time %q was not proposed", t)
	}
	f.Time = t
	return nil
}

// Ready reports whether both a date and a time are chosen, which enables submission.
func (f *SelectSlotForm) Ready() bool {
	return f.Date != "" && f.Time != ""
}

// Request builds the select-slot body once the form is ready.
func (f *SelectSlotForm) Request() (SelectSlotRequest, error) {
	if !f.Ready() {
		errs := FieldErrors{}
		if f.Date == "" {
			errs["date"] = "Please select a date"
		}
		if f.Time == "" {
			errs["time"] = "Please select a time"
		}
		return SelectSlotRequest{}, errs
	}
	return SelectSlotRequest{
		SelectedDate: f.Date,
		SelectedTime: f.Time,
		Notes:        strings.TrimSpace(f.Notes),
	}, nil
}

func validDate(s string) bool {
	_, err := time.Parse(dateLayout, s)
	return err == nil
}

func validTime(s string) bool {
	_, err := time.Parse(timeLayout, s)
	return err == nil
}

func trimAll(list []string) []string {
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = strings.TrimSpace(s)
	}
	return out
}
