package timeline

import "time"

// Window is a timeline split around a reference day.
type Window struct {
	Upcoming  []Event `json:"upcomingEvents"`
	Past      []Event `json:"pastEvents"`
	NextEvent *Event  `json:"nextEvent"`
	// SuggestedNextContact is empty when there is no suggestion.
	SuggestedNextContact string `json:"suggestedNextContactInput,omitempty"`
}

// ComputeWindow partitions events with DefaultRule. A zero today means the
// current local day.
func ComputeWindow(events []Event, today time.Time) Window {
	return DefaultRule.Window(events, today)
}

// Window partitions sorted events into upcoming (date >= today) and past,
// both keeping input order. Events with an unparseable date land in neither.
//
// NextEvent is the first upcoming event or, when nothing is upcoming, the
// first event of the whole input. The suggestion is derived from NextEvent.
func (r Rule) Window(events []Event, today time.Time) Window {
	day := referenceDay(today)
	w := Window{
		Upcoming: make([]Event, 0),
		Past:     make([]Event, 0),
	}

	for _, ev := range events {
		date, ok := ParseDate(ev.Date)
		if !ok {
			continue
		}
		if date.Before(day) {
			w.Past = append(w.Past, ev)
		} else {
			w.Upcoming = append(w.Upcoming, ev)
		}
	}

	switch {
	case len(w.Upcoming) > 0:
		next := w.Upcoming[0]
		w.NextEvent = &next
	case len(events) > 0:
		next := events[0]
		w.NextEvent = &next
	default:
		return w
	}

	if s, ok := r.Recommend(w.NextEvent, day); ok {
		w.SuggestedNextContact = s
	}
	return w
}

// Find returns the event with the given id from either side of the window.
func (w Window) Find(id string) (*Event, bool) {
	for i := range w.Upcoming {
		if w.Upcoming[i].ID == id {
			ev := w.Upcoming[i]
			return &ev, true
		}
	}
	for i := range w.Past {
		if w.Past[i].ID == id {
			ev := w.Past[i]
			return &ev, true
		}
	}
	return nil, false
}
