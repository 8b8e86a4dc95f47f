package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"deal_followup_bot/internal/domain/deal"
	"deal_followup_bot/internal/domain/timeline"

	"github.com/sirupsen/logrus"
)

// DealUpdater writes a full set of editable fields onto a deal.
type DealUpdater interface {
	Update(ctx context.Context, dealID string, fields deal.EditableFields) error
}

// DelayState is the lifecycle state of a DelayWorkflow.
type DelayState int

const (
	DelayClosed DelayState = iota
	DelayOpen
	DelayCommitting
)

func (s DelayState) String() string {
	switch s {
	case DelayClosed:
		return "closed"
	case DelayOpen:
		return "open"
	case DelayCommitting:
		return "committing"
	default:
		return "unknown"
	}
}

// DelayWorkflow lets a manager pick a timeline event of a deal and postpone
// the deal to it: the follow-up date becomes the event's recommendation and
// the expected close becomes the event date.
type DelayWorkflow struct {
	mu      sync.Mutex
	updater DealUpdater
	rule    timeline.Rule
	logger  *logrus.Entry

	state      DelayState
	deal       *deal.Deal
	events     []timeline.Event
	window     timeline.Window
	today      time.Time
	selectedID string
}

func NewDelayWorkflow(updater DealUpdater, rule timeline.Rule, logger *logrus.Entry) *DelayWorkflow {
	return &DelayWorkflow{
		updater: updater,
		rule:    rule,
		logger:  logger,
	}
}

// Open starts a session for d. today is captured once and used for every
// derivation until the workflow is reopened.
func (w *DelayWorkflow) Open(d *deal.Deal, events []timeline.Event, today time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if today.IsZero() {
		today = timeline.Today()
	}
	dealCopy := *d
	w.deal = &dealCopy
	w.events = events
	w.today = timeline.StartOfDay(today)
	w.window = w.rule.Window(events, w.today)
	w.state = DelayOpen

	w.selectedID = ""
	switch {
	case w.window.NextEvent != nil:
		w.selectedID = w.window.NextEvent.ID
	case len(events) > 0:
		w.selectedID = events[0].ID
	}

	w.logger.WithFields(logrus.Fields{
		"deal_id":     d.ID,
		"events":      len(events),
		"selected_id": w.selectedID,
	}).Debug("Delay workflow opened")
}

func (w *DelayWorkflow) State() DelayState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Deal returns the deal the workflow was opened for, or nil when closed.
func (w *DelayWorkflow) Deal() *deal.Deal {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.deal
}

func (w *DelayWorkflow) Window() timeline.Window {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.window
}

func (w *DelayWorkflow) Today() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.today
}

func (w *DelayWorkflow) SelectedID() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.selectedID
}

// Selected returns the currently selected event.
func (w *DelayWorkflow) Selected() (*timeline.Event, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.selectedLocked()
}

func (w *DelayWorkflow) selectedLocked() (*timeline.Event, bool) {
	if w.selectedID == "" {
		return nil, false
	}
	if ev, ok := w.window.Find(w.selectedID); ok {
		return ev, true
	}
	// The default pick may be an event the window could not place.
	for i := range w.events {
		if w.events[i].ID == w.selectedID {
			ev := w.events[i]
			return &ev, true
		}
	}
	return nil, false
}

// Select changes the selection to an upcoming or past event.
func (w *DelayWorkflow) Select(eventID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch w.state {
	case DelayClosed:
		return ErrWorkflowClosed
	case DelayCommitting:
		return ErrCommitInFlight
	}
	if _, ok := w.window.Find(eventID); !ok {
		return ErrUnknownEvent
	}
	w.selectedID = eventID
	return nil
}

// Suggestion is the follow-up date the current selection would commit.
func (w *DelayWorkflow) Suggestion() (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	ev, ok := w.selectedLocked()
	if !ok {
		return "", false
	}
	return w.rule.Recommend(ev, w.today)
}

// Confirm writes the selection onto the deal. On failure the workflow stays
// open with the same selection so the manager can retry.
func (w *DelayWorkflow) Confirm(ctx context.Context) error {
	w.mu.Lock()
	switch w.state {
	case DelayClosed:
		w.mu.Unlock()
		return ErrWorkflowClosed
	case DelayCommitting:
		w.mu.Unlock()
		return ErrCommitInFlight
	}
	ev, ok := w.selectedLocked()
	if !ok {
		w.mu.Unlock()
		return ErrNoSelection
	}
	suggested, _ := w.rule.Recommend(ev, w.today)

	fields := w.deal.EditableFields()
	fields.NextContactDate = deal.NullDate(suggested)
	fields.ExpectedClose = deal.NullDate(ev.Date)
	dealID := w.deal.ID
	w.state = DelayCommitting
	w.mu.Unlock()

	logCtx := w.logger.WithFields(logrus.Fields{
		"deal_id":           dealID,
		"event_id":          ev.ID,
		"next_contact_date": suggested,
		"expected_close":    ev.Date,
	})

	err := w.updater.Update(ctx, dealID, fields)

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		if w.state == DelayCommitting {
			w.state = DelayOpen
		}
		logCtx.WithError(err).Error("Failed to postpone deal")
		return fmt.Errorf("failed to postpone deal %s: %w", dealID, err)
	}

	logCtx.Info("Deal postponed")
	w.closeLocked()
	return nil
}

// Close discards the session without side effects.
func (w *DelayWorkflow) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closeLocked()
}

func (w *DelayWorkflow) closeLocked() {
	w.state = DelayClosed
	w.deal = nil
	w.events = nil
	w.window = timeline.Window{}
	w.today = time.Time{}
	w.selectedID = ""
}
