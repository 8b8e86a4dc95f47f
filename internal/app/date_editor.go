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

// DealQueue lists a manager's deals in priority order.
type DealQueue interface {
	ListByPriority(ctx context.Context, ownerTelegramID int64, limit int) ([]*deal.Deal, error)
}

// DateField names one of the two directly editable deal dates.
type DateField int

const (
	FieldNextContact DateField = iota
	FieldExpectedClose
)

func (f DateField) String() string {
	if f == FieldExpectedClose {
		return "expected_close"
	}
	return "next_contact_date"
}

// ShiftResult describes a completed quick shift.
type ShiftResult struct {
	NextContactDate string
	// MovedTo is set when the editor switched to a more urgent deal afterwards.
	MovedTo *deal.Deal
}

// DateEditor holds the input buffers for a deal's follow-up and expected close
// dates and commits them as full-record updates.
type DateEditor struct {
	mu      sync.Mutex
	updater DealUpdater
	queue   DealQueue
	ownerID int64
	logger  *logrus.Entry
	now     func() time.Time

	deal          *deal.Deal
	nextContact   string
	expectedClose string
	committing    bool
}

func NewDateEditor(updater DealUpdater, queue DealQueue, ownerTelegramID int64, logger *logrus.Entry) *DateEditor {
	return &DateEditor{
		updater: updater,
		queue:   queue,
		ownerID: ownerTelegramID,
		logger:  logger,
		now:     time.Now,
	}
}

// Select makes d the edited deal. The stored copy is always replaced with d.
// On a new deal both buffers are reseeded; on the same deal only buffers
// without pending edits follow the fresh values.
func (e *DateEditor) Select(d *deal.Deal) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selectLocked(d)
}

func (e *DateEditor) selectLocked(d *deal.Deal) {
	if d == nil {
		e.deal = nil
		e.nextContact, e.expectedClose = "", ""
		return
	}
	prev := e.deal
	dealCopy := *d
	e.deal = &dealCopy

	if prev == nil || prev.ID != d.ID {
		e.nextContact = d.NextContactDate.String
		e.expectedClose = d.ExpectedClose.String
		return
	}
	if e.nextContact == prev.NextContactDate.String {
		e.nextContact = d.NextContactDate.String
	}
	if e.expectedClose == prev.ExpectedClose.String {
		e.expectedClose = d.ExpectedClose.String
	}
}

// Committing reports whether a date update is in flight.
func (e *DateEditor) Committing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.committing
}

// Deal returns the edited deal with every committed change applied.
func (e *DateEditor) Deal() *deal.Deal {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deal == nil {
		return nil
	}
	d := *e.deal
	return &d
}

// Value returns the live buffer of a field.
func (e *DateEditor) Value(field DateField) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return *e.buffer(field)
}

// Change replaces the buffer of a field without committing it.
func (e *DateEditor) Change(field DateField, value string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	*e.buffer(field) = value
}

// Blur commits the field when its buffer differs from the stored value.
// It reports whether an update was issued.
func (e *DateEditor) Blur(ctx context.Context, field DateField) (bool, error) {
	return e.commit(ctx, field)
}

// QuickShift moves the follow-up date days ahead of the stored follow-up date,
// or of today when none is set, and commits it. After the commit the editor
// switches to the owner's most urgent deal if that is a different one.
func (e *DateEditor) QuickShift(ctx context.Context, days int) (ShiftResult, error) {
	e.mu.Lock()
	if e.deal == nil {
		e.mu.Unlock()
		return ShiftResult{}, ErrNoDealSelected
	}
	base := timeline.StartOfDay(e.now())
	if stored, ok := timeline.ParseDate(e.deal.NextContactDate.String); ok && e.deal.NextContactDate.Valid {
		base = stored
	}
	shifted := timeline.FormatDate(timeline.AddDays(base, days))
	e.nextContact = shifted
	e.mu.Unlock()

	committed, err := e.commit(ctx, FieldNextContact)
	if err != nil {
		return ShiftResult{}, err
	}
	result := ShiftResult{NextContactDate: shifted}
	if !committed {
		return result, nil
	}

	top, err := e.queue.ListByPriority(ctx, e.ownerID, 1)
	if err != nil {
		// The shift itself is saved; staying on the current deal is fine.
		e.logger.WithError(err).Warn("Could not load deal priority after quick shift")
		return result, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if len(top) > 0 && e.deal != nil && top[0].ID != e.deal.ID {
		e.selectLocked(top[0])
		moved := *top[0]
		result.MovedTo = &moved
		e.logger.WithField("deal_id", top[0].ID).Debug("Moved to the most urgent deal")
	}
	return result, nil
}

func (e *DateEditor) commit(ctx context.Context, field DateField) (bool, error) {
	e.mu.Lock()
	if e.deal == nil {
		e.mu.Unlock()
		return false, ErrNoDealSelected
	}
	if e.committing {
		e.mu.Unlock()
		return false, ErrCommitInFlight
	}

	value := *e.buffer(field)
	if value != "" {
		parsed, ok := timeline.ParseDate(value)
		if !ok {
			e.mu.Unlock()
			return false, ErrInvalidDate
		}
		value = timeline.FormatDate(parsed)
	}

	fields := e.deal.EditableFields()
	stored := &fields.NextContactDate
	if field == FieldExpectedClose {
		stored = &fields.ExpectedClose
	}
	if stored.String == value && stored.Valid == (value != "") {
		e.mu.Unlock()
		return false, nil
	}
	*stored = deal.NullDate(value)

	dealID := e.deal.ID
	e.committing = true
	e.mu.Unlock()

	logCtx := e.logger.WithFields(logrus.Fields{
		"deal_id": dealID,
		"field":   field.String(),
		"value":   value,
	})
	err := e.updater.Update(ctx, dealID, fields)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.committing = false
	if err != nil {
		logCtx.WithError(err).Error("Failed to update deal date")
		return false, fmt.Errorf("failed to update %s of deal %s: %w", field, dealID, err)
	}
	logCtx.Info("Deal date updated")

	if e.deal != nil && e.deal.ID == dealID {
		e.deal.Apply(fields)
		*e.buffer(field) = value
	}
	return true, nil
}

func (e *DateEditor) buffer(field DateField) *string {
	if field == FieldExpectedClose {
		return &e.expectedClose
	}
	return &e.nextContact
}
