package app

import "errors"

// Application-level errors shared by the deal workflows.
var (
	ErrNotAuthorized  = errors.New("user is not an authorized manager")
	ErrDealNotFound   = errors.New("deal not found")
	ErrWorkflowClosed = errors.New("delay workflow is not open")
	ErrNoSelection    = errors.New("no event selected")
	ErrUnknownEvent   = errors.New("event is not part of the deal timeline")
	ErrCommitInFlight = errors.New("an update for this deal is already in progress")
	ErrNoDealSelected = errors.New("no deal selected for editing")
	ErrInvalidDate    = errors.New("date must be in YYYY-MM-DD format")
)
