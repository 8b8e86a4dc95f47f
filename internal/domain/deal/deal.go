package deal

import (
	"database/sql"
	"time"
)

// Deal is a sales-pipeline deal owned by one manager.
// NextContactDate and ExpectedClose hold YYYY-MM-DD dates.
type Deal struct {
	ID              string
	OwnerTelegramID int64
	Title           string
	ClientName      string
	Stage           string
	Description     sql.NullString
	NextContactDate sql.NullString
	ExpectedClose   sql.NullString
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// EditableFields is the full set of fields an update replaces.
// Updates are whole-record writes, not patches.
type EditableFields struct {
	Title           string
	ClientName      string
	Stage           string
	Description     sql.NullString
	NextContactDate sql.NullString
	ExpectedClose   sql.NullString
}

// EditableFields snapshots the current editable state of the deal.
func (d *Deal) EditableFields() EditableFields {
	return EditableFields{
		Title:           d.Title,
		ClientName:      d.ClientName,
		Stage:           d.Stage,
		Description:     d.Description,
		NextContactDate: d.NextContactDate,
		ExpectedClose:   d.ExpectedClose,
	}
}

// Apply copies fields onto the deal.
func (d *Deal) Apply(f EditableFields) {
	d.Title = f.Title
	d.ClientName = f.ClientName
	d.Stage = f.Stage
	d.Description = f.Description
	d.NextContactDate = f.NextContactDate
	d.ExpectedClose = f.ExpectedClose
}

// NullDate wraps a YYYY-MM-DD value; the empty string is NULL.
func NullDate(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
