// Package timeline merges a deal's policy expirations and payment dates into a
// single ordered list of events and derives follow-up recommendations from it.
package timeline

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

// EventType tags the source a timeline event was derived from.
type EventType string

const (
	EventTypePolicyExpiration EventType = "policyExpiration"
	EventTypePayment          EventType = "payment"
)

// Fixed event titles shown next to every event of the given type.
const (
	TitlePolicyExpiration = "Policy expiration"
	TitlePayment          = "Payment"
)

// PolicySource is the read-only policy row a deal owns.
type PolicySource struct {
	ID      string
	Number  string
	Company string
	EndDate sql.NullString // YYYY-MM-DD
}

// PaymentSource is the read-only payment row a deal owns.
// Amount holds the raw numeric value as it came from storage.
type PaymentSource struct {
	ID            string
	ScheduledDate sql.NullString
	ActualDate    sql.NullString
	PolicyNumber  sql.NullString
	Amount        string
	Description   sql.NullString
}

// Event is a derived, immutable point on a deal's timeline.
// It is rebuilt from sources on every change and never persisted.
type Event struct {
	ID           string           `json:"id"`
	Type         EventType        `json:"type"`
	Date         string           `json:"date"`
	Title        string           `json:"title"`
	Description  string           `json:"description"`
	PolicyNumber string           `json:"policyNumber,omitempty"`
	Amount       *decimal.Decimal `json:"amount,omitempty"`
}

func policyEventID(policyID string) string { return "policy-" + policyID }

func paymentEventID(paymentID string) string { return "payment-" + paymentID }
