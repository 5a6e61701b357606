package review

import (
	"strings"
	"time"
)

const (
	Yes = "yes"
	No  = "no"
)

// Weekdays are the flag columns of a review row, in storage order.
var Weekdays = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// Row holds the weekly review flags of one student. Flags follow the order of Weekdays.
type Row struct {
	Email string    `json:"email"`
	Flags [7]string `json:"flags"`
}

// NewRow returns a row with every flag set to "no".
func NewRow(email string) Row {
	row := Row{Email: email}
	for i := range row.Flags {
		row.Flags[i] = No
	}
	return row
}

// WeekdayIndex returns the flag index of t's UTC weekday (Mon = 0).
func WeekdayIndex(t time.Time) int {
	return (int(t.UTC().Weekday()) + 6) % 7
}

// Flag returns the raw flag stored for t's UTC weekday.
func (r Row) Flag(t time.Time) string {
	return r.Flags[WeekdayIndex(t)]
}

// ReviewedOn reports whether the flag for t's UTC weekday is "yes" (case-insensitive).
// Missing or malformed flags count as not reviewed.
func (r Row) ReviewedOn(t time.Time) bool {
	return strings.EqualFold(strings.TrimSpace(r.Flag(t)), Yes)
}

func (r Row) BelongsTo(email string) bool {
	return strings.EqualFold(r.Email, email)
}
