package core

import (
	"errors"
	"time"
)

const isoDay = "2006-01-02"

// Date is a calendar date at day precision, UTC.
type Date struct {
	time.Time
}

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an instant to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses an ISO "YYYY-MM-DD" string.
func ParseDate(s string) (Date, error) {
	if s == "" {
		return Date{}, errors.New("empty date")
	}
	t, err := time.Parse(isoDay, s)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// ISO formats the date as "YYYY-MM-DD".
func (d Date) ISO() string {
	return d.Format(isoDay)
}

// MonthKey returns the "YYYY-MM" grouping key for monthly aggregation.
func (d Date) MonthKey() string {
	return d.Format("2006-01")
}

// OnOrAfter reports d >= other.
func (d Date) OnOrAfter(other Date) bool {
	return !d.Before(other.Time)
}

// OnOrBefore reports d <= other.
func (d Date) OnOrBefore(other Date) bool {
	return !d.After(other.Time)
}
