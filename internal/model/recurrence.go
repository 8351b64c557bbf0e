package model

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
)

// RecurrenceType is the repetition cadence of a recurring series.
type RecurrenceType string

const (
	RecurDaily   RecurrenceType = "daily"
	RecurWeekly  RecurrenceType = "weekly"
	RecurMonthly RecurrenceType = "monthly"
	RecurYearly  RecurrenceType = "yearly"
)

// RecurrencePattern describes how a series repeats. Either Count or Until
// may bound the series; both zero means it repeats forever.
type RecurrencePattern struct {
	Type       RecurrenceType `json:"type"`
	Interval   int            `json:"interval"`
	DaysOfWeek []time.Weekday `json:"daysOfWeek,omitempty"`
	DayOfMonth int            `json:"dayOfMonth,omitempty"`
	Count      int            `json:"count,omitempty"`
	Until      *time.Time     `json:"until,omitempty"`
}

var rruleWeekdays = map[time.Weekday]rrule.Weekday{
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
	time.Sunday:    rrule.SU,
}

// RRule renders the pattern as an RFC 5545 RRULE string, the format the
// Google adapter and the ICS exporter submit on the wire.
func (p *RecurrencePattern) RRule() (string, error) {
	opt := rrule.ROption{Interval: p.Interval}
	if opt.Interval <= 0 {
		opt.Interval = 1
	}

	switch p.Type {
	case RecurDaily:
		opt.Freq = rrule.DAILY
	case RecurWeekly:
		opt.Freq = rrule.WEEKLY
	case RecurMonthly:
		opt.Freq = rrule.MONTHLY
	case RecurYearly:
		opt.Freq = rrule.YEARLY
	default:
		return "", fmt.Errorf("unknown recurrence type %q", p.Type)
	}

	for _, d := range p.DaysOfWeek {
		opt.Byweekday = append(opt.Byweekday, rruleWeekdays[d])
	}
	if p.DayOfMonth > 0 {
		opt.Bymonthday = []int{p.DayOfMonth}
	}
	if p.Count > 0 {
		opt.Count = p.Count
	}
	if p.Until != nil {
		opt.Until = p.Until.UTC()
	}

	r, err := rrule.NewRRule(opt)
	if err != nil {
		return "", fmt.Errorf("invalid recurrence pattern: %w", err)
	}
	return r.String(), nil
}
