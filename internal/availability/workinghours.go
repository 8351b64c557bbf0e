package availability

import (
	"fmt"
	"time"
)

// WorkingHours restricts free-slot output to a per-weekday window.
// Start and End are "HH:mm" wall-clock times in the query range's zone.
type WorkingHours struct {
	Start string         `json:"start"`
	End   string         `json:"end"`
	Days  []time.Weekday `json:"days"`
}

// DefaultWorkingHours is the 09:00-17:00 Monday-Friday window used when a
// caller asks for working-hours clipping without supplying a config.
func DefaultWorkingHours() WorkingHours {
	return WorkingHours{
		Start: "09:00",
		End:   "17:00",
		Days:  []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
	}
}

func (w WorkingHours) isWorkingDay(d time.Weekday) bool {
	for _, day := range w.Days {
		if day == d {
			return true
		}
	}
	return false
}

func parseClock(s string) (hour, minute int, err error) {
	if _, err := fmt.Sscanf(s, "%d:%d", &hour, &minute); err != nil {
		return 0, 0, fmt.Errorf("invalid HH:mm time %q", s)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid HH:mm time %q", s)
	}
	return hour, minute, nil
}

// window returns the working-hour interval for the calendar day containing
// t, in t's zone. ok is false on non-working days, which contribute zero
// free time.
func (w WorkingHours) window(t time.Time) (start, end time.Time, ok bool, err error) {
	if !w.isWorkingDay(t.Weekday()) {
		return time.Time{}, time.Time{}, false, nil
	}
	sh, sm, err := parseClock(w.Start)
	if err != nil {
		return time.Time{}, time.Time{}, false, err
	}
	eh, em, err := parseClock(w.End)
	if err != nil {
		return time.Time{}, time.Time{}, false, err
	}
	loc := t.Location()
	y, m, d := t.Date()
	start = time.Date(y, m, d, sh, sm, 0, 0, loc)
	end = time.Date(y, m, d, eh, em, 0, 0, loc)
	return start, end, start.Before(end), nil
}
