package wx

import (
	"strconv"
	"time"
)

// Reference anchors the day/hour/minute codes used in reports to absolute
// times. Now is injected so decoding never reads the wall clock.
type Reference struct {
	Now      time.Time
	Location *time.Location // zone for HH:MM display strings, UTC when nil
}

// NewReference returns a Reference for now in the given zone
func NewReference(now time.Time, loc *time.Location) Reference {
	return Reference{Now: now, Location: loc}
}

// Resolve turns a UTC day/hour/minute triple into an absolute time. The
// current UTC month is assumed, rolling to the next month when the day is
// numerically less than today's UTC day.
func (r Reference) Resolve(day, hour, minute int) time.Time {
	now := r.Now.UTC()
	month := now.Month()
	if day < now.Day() {
		month++
	}
	return time.Date(now.Year(), month, day, hour, minute, 0, 0, time.UTC)
}

// Clock renders t as local HH:MM
func (r Reference) Clock(t time.Time) string {
	loc := r.Location
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format("15:04")
}

// resolveDayTime parses "DDHH" or "DDHHMM"
func (r Reference) resolveDayTime(s string) (time.Time, bool) {
	if len(s) != 4 && len(s) != 6 {
		return time.Time{}, false
	}
	day, ok1 := twoDigits(s[0:2])
	hour, ok2 := twoDigits(s[2:4])
	minute := 0
	ok3 := true
	if len(s) == 6 {
		minute, ok3 = twoDigits(s[4:6])
	}
	if !ok1 || !ok2 || !ok3 || day < 1 || day > 31 || hour > 24 || minute > 59 {
		return time.Time{}, false
	}
	return r.Resolve(day, hour, minute), true
}

// resolveWindow parses a validity window in one of the forms
// "DDHH/DDHH", "DDHHDDHH" or the legacy hour-only "HHHH" which is
// anchored to today's UTC day.
func (r Reference) resolveWindow(s string) (from, to time.Time, ok bool) {
	switch {
	case len(s) == 9 && s[4] == '/':
		from, ok1 := r.resolveDayTime(s[0:4])
		to, ok2 := r.resolveDayTime(s[5:9])
		return from, to, ok1 && ok2
	case len(s) == 8:
		from, ok1 := r.resolveDayTime(s[0:4])
		to, ok2 := r.resolveDayTime(s[4:8])
		return from, to, ok1 && ok2
	case len(s) == 4:
		startHour, ok1 := twoDigits(s[0:2])
		endHour, ok2 := twoDigits(s[2:4])
		if !ok1 || !ok2 || startHour > 24 || endHour > 24 {
			return time.Time{}, time.Time{}, false
		}
		day := r.Now.UTC().Day()
		from = r.Resolve(day, startHour, 0)
		to = r.Resolve(day, endHour, 0)
		if !to.After(from) {
			to = to.Add(24 * time.Hour)
		}
		return from, to, true
	}
	return time.Time{}, time.Time{}, false
}

func twoDigits(s string) (int, bool) {
	if len(s) != 2 || s[0] < '0' || s[0] > '9' || s[1] < '0' || s[1] > '9' {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	return n, err == nil
}
