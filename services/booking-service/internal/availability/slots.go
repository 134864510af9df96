package availability

import "time"

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether [i.Start,i.End) and [o.Start,o.End) share any instant.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start.Before(o.End) && o.Start.Before(i.End)
}

// Hours are the fixed daily business hours, in whole hours of company-local time.
type Hours struct {
	Open  int
	Close int
}

func (h Hours) Valid() bool {
	return h.Open >= 0 && h.Close <= 24 && h.Open < h.Close
}

// Bounds returns opening and closing instants for the calendar day of day in loc.
func (h Hours) Bounds(day time.Time, loc *time.Location) (open, close time.Time) {
	y, m, d := day.In(loc).Date()
	return time.Date(y, m, d, h.Open, 0, 0, 0, loc), time.Date(y, m, d, h.Close, 0, 0, 0, loc)
}

// GenerateDaySlots returns every start t with open <= t < close on day's date, stepping by
// interval. The last slot may end after closing time.
func GenerateDaySlots(day time.Time, hours Hours, interval time.Duration, loc *time.Location) []time.Time {
	if interval <= 0 || !hours.Valid() {
		return nil
	}
	open, close := hours.Bounds(day, loc)
	var slots []time.Time
	for t := open; t.Before(close); t = t.Add(interval) {
		slots = append(slots, t)
	}
	return slots
}

// DailySlots generates slots for from's date through from+days, both days included.
func DailySlots(from time.Time, days int, hours Hours, interval time.Duration, loc *time.Location) []time.Time {
	if days < 0 {
		return nil
	}
	y, m, d := from.In(loc).Date()
	var slots []time.Time
	for i := 0; i <= days; i++ {
		day := time.Date(y, m, d+i, 12, 0, 0, 0, loc)
		slots = append(slots, GenerateDaySlots(day, hours, interval, loc)...)
	}
	return slots
}

// Window spans from the first day's opening to the last day's closing.
func Window(from time.Time, days int, hours Hours, loc *time.Location) Interval {
	y, m, d := from.In(loc).Date()
	start, _ := hours.Bounds(time.Date(y, m, d, 12, 0, 0, 0, loc), loc)
	_, end := hours.Bounds(time.Date(y, m, d+days, 12, 0, 0, 0, loc), loc)
	return Interval{Start: start, End: end}
}

// IsSlotAvailable reports whether [start, start+duration) overlaps none of busy.
func IsSlotAvailable(start time.Time, duration time.Duration, busy []Interval) bool {
	return !overlapsAny(Interval{Start: start, End: start.Add(duration)}, busy)
}

func overlapsAny(candidate Interval, busy []Interval) bool {
	for _, b := range busy {
		if candidate.Overlaps(b) {
			return true
		}
	}
	return false
}

// WithinHours reports whether [start, start+duration) fits inside one business day.
func WithinHours(start time.Time, duration time.Duration, hours Hours, loc *time.Location) bool {
	open, close := hours.Bounds(start, loc)
	return !start.Before(open) && !start.Add(duration).After(close)
}

type Request struct {
	From     time.Time
	Days     int
	Hours    Hours
	Duration time.Duration
	Location *time.Location
	Busy     []Interval
	Now      time.Time
}

// AvailableSlots returns the free slots of r in ascending order. A slot is kept when it starts
// after Now, ends by closing time, and overlaps no busy interval.
func AvailableSlots(r Request) []time.Time {
	loc := r.Location
	if loc == nil {
		loc = time.UTC
	}
	var out []time.Time
	for _, slot := range DailySlots(r.From, r.Days, r.Hours, r.Duration, loc) {
		if !slot.After(r.Now) {
			continue
		}
		if !WithinHours(slot, r.Duration, r.Hours, loc) {
			continue
		}
		if !IsSlotAvailable(slot, r.Duration, r.Busy) {
			continue
		}
		out = append(out, slot)
	}
	return out
}
