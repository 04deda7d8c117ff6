package calendar

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

const dayLayout = "2006-01-02"

// Day is a calendar date with no time component.
type Day struct {
	Year  int
	Month time.Month
	Day   int
}

func DayOf(t time.Time) Day {
	y, m, d := t.Date()
	return Day{Year: y, Month: m, Day: d}
}

func ParseDay(input string) (Day, error) {
	input = strings.TrimSpace(input)
	if len(input) > len(dayLayout) && input[len(dayLayout)] == 'T' {
		input = input[:len(dayLayout)]
	}
	parsed, err := time.Parse(dayLayout, input)
	if err != nil {
		return Day{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", input)
	}
	return DayOf(parsed), nil
}

// In returns midnight of d in loc.
func (d Day) In(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

func (d Day) AddDays(n int) Day {
	return DayOf(time.Date(d.Year, d.Month, d.Day+n, 12, 0, 0, 0, time.UTC))
}

func (d Day) Before(other Day) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

func (d Day) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d Day) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Day) UnmarshalText(text []byte) error {
	parsed, err := ParseDay(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Interval is a reservation of one room, occupying [CheckIn, CheckOut).
type Interval struct {
	RoomID   int64
	CheckIn  time.Time
	CheckOut time.Time
}

// DaySet is a set of occupied days.
type DaySet map[Day]struct{}

func (s DaySet) Contains(d Day) bool {
	_, ok := s[d]
	return ok
}

func (s DaySet) Len() int {
	return len(s)
}

func (s DaySet) Sorted() []Day {
	days := make([]Day, 0, len(s))
	for d := range s {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Before(days[j])
	})
	return days
}

// ExpandOccupiedDays unions the days covered by every interval. The check-out
// day is never included unless it is also the check-in day, so a same-day
// stay still holds that day. Intervals with CheckOut <= CheckIn contribute nothing.
func ExpandOccupiedDays(intervals []Interval) DaySet {
	set := DaySet{}
	for _, iv := range intervals {
		if iv.CheckIn.IsZero() || iv.CheckOut.IsZero() {
			continue
		}
		if !iv.CheckOut.After(iv.CheckIn) {
			continue
		}
		start := DayOf(iv.CheckIn)
		end := DayOf(iv.CheckOut.In(iv.CheckIn.Location()))
		if end == start {
			set[start] = struct{}{}
			continue
		}
		for d := start; d.Before(end); d = d.AddDays(1) {
			set[d] = struct{}{}
		}
	}
	return set
}

// Conflicts lists the occupied days a stay from checkIn to checkOut would cover.
func Conflicts(occupied DaySet, checkIn, checkOut Day) []Day {
	conflicts := []Day{}
	for d := checkIn; d.Before(checkOut); d = d.AddDays(1) {
		if occupied.Contains(d) {
			conflicts = append(conflicts, d)
		}
	}
	return conflicts
}

// MinCheckOut is the earliest check-out allowed for a check-in day.
func MinCheckOut(checkIn Day) Day {
	return checkIn.AddDays(1)
}

func Nights(checkIn, checkOut Day) int {
	n := 0
	for d := checkIn; d.Before(checkOut); d = d.AddDays(1) {
		n++
	}
	return n
}
