package calendar

import (
	"testing"
	"time"

	. "github.com/onsi/gomega"
)

func day(s string) Day {
	d, err := ParseDay(s)
	if err != nil {
		panic(err)
	}
	return d
}

func at(s string, loc *time.Location) time.Time {
	return day(s).In(loc)
}

func TestExpandOccupiedDays_HalfOpen(t *testing.T) {
	g := NewWithT(t)

	set := ExpandOccupiedDays([]Interval{
		{RoomID: 1, CheckIn: at("2024-10-15", time.Local), CheckOut: at("2024-10-17", time.Local)},
	})

	g.Expect(set.Sorted()).To(Equal([]Day{day("2024-10-15"), day("2024-10-16")}))
	g.Expect(set.Contains(day("2024-10-17"))).To(BeFalse())
}

func TestExpandOccupiedDays_Union(t *testing.T) {
	g := NewWithT(t)

	set := ExpandOccupiedDays([]Interval{
		{CheckIn: at("2024-10-15", time.UTC), CheckOut: at("2024-10-18", time.UTC)},
		{CheckIn: at("2024-10-16", time.UTC), CheckOut: at("2024-10-19", time.UTC)},
		{CheckIn: at("2024-10-25", time.UTC), CheckOut: at("2024-10-26", time.UTC)},
	})

	g.Expect(set.Len()).To(Equal(5))
	g.Expect(set.Contains(day("2024-10-18"))).To(BeTrue())
	g.Expect(set.Contains(day("2024-10-19"))).To(BeFalse())
	g.Expect(set.Contains(day("2024-10-25"))).To(BeTrue())
}

func TestExpandOccupiedDays_InvertedIntervals(t *testing.T) {
	tests := []struct {
		name     string
		checkIn  string
		checkOut string
	}{
		{name: "same day", checkIn: "2024-10-15", checkOut: "2024-10-15"},
		{name: "checkout before checkin", checkIn: "2024-10-17", checkOut: "2024-10-15"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := ExpandOccupiedDays([]Interval{
				{CheckIn: at(tt.checkIn, time.UTC), CheckOut: at(tt.checkOut, time.UTC)},
			})
			if set.Len() != 0 {
				t.Errorf("expected no days, got %v", set.Sorted())
			}
		})
	}
}

func TestExpandOccupiedDays_SameDayStayHoldsCheckIn(t *testing.T) {
	g := NewWithT(t)
	checkIn := time.Date(2024, time.October, 15, 10, 0, 0, 0, time.UTC)

	set := ExpandOccupiedDays([]Interval{
		{CheckIn: checkIn, CheckOut: checkIn.Add(4 * time.Hour)},
	})

	g.Expect(set.Sorted()).To(Equal([]Day{day("2024-10-15")}))
}

func TestExpandOccupiedDays_ZeroTimesSkipped(t *testing.T) {
	set := ExpandOccupiedDays([]Interval{{CheckOut: at("2024-10-15", time.UTC)}})
	if set.Len() != 0 {
		t.Errorf("expected zero check-in to be skipped, got %v", set.Sorted())
	}
}

func TestExpandOccupiedDays_AcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Amsterdam")
	if err != nil {
		t.Skip("timezone data unavailable")
	}
	g := NewWithT(t)

	set := ExpandOccupiedDays([]Interval{
		{CheckIn: at("2024-10-26", loc), CheckOut: at("2024-10-29", loc)},
	})

	g.Expect(set.Sorted()).To(Equal([]Day{day("2024-10-26"), day("2024-10-27"), day("2024-10-28")}))
}

func TestExpandOccupiedDays_AcrossMonthEnd(t *testing.T) {
	g := NewWithT(t)

	set := ExpandOccupiedDays([]Interval{
		{CheckIn: at("2024-02-28", time.UTC), CheckOut: at("2024-03-02", time.UTC)},
	})

	g.Expect(set.Sorted()).To(Equal([]Day{day("2024-02-28"), day("2024-02-29"), day("2024-03-01")}))
}

func TestConflicts(t *testing.T) {
	g := NewWithT(t)
	occupied := ExpandOccupiedDays([]Interval{
		{CheckIn: at("2024-10-15", time.UTC), CheckOut: at("2024-10-17", time.UTC)},
	})

	g.Expect(Conflicts(occupied, day("2024-10-17"), day("2024-10-20"))).To(BeEmpty())
	g.Expect(Conflicts(occupied, day("2024-10-13"), day("2024-10-15"))).To(BeEmpty())
	g.Expect(Conflicts(occupied, day("2024-10-14"), day("2024-10-16"))).To(Equal([]Day{day("2024-10-15")}))
}

func TestNightsAndMinCheckOut(t *testing.T) {
	g := NewWithT(t)

	g.Expect(Nights(day("2024-12-30"), day("2025-01-02"))).To(Equal(3))
	g.Expect(Nights(day("2025-01-02"), day("2024-12-30"))).To(Equal(0))
	g.Expect(MinCheckOut(day("2024-12-31"))).To(Equal(day("2025-01-01")))
}

func TestParseDay(t *testing.T) {
	g := NewWithT(t)

	d, err := ParseDay("2024-10-15T00:00:00")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(d.String()).To(Equal("2024-10-15"))

	_, err = ParseDay("15/10/2024")
	g.Expect(err).To(HaveOccurred())
}
