package api

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"

	"larose-cli/calendar"
)

func TestIntervalsSkipsBadDates(t *testing.T) {
	g := NewWithT(t)
	loc, err := time.LoadLocation("Asia/Ho_Chi_Minh")
	g.Expect(err).NotTo(HaveOccurred())

	intervals := Intervals([]Booking{
		{RoomID: 3, CheckIn: "2026-03-01", CheckOut: "2026-03-04"},
		{RoomID: 3, CheckIn: "soon", CheckOut: "2026-03-04"},
		{RoomID: 3, CheckIn: "2026-03-10T14:00:00", CheckOut: "2026-03-11"},
	}, loc)
	g.Expect(intervals).To(HaveLen(2))
	g.Expect(intervals[0].CheckIn.Location()).To(Equal(loc))

	days := calendar.ExpandOccupiedDays(intervals)
	g.Expect(days.Len()).To(Equal(4))
	g.Expect(days.Contains(calendar.Day{Year: 2026, Month: time.March, Day: 10})).To(BeTrue())
	g.Expect(days.Contains(calendar.Day{Year: 2026, Month: time.March, Day: 4})).To(BeFalse())
}

func TestBookedDatesAndCreate(t *testing.T) {
	g := NewWithT(t)
	var posted Booking
	client := newTestClient(t, func(r *gin.Engine) {
		r.GET("/api/booking/booking-date/:id", func(c *gin.Context) {
			g.Expect(c.Param("id")).To(Equal("12"))
			c.JSON(http.StatusOK, []gin.H{{"roomId": 12, "checkIn": "2026-05-01", "checkOut": "2026-05-03"}})
		})
		r.POST("/api/booking", func(c *gin.Context) {
			if err := c.ShouldBindJSON(&posted); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
				return
			}
			posted.ID = 99
			posted.BookingCode = "BK-99"
			posted.Status = "pending"
			c.JSON(http.StatusOK, posted)
		})
	})

	booked, err := client.GetBookedDates(context.Background(), 12)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(booked).To(HaveLen(1))

	created, err := client.CreateBooking(context.Background(), Booking{RoomID: 12, CheckIn: "2026-05-05", CheckOut: "2026-05-07", Guests: 2})
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(created.BookingCode).To(Equal("BK-99"))
	g.Expect(posted.Guests).To(Equal(2))
}

func TestCreateBookingValidates(t *testing.T) {
	client := NewClient()
	client.BaseURL = "http://127.0.0.1:1"
	tests := []struct {
		name  string
		in    Booking
		field string
	}{
		{"room", Booking{CheckIn: "2026-01-01", CheckOut: "2026-01-02", Guests: 1}, "roomId"},
		{"dates", Booking{RoomID: 1, CheckIn: "2026-01-01", Guests: 1}, "checkIn"},
		{"guests", Booking{RoomID: 1, CheckIn: "2026-01-01", CheckOut: "2026-01-02"}, "guests"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.CreateBooking(context.Background(), tt.in)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tt.field {
				t.Fatalf("field = %q, want %q", verr.Field, tt.field)
			}
		})
	}
}

func TestCancelBookingReturnsMessage(t *testing.T) {
	g := NewWithT(t)
	client := newTestClient(t, func(r *gin.Engine) {
		r.PUT("/api/booking/cancel/:id", func(c *gin.Context) {
			c.String(http.StatusOK, "Booking cancelled")
		})
	})

	msg, err := client.CancelBooking(context.Background(), 5)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(msg).To(Equal("Booking cancelled"))
}

func TestBookingHistoryQuery(t *testing.T) {
	g := NewWithT(t)
	client := newTestClient(t, func(r *gin.Engine) {
		r.GET("/api/booking/my-history", func(c *gin.Context) {
			g.Expect(c.Query("status")).To(Equal("confirmed"))
			g.Expect(c.Query("page")).To(Equal("1"))
			g.Expect(c.Query("size")).To(Equal("5"))
			c.JSON(http.StatusOK, gin.H{"totalPages": 2, "totalElements": 6})
		})
	})

	page, err := client.GetBookingHistory(context.Background(), "confirmed", 1, 5)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(page.Content).To(BeEmpty())
	g.Expect(page.Content).NotTo(BeNil())
	g.Expect(page.TotalPages).To(Equal(2))
}
