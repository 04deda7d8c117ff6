package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"larose-cli/calendar"
)

// GetBookedDates returns the reservations holding a room. Public.
func (c *Client) GetBookedDates(ctx context.Context, roomID int64) ([]Booking, error) {
	path := "/api/booking/booking-date/" + strconv.FormatInt(roomID, 10)
	req, err := c.newPublicRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}

	bookings := []Booking{}
	if err := c.doJSON(req, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

// Intervals converts reservations into calendar intervals in loc. Rows with
// unparseable dates are skipped.
func Intervals(bookings []Booking, loc *time.Location) []calendar.Interval {
	intervals := make([]calendar.Interval, 0, len(bookings))
	for _, b := range bookings {
		checkIn, err := calendar.ParseDay(b.CheckIn)
		if err != nil {
			continue
		}
		checkOut, err := calendar.ParseDay(b.CheckOut)
		if err != nil {
			continue
		}
		intervals = append(intervals, calendar.Interval{
			RoomID:   b.RoomID,
			CheckIn:  checkIn.In(loc),
			CheckOut: checkOut.In(loc),
		})
	}
	return intervals
}

func (c *Client) CreateBooking(ctx context.Context, booking Booking) (Booking, error) {
	if booking.RoomID <= 0 {
		return Booking{}, Invalid("roomId", "is required")
	}
	if booking.CheckIn == "" || booking.CheckOut == "" {
		return Booking{}, Invalid("checkIn", "check-in and check-out dates are required")
	}
	if booking.Guests <= 0 {
		return Booking{}, Invalid("guests", "must be at least 1")
	}
	req, err := c.newJSONRequest(ctx, http.MethodPost, "/api/booking", booking, true)
	if err != nil {
		return Booking{}, err
	}

	var created Booking
	if err := c.doJSON(req, &created); err != nil {
		return Booking{}, err
	}
	return created, nil
}

// CancelBooking returns the backend's confirmation message.
func (c *Client) CancelBooking(ctx context.Context, id int64) (string, error) {
	path := fmt.Sprintf("/api/booking/cancel/%d", id)
	req, err := c.newAPIRequest(ctx, http.MethodPut, path, nil, nil)
	if err != nil {
		return "", err
	}
	return c.doText(req)
}

// GetBookingHistory lists the signed-in user's bookings.
func (c *Client) GetBookingHistory(ctx context.Context, status string, page, size int) (Page[Booking], error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", status)
	}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))

	req, err := c.newAPIRequest(ctx, http.MethodGet, "/api/booking/my-history", q, nil)
	if err != nil {
		return Page[Booking]{}, err
	}

	var result Page[Booking]
	if err := c.doJSON(req, &result); err != nil {
		return Page[Booking]{}, err
	}
	if result.Content == nil {
		result.Content = []Booking{}
	}
	return result, nil
}

func (c *Client) GetSuggestions(ctx context.Context) ([]BookingSuggestion, error) {
	req, err := c.newAPIRequest(ctx, http.MethodGet, "/api/booking/suggestions", nil, nil)
	if err != nil {
		return nil, err
	}

	suggestions := []BookingSuggestion{}
	if err := c.doJSON(req, &suggestions); err != nil {
		return nil, err
	}
	return suggestions, nil
}

func (c *Client) GetTransaction(ctx context.Context, bookingID int64) (Transaction, error) {
	path := fmt.Sprintf("/api/transaction/%d", bookingID)
	req, err := c.newAPIRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return Transaction{}, err
	}

	var tx Transaction
	if err := c.doJSON(req, &tx); err != nil {
		return Transaction{}, err
	}
	return tx, nil
}
