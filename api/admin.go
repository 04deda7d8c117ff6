package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"
)

var (
	// BookingStatuses are the states a booking moves through.
	BookingStatuses = []string{"pending", "confirmed", "checked_in", "checked_out", "cancelled", "no_show"}
	// TransactionStatuses are the states an admin may set on a payment.
	TransactionStatuses = []string{"initiated", "success", "failed", "refunded"}
)

// ListAllBookings pages through every booking. Supported query keys are page,
// size, sortBy, sortDirection, status and search.
func (c *Client) ListAllBookings(ctx context.Context, query url.Values) (Page[Booking], error) {
	return listAdmin[Booking](ctx, c, "/api/admin/bookings", query)
}

func (c *Client) GetBookingAdmin(ctx context.Context, id int64) (Booking, error) {
	req, err := c.newAPIRequest(ctx, http.MethodGet, fmt.Sprintf("/api/admin/bookings/%d", id), nil, nil)
	if err != nil {
		return Booking{}, err
	}

	var booking Booking
	if err := c.doJSON(req, &booking); err != nil {
		return Booking{}, err
	}
	return booking, nil
}

func (c *Client) UpdateBookingStatus(ctx context.Context, id int64, status string) (Booking, error) {
	status, err := oneOf("status", status, BookingStatuses)
	if err != nil {
		return Booking{}, err
	}
	q := url.Values{}
	q.Set("status", status)
	return c.putBooking(ctx, fmt.Sprintf("/api/admin/bookings/%d/status", id), q)
}

// CancelBookingAdmin cancels any booking, recording reason when given.
func (c *Client) CancelBookingAdmin(ctx context.Context, id int64, reason string) (Booking, error) {
	q := url.Values{}
	if reason = strings.TrimSpace(reason); reason != "" {
		q.Set("reason", reason)
	}
	return c.putBooking(ctx, fmt.Sprintf("/api/admin/bookings/%d/cancel", id), q)
}

func (c *Client) putBooking(ctx context.Context, path string, q url.Values) (Booking, error) {
	req, err := c.newAPIRequest(ctx, http.MethodPut, path, q, nil)
	if err != nil {
		return Booking{}, err
	}

	var booking Booking
	if err := c.doJSON(req, &booking); err != nil {
		return Booking{}, err
	}
	return booking, nil
}

// ListTransactions pages through payments. Supported query keys are page,
// size, sortBy, sortDirection, status, provider, startDate and endDate.
func (c *Client) ListTransactions(ctx context.Context, query url.Values) (Page[Transaction], error) {
	return listAdmin[Transaction](ctx, c, "/api/admin/transactions", query)
}

func (c *Client) UpdateTransactionStatus(ctx context.Context, id int64, status string) (Transaction, error) {
	status, err := oneOf("status", status, TransactionStatuses)
	if err != nil {
		return Transaction{}, err
	}
	q := url.Values{}
	q.Set("status", status)
	req, err := c.newAPIRequest(ctx, http.MethodPut, fmt.Sprintf("/api/admin/transactions/%d/status", id), q, nil)
	if err != nil {
		return Transaction{}, err
	}

	var tx Transaction
	if err := c.doJSON(req, &tx); err != nil {
		return Transaction{}, err
	}
	return tx, nil
}

func listAdmin[T any](ctx context.Context, c *Client, path string, query url.Values) (Page[T], error) {
	req, err := c.newAPIRequest(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return Page[T]{}, err
	}

	var result Page[T]
	if err := c.doJSON(req, &result); err != nil {
		return Page[T]{}, err
	}
	if result.Content == nil {
		result.Content = []T{}
	}
	return result, nil
}

func oneOf(field, value string, allowed []string) (string, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if !slices.Contains(allowed, value) {
		return "", Invalid(field, "must be one of %s", strings.Join(allowed, ", "))
	}
	return value, nil
}
