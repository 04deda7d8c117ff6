package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// ServiceUnits are the billing units offered when creating a service.
var ServiceUnits = []string{"lần", "giờ", "ngày", "người"}

// Service is an extra a guest can add to a booking, such as breakfast or a
// spa session.
type Service struct {
	ID          int64   `json:"id,omitempty"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Unit        string  `json:"unit,omitempty"`
	IsActive    *bool   `json:"isActive,omitempty"`
	ImageURL    string  `json:"imageUrl,omitempty"`
	Category    string  `json:"category,omitempty"`
	CreatedAt   string  `json:"createdAt,omitempty"`
	UpdatedAt   string  `json:"updatedAt,omitempty"`
}

// Active treats a missing flag as active.
func (s Service) Active() bool {
	return s.IsActive == nil || *s.IsActive
}

func (s Service) validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return Invalid("name", "is required")
	}
	if s.Price < 0 {
		return Invalid("price", "must not be negative")
	}
	return nil
}

// BookingService is a service attached to one booking.
type BookingService struct {
	ID                 int64   `json:"id"`
	BookingID          int64   `json:"bookingId"`
	ServiceID          int64   `json:"serviceId"`
	ServiceName        string  `json:"serviceName"`
	ServiceDescription string  `json:"serviceDescription,omitempty"`
	Quantity           int     `json:"quantity"`
	PricePerUnit       float64 `json:"pricePerUnit"`
	TotalPrice         float64 `json:"totalPrice"`
	Notes              string  `json:"notes,omitempty"`
	CreatedAt          string  `json:"createdAt,omitempty"`
}

// ListServices returns every service. Set activeOnly for the guest-facing list.
func (c *Client) ListServices(ctx context.Context, activeOnly bool) ([]Service, error) {
	path := "/api/services"
	if activeOnly {
		path += "/active"
	}
	req, err := c.newAPIRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}

	services := []Service{}
	if err := c.doJSON(req, &services); err != nil {
		return nil, err
	}
	return services, nil
}

func (c *Client) CreateService(ctx context.Context, s Service) (Service, error) {
	if err := s.validate(); err != nil {
		return Service{}, err
	}
	req, err := c.newJSONRequest(ctx, http.MethodPost, "/api/services", s, true)
	if err != nil {
		return Service{}, err
	}

	var created Service
	if err := c.doJSON(req, &created); err != nil {
		return Service{}, err
	}
	return created, nil
}

func (c *Client) UpdateService(ctx context.Context, id int64, s Service) (Service, error) {
	if err := s.validate(); err != nil {
		return Service{}, err
	}
	req, err := c.newJSONRequest(ctx, http.MethodPut, fmt.Sprintf("/api/services/%d", id), s, true)
	if err != nil {
		return Service{}, err
	}

	var updated Service
	if err := c.doJSON(req, &updated); err != nil {
		return Service{}, err
	}
	return updated, nil
}

func (c *Client) DeleteService(ctx context.Context, id int64) error {
	req, err := c.newAPIRequest(ctx, http.MethodDelete, fmt.Sprintf("/api/services/%d", id), nil, nil)
	if err != nil {
		return err
	}
	return c.doStatus(req)
}

func (c *Client) ListBookingServices(ctx context.Context, bookingID int64) ([]BookingService, error) {
	req, err := c.newAPIRequest(ctx, http.MethodGet, fmt.Sprintf("/api/services/booking/%d", bookingID), nil, nil)
	if err != nil {
		return nil, err
	}

	items := []BookingService{}
	if err := c.doJSON(req, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// AddServiceToBooking attaches quantity units of a service to a booking.
func (c *Client) AddServiceToBooking(ctx context.Context, bookingID, serviceID int64, quantity int, notes string) (BookingService, error) {
	if serviceID <= 0 {
		return BookingService{}, Invalid("serviceId", "is required")
	}
	if quantity < 1 {
		return BookingService{}, Invalid("quantity", "must be at least 1")
	}
	payload := struct {
		ServiceID int64  `json:"serviceId"`
		Quantity  int    `json:"quantity"`
		Notes     string `json:"notes,omitempty"`
	}{serviceID, quantity, strings.TrimSpace(notes)}
	req, err := c.newJSONRequest(ctx, http.MethodPost, fmt.Sprintf("/api/services/booking/%d", bookingID), payload, true)
	if err != nil {
		return BookingService{}, err
	}

	var added BookingService
	if err := c.doJSON(req, &added); err != nil {
		return BookingService{}, err
	}
	return added, nil
}

func (c *Client) UpdateBookingServiceQuantity(ctx context.Context, bookingServiceID int64, quantity int) (BookingService, error) {
	if quantity < 1 {
		return BookingService{}, Invalid("quantity", "must be at least 1")
	}
	q := url.Values{}
	q.Set("quantity", strconv.Itoa(quantity))
	req, err := c.newAPIRequest(ctx, http.MethodPut, fmt.Sprintf("/api/services/booking-service/%d", bookingServiceID), q, nil)
	if err != nil {
		return BookingService{}, err
	}

	var updated BookingService
	if err := c.doJSON(req, &updated); err != nil {
		return BookingService{}, err
	}
	return updated, nil
}

func (c *Client) RemoveBookingService(ctx context.Context, bookingServiceID int64) error {
	req, err := c.newAPIRequest(ctx, http.MethodDelete, fmt.Sprintf("/api/services/booking-service/%d", bookingServiceID), nil, nil)
	if err != nil {
		return err
	}
	return c.doStatus(req)
}
