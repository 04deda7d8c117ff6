package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// Review moderation states accepted by the backend.
var ReviewStatuses = []string{"published", "pending", "hidden"}

type ReviewRequest struct {
	Rating    int    `json:"rating"`
	Title     string `json:"title,omitempty"`
	Content   string `json:"content"`
	BookingID int64  `json:"bookingId"`
}

func (r ReviewRequest) validate() error {
	if r.BookingID <= 0 {
		return Invalid("bookingId", "is required")
	}
	if r.Rating < 1 || r.Rating > 5 {
		return Invalid("rating", "must be between 1 and 5, got %d", r.Rating)
	}
	if strings.TrimSpace(r.Content) == "" {
		return Invalid("content", "is required")
	}
	return nil
}

// ListReviewsAdmin pages through all reviews. status is optional.
func (c *Client) ListReviewsAdmin(ctx context.Context, status string, page, size int) (Page[Review], error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))
	q.Set("sortDirection", "desc")
	if status != "" {
		q.Set("status", status)
	}
	req, err := c.newAPIRequest(ctx, http.MethodGet, "/api/reviews/admin", q, nil)
	if err != nil {
		return Page[Review]{}, err
	}

	var result Page[Review]
	if err := c.doJSON(req, &result); err != nil {
		return Page[Review]{}, err
	}
	if result.Content == nil {
		result.Content = []Review{}
	}
	return result, nil
}

func (c *Client) GetReview(ctx context.Context, id int64) (Review, error) {
	req, err := c.newPublicRequest(ctx, http.MethodGet, fmt.Sprintf("/api/reviews/%d", id), nil, nil)
	if err != nil {
		return Review{}, err
	}

	var review Review
	if err := c.doJSON(req, &review); err != nil {
		return Review{}, err
	}
	return review, nil
}

// GetBookingReview returns the review left for a booking, if any.
func (c *Client) GetBookingReview(ctx context.Context, bookingID int64) (Review, error) {
	req, err := c.newAPIRequest(ctx, http.MethodGet, fmt.Sprintf("/api/reviews/booking/%d", bookingID), nil, nil)
	if err != nil {
		return Review{}, err
	}

	var review Review
	if err := c.doJSON(req, &review); err != nil {
		return Review{}, err
	}
	return review, nil
}

// ListRoomReviews filters the public review list down to one room.
func (c *Client) ListRoomReviews(ctx context.Context, roomID int64) ([]Review, error) {
	req, err := c.newPublicRequest(ctx, http.MethodGet, "/api/reviews", nil, nil)
	if err != nil {
		return nil, err
	}

	all := []Review{}
	if err := c.doJSON(req, &all); err != nil {
		return nil, err
	}
	out := []Review{}
	for _, r := range all {
		if r.RoomID == roomID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (c *Client) CreateReview(ctx context.Context, review ReviewRequest) (Review, error) {
	if err := review.validate(); err != nil {
		return Review{}, err
	}
	req, err := c.newJSONRequest(ctx, http.MethodPost, "/api/reviews", review, true)
	if err != nil {
		return Review{}, err
	}

	var created Review
	if err := c.doJSON(req, &created); err != nil {
		return Review{}, err
	}
	return created, nil
}

func (c *Client) UpdateReviewStatus(ctx context.Context, id int64, status string) (Review, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if !slices.Contains(ReviewStatuses, status) {
		return Review{}, Invalid("status", "must be one of %s", strings.Join(ReviewStatuses, ", "))
	}
	q := url.Values{}
	q.Set("status", status)
	req, err := c.newAPIRequest(ctx, http.MethodPut, fmt.Sprintf("/api/reviews/%d/status", id), q, nil)
	if err != nil {
		return Review{}, err
	}

	var updated Review
	if err := c.doJSON(req, &updated); err != nil {
		return Review{}, err
	}
	return updated, nil
}

func (c *Client) DeleteReview(ctx context.Context, id int64) error {
	req, err := c.newAPIRequest(ctx, http.MethodDelete, fmt.Sprintf("/api/reviews/%d", id), nil, nil)
	if err != nil {
		return err
	}
	return c.doStatus(req)
}

type reviewResponseRequest struct {
	ID       int64  `json:"id,omitempty"`
	ReviewID int64  `json:"reviewId,omitempty"`
	Content  string `json:"content"`
}

// CreateReviewResponse posts a staff reply under a review.
func (c *Client) CreateReviewResponse(ctx context.Context, reviewID int64, content string) (ReviewResponse, error) {
	if reviewID <= 0 {
		return ReviewResponse{}, Invalid("reviewId", "is required")
	}
	return c.sendReviewResponse(ctx, http.MethodPost, reviewResponseRequest{ReviewID: reviewID, Content: content})
}

func (c *Client) UpdateReviewResponse(ctx context.Context, id int64, content string) (ReviewResponse, error) {
	if id <= 0 {
		return ReviewResponse{}, Invalid("id", "is required")
	}
	return c.sendReviewResponse(ctx, http.MethodPut, reviewResponseRequest{ID: id, Content: content})
}

func (c *Client) sendReviewResponse(ctx context.Context, method string, payload reviewResponseRequest) (ReviewResponse, error) {
	payload.Content = strings.TrimSpace(payload.Content)
	if payload.Content == "" {
		return ReviewResponse{}, Invalid("content", "is required")
	}
	req, err := c.newJSONRequest(ctx, method, "/api/reviews/response", payload, true)
	if err != nil {
		return ReviewResponse{}, err
	}

	var resp ReviewResponse
	if err := c.doJSON(req, &resp); err != nil {
		return ReviewResponse{}, err
	}
	return resp, nil
}

func (c *Client) DeleteReviewResponse(ctx context.Context, id int64) error {
	req, err := c.newAPIRequest(ctx, http.MethodDelete, fmt.Sprintf("/api/reviews/response/%d", id), nil, nil)
	if err != nil {
		return err
	}
	return c.doStatus(req)
}
