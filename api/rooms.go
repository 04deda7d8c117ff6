package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// RoomStatuses are the states a room can be put in.
var RoomStatuses = []string{"available", "offline", "maintenance"}

// RoomRequest is the room form sent on create and update. Images are not
// uploaded from the CLI; DeleteImages removes existing ones by id.
type RoomRequest struct {
	Code         string    `json:"code"`
	RoomTypeID   int64     `json:"roomTypeId"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Capacity     int       `json:"capacity"`
	Price        float64   `json:"price"`
	Status       string    `json:"status"`
	Amenities    Amenities `json:"amenities"`
	DeleteImages []int64   `json:"deleteImages,omitempty"`
}

// RequestFor copies an existing room into a form ready for editing.
func RequestFor(room Room) RoomRequest {
	amenities := Amenities{}
	for key, on := range room.Amenities {
		amenities[key] = on
	}
	return RoomRequest{
		Code:        room.Code,
		RoomTypeID:  room.Type.ID,
		Title:       room.Title,
		Description: room.Description,
		Capacity:    room.Capacity,
		Price:       room.Price,
		Status:      room.Status,
		Amenities:   amenities,
	}
}

func (r *RoomRequest) normalize() error {
	r.Code = strings.TrimSpace(r.Code)
	r.Title = strings.TrimSpace(r.Title)
	if r.Code == "" {
		return Invalid("code", "is required")
	}
	if r.RoomTypeID <= 0 {
		return Invalid("roomTypeId", "is required")
	}
	if r.Title == "" {
		return Invalid("title", "is required")
	}
	if r.Capacity < 1 {
		return Invalid("capacity", "must be at least 1")
	}
	if r.Price < 0 {
		return Invalid("price", "must not be negative")
	}
	r.Status = strings.ToLower(strings.TrimSpace(r.Status))
	if r.Status == "" {
		r.Status = "available"
	}
	if !slices.Contains(RoomStatuses, r.Status) {
		return Invalid("status", "must be one of %s", strings.Join(RoomStatuses, ", "))
	}
	if r.Amenities == nil {
		r.Amenities = Amenities{}
	}
	return nil
}

// ListRooms searches rooms. query is built by the query package.
func (c *Client) ListRooms(ctx context.Context, query url.Values) (Page[Room], error) {
	req, err := c.newPublicRequest(ctx, http.MethodGet, "/api/rooms", query, nil)
	if err != nil {
		return Page[Room]{}, err
	}

	var page Page[Room]
	if err := c.doJSON(req, &page); err != nil {
		return Page[Room]{}, err
	}
	if page.Content == nil {
		page.Content = []Room{}
	}
	c.logUnreadableAmenities(page.Content...)
	return page, nil
}

func (c *Client) GetRoom(ctx context.Context, id int64) (Room, error) {
	path := "/api/rooms/" + strconv.FormatInt(id, 10)
	req, err := c.newPublicRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return Room{}, err
	}

	var room Room
	if err := c.doJSON(req, &room); err != nil {
		return Room{}, err
	}
	c.logUnreadableAmenities(room)
	return room, nil
}

func (c *Client) logUnreadableAmenities(rooms ...Room) {
	for _, room := range rooms {
		if err := room.AmenitiesErr(); err != nil {
			c.Log.Info("ignoring unreadable room amenities", "room", room.ID, "error", err.Error())
		}
	}
}

func (c *Client) ListRoomTypes(ctx context.Context) ([]RoomType, error) {
	req, err := c.newPublicRequest(ctx, http.MethodGet, "/api/rooms/types", nil, nil)
	if err != nil {
		return nil, err
	}

	types := []RoomType{}
	if err := c.doJSON(req, &types); err != nil {
		return nil, err
	}
	return types, nil
}

// DeleteRoom removes a room by its code. Admin only.
func (c *Client) DeleteRoom(ctx context.Context, code string) error {
	if code == "" {
		return Invalid("code", "is required")
	}
	req, err := c.newAPIRequest(ctx, http.MethodDelete, "/api/rooms/"+url.PathEscape(code), nil, nil)
	if err != nil {
		return err
	}
	return c.doStatus(req)
}

// CreateRoom adds a room. Admin only.
func (c *Client) CreateRoom(ctx context.Context, room RoomRequest) (Room, error) {
	return c.sendRoom(ctx, http.MethodPost, "/api/rooms", room)
}

// UpdateRoom replaces the room identified by code. Admin only.
func (c *Client) UpdateRoom(ctx context.Context, code string, room RoomRequest) (Room, error) {
	if code = strings.TrimSpace(code); code == "" {
		return Room{}, Invalid("code", "is required")
	}
	return c.sendRoom(ctx, http.MethodPut, "/api/rooms/"+url.PathEscape(code), room)
}

// sendRoom posts the form as the roomRequest part of a multipart body.
func (c *Client) sendRoom(ctx context.Context, method, path string, room RoomRequest) (Room, error) {
	if err := room.normalize(); err != nil {
		return Room{}, err
	}
	data, err := json.Marshal(room)
	if err != nil {
		return Room{}, err
	}
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	if err := form.WriteField("roomRequest", string(data)); err != nil {
		return Room{}, err
	}
	if err := form.Close(); err != nil {
		return Room{}, err
	}

	req, err := c.newAPIRequest(ctx, method, path, nil, &body)
	if err != nil {
		return Room{}, err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	var saved Room
	if err := c.doJSON(req, &saved); err != nil {
		return Room{}, err
	}
	return saved, nil
}
