package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// UserUpdate carries the fields an admin may change. Nil fields are left as is.
type UserUpdate struct {
	Email         string `json:"email,omitempty"`
	FullName      string `json:"fullName,omitempty"`
	Phone         string `json:"phone,omitempty"`
	IsActive      *bool  `json:"isActive,omitempty"`
	EmailVerified *bool  `json:"emailVerified,omitempty"`
}

// ListUsers pages through customer accounts. Supported query keys are page,
// size, sortBy, sortDirection, search, isActive, emailVerified and role.
func (c *Client) ListUsers(ctx context.Context, query url.Values) (Page[User], error) {
	req, err := c.newAPIRequest(ctx, http.MethodGet, "/api/admin/users", query, nil)
	if err != nil {
		return Page[User]{}, err
	}

	var result Page[User]
	if err := c.doJSON(req, &result); err != nil {
		return Page[User]{}, err
	}
	if result.Content == nil {
		result.Content = []User{}
	}
	return result, nil
}

func (c *Client) GetUser(ctx context.Context, id int64) (User, error) {
	req, err := c.newAPIRequest(ctx, http.MethodGet, fmt.Sprintf("/api/admin/users/%d", id), nil, nil)
	if err != nil {
		return User{}, err
	}

	var user User
	if err := c.doJSON(req, &user); err != nil {
		return User{}, err
	}
	return user, nil
}

func (c *Client) UpdateUser(ctx context.Context, id int64, update UserUpdate) (User, error) {
	req, err := c.newJSONRequest(ctx, http.MethodPut, fmt.Sprintf("/api/admin/users/%d", id), update, true)
	if err != nil {
		return User{}, err
	}

	var user User
	if err := c.doJSON(req, &user); err != nil {
		return User{}, err
	}
	return user, nil
}

func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	req, err := c.newAPIRequest(ctx, http.MethodDelete, fmt.Sprintf("/api/admin/users/%d", id), nil, nil)
	if err != nil {
		return err
	}
	return c.doStatus(req)
}

func (c *Client) ActivateUser(ctx context.Context, id int64) (User, error) {
	return c.userAction(ctx, id, "activate")
}

func (c *Client) DeactivateUser(ctx context.Context, id int64) (User, error) {
	return c.userAction(ctx, id, "deactivate")
}

// RestoreUser undoes a soft delete.
func (c *Client) RestoreUser(ctx context.Context, id int64) (User, error) {
	return c.userAction(ctx, id, "restore")
}

func (c *Client) userAction(ctx context.Context, id int64, action string) (User, error) {
	path := fmt.Sprintf("/api/admin/users/%d/%s", id, action)
	req, err := c.newAPIRequest(ctx, http.MethodPost, path, nil, nil)
	if err != nil {
		return User{}, err
	}

	var user User
	if err := c.doJSON(req, &user); err != nil {
		return User{}, err
	}
	return user, nil
}
