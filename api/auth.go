package api

import (
	"context"
	"fmt"
	"net/http"
)

type Role struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type UserInfo struct {
	ID            int64  `json:"id"`
	Email         string `json:"email"`
	FullName      string `json:"fullName"`
	Phone         string `json:"phone"`
	IsActive      bool   `json:"isActive"`
	EmailVerified bool   `json:"emailVerified"`
	LastLogin     string `json:"lastLogin"`
	CreatedAt     string `json:"createdAt"`
	Roles         []Role `json:"roles"`
}

type AuthResponse struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	TokenType    string    `json:"tokenType"`
	UserID       int64     `json:"userId"`
	UserInfo     *UserInfo `json:"userInfo"`
	Message      string    `json:"message"`
}

func (c *Client) Login(ctx context.Context, email, password string) (AuthResponse, error) {
	if email == "" {
		return AuthResponse{}, Invalid("email", "is required")
	}
	if password == "" {
		return AuthResponse{}, Invalid("password", "is required")
	}
	payload := map[string]string{
		"email":    email,
		"password": password,
	}
	req, err := c.newJSONRequest(ctx, http.MethodPost, "/api/auth/login", payload, false)
	if err != nil {
		return AuthResponse{}, err
	}

	var resp AuthResponse
	if err := c.doJSON(req, &resp); err != nil {
		return AuthResponse{}, err
	}
	if resp.AccessToken == "" {
		return AuthResponse{}, fmt.Errorf("login failed: missing accessToken")
	}
	return resp, nil
}

func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (AuthResponse, error) {
	if refreshToken == "" {
		return AuthResponse{}, Invalid("refreshToken", "is required")
	}
	payload := map[string]string{"refreshToken": refreshToken}
	req, err := c.newJSONRequest(ctx, http.MethodPost, "/api/auth/refresh-token", payload, false)
	if err != nil {
		return AuthResponse{}, err
	}

	var resp AuthResponse
	if err := c.doJSON(req, &resp); err != nil {
		return AuthResponse{}, err
	}
	if resp.AccessToken == "" {
		return AuthResponse{}, fmt.Errorf("refresh failed: missing accessToken")
	}
	return resp, nil
}

func (c *Client) Logout(ctx context.Context) error {
	req, err := c.newAPIRequest(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
	if err != nil {
		return err
	}
	return c.doStatus(req)
}
