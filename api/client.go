package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-logr/logr"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL    = "http://localhost:8080"
	DefaultTimeout    = 10 * time.Second
	defaultUserAgent  = "larose-cli/1.0"
	defaultMaxRetries = 3
)

// TokenSource supplies the bearer token for authenticated requests.
type TokenSource interface {
	Token() string
}

type StaticToken string

func (t StaticToken) Token() string { return string(t) }

type Client struct {
	HTTP      *http.Client
	BaseURL   string
	UserAgent string
	Tokens    TokenSource

	// Limiter throttles outgoing requests when set.
	Limiter *rate.Limiter
	// MaxRetries bounds retries of GET requests on network failures and 5xx.
	MaxRetries   int
	RetryBackoff time.Duration

	// OnUnauthorized runs when an authenticated request comes back 401.
	OnUnauthorized func()

	Log logr.Logger
}

func NewClient() *Client {
	return &Client{
		HTTP:         &http.Client{Timeout: DefaultTimeout},
		BaseURL:      DefaultBaseURL,
		UserAgent:    defaultUserAgent,
		MaxRetries:   defaultMaxRetries,
		RetryBackoff: 500 * time.Millisecond,
		Log:          logr.Discard(),
	}
}

type response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

func (c *Client) newPublicRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	return c.newRequest(ctx, method, path, query, body, false)
}

func (c *Client) newAPIRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	return c.newRequest(ctx, method, path, query, body, true)
}

func (c *Client) newJSONRequest(ctx context.Context, method, path string, payload any, useAuth bool) (*http.Request, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return c.newRequest(ctx, method, path, nil, strings.NewReader(string(data)), useAuth)
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader, useAuth bool) (*http.Request, error) {
	base, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil, err
	}
	path = strings.TrimPrefix(path, "/")
	base.Path = strings.TrimSuffix(base.Path, "/") + "/" + path
	if len(query) > 0 {
		base.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, base.String(), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if useAuth && c.Tokens != nil {
		if token := c.Tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return req, nil
}

func (c *Client) do(req *http.Request) (*response, error) {
	log := c.Log.WithValues("method", req.Method, "path", req.URL.Path)
	if c.Limiter != nil {
		if err := c.Limiter.Wait(req.Context()); err != nil {
			return nil, &NetworkError{Method: req.Method, URL: req.URL.Redacted(), Err: err}
		}
	}

	retriable := req.Method == http.MethodGet && c.MaxRetries > 0
	attempts := 0
	attempt := func() (*response, error) {
		attempts++
		resp, err := c.HTTP.Do(req)
		if err != nil {
			nerr := &NetworkError{Method: req.Method, URL: req.URL.Redacted(), Err: err}
			if req.Context().Err() != nil {
				return nil, backoff.Permanent(nerr)
			}
			return nil, nerr
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, &NetworkError{Method: req.Method, URL: req.URL.Redacted(), Err: err}
		}
		if resp.StatusCode >= 500 && retriable {
			return nil, newServerError(resp.StatusCode, resp.Status, body)
		}
		return &response{StatusCode: resp.StatusCode, Header: resp.Header, Body: body}, nil
	}

	start := time.Now()
	var res *response
	var err error
	if retriable {
		policy := backoff.NewExponentialBackOff()
		policy.InitialInterval = c.RetryBackoff
		policy.MaxElapsedTime = 0
		b := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(c.MaxRetries)), req.Context())
		res, err = backoff.RetryNotifyWithData(attempt, b, func(err error, wait time.Duration) {
			log.V(1).Info("retrying request", "error", err.Error(), "wait", wait)
		})
	} else {
		res, err = attempt()
		var permanent *backoff.PermanentError
		if errors.As(err, &permanent) {
			err = permanent.Err
		}
	}
	if err != nil {
		log.V(1).Info("request failed", "attempts", attempts, "duration", time.Since(start), "error", err.Error())
		return nil, err
	}
	log.V(1).Info("request complete", "status", res.StatusCode, "attempts", attempts, "duration", time.Since(start))

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		serr := newServerError(res.StatusCode, fmt.Sprintf("%d %s", res.StatusCode, http.StatusText(res.StatusCode)), res.Body)
		if res.StatusCode == http.StatusUnauthorized && req.Header.Get("Authorization") != "" && c.OnUnauthorized != nil {
			c.OnUnauthorized()
		}
		return nil, serr
	}
	return res, nil
}

func (c *Client) doJSON(req *http.Request, dest any) error {
	res, err := c.do(req)
	if err != nil {
		return err
	}
	if dest == nil || len(strings.TrimSpace(string(res.Body))) == 0 {
		return nil
	}
	if err := json.Unmarshal(res.Body, dest); err != nil {
		return fmt.Errorf("decode %s %s: %w", req.Method, req.URL.Path, err)
	}
	return nil
}

func (c *Client) doStatus(req *http.Request) error {
	_, err := c.do(req)
	return err
}

func (c *Client) doText(req *http.Request) (string, error) {
	res, err := c.do(req)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(res.Body)), nil
}
