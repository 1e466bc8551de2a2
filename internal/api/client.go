// Package api is the request/response client for the chat HTTP API.
// Every endpoint answers with the {data, error, message} envelope.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/chatsync/internal/proto"
)

// Error is a failure reported by the server, either through a non-2xx status
// or through the envelope's error flag.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error (status %d)", e.Status)
	}
	return fmt.Sprintf("api error (status %d): %s", e.Status, e.Message)
}

// IsUnauthorized reports whether err is a 401 from the server.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// MessageOf extracts the server-provided message from err, or returns fallback.
func MessageOf(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// Client talks to the API with a cookie jar, so the session cookie set by
// login is sent on every later request.
type Client struct {
	base *url.URL
	http *http.Client
	log  *zerolog.Logger
}

// New creates a client for the given base URL (including any "/api" prefix).
func New(baseURL string, timeout time.Duration, logger *zerolog.Logger) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("api url %q must be absolute", baseURL)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Client{
		base: base,
		http: &http.Client{Timeout: timeout, Jar: jar},
		log:  logger,
	}, nil
}

// HTTPClient exposes the underlying client so the real-time connection can
// share its cookies.
func (c *Client) HTTPClient() *http.Client {
	return c.http
}

func do[T any](ctx context.Context, c *Client, method, path string, query url.Values, body any) (T, string, error) {
	var zero T

	u := c.base.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return zero, "", fmt.Errorf("marshal %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return zero, "", fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return zero, "", fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return zero, "", fmt.Errorf("read %s %s: %w", method, path, err)
	}

	var env proto.Response[T]
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).Msg("api request failed")
		return zero, "", &Error{Status: resp.StatusCode, Message: env.Message}
	}
	if decodeErr != nil {
		return zero, "", fmt.Errorf("decode %s %s: %w", method, path, decodeErr)
	}
	if env.Error {
		return zero, "", &Error{Status: resp.StatusCode, Message: env.Message}
	}

	c.log.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).Msg("api request")
	return env.Data, env.Message, nil
}

func chatQuery(kind proto.ChatKind) url.Values {
	return url.Values{"type": []string{string(kind)}}
}
