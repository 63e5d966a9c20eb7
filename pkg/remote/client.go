package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrStatus is wrapped by StatusError so callers can test for any non-2xx
// reply without caring about the code.
var ErrStatus = errors.New("remote returned non-2xx status")

type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("remote returned status %d: %s", e.Code, e.Body)
}

func (e *StatusError) Unwrap() error { return ErrStatus }

// ErrTooLarge means the reply body exceeded maxBody and was not kept.
var ErrTooLarge = errors.New("remote reply too large")

// Client posts JSON to one remote service. Every call is a single attempt.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// Response is a fully read reply.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// maxBody bounds how much of a reply is read into memory.
const maxBody = 32 << 20

func (c *Client) PostJSON(ctx context.Context, path string, v interface{}) (*Response, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	rb, err := io.ReadAll(io.LimitReader(resp.Body, maxBody+1))
	if err != nil {
		return nil, err
	}
	if len(rb) > maxBody {
		return nil, fmt.Errorf("%w: more than %d bytes from %s", ErrTooLarge, maxBody, path)
	}
	// the caller may have gone away while the body was streaming
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := &Response{StatusCode: resp.StatusCode, ContentType: resp.Header.Get("Content-Type"), Body: rb}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return out, &StatusError{Code: resp.StatusCode, Body: truncate(string(rb), 200)}
	}
	return out, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
