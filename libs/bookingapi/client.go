// Package bookingapi is a Go client for the booking service's agent API (/ai/...).
package bookingapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/md-rashed-zaman/agentbook/libs/httpx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// APIError is a non-2xx response decoded from the service's error envelope.
type APIError struct {
	Status  int
	Message string
	Hint    string
	Details []httpx.FieldError
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("booking api: %d %s", e.Status, e.Message)
	if e.Hint != "" {
		msg += " (" + e.Hint + ")"
	}
	return msg
}

// IsConflict reports whether the slot was taken or the booking can no longer change.
func (e *APIError) IsConflict() bool { return e.Status == http.StatusConflict }

func (e *APIError) IsNotFound() bool { return e.Status == http.StatusNotFound }

type Client struct {
	baseURL   string
	agentName string
	http      *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the default traced client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

// WithAgentName is sent as agentName on reservations that do not set one.
func WithAgentName(name string) Option {
	return func(cl *Client) { cl.agentName = strings.TrimSpace(name) }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http: &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Services lists a company's active services.
func (c *Client) Services(ctx context.Context, company string) (Catalog, error) {
	var out Catalog
	err := c.do(ctx, http.MethodGet, "/ai/services", url.Values{"company": {company}}, nil, &out)
	return out, err
}

func (c *Client) Availability(ctx context.Context, q AvailabilityQuery) (Availability, error) {
	params := url.Values{"company": {q.Company}, "serviceId": {q.ServiceID}}
	if q.Date != "" {
		params.Set("date", q.Date)
	}
	if q.Days != nil {
		params.Set("days", strconv.Itoa(*q.Days))
	}
	var out Availability
	err := c.do(ctx, http.MethodGet, "/ai/availability", params, nil, &out)
	return out, err
}

func (c *Client) Reserve(ctx context.Context, req ReserveRequest) (Reservation, error) {
	if req.AgentName == "" {
		req.AgentName = c.agentName
	}
	var out Reservation
	err := c.do(ctx, http.MethodPost, "/ai/reservations", nil, req, &out)
	return out, err
}

func (c *Client) Lookup(ctx context.Context, id, email string) (Booking, error) {
	var out Booking
	err := c.do(ctx, http.MethodGet, "/ai/reservations", url.Values{"id": {id}, "email": {email}}, nil, &out)
	return out, err
}

func (c *Client) Reschedule(ctx context.Context, req RescheduleRequest) (Booking, error) {
	var out struct {
		Booking Booking `json:"booking"`
	}
	err := c.do(ctx, http.MethodPatch, "/ai/reservations", nil, req, &out)
	return out.Booking, err
}

// Cancel cancels a booking and returns its new status.
func (c *Client) Cancel(ctx context.Context, id, email string) (string, error) {
	var out struct {
		Booking struct {
			Status string `json:"status"`
		} `json:"booking"`
	}
	err := c.do(ctx, http.MethodDelete, "/ai/reservations", url.Values{"id": {id}, "email": {email}}, nil, &out)
	return out.Booking.Status, err
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, body, dst any) error {
	target := c.baseURL + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id := httpx.RequestIDFromContext(ctx); id != "" {
		req.Header.Set(httpx.RequestIDHeader, id)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var env httpx.ErrorBody
		if json.Unmarshal(raw, &env) == nil && env.Error != "" {
			apiErr.Message = env.Error
			apiErr.Hint = env.Hint
			apiErr.Details = env.Details
		}
		return apiErr
	}
	if dst == nil {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
