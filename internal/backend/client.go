package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/elitecommand/aura-session/internal/privacy"
)

// ErrBackendUnavailable is the errors.Is target for transport-level
// failures. The session loop treats these as transient and keeps local
// adaptation running.
var ErrBackendUnavailable = errors.New("backend unavailable")

// #region errors

// NetworkError wraps a transport failure against the backend.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string { return fmt.Sprintf("backend %s: %v", e.Op, e.Err) }

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Is(target error) bool { return target == ErrBackendUnavailable }

// StatusError is a non-2xx response from the backend.
type StatusError struct {
	Op   string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend %s: status %d: %s", e.Op, e.Code, e.Body)
}

// #endregion errors

// #region client

// Client talks JSON over HTTP to the ingestion backend.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the backend at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// NewClientWithHTTP creates a client with an injected http.Client, used by
// tests and callers that need custom transports.
func NewClientWithHTTP(baseURL string, hc *http.Client) *Client {
	return &Client{baseURL: baseURL, http: hc}
}

func (c *Client) post(ctx context.Context, op, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build %s request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Op: op, Code: resp.StatusCode, Body: string(b)}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", op, err)
	}
	return nil
}

// StartSession opens a monitoring session for the user.
func (c *Client) StartSession(ctx context.Context, req StartSessionRequest) (StartSessionResponse, error) {
	var resp StartSessionResponse
	if err := c.post(ctx, "start session", "/api/biometric/session/start", req, &resp); err != nil {
		return StartSessionResponse{}, err
	}
	return resp, nil
}

// Ingest submits one anonymized payload and returns any directives the
// backend wants applied.
func (c *Client) Ingest(ctx context.Context, payload privacy.BackendPayload) (IngestResponse, error) {
	var resp IngestResponse
	if err := c.post(ctx, "ingest", "/api/biometric/data/ingest", IngestRequest{BackendPayload: payload}, &resp); err != nil {
		return IngestResponse{}, err
	}
	return resp, nil
}

// EndSession closes a session and returns its summary.
func (c *Client) EndSession(ctx context.Context, sessionID string) (SessionSummary, error) {
	var resp SessionSummary
	path := fmt.Sprintf("/api/biometric/session/%s/end", sessionID)
	if err := c.post(ctx, "end session", path, struct{}{}, &resp); err != nil {
		return SessionSummary{}, err
	}
	return resp, nil
}

// #endregion client
