// Package backend is the transport client for the reasoning backend: one
// POST per user turn carrying the profile id and the current message,
// returning the AI responses plus a session-state delta. The backend is
// stateful per profile id and reloads its own context server-side, so
// nothing else crosses the wire.
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

	"github.com/interacthq/jobagent/schema"
)

// DefaultTimeout bounds a single round trip; a request that exceeds it is
// a failed turn, retried only by a user-initiated new turn.
const DefaultTimeout = 30 * time.Second

// Response is the unwrapped backend payload.
type Response struct {
	AIResponses  []schema.ChatMessage `json:"ai_responses"`
	UpdatedState map[string]any       `json:"updated_state"`
}

type request struct {
	InteractProfileID  string             `json:"interact_profile_id"`
	CurrentUserMessage schema.ChatMessage `json:"current_user_message"`
}

// Client talks to the reasoning backend gateway.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

// NewClient builds a client. A zero timeout falls back to DefaultTimeout.
// Verbose installs a wire-dumping transport.
func NewClient(endpoint, apiKey string, timeout time.Duration, verbose bool) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	hc := &http.Client{Timeout: timeout}
	if verbose {
		hc.Transport = &loggingTransport{}
	}
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		http:     hc,
	}
}

// Respond sends the current user message and returns the backend's AI
// responses and state delta. Every failure is a *TransportError whose
// Kind the caller can report distinctly. No automatic retry.
func (c *Client) Respond(ctx context.Context, profileID string, msg schema.ChatMessage) (*Response, error) {
	if c.apiKey == "" {
		return nil, &TransportError{Kind: KindAuth, Err: errors.New("API_KEY is not configured")}
	}
	if c.endpoint == "" {
		return nil, &TransportError{Kind: KindNetwork, Err: errors.New("API_ENDPOINT is not configured")}
	}

	body, err := json.Marshal(request{
		InteractProfileID:  profileID,
		CurrentUserMessage: msg,
	})
	if err != nil {
		return nil, &TransportError{Kind: KindMalformed, Err: fmt.Errorf("encode request: %w", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.endpoint, bytes.NewBuffer(body))
	if err != nil {
		return nil, &TransportError{Kind: KindNetwork, Err: err}
	}
	httpReq.Header = http.Header{
		"Content-Type": {"application/json"},
		"X-Api-Key":    {c.apiKey},
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if isTimeout(err) {
			return nil, &TransportError{Kind: KindTimeout, Err: err}
		}
		return nil, &TransportError{Kind: KindNetwork, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden {
		return nil, &TransportError{
			Kind:   KindAuth,
			Status: resp.StatusCode,
			Err:    errors.New("API key authentication failed"),
		}
	}
	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &TransportError{
			Kind:   KindNetwork,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("API error (status %d): %s", resp.StatusCode, snippet),
		}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(err) {
			return nil, &TransportError{Kind: KindTimeout, Err: err}
		}
		return nil, &TransportError{Kind: KindNetwork, Err: err}
	}

	payload, err := unwrapBody(raw)
	if err != nil {
		return nil, &TransportError{Kind: KindMalformed, Status: resp.StatusCode, Err: err}
	}

	var out Response
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, &TransportError{Kind: KindMalformed, Status: resp.StatusCode, Err: err}
	}
	if out.UpdatedState == nil {
		out.UpdatedState = map[string]any{}
	}
	return &out, nil
}

// unwrapBody handles the gateway's double encoding: the payload may sit
// inside a "body" field as a JSON string. Absent that field, the
// top-level object is the payload.
func unwrapBody(raw []byte) ([]byte, error) {
	var envelope struct {
		Body *string `json:"body"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse API response: %w", err)
	}
	if envelope.Body != nil {
		return []byte(*envelope.Body), nil
	}
	return raw, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne interface{ Timeout() bool }
	return errors.As(err, &ne) && ne.Timeout()
}
