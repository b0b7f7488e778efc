package main

import (
	"context"
	"fmt"
	"os"

	"github.com/interacthq/jobagent/backend"
	"github.com/interacthq/jobagent/schema"
	"github.com/interacthq/jobagent/session"
)

// warnf reports non-fatal problems without interrupting a turn; tests
// swap it out.
var warnf = func(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "warning: "+format+"\n", args...)
}

// responder is the one backend operation the dispatcher needs;
// *backend.Client satisfies it, tests swap in fakes.
type responder interface {
	Respond(ctx context.Context, profileID string, msg schema.ChatMessage) (*backend.Response, error)
}

// transcriptStore receives best-effort copies of everything appended
// to the log.
type transcriptStore interface {
	SaveMessage(sid string, msg schema.ChatMessage) error
}

// RequestState is the snapshot assembled for each turn: the session
// mirror, the outbound message and the resolved prior AI turn. The
// transport sends only the profile id and the current message — the
// backend reloads its own context — but the full snapshot is what the
// turn was computed from, and callers can log or inspect it.
type RequestState struct {
	InteractProfileID  string
	SessionID          string
	CurrentUserMessage schema.ChatMessage
	PastAIResponses    []schema.ChatMessage
	Profile            any
	TopJobs            any
	HasJobList         bool
	LastIntent         any
}

// Dispatcher runs the send-reconcile cycle for one session. Exactly
// one turn may be in flight; the TUI enforces that by disabling input
// while a turn runs.
type Dispatcher struct {
	State  *session.State
	Client responder
	Store  transcriptStore
}

// SendText dispatches a typed message.
func (d *Dispatcher) SendText(ctx context.Context, content string) (RequestState, error) {
	msg := schema.NewText(schema.SenderUser, content, d.State.Context())
	return d.send(ctx, msg)
}

// SendAction dispatches a structured UI interaction.
func (d *Dispatcher) SendAction(ctx context.Context, actionType string, actionData map[string]any) (RequestState, error) {
	msg := schema.NewUserAction(actionType, actionData, d.State.Context())
	return d.send(ctx, msg)
}

func (d *Dispatcher) send(ctx context.Context, msg schema.ChatMessage) (RequestState, error) {
	d.State.Append(msg)
	d.persist(msg)

	req := RequestState{
		InteractProfileID:  d.State.InteractProfileID,
		SessionID:          d.State.SessionID,
		CurrentUserMessage: msg,
		PastAIResponses:    session.PastAIResponses(d.State.Messages),
		Profile:            d.State.Profile,
		TopJobs:            d.State.TopJobs,
		HasJobList:         d.State.HasJobList,
		LastIntent:         d.State.LastIntent,
	}

	resp, err := d.Client.Respond(ctx, d.State.InteractProfileID, msg)
	if err != nil {
		return req, err
	}

	if err := d.State.Reconcile(resp.AIResponses, resp.UpdatedState); err != nil {
		return req, err
	}
	for _, ai := range resp.AIResponses {
		d.persist(ai)
	}
	return req, nil
}

// persist is best-effort: a dead store never fails a turn.
func (d *Dispatcher) persist(msg schema.ChatMessage) {
	if d.Store == nil {
		return
	}
	if err := d.Store.SaveMessage(d.State.SessionID, msg); err != nil {
		warnf("transcript save failed: %v", err)
	}
}
