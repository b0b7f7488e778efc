package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/interacthq/jobagent/backend"
	"github.com/interacthq/jobagent/schema"
	"github.com/interacthq/jobagent/session"
)

type fakeResponder struct {
	lastProfileID string
	lastMsg       schema.ChatMessage
	resp          *backend.Response
	err           error
}

func (f *fakeResponder) Respond(ctx context.Context, profileID string, msg schema.ChatMessage) (*backend.Response, error) {
	f.lastProfileID = profileID
	f.lastMsg = msg
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

type recordingStore struct {
	saved []schema.ChatMessage
	err   error
}

func (r *recordingStore) SaveMessage(sid string, msg schema.ChatMessage) error {
	if r.err != nil {
		return r.err
	}
	r.saved = append(r.saved, msg)
	return nil
}

func aiText(content string) schema.ChatMessage {
	return schema.NewText(schema.SenderAI, content, nil)
}

func TestDispatcherSendText(t *testing.T) {
	ai := aiText("got it")
	fake := &fakeResponder{resp: &backend.Response{
		AIResponses:  []schema.ChatMessage{ai},
		UpdatedState: map[string]any{"has_job_list": true},
	}}
	store := &recordingStore{}
	d := &Dispatcher{State: session.New("prof-1"), Client: fake, Store: store}

	req, err := d.SendText(context.Background(), "find me jobs")
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	t.Run("Envelope And Threading", func(t *testing.T) {
		if fake.lastProfileID != "prof-1" {
			t.Errorf("profile id = %q", fake.lastProfileID)
		}
		msg := fake.lastMsg
		if msg.Sender != schema.SenderUser || msg.Type != schema.TypeText {
			t.Errorf("outbound envelope = %+v", msg)
		}
		if msg.Context[schema.CtxSessionID] != d.State.SessionID {
			t.Errorf("sessionId = %v", msg.Context[schema.CtxSessionID])
		}
		if _, ok := msg.InResponseTo(); ok {
			t.Error("first message must not carry in_response_to")
		}
	})

	t.Run("Request Snapshot", func(t *testing.T) {
		if req.CurrentUserMessage.ID != fake.lastMsg.ID {
			t.Error("snapshot should carry the outbound message")
		}
		if len(req.PastAIResponses) != 0 {
			t.Errorf("first turn has no past AI responses, got %d", len(req.PastAIResponses))
		}
	})

	t.Run("Reconciled And Persisted", func(t *testing.T) {
		if !d.State.HasJobList {
			t.Error("updated_state not applied")
		}
		if len(d.State.Messages) != 2 || d.State.Messages[1].ID != ai.ID {
			t.Errorf("log = %d messages", len(d.State.Messages))
		}
		// The user message and the AI response both hit the store.
		if len(store.saved) != 2 {
			t.Errorf("store saw %d messages", len(store.saved))
		}
	})

	t.Run("Second Turn Threads To Last AI", func(t *testing.T) {
		fake.resp = &backend.Response{AIResponses: []schema.ChatMessage{aiText("more")}, UpdatedState: map[string]any{}}
		_, err := d.SendText(context.Background(), "tell me more")
		if err != nil {
			t.Fatalf("send: %v", err)
		}
		if parent, ok := fake.lastMsg.InResponseTo(); !ok || parent != ai.ID {
			t.Errorf("in_response_to = %q, want %q", parent, ai.ID)
		}
	})
}

func TestDispatcherSendAction(t *testing.T) {
	fake := &fakeResponder{resp: &backend.Response{
		AIResponses:  []schema.ChatMessage{aiText("applied")},
		UpdatedState: map[string]any{},
	}}
	d := &Dispatcher{State: session.New("prof-1"), Client: fake}

	_, err := d.SendAction(context.Background(), "CLICKED_JOB_APPLY", map[string]any{"jobCount": 2})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	a, ok := fake.lastMsg.Action()
	if !ok || a.ActionType != "CLICKED_JOB_APPLY" {
		t.Errorf("outbound action = %+v", fake.lastMsg)
	}
}

func TestDispatcherTransportFailure(t *testing.T) {
	fake := &fakeResponder{err: &backend.TransportError{Kind: backend.KindTimeout, Err: errors.New("deadline")}}
	d := &Dispatcher{State: session.New("prof-1"), Client: fake}

	_, err := d.SendText(context.Background(), "hello")
	var te *backend.TransportError
	if !errors.As(err, &te) || te.Kind != backend.KindTimeout {
		t.Fatalf("expected timeout transport error, got %v", err)
	}
	// The user message stays in the log; nothing else was applied.
	if len(d.State.Messages) != 1 {
		t.Errorf("log = %d messages", len(d.State.Messages))
	}
	if d.State.HasJobList {
		t.Error("no state may be applied on a failed turn")
	}
}

func TestDispatcherDeadStoreWarnsButSucceeds(t *testing.T) {
	var warnings []string
	prev := warnf
	warnf = func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}
	defer func() { warnf = prev }()

	fake := &fakeResponder{resp: &backend.Response{
		AIResponses:  []schema.ChatMessage{aiText("ok")},
		UpdatedState: map[string]any{},
	}}
	store := &recordingStore{err: errors.New("disk full")}
	d := &Dispatcher{State: session.New("prof-1"), Client: fake, Store: store}

	if _, err := d.SendText(context.Background(), "hello"); err != nil {
		t.Fatalf("a dead store must not fail the turn: %v", err)
	}
	if len(d.State.Messages) != 2 {
		t.Errorf("log = %d messages", len(d.State.Messages))
	}
	// One warning per unsaved message: the user's and the AI's.
	if len(warnings) != 2 {
		t.Fatalf("warnings = %v", warnings)
	}
	if !strings.Contains(warnings[0], "disk full") {
		t.Errorf("warning should name the cause: %q", warnings[0])
	}
}

func TestDispatcherEmptyResponse(t *testing.T) {
	fake := &fakeResponder{resp: &backend.Response{
		AIResponses:  nil,
		UpdatedState: map[string]any{"last_intent": "noop"},
	}}
	d := &Dispatcher{State: session.New("prof-1"), Client: fake}

	_, err := d.SendText(context.Background(), "hello")
	if !errors.Is(err, session.ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
	if len(d.State.Messages) != 1 {
		t.Errorf("nothing may be appended on an empty response, log = %d", len(d.State.Messages))
	}
	if d.State.LastIntent != "noop" {
		t.Errorf("updated_state still applies on empty responses, got %v", d.State.LastIntent)
	}
}
