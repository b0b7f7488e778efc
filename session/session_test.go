package session

import (
	"errors"
	"reflect"
	"testing"

	"github.com/interacthq/jobagent/schema"
)

func userMsg(content string) schema.ChatMessage {
	return schema.NewText(schema.SenderUser, content, nil)
}

func aiMsg(content string) schema.ChatMessage {
	return schema.NewText(schema.SenderAI, content, nil)
}

func ids(msgs []schema.ChatMessage) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.ID
	}
	return out
}

func TestPastAIResponses(t *testing.T) {
	t.Run("First Turn", func(t *testing.T) {
		// AI greeting before the first user message does not count as
		// turn context.
		log := []schema.ChatMessage{aiMsg("welcome"), userMsg("U1")}
		got := PastAIResponses(log)
		if len(got) != 0 {
			t.Errorf("expected empty past responses on first turn, got %d", len(got))
		}
	})

	t.Run("Empty Log", func(t *testing.T) {
		if got := PastAIResponses(nil); len(got) != 0 {
			t.Errorf("expected empty, got %d", len(got))
		}
	})

	t.Run("General", func(t *testing.T) {
		u1, a1, a2 := userMsg("U1"), aiMsg("A1"), aiMsg("A2")
		u2, a3, u3 := userMsg("U2"), aiMsg("A3"), userMsg("U3")
		log := []schema.ChatMessage{u1, a1, a2, u2, a3, u3}

		got := PastAIResponses(log)
		if !reflect.DeepEqual(ids(got), []string{a3.ID}) {
			t.Errorf("expected [A3], got %v", ids(got))
		}
	})

	t.Run("Action Counts As Turn Boundary", func(t *testing.T) {
		u1 := userMsg("U1")
		click := schema.NewUserAction("CLICKED_JOB_APPLY", map[string]any{}, nil)
		a1 := aiMsg("A1")
		u2 := userMsg("U2")
		// click is the previous user turn, so only a1 belongs to u2.
		log := []schema.ChatMessage{u1, click, a1, u2}

		got := PastAIResponses(log)
		if !reflect.DeepEqual(ids(got), []string{a1.ID}) {
			t.Errorf("expected [A1], got %v", ids(got))
		}
	})

	t.Run("Multiple AI Between Turns", func(t *testing.T) {
		u1, a1 := userMsg("U1"), aiMsg("A1")
		u2, a2, a3, u3 := userMsg("U2"), aiMsg("A2"), aiMsg("A3"), userMsg("U3")
		log := []schema.ChatMessage{u1, a1, u2, a2, a3, u3}

		got := PastAIResponses(log)
		if !reflect.DeepEqual(ids(got), []string{a2.ID, a3.ID}) {
			t.Errorf("expected [A2 A3], got %v", ids(got))
		}
	})
}

func TestReconcile(t *testing.T) {
	t.Run("Overwrites Recognized Keys", func(t *testing.T) {
		st := New("prof-1")
		err := st.Reconcile([]schema.ChatMessage{aiMsg("hello")}, map[string]any{
			"profile":             map[string]any{"name": "Alice"},
			"has_job_list":        true,
			"last_intent":         "search",
			"profile_was_updated": true,
			"unknown_key":         "ignored",
		})
		if err != nil {
			t.Fatalf("reconcile: %v", err)
		}
		if !st.HasJobList || !st.ProfileWasUpdated {
			t.Error("expected boolean fields to be overwritten")
		}
		if st.LastIntent != "search" {
			t.Errorf("expected last_intent=search, got %v", st.LastIntent)
		}
		if st.Profile == nil {
			t.Error("expected profile to be cached")
		}
		if len(st.Messages) != 1 {
			t.Fatalf("expected 1 appended message, got %d", len(st.Messages))
		}
	})

	t.Run("Profile ID Not Reconciled", func(t *testing.T) {
		st := New("prof-1")
		st.Reconcile([]schema.ChatMessage{aiMsg("x")}, map[string]any{
			"interact_profile_id": "prof-other",
		})
		if st.InteractProfileID != "prof-1" {
			t.Errorf("profile id must be immutable, got %q", st.InteractProfileID)
		}
	})

	t.Run("Empty Response", func(t *testing.T) {
		st := New("prof-1")
		err := st.Reconcile(nil, map[string]any{"has_job_list": true})
		if !errors.Is(err, ErrEmptyResponse) {
			t.Fatalf("expected ErrEmptyResponse, got %v", err)
		}
		if len(st.Messages) != 0 {
			t.Errorf("expected no messages appended, got %d", len(st.Messages))
		}
		// State delta still applies on an empty turn, matching the
		// observed backend contract.
		if !st.HasJobList {
			t.Error("expected updated_state applied")
		}
	})

	t.Run("Invalid AI Message Aborts", func(t *testing.T) {
		st := New("prof-1")
		bad := aiMsg("ok")
		bad.Type = schema.TypeUIComponent // payload now mismatches
		err := st.Reconcile([]schema.ChatMessage{aiMsg("fine"), bad}, nil)
		if err == nil {
			t.Fatal("expected validation error")
		}
		if len(st.Messages) != 0 {
			t.Errorf("expected all-or-nothing append, got %d messages", len(st.Messages))
		}
	})
}

func TestSelection(t *testing.T) {
	t.Run("Select All Skips Missing IDs", func(t *testing.T) {
		st := New("prof-1")
		st.SelectAll([]string{"j1", "", "j2", "", "j3"})
		if !reflect.DeepEqual(st.SelectedJobs, []string{"j1", "j2", "j3"}) {
			t.Errorf("expected [j1 j2 j3], got %v", st.SelectedJobs)
		}
	})

	t.Run("Clear All", func(t *testing.T) {
		st := New("prof-1")
		st.SelectJob("j1")
		st.SelectJob("j2")
		st.ClearSelection()
		if len(st.SelectedJobs) != 0 {
			t.Errorf("expected empty selection, got %v", st.SelectedJobs)
		}
	})

	t.Run("Toggle", func(t *testing.T) {
		st := New("prof-1")
		st.ToggleJob("j1")
		if !st.IsSelected("j1") {
			t.Error("expected j1 selected after toggle")
		}
		st.ToggleJob("j1")
		if st.IsSelected("j1") {
			t.Error("expected j1 deselected after second toggle")
		}
	})

	t.Run("Duplicate Select Is Idempotent", func(t *testing.T) {
		st := New("prof-1")
		st.SelectJob("j1")
		st.SelectJob("j1")
		if len(st.SelectedJobs) != 1 {
			t.Errorf("expected 1 entry, got %v", st.SelectedJobs)
		}
	})
}

func TestLastAIMessageID(t *testing.T) {
	st := New("prof-1")
	if _, ok := st.LastAIMessageID(); ok {
		t.Error("expected no AI message id in empty log")
	}
	a1 := aiMsg("A1")
	st.Append(a1)
	st.Append(userMsg("U1"))
	id, ok := st.LastAIMessageID()
	if !ok || id != a1.ID {
		t.Errorf("expected %q, got %q ok=%v", a1.ID, id, ok)
	}

	ctx := st.Context()
	if ctx[schema.CtxInResponseTo] != a1.ID {
		t.Errorf("expected threading context, got %v", ctx)
	}
	if ctx[schema.CtxProfileID] != "prof-1" {
		t.Errorf("expected profile id in context, got %v", ctx)
	}
}
