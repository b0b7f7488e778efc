// Package session holds the per-session client state: the append-only
// message log, the cached mirror of backend-owned fields and the UI-local
// job selection. Reconciliation and turn threading live here as pure
// functions over that state.
package session

import (
	"github.com/google/uuid"

	"github.com/interacthq/jobagent/schema"
)

// State is the process-local session state. One instance per session;
// lifecycle matches the session. Backend-owned fields (Profile, TopJobs,
// ...) are cached mirrors, overwritten wholesale by Reconcile and by
// nothing else.
type State struct {
	SessionID         string
	InteractProfileID string

	// Messages is append-only: never reordered, never pruned.
	Messages []schema.ChatMessage

	// Cached mirror of backend-owned state.
	Profile           any
	TopJobs           any
	HasJobList        bool
	LastIntent        any
	ProfileWasUpdated bool
	LastProfileUpdate any

	// SelectedJobs is UI-local: an ordered set of job ids checked for a
	// batch application. Cleared only after a successful submission.
	SelectedJobs []string
}

// New creates session state for a just-submitted profile id.
func New(profileID string) *State {
	return &State{
		SessionID:         uuid.New().String(),
		InteractProfileID: profileID,
	}
}

// Append adds one message to the log.
func (s *State) Append(msg schema.ChatMessage) {
	s.Messages = append(s.Messages, msg)
}

// LastAIMessageID returns the id of the most recent AI-sent message, for
// in_response_to threading. ok is false when no AI message exists yet.
func (s *State) LastAIMessageID() (string, bool) {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Sender == schema.SenderAI {
			return s.Messages[i].ID, true
		}
	}
	return "", false
}

// Context builds the outbound message context for this session.
func (s *State) Context() map[string]any {
	ctx := map[string]any{
		schema.CtxProfileID: s.InteractProfileID,
		schema.CtxSessionID: s.SessionID,
	}
	if id, ok := s.LastAIMessageID(); ok {
		ctx[schema.CtxInResponseTo] = id
	}
	return ctx
}

// === Job selection ===

// IsSelected reports whether a job id is in the selection set.
func (s *State) IsSelected(jobID string) bool {
	for _, id := range s.SelectedJobs {
		if id == jobID {
			return true
		}
	}
	return false
}

// SelectJob adds a job id to the selection set, preserving order and
// ignoring duplicates and empty ids.
func (s *State) SelectJob(jobID string) {
	if jobID == "" || s.IsSelected(jobID) {
		return
	}
	s.SelectedJobs = append(s.SelectedJobs, jobID)
}

// DeselectJob removes a job id from the selection set.
func (s *State) DeselectJob(jobID string) {
	n := 0
	for _, id := range s.SelectedJobs {
		if id != jobID {
			s.SelectedJobs[n] = id
			n++
		}
	}
	s.SelectedJobs = s.SelectedJobs[:n]
}

// ToggleJob flips a job id's selection.
func (s *State) ToggleJob(jobID string) {
	if jobID == "" {
		return
	}
	if s.IsSelected(jobID) {
		s.DeselectJob(jobID)
	} else {
		s.SelectJob(jobID)
	}
}

// SelectAll selects every listed job that carries an id.
func (s *State) SelectAll(jobIDs []string) {
	s.SelectedJobs = s.SelectedJobs[:0]
	for _, id := range jobIDs {
		s.SelectJob(id)
	}
}

// ClearSelection empties the selection set regardless of prior state.
func (s *State) ClearSelection() {
	s.SelectedJobs = nil
}

// UserMessageCount tallies user-sent entries; used by the TUI to decide
// when to offer the quick-action toggle.
func (s *State) UserMessageCount() int {
	n := 0
	for _, m := range s.Messages {
		if m.Sender == schema.SenderUser {
			n++
		}
	}
	return n
}
