package session

import (
	"errors"

	"github.com/interacthq/jobagent/schema"
)

// ErrEmptyResponse marks a 200-OK round trip that carried no AI messages.
// This is a backend or transport fault, not a valid empty turn, and is
// reported distinctly from network failures.
var ErrEmptyResponse = errors.New("the backend did not return a valid response")

// Reconcile applies a backend response to the session state: recognized
// updated_state keys overwrite the cached mirror wholesale (last write
// wins, no field-level merge; unrecognized keys are ignored), then each
// AI response is validated and appended in order.
//
// Reconcile is the sole writer of backend-origin state. It is
// all-or-nothing per call: an invalid AI message aborts before anything
// is appended or overwritten.
func (s *State) Reconcile(aiResponses []schema.ChatMessage, updatedState map[string]any) error {
	for _, msg := range aiResponses {
		if err := msg.Validate(); err != nil {
			return err
		}
	}

	for key, value := range updatedState {
		switch key {
		case "profile":
			s.Profile = value
		case "top_jobs":
			s.TopJobs = value
		case "has_job_list":
			if b, ok := value.(bool); ok {
				s.HasJobList = b
			}
		case "last_intent":
			s.LastIntent = value
		case "profile_was_updated":
			if b, ok := value.(bool); ok {
				s.ProfileWasUpdated = b
			}
		case "last_profile_update":
			s.LastProfileUpdate = value
		}
		// interact_profile_id is immutable once set and deliberately not
		// reconciled; everything else unrecognized is ignored.
	}

	if len(aiResponses) == 0 {
		return ErrEmptyResponse
	}

	for _, msg := range aiResponses {
		s.Append(msg)
	}
	return nil
}
