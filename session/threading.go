package session

import "github.com/interacthq/jobagent/schema"

// PastAIResponses computes the AI messages that belong to the current
// turn's context: everything produced after the previous user message.
// The log is scanned newest to oldest counting user-sent entries; the
// just-appended current user message is the first, the previous turn
// boundary the second. Entries strictly between that boundary and the end
// (excluding the current user message itself) are returned.
//
// A user_action entry counts as a turn boundary the same as typed text.
// On the first turn (fewer than two user messages) the result is empty.
// Pure function: no side effects, deterministic given the log.
func PastAIResponses(messages []schema.ChatMessage) []schema.ChatMessage {
	userCount := 0
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Sender != schema.SenderUser {
			continue
		}
		userCount++
		if userCount == 2 {
			past := make([]schema.ChatMessage, 0, len(messages)-i-2)
			past = append(past, messages[i+1:len(messages)-1]...)
			return past
		}
	}
	return []schema.ChatMessage{}
}
