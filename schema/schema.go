// Package schema defines the standardized message envelope shared by every
// entry of the conversation log: user text, user actions and AI replies
// (plain text or structured UI components) all travel as a ChatMessage.
package schema

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

type MessageType string

const (
	TypeText        MessageType = "text"
	TypeUIComponent MessageType = "ui_component"
	TypeUserAction  MessageType = "user_action"
)

// Context keys used by the client. The map stays open because the backend
// is free to attach more.
const (
	CtxProfileID    = "interact_profile_id"
	CtxSessionID    = "sessionId"
	CtxInResponseTo = "in_response_to"
)

// Payload is the tagged union carried by a ChatMessage. The concrete type
// must agree with the message's Type field.
type Payload interface {
	messageType() MessageType
}

type TextPayload struct {
	Content string `json:"content"`
}

type UIComponentPayload struct {
	ComponentName  string         `json:"componentName"`
	ComponentProps map[string]any `json:"componentProps"`
}

type UserActionPayload struct {
	ActionType string         `json:"actionType"`
	ActionData map[string]any `json:"actionData"`
}

func (TextPayload) messageType() MessageType        { return TypeText }
func (UIComponentPayload) messageType() MessageType { return TypeUIComponent }
func (UserActionPayload) messageType() MessageType  { return TypeUserAction }

// SchemaError reports a payload that does not match the declared message
// type, or a malformed stored message. It is always recoverable: callers
// fall back to a generic rendering or reject the single entry.
type SchemaError struct {
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("schema: %s: %s", e.Field, e.Reason)
	}
	return "schema: " + e.Reason
}

// ChatMessage is the universal envelope for all interactions.
type ChatMessage struct {
	ID        string
	Sender    Sender
	Timestamp time.Time
	Type      MessageType
	Payload   Payload
	Context   map[string]any
	Metadata  map[string]any
}

func newID() string {
	return "msg_" + uuid.New().String()
}

// New constructs a validated ChatMessage. The payload's concrete shape
// must match typ; a mismatch is a *SchemaError.
func New(sender Sender, typ MessageType, payload Payload, ctx map[string]any) (ChatMessage, error) {
	msg := ChatMessage{
		ID:        newID(),
		Sender:    sender,
		Timestamp: time.Now().UTC(),
		Type:      typ,
		Payload:   payload,
		Context:   ctx,
		Metadata:  map[string]any{},
	}
	if ctx == nil {
		msg.Context = map[string]any{}
	}
	if err := msg.Validate(); err != nil {
		return ChatMessage{}, err
	}
	return msg, nil
}

// NewText builds a user- or AI-originated plain text message.
func NewText(sender Sender, content string, ctx map[string]any) ChatMessage {
	msg, _ := New(sender, TypeText, TextPayload{Content: content}, ctx)
	return msg
}

// NewUserAction builds the envelope for a structured UI interaction.
func NewUserAction(actionType string, actionData map[string]any, ctx map[string]any) ChatMessage {
	if actionData == nil {
		actionData = map[string]any{}
	}
	msg, _ := New(SenderUser, TypeUserAction, UserActionPayload{ActionType: actionType, ActionData: actionData}, ctx)
	return msg
}

// NewUIComponent builds a component message; normally these originate on
// the backend, but tests and fallbacks construct them locally too.
func NewUIComponent(componentName string, props map[string]any, ctx map[string]any) ChatMessage {
	if props == nil {
		props = map[string]any{}
	}
	msg, _ := New(SenderAI, TypeUIComponent, UIComponentPayload{ComponentName: componentName, ComponentProps: props}, ctx)
	return msg
}

// Validate checks envelope invariants: known sender and type, and a
// payload whose variant matches the declared type.
func (m ChatMessage) Validate() error {
	switch m.Sender {
	case SenderUser, SenderAI:
	default:
		return &SchemaError{Field: "sender", Reason: fmt.Sprintf("unknown sender %q", m.Sender)}
	}
	switch m.Type {
	case TypeText, TypeUIComponent, TypeUserAction:
	default:
		return &SchemaError{Field: "type", Reason: fmt.Sprintf("unknown message type %q", m.Type)}
	}
	if m.Payload == nil {
		return &SchemaError{Field: "payload", Reason: "payload is missing"}
	}
	if got := m.Payload.messageType(); got != m.Type {
		return &SchemaError{
			Field:  "payload",
			Reason: fmt.Sprintf("payload variant %q does not match declared type %q", got, m.Type),
		}
	}
	return nil
}

// Text returns the content for text messages, or "" otherwise.
func (m ChatMessage) Text() string {
	if p, ok := m.Payload.(TextPayload); ok {
		return p.Content
	}
	return ""
}

// Component returns the component payload for ui_component messages.
func (m ChatMessage) Component() (UIComponentPayload, bool) {
	p, ok := m.Payload.(UIComponentPayload)
	return p, ok
}

// Action returns the action payload for user_action messages.
func (m ChatMessage) Action() (UserActionPayload, bool) {
	p, ok := m.Payload.(UserActionPayload)
	return p, ok
}

// InResponseTo reports the threaded parent AI message id, if any.
func (m ChatMessage) InResponseTo() (string, bool) {
	v, ok := m.Context[CtxInResponseTo].(string)
	return v, ok && v != ""
}
