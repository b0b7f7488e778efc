package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Wire shape. Timestamps are ISO-8601 strings; the payload object is keyed
// by the fields of the variant selected by "type".
type wireMessage struct {
	ID        string          `json:"id"`
	Sender    string          `json:"sender"`
	Timestamp string          `json:"timestamp"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Context   map[string]any  `json:"context"`
	Metadata  map[string]any  `json:"metadata"`
}

// Accepted timestamp layouts. The backend emits RFC3339; entries that
// round-tripped through other runtimes may lack a zone suffix.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

func (m ChatMessage) MarshalJSON() ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	payload, err := json.Marshal(m.Payload)
	if err != nil {
		return nil, err
	}
	ctx := m.Context
	if ctx == nil {
		ctx = map[string]any{}
	}
	meta := m.Metadata
	if meta == nil {
		meta = map[string]any{}
	}
	return json.Marshal(wireMessage{
		ID:        m.ID,
		Sender:    string(m.Sender),
		Timestamp: m.Timestamp.UTC().Format(time.RFC3339Nano),
		Type:      string(m.Type),
		Payload:   payload,
		Context:   ctx,
		Metadata:  meta,
	})
}

// requireKeys checks that every named key is present in the raw payload
// object. Pydantic-style presence validation: a missing required field is
// a schema error even when the zero value would decode fine.
func requireKeys(raw json.RawMessage, keys ...string) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return &SchemaError{Field: "payload", Reason: "payload is not an object"}
	}
	for _, k := range keys {
		if _, ok := obj[k]; !ok {
			return &SchemaError{Field: "payload." + k, Reason: "required field is missing"}
		}
	}
	return nil
}

func decodePayload(typ MessageType, raw json.RawMessage) (Payload, error) {
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, &SchemaError{Field: "payload", Reason: "payload is missing"}
	}
	switch typ {
	case TypeText:
		if err := requireKeys(raw, "content"); err != nil {
			return nil, err
		}
		var p TextPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, &SchemaError{Field: "payload", Reason: err.Error()}
		}
		return p, nil
	case TypeUIComponent:
		if err := requireKeys(raw, "componentName", "componentProps"); err != nil {
			return nil, err
		}
		var p UIComponentPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, &SchemaError{Field: "payload", Reason: err.Error()}
		}
		if p.ComponentProps == nil {
			p.ComponentProps = map[string]any{}
		}
		return p, nil
	case TypeUserAction:
		if err := requireKeys(raw, "actionType", "actionData"); err != nil {
			return nil, err
		}
		var p UserActionPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, &SchemaError{Field: "payload", Reason: err.Error()}
		}
		if p.ActionData == nil {
			p.ActionData = map[string]any{}
		}
		return p, nil
	default:
		return nil, &SchemaError{Field: "type", Reason: fmt.Sprintf("unknown message type %q", typ)}
	}
}

// UnmarshalJSON re-validates defensively on every read: stored entries may
// have round-tripped through an external transport.
func (m *ChatMessage) UnmarshalJSON(data []byte) error {
	var w wireMessage
	if err := json.Unmarshal(data, &w); err != nil {
		return &SchemaError{Reason: err.Error()}
	}
	// id and timestamp have generation defaults: an entry written
	// without them is still valid and gets fresh values, matching the
	// backend's own model. A present but unparseable timestamp is
	// still an error.
	if w.ID == "" {
		w.ID = newID()
	}
	ts := time.Now().UTC()
	if w.Timestamp != "" {
		var err error
		ts, err = parseTimestamp(w.Timestamp)
		if err != nil {
			return &SchemaError{Field: "timestamp", Reason: err.Error()}
		}
	}
	payload, err := decodePayload(MessageType(w.Type), w.Payload)
	if err != nil {
		return err
	}
	out := ChatMessage{
		ID:        w.ID,
		Sender:    Sender(w.Sender),
		Timestamp: ts,
		Type:      MessageType(w.Type),
		Payload:   payload,
		Context:   w.Context,
		Metadata:  w.Metadata,
	}
	if out.Context == nil {
		out.Context = map[string]any{}
	}
	if out.Metadata == nil {
		out.Metadata = map[string]any{}
	}
	if err := out.Validate(); err != nil {
		return err
	}
	*m = out
	return nil
}

// Parse decodes and validates a single stored message.
func Parse(data []byte) (ChatMessage, error) {
	var m ChatMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return ChatMessage{}, err
	}
	return m, nil
}
