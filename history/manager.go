package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/interacthq/jobagent/schema"
)

// Manager is the dual-write transcript store: a JSONL file for a
// greppable log plus SQLite for listing and search. All writes are
// best-effort from the caller's point of view; a failed write never
// fails a chat turn.
type Manager struct {
	db          *sql.DB
	jsonlPath   string
	searchAvail bool
	mu          sync.Mutex
}

// New opens (creating if needed) the store at dbPath with the JSONL
// log alongside.
func New(dbPath, jsonlPath string) (*Manager, error) {
	db, ftsEnabled, err := initDB(dbPath)
	if err != nil {
		return nil, err
	}

	return &Manager{
		db:          db,
		jsonlPath:   jsonlPath,
		searchAvail: ftsEnabled,
	}, nil
}

func (m *Manager) Close() {
	if m.db != nil {
		m.db.Close()
	}
}

// SearchAvailable reports whether the FTS index is usable.
func (m *Manager) SearchAvailable() bool { return m.searchAvail }

// SaveSessionStart records a new chat session.
func (m *Manager) SaveSessionStart(sid, profileID string) error {
	now := time.Now().Unix()
	if err := m.appendJSONL(SessionStartEvent{SID: sid, ProfileID: profileID, TS: now}); err != nil {
		return err
	}
	_, err := m.db.Exec("INSERT OR IGNORE INTO sessions(uuid, profile_id, created_at, summary) VALUES(?, ?, ?, ?)",
		sid, profileID, now, "")
	return err
}

// SaveMessage records one envelope of a session. The first user text
// of a session becomes its summary.
func (m *Manager) SaveMessage(sid string, msg schema.ChatMessage) error {
	now := time.Now().Unix()
	if err := m.appendJSONL(MessageEvent{SID: sid, TS: now, Message: msg}); err != nil {
		return err
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if _, err := m.db.Exec(
		"INSERT INTO messages(session_uuid, msg_id, sender, type, body, created_at) VALUES(?, ?, ?, ?, ?, ?)",
		sid, msg.ID, string(msg.Sender), string(msg.Type), string(body), now); err != nil {
		return err
	}

	if m.searchAvail {
		m.db.Exec("INSERT INTO messages_fts(content, sender, session_uuid) VALUES(?, ?, ?)",
			indexText(msg), string(msg.Sender), sid)
	}

	if msg.Sender == schema.SenderUser && msg.Type == schema.TypeText {
		summary := msg.Text()
		if len(summary) > 100 {
			summary = summary[:100] + "..."
		}
		m.db.Exec("UPDATE sessions SET summary = ? WHERE uuid = ? AND summary = ''", summary, sid)
	}
	return nil
}

// indexText flattens an envelope into searchable text.
func indexText(msg schema.ChatMessage) string {
	switch msg.Type {
	case schema.TypeText:
		return msg.Text()
	case schema.TypeUIComponent:
		if c, ok := msg.Component(); ok {
			return c.ComponentName
		}
	case schema.TypeUserAction:
		if a, ok := msg.Action(); ok {
			return a.ActionType
		}
	}
	return ""
}

func (m *Manager) appendJSONL(data any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, err := os.OpenFile(m.jsonlPath, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	bytes, err := json.Marshal(data)
	if err != nil {
		return err
	}

	_, err = f.Write(append(bytes, '\n'))
	return err
}

// Search queries the FTS index. Unavailable FTS is a clear error, not
// a silent empty result.
func (m *Manager) Search(query string) ([]SearchResult, error) {
	if !m.searchAvail {
		return nil, fmt.Errorf("search is unavailable (sqlite built without FTS5 support)")
	}

	ftsQuery := ParseQuery(query)
	if ftsQuery == "" {
		return nil, fmt.Errorf("empty query")
	}

	rows, err := m.db.Query(`
		SELECT session_uuid, sender, highlight(messages_fts, 0, '[', ']')
		FROM messages_fts
		WHERE messages_fts MATCH ?
		ORDER BY rank
		LIMIT 50`, ftsQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.SessionUUID, &r.Sender, &r.Preview); err != nil {
			continue
		}
		var ts int64
		m.db.QueryRow("SELECT created_at FROM sessions WHERE uuid = ?", r.SessionUUID).Scan(&ts)
		r.Timestamp = time.Unix(ts, 0)
		results = append(results, r)
	}
	return results, nil
}

// ResolveSessionUUID finds the full session id given a prefix.
func (m *Manager) ResolveSessionUUID(partial string) (string, error) {
	var full string
	err := m.db.QueryRow("SELECT uuid FROM sessions WHERE uuid = ?", partial).Scan(&full)
	if err == nil {
		return full, nil
	}

	rows, err := m.db.Query("SELECT uuid FROM sessions WHERE uuid LIKE ? LIMIT 2", partial+"%")
	if err != nil {
		return "", err
	}
	defer rows.Close()

	var matches []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err == nil {
			matches = append(matches, u)
		}
	}

	if len(matches) == 0 {
		return "", fmt.Errorf("session not found")
	}
	if len(matches) > 1 {
		return "", fmt.Errorf("ambiguous session uuid: %s...", partial)
	}

	return matches[0], nil
}

// GetSessionMessages loads a stored transcript, re-validating every
// envelope. Rows that no longer parse are skipped rather than
// poisoning the whole load.
func (m *Manager) GetSessionMessages(uuid string) ([]schema.ChatMessage, error) {
	rows, err := m.db.Query("SELECT body FROM messages WHERE session_uuid = ? ORDER BY id ASC", uuid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []schema.ChatMessage
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			continue
		}
		msg, err := schema.Parse([]byte(body))
		if err != nil {
			continue
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

// ListRecentSessions returns stored sessions, newest first.
func (m *Manager) ListRecentSessions(limit int) ([]SessionSummary, error) {
	rows, err := m.db.Query("SELECT uuid, profile_id, created_at, summary FROM sessions ORDER BY created_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []SessionSummary
	for rows.Next() {
		var s SessionSummary
		var ts int64
		if err := rows.Scan(&s.UUID, &s.ProfileID, &ts, &s.Summary); err != nil {
			continue
		}
		s.Timestamp = time.Unix(ts, 0)
		if strings.TrimSpace(s.Summary) == "" {
			s.Summary = "(no messages)"
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}
