package index

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/matheus3301/guftagu/internal/model"
)

// Hit is one search result.
type Hit struct {
	MessageID  string
	ChatID     string
	ChatName   string
	SenderID   string
	SenderName string
	Text       string
	Type       model.MessageType
	SentAt     time.Time
	Snippet    string
}

// UpsertChat inserts or updates a chat row.
func (db *DB) UpsertChat(c model.Chat) error {
	_, err := db.Exec(`
		INSERT INTO chats (id, name, is_group, archived)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			is_group = excluded.is_group,
			archived = excluded.archived`,
		c.ID, c.Name, c.IsGroup, c.Archived)
	return err
}

// DeleteChat removes a chat and its messages.
func (db *DB) DeleteChat(id string) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.Exec(`DELETE FROM messages WHERE chat_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM chats WHERE id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

// ClearChat removes a chat's messages.
func (db *DB) ClearChat(id string) error {
	_, err := db.Exec(`DELETE FROM messages WHERE chat_id = ?`, id)
	return err
}

// UpsertMessage inserts or updates a message (idempotent on id).
func (db *DB) UpsertMessage(m model.Message) error {
	_, err := db.Exec(`
		INSERT INTO messages (id, chat_id, sender_id, sender_name, body, message_type, starred, sent_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			sender_name = excluded.sender_name,
			body = excluded.body,
			starred = excluded.starred`,
		m.ID, m.ChatID, m.SenderID, m.SenderName, searchable(m), string(m.Type), m.Starred, m.SentAt.UnixMilli())
	return err
}

func (db *DB) DeleteMessage(id string) error {
	_, err := db.Exec(`DELETE FROM messages WHERE id = ?`, id)
	return err
}

// searchable is the text indexed for a message: the body, or the file name
// and location address of attachments.
func searchable(m model.Message) string {
	parts := []string{m.Text}
	if m.Payload.FileName != "" {
		parts = append(parts, m.Payload.FileName)
	}
	if m.Payload.Location != nil && m.Payload.Location.Address != "" {
		parts = append(parts, m.Payload.Location.Address)
	}
	if m.Payload.Contact != nil {
		parts = append(parts, m.Payload.Contact.Name)
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// SearchMessages finds messages containing query, ignoring ASCII case,
// newest first. An empty chatID searches every chat.
func (db *DB) SearchMessages(query, chatID string, limit int) ([]Hit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}

	q := `
		SELECT m.id, m.chat_id, COALESCE(c.name, ''), m.sender_id, m.sender_name,
		       m.body, m.message_type, m.sent_at
		FROM messages m
		LEFT JOIN chats c ON c.id = m.chat_id
		WHERE m.body LIKE ? ESCAPE '\'`
	args := []any{"%" + escapeLike(query) + "%"}
	if chatID != "" {
		q += " AND m.chat_id = ?"
		args = append(args, chatID)
	}
	q += " ORDER BY m.sent_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var hits []Hit
	for rows.Next() {
		var h Hit
		var typ string
		var sentAt int64
		if err := rows.Scan(&h.MessageID, &h.ChatID, &h.ChatName, &h.SenderID, &h.SenderName,
			&h.Text, &typ, &sentAt); err != nil {
			return nil, err
		}
		h.Type = model.MessageType(typ)
		h.SentAt = time.UnixMilli(sentAt)
		h.Snippet = snippet(h.Text, query, 32)
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

// CountMessages returns the number of indexed messages.
func (db *DB) CountMessages() (int, error) {
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM messages`).Scan(&n)
	return n, err
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// snippet marks the first match with << >> and trims the text to about
// width runes of context on each side.
func snippet(text, query string, width int) string {
	lower, lq := strings.ToLower(text), strings.ToLower(query)
	if len(lower) != len(text) || len(lq) != len(query) {
		return text
	}
	i := strings.Index(lower, lq)
	if i < 0 {
		return text
	}
	j := i + len(query)
	start, end := i, j
	for n := 0; n < width && start > 0; n++ {
		_, size := utf8.DecodeLastRuneInString(text[:start])
		start -= size
	}
	for n := 0; n < width && end < len(text); n++ {
		_, size := utf8.DecodeRuneInString(text[end:])
		end += size
	}
	var b strings.Builder
	if start > 0 {
		b.WriteString("...")
	}
	b.WriteString(text[start:i])
	b.WriteString("<<")
	b.WriteString(text[i:j])
	b.WriteString(">>")
	b.WriteString(text[j:end])
	if end < len(text) {
		b.WriteString("...")
	}
	return b.String()
}
