package index

import (
	"context"
	"fmt"
	"strings"

	"github.com/matheus3301/guftagu/internal/bus"
	"github.com/matheus3301/guftagu/internal/model"
	"go.uber.org/zap"
)

// Engine keeps the index in step with the store by applying chat and
// message events from the bus.
type Engine struct {
	db     *DB
	bus    *bus.Bus
	logger *zap.Logger
	cancel context.CancelFunc
	done   chan struct{}
}

// NewEngine creates a new index engine.
func NewEngine(db *DB, b *bus.Bus, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		db:     db,
		bus:    b,
		logger: logger,
	}
}

// Snapshot returns the current chats and messages of the store.
type Snapshot func() ([]model.Chat, []model.Message)

// Start subscribes to store events. A single subscription keeps chat and
// message events in publish order.
func (e *Engine) Start(ctx context.Context) {
	ch, unsub := e.bus.Subscribe("", 1024)
	e.run(ctx, ch, unsub)
}

// StartFrom subscribes, indexes the snapshot and only then applies live
// events. Events published while the snapshot loads queue behind it, so a
// delete is never applied before the insert it undoes.
func (e *Engine) StartFrom(ctx context.Context, snap Snapshot) error {
	ch, unsub := e.bus.Subscribe("", 1024)
	chats, msgs := snap()
	if err := e.Load(chats, msgs); err != nil {
		unsub()
		return err
	}
	e.run(ctx, ch, unsub)
	return nil
}

func (e *Engine) run(ctx context.Context, ch <-chan bus.Event, unsub func()) {
	ctx, e.cancel = context.WithCancel(ctx)
	e.done = make(chan struct{})

	go func() {
		defer close(e.done)
		defer unsub()
		for {
			select {
			case evt := <-ch:
				if err := e.apply(evt); err != nil {
					e.logger.Error("failed to index event", zap.String("kind", evt.Kind), zap.Error(err))
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the engine and waits for the event loop to exit.
func (e *Engine) Stop() {
	if e.cancel != nil {
		e.cancel()
		<-e.done
	}
}

func (e *Engine) apply(evt bus.Event) error {
	if !strings.HasPrefix(evt.Kind, "message.") && !strings.HasPrefix(evt.Kind, "chat.") {
		return nil
	}
	switch p := evt.Payload.(type) {
	case bus.MessageEvent:
		return e.db.UpsertMessage(p.Message)
	case bus.ChatEvent:
		if p.Chat.ID == "" {
			return nil
		}
		return e.db.UpsertChat(p.Chat)
	case bus.ChatRef:
		switch evt.Kind {
		case bus.MessageDeleted:
			return e.db.DeleteMessage(p.MessageID)
		case bus.ChatCleared:
			return e.db.ClearChat(p.ChatID)
		case bus.ChatDeleted:
			return e.db.DeleteChat(p.ChatID)
		}
	}
	return nil
}

// Load indexes an existing set of chats and messages in one transaction.
func (e *Engine) Load(chats []model.Chat, msgs []model.Message) error {
	tx, err := e.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, c := range chats {
		if _, err := tx.Exec(`
			INSERT INTO chats (id, name, is_group, archived) VALUES (?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET name = excluded.name`,
			c.ID, c.Name, c.IsGroup, c.Archived); err != nil {
			return fmt.Errorf("load chat: %w", err)
		}
	}
	for _, m := range msgs {
		if _, err := tx.Exec(`
			INSERT INTO messages (id, chat_id, sender_id, sender_name, body, message_type, starred, sent_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET body = excluded.body`,
			m.ID, m.ChatID, m.SenderID, m.SenderName, searchable(m), string(m.Type), m.Starred, m.SentAt.UnixMilli()); err != nil {
			return fmt.Errorf("load message: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit load: %w", err)
	}
	e.logger.Info("index loaded", zap.Int("chats", len(chats)), zap.Int("messages", len(msgs)))
	return nil
}

// Search runs a cross-chat message search.
func (e *Engine) Search(query, chatID string, limit int) ([]Hit, error) {
	hits, err := e.db.SearchMessages(query, chatID, limit)
	if err != nil {
		return nil, fmt.Errorf("search messages: %w", err)
	}
	return hits, nil
}
