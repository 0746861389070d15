package viewmodel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/matheus3301/guftagu/internal/bus"
	"github.com/matheus3301/guftagu/internal/content"
	"github.com/matheus3301/guftagu/internal/index"
	"github.com/matheus3301/guftagu/internal/model"
	"github.com/matheus3301/guftagu/internal/store"
	"github.com/matheus3301/guftagu/internal/tui/ui"
)

var (
	ErrNoChat      = errors.New("no chat open")
	ErrNotSent     = errors.New("nothing to send")
	ErrGroupCall   = errors.New("group calls are not supported")
	ErrNoIndex     = errors.New("search index unavailable")
	ErrUnknownChat = errors.New("no matching chat")
)

// searchLimit caps cross-chat search results shown at once.
const searchLimit = 100

// ChatRow is one line of the chat list.
type ChatRow struct {
	Chat   model.Chat
	Pinned bool
	Typing bool
}

// ViewModel adapts the store for the terminal views. The store is the only
// state; the view model adds list filtering and the redraw signal.
type ViewModel struct {
	Store *store.Store
	Flash *ui.FlashModel

	index   *index.Engine
	changed chan struct{}

	mu       sync.Mutex
	filter   string
	archived bool
}

// New creates a view model over st. idx may be nil, in which case
// cross-chat search is unavailable.
func New(st *store.Store, idx *index.Engine) *ViewModel {
	return &ViewModel{
		Store:   st,
		Flash:   ui.NewFlashModel(),
		index:   idx,
		changed: make(chan struct{}, 1),
	}
}

// Pump forwards store events as coalesced redraw signals until ctx is done.
func (vm *ViewModel) Pump(ctx context.Context, b *bus.Bus) error {
	ch, unsub := b.Subscribe("", 256)
	defer unsub()
	for {
		select {
		case <-ch:
			vm.Touch()
		case <-ctx.Done():
			return nil
		}
	}
}

// Touch requests a redraw.
func (vm *ViewModel) Touch() {
	select {
	case vm.changed <- struct{}{}:
	default:
	}
}

// Changed delivers one value per burst of store changes.
func (vm *ViewModel) Changed() <-chan struct{} {
	return vm.changed
}

// SetFilter narrows the chat list to names containing q.
func (vm *ViewModel) SetFilter(q string) {
	vm.mu.Lock()
	vm.filter = strings.TrimSpace(q)
	vm.mu.Unlock()
}

// Filter returns the active chat list filter.
func (vm *ViewModel) Filter() string {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.filter
}

// ToggleArchived switches the chat list between the main and archived lists.
func (vm *ViewModel) ToggleArchived() bool {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.archived = !vm.archived
	return vm.archived
}

// ShowingArchived reports whether the archived list is shown.
func (vm *ViewModel) ShowingArchived() bool {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.archived
}

// Rows returns the chat list as displayed: pinned chats first, then the
// rest, or only archived chats when that list is toggled on.
func (vm *ViewModel) Rows() []ChatRow {
	vm.mu.Lock()
	filter, archived := vm.filter, vm.archived
	vm.mu.Unlock()

	var rows []ChatRow
	add := func(chats []model.Chat, pinned bool) {
		for _, c := range chats {
			rows = append(rows, ChatRow{Chat: c, Pinned: pinned, Typing: vm.Store.IsTyping(c.ID)})
		}
	}
	if archived {
		q := strings.ToLower(filter)
		for _, c := range vm.Store.ArchivedChats() {
			if q == "" || strings.Contains(strings.ToLower(c.Name), q) {
				add([]model.Chat{c}, false)
			}
		}
		return rows
	}
	list := vm.Store.FilterChats(filter)
	add(list.Pinned, true)
	add(list.Others, false)
	return rows
}

// Open selects the chat with the given id.
func (vm *ViewModel) Open(chatID string) error {
	if _, ok := vm.Store.Chat(chatID); !ok {
		return ErrUnknownChat
	}
	vm.Store.SetActiveChat(chatID)
	return nil
}

// OpenByName selects the first chat whose name contains name, ignoring
// case. Archived chats are matched too. With no matching chat, a contact of
// that name gets a new direct chat.
func (vm *ViewModel) OpenByName(name string) (model.Chat, error) {
	q := strings.ToLower(strings.TrimSpace(name))
	if q == "" {
		return model.Chat{}, ErrUnknownChat
	}
	for _, c := range vm.Store.Chats() {
		if strings.Contains(strings.ToLower(c.Name), q) {
			vm.Store.SetActiveChat(c.ID)
			return c, nil
		}
	}
	for _, u := range vm.Store.Contacts() {
		if strings.Contains(strings.ToLower(u.Name), q) {
			if id, ok := vm.Store.CreateChat(u.ID); ok {
				c, _ := vm.Store.Chat(id)
				return c, nil
			}
		}
	}
	return model.Chat{}, ErrUnknownChat
}

// Send sends text to the active chat, replying to the selected message
// when one is set.
func (vm *ViewModel) Send(text string) (model.Message, error) {
	if vm.Store.ActiveChatID() == "" {
		return model.Message{}, ErrNoChat
	}
	msg, ok := vm.Store.SendMessage(text, model.TypeText, model.Payload{})
	if !ok {
		return model.Message{}, ErrNotSent
	}
	return msg, nil
}

// Attach sends a local file to the active chat. Only the file header is
// read; the message links to the file by path.
func (vm *ViewModel) Attach(path string) (model.Message, error) {
	if vm.Store.ActiveChatID() == "" {
		return model.Message{}, ErrNoChat
	}
	f, err := os.Open(path)
	if err != nil {
		return model.Message{}, fmt.Errorf("attach: %w", err)
	}
	defer f.Close()

	head := make([]byte, content.HeaderSize)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return model.Message{}, fmt.Errorf("attach: %w", err)
	}
	msg, ok := vm.Store.SendFile(filepath.Base(path), "file://"+path, head[:n])
	if !ok {
		return model.Message{}, ErrNotSent
	}
	return msg, nil
}

// ReplyToLast starts a reply to the newest message in the active chat.
func (vm *ViewModel) ReplyToLast() (model.Message, bool) {
	msgs := vm.Store.ActiveMessages()
	if len(msgs) == 0 {
		return model.Message{}, false
	}
	last := msgs[len(msgs)-1]
	vm.Store.SetReplyingTo(last.ID)
	return last, true
}

// StarLast toggles the star on the newest message in the active chat.
func (vm *ViewModel) StarLast() (model.Message, bool) {
	msgs := vm.Store.ActiveMessages()
	if len(msgs) == 0 {
		return model.Message{}, false
	}
	last := msgs[len(msgs)-1]
	vm.Store.ToggleStarMessage(last.ID)
	m, ok := vm.Store.Message(last.ID)
	return m, ok
}

// Call places a call to the active chat's contact.
func (vm *ViewModel) Call(typ model.CallType) (model.CallTarget, error) {
	chat, ok := vm.Store.ActiveChat()
	if !ok {
		return model.CallTarget{}, ErrNoChat
	}
	if chat.IsGroup {
		return model.CallTarget{}, ErrGroupCall
	}
	target := model.CallTarget{UserID: chat.ID, Name: chat.Name, Avatar: chat.Avatar, Type: typ}
	if err := vm.Store.StartCall(target); err != nil {
		return model.CallTarget{}, err
	}
	return target, nil
}

// Search runs a cross-chat message search.
func (vm *ViewModel) Search(query string) ([]index.Hit, error) {
	if vm.index == nil {
		return nil, ErrNoIndex
	}
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	return vm.index.Search(query, "", searchLimit)
}

// Session returns the header summary.
func (vm *ViewModel) Session(name string) *ui.SessionData {
	me := vm.Store.CurrentUser()
	stats := vm.Store.Stats()
	data := &ui.SessionData{
		Session:       name,
		User:          me.Name,
		Section:       string(vm.Store.UI().Section),
		Chats:         stats.Chats,
		Unread:        stats.Unread,
		Notifications: vm.Store.NotificationCount(),
	}
	if cv, ok := vm.Store.CallState(); ok {
		data.Call = cv.Target.Name + " " + strings.ToLower(string(cv.Phase))
		if cv.Duration != "" {
			data.Call += " " + cv.Duration
		}
	}
	return data
}
