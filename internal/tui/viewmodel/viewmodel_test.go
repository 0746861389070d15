package viewmodel

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matheus3301/guftagu/internal/bus"
	"github.com/matheus3301/guftagu/internal/call"
	"github.com/matheus3301/guftagu/internal/index"
	"github.com/matheus3301/guftagu/internal/model"
	"github.com/matheus3301/guftagu/internal/store"
	"github.com/stretchr/testify/require"
)

func newVM(t *testing.T) (*ViewModel, *bus.Bus) {
	t.Helper()
	b := bus.New()
	st := store.New(store.WithBus(b), store.WithSeed(store.DemoSeed(time.Now())))
	t.Cleanup(st.Close)

	db, err := index.Open()
	require.NoError(t, err)
	_, err = db.Migrate()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	engine := index.NewEngine(db, b, nil)
	var msgs []model.Message
	for _, c := range st.Chats() {
		msgs = append(msgs, st.Messages(c.ID)...)
	}
	require.NoError(t, engine.Load(st.Chats(), msgs))
	return New(st, engine), b
}

func TestRowsPinnedFirst(t *testing.T) {
	vm, _ := newVM(t)

	rows := vm.Rows()
	require.Len(t, rows, 3)
	require.True(t, rows[0].Pinned)
	require.Equal(t, "1", rows[0].Chat.ID)
	require.False(t, rows[1].Pinned)

	vm.SetFilter("alpha")
	rows = vm.Rows()
	require.Len(t, rows, 1)
	require.Equal(t, "g1", rows[0].Chat.ID)

	vm.SetFilter("")
	require.True(t, vm.ToggleArchived())
	rows = vm.Rows()
	require.Len(t, rows, 1)
	require.Equal(t, "3", rows[0].Chat.ID)
}

func TestOpenByName(t *testing.T) {
	vm, _ := newVM(t)

	c, err := vm.OpenByName("sarah")
	require.NoError(t, err)
	require.Equal(t, "2", c.ID)
	require.Equal(t, "2", vm.Store.ActiveChatID())

	// A contact without a chat gets one.
	c, err = vm.OpenByName("Priya")
	require.NoError(t, err)
	require.Equal(t, "Priya Sharma", c.Name)
	require.Equal(t, c.ID, vm.Store.ActiveChatID())

	_, err = vm.OpenByName("nobody")
	require.ErrorIs(t, err, ErrUnknownChat)
	require.ErrorIs(t, vm.Open("nope"), ErrUnknownChat)
}

func TestSendAndReply(t *testing.T) {
	vm, _ := newVM(t)

	_, err := vm.Send("hello")
	require.ErrorIs(t, err, ErrNoChat)

	require.NoError(t, vm.Open("1"))
	_, err = vm.Send("  ")
	require.ErrorIs(t, err, ErrNotSent)

	target, ok := vm.ReplyToLast()
	require.True(t, ok)
	msg, err := vm.Send("sure")
	require.NoError(t, err)
	require.NotNil(t, msg.ReplyTo)
	require.Equal(t, target.ID, msg.ReplyTo.ID)
	_, replying := vm.Store.ReplyingTo()
	require.False(t, replying)

	starred, ok := vm.StarLast()
	require.True(t, ok)
	require.True(t, starred.Starred)
}

func TestCall(t *testing.T) {
	vm, _ := newVM(t)

	_, err := vm.Call(model.CallVoice)
	require.ErrorIs(t, err, ErrNoChat)

	require.NoError(t, vm.Open("g1"))
	_, err = vm.Call(model.CallVoice)
	require.ErrorIs(t, err, ErrGroupCall)

	require.NoError(t, vm.Open("1"))
	target, err := vm.Call(model.CallVideo)
	require.NoError(t, err)
	require.Equal(t, "Aman Gupta", target.Name)

	_, err = vm.Call(model.CallVoice)
	require.ErrorIs(t, err, call.ErrCallInProgress)

	data := vm.Session("work")
	require.Equal(t, "work", data.Session)
	require.Contains(t, data.Call, "Aman Gupta")
}

func TestSearch(t *testing.T) {
	vm, _ := newVM(t)

	hits, err := vm.Search("doing")
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	require.Equal(t, "1", hits[0].ChatID)

	hits, err = vm.Search("  ")
	require.NoError(t, err)
	require.Empty(t, hits)

	_, err = New(vm.Store, nil).Search("doing")
	require.True(t, errors.Is(err, ErrNoIndex))
}

func TestPumpCoalesces(t *testing.T) {
	vm, b := newVM(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- vm.Pump(ctx, b) }()

	// The subscription is registered asynchronously; keep emitting until a
	// signal shows up.
	require.Eventually(t, func() bool {
		b.Emit(bus.UIChanged, nil)
		select {
		case <-vm.Changed():
			return true
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestAttach(t *testing.T) {
	vm, _ := newVM(t)

	path := filepath.Join(t.TempDir(), "scan.dat")
	gif := []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00")
	require.NoError(t, os.WriteFile(path, gif, 0o600))

	_, err := vm.Attach(path)
	require.ErrorIs(t, err, ErrNoChat)

	require.NoError(t, vm.Open("2"))
	msg, err := vm.Attach(path)
	require.NoError(t, err)
	require.Equal(t, model.TypeImage, msg.Type)
	require.Equal(t, "scan.dat", msg.Payload.FileName)

	_, err = vm.Attach(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}
