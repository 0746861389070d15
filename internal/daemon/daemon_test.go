package daemon

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/matheus3301/guftagu/internal/api"
	"github.com/matheus3301/guftagu/internal/config"
	"github.com/matheus3301/guftagu/internal/lock"
	"github.com/matheus3301/guftagu/internal/store"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
)

// tempHome points the session base dir at a short temp path. Unix socket
// paths are limited to about 104 bytes on macOS.
func tempHome(t *testing.T, pattern string) string {
	t.Helper()
	tmpDir, err := os.MkdirTemp("/tmp", pattern)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(tmpDir) })
	t.Setenv("GUFTAGU_HOME", tmpDir)
	return tmpDir
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Push = config.Push{}
	return cfg
}

func TestDaemonLifecycle(t *testing.T) {
	tmpDir := tempHome(t, "guftagu-test-*")
	socketPath := filepath.Join(tmpDir, "d.sock")

	app := fxtest.New(t,
		fx.NopLogger,
		Module(Params{SessionName: "test", SocketPath: socketPath, Config: testConfig()}),
	)
	app.RequireStart()

	client, err := api.Dial(socketPath)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = client.Close() }()

	ctx := context.Background()
	resp, err := client.Call(ctx, api.MethodGetStatus, nil)
	if err != nil {
		t.Fatalf("GetStatus error = %v", err)
	}
	if got := resp.GetFields()["session"].GetStringValue(); got != "test" {
		t.Errorf("session = %q, want test", got)
	}
	if got := resp.GetFields()["chats"].GetNumberValue(); got != 4 {
		t.Errorf("chats = %v, want 4 from the demo seed", got)
	}

	// Seeded messages are indexed on start.
	resp, err = client.Call(ctx, api.MethodSearchMessages, map[string]any{"query": "doing"})
	if err != nil {
		t.Fatalf("SearchMessages error = %v", err)
	}
	if len(resp.GetFields()["hits"].GetListValue().GetValues()) == 0 {
		t.Error("seeded messages were not indexed")
	}

	h, err := lock.ReadHolder(filepath.Join(tmpDir, "sessions", "test"))
	if err != nil {
		t.Fatal(err)
	}
	if h.Program != program || h.PID != os.Getpid() {
		t.Errorf("lock holder = %+v", h)
	}

	app.RequireStop()

	if _, err := os.Stat(socketPath); !os.IsNotExist(err) {
		t.Errorf("socket still present after stop: %v", err)
	}
}

func TestSecondDaemonRefused(t *testing.T) {
	tmpDir := tempHome(t, "guftagu-lock-*")

	first := fxtest.New(t,
		fx.NopLogger,
		Module(Params{SessionName: "s", SocketPath: filepath.Join(tmpDir, "a.sock"), Config: testConfig()}),
	)
	first.RequireStart()
	defer first.RequireStop()

	second := fx.New(
		fx.NopLogger,
		Module(Params{SessionName: "s", SocketPath: filepath.Join(tmpDir, "b.sock"), Config: testConfig()}),
	)
	var held *lock.LockHeldError
	if err := second.Err(); !errors.As(err, &held) {
		t.Fatalf("second daemon err = %v, want LockHeldError", err)
	}
	if held.Holder.Program != program {
		t.Errorf("holder program = %q, want %q", held.Holder.Program, program)
	}
}

func TestUnseededDaemonStartsEmpty(t *testing.T) {
	tmpDir := tempHome(t, "guftagu-empty-*")
	socketPath := filepath.Join(tmpDir, "d.sock")
	cfg := testConfig()
	cfg.Seed = false

	app := fxtest.New(t,
		fx.NopLogger,
		Module(Params{SessionName: "e", SocketPath: socketPath, Config: cfg}),
	)
	app.RequireStart()
	defer app.RequireStop()

	client, err := api.Dial(socketPath)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = client.Close() }()

	resp, err := client.Call(context.Background(), api.MethodGetStatus, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := resp.GetFields()["chats"].GetNumberValue(); got != 0 {
		t.Errorf("chats = %v, want 0", got)
	}
}

// TestNewServerUsesParamsSocket verifies the socket override is honored so
// tests never touch the real session dir.
func TestNewServerUsesParamsSocket(t *testing.T) {
	tmpDir := tempHome(t, "guftagu-srv-*")
	socketPath := filepath.Join(tmpDir, "d.sock")

	st := store.New()
	defer st.Close()
	svc := api.NewService(st, nil, nil, nil, "srvtest", nil)

	srv, err := NewServer(Params{SessionName: "srvtest", SocketPath: socketPath}, zap.NewNop(), svc)
	if err != nil {
		t.Fatalf("NewServer() failed: %v", err)
	}
	info, err := os.Stat(socketPath)
	if err != nil {
		t.Fatalf("socket not created at %s: %v", socketPath, err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("socket mode = %o, want 600", perm)
	}

	srv.Stop(context.Background())
	if _, err := os.Stat(socketPath); !os.IsNotExist(err) {
		t.Errorf("socket not removed: %v", err)
	}
}
