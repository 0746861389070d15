package push

import (
	"context"
	"fmt"

	"github.com/matheus3301/guftagu/internal/model"
)

// Permission is the OS notification permission state.
type Permission string

const (
	PermissionDefault Permission = "default"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// ParsePermission converts a user-supplied string into a Permission.
func ParsePermission(s string) (Permission, error) {
	switch p := Permission(s); p {
	case PermissionDefault, PermissionGranted, PermissionDenied:
		return p, nil
	}
	return "", fmt.Errorf("unknown notification permission %q", s)
}

// Notifier hands a notification to the operating system.
type Notifier interface {
	Deliver(ctx context.Context, n model.Notification) error
}

// Registrar is the permission and device-token boundary of the platform.
type Registrar interface {
	RequestPermission(ctx context.Context) (Permission, error)
	RegisterToken(ctx context.Context) (string, error)
}

// StaticRegistrar answers permission requests with a fixed state. It stands
// in for a platform prompt in the daemon and in tests.
type StaticRegistrar struct {
	Permission Permission
	Token      string
}

func (r StaticRegistrar) RequestPermission(context.Context) (Permission, error) {
	if r.Permission == "" {
		return PermissionDefault, nil
	}
	return r.Permission, nil
}

func (r StaticRegistrar) RegisterToken(context.Context) (string, error) {
	if r.Permission != PermissionGranted {
		return "", fmt.Errorf("cannot register token with permission %q", r.Permission)
	}
	return r.Token, nil
}
