package session

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateName(t *testing.T) {
	ok := []string{"main", "work123", "my-session", "demo_2", "a", strings.Repeat("g", 64)}
	for _, name := range ok {
		if err := ValidateName(name); err != nil {
			t.Errorf("ValidateName(%q) = %v, want nil", name, err)
		}
	}

	bad := map[string]string{
		"empty":          "",
		"uppercase":      "Guftagu",
		"space":          "my session",
		"dot":            "../main",
		"too long":       strings.Repeat("g", 65),
		"symbol":         "me@home",
		"slash":          "a/b",
		"leading hyphen": "-debug",
	}
	for label, name := range bad {
		err := ValidateName(name)
		if err == nil {
			t.Errorf("%s: ValidateName(%q) accepted", label, name)
			continue
		}
		if !errors.Is(err, ErrInvalidName) {
			t.Errorf("%s: error %v does not wrap ErrInvalidName", label, err)
		}
	}
}
