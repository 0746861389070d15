package tui

import "testing"

func TestParseCommand(t *testing.T) {
	tests := []struct {
		in   string
		want Command
	}{
		{"chat Sarah Wilson", Command{Name: "chat", Args: "Sarah Wilson"}},
		{"  :Search   hello world ", Command{Name: "search", Args: "hello world"}},
		{"q", Command{Name: "quit"}},
		{"st", Command{Name: "status"}},
		{"group Team 1 2", Command{Name: "group", Args: "Team 1 2"}},
		{"", Command{}},
	}
	for _, tt := range tests {
		if got := ParseCommand(tt.in); got != tt.want {
			t.Errorf("ParseCommand(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}
