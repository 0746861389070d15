package model

import (
	"fmt"
	"time"
)

// Clock formats t as a short wall-clock time ("10:30 PM").
func Clock(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("3:04 PM")
}

// Relative formats t for chat and call lists: the clock time for today,
// "Yesterday", or a short date.
func Relative(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	switch {
	case sameDay(t, now):
		return Clock(t)
	case sameDay(t, now.AddDate(0, 0, -1)):
		return "Yesterday"
	}
	return t.Format("01/02/06")
}

// Ago formats the age of t the way story rings show it ("2h ago").
func Ago(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	}
	return fmt.Sprintf("%dd ago", int(d.Hours()/24))
}

// DayLabel is the grouping key of the call history.
func DayLabel(t, now time.Time) string {
	switch {
	case sameDay(t, now):
		return "Today"
	case sameDay(t, now.AddDate(0, 0, -1)):
		return "Yesterday"
	}
	return t.Format("January 2")
}

func sameDay(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
