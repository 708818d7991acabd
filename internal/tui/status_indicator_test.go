package tui

import (
	"errors"
	"testing"
	"time"

	"github.com/mattn/go-runewidth"
)

func TestFmtElapsedCompact(t *testing.T) {
	cases := []struct {
		seconds  uint64
		expected string
	}{
		{seconds: 0, expected: "0s"},
		{seconds: 59, expected: "59s"},
		{seconds: 60, expected: "1m 00s"},
		{seconds: 3*60 + 5, expected: "3m 05s"},
		{seconds: 3600, expected: "1h 00m 00s"},
		{seconds: 25*3600 + 2*60 + 3, expected: "25h 02m 03s"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.expected, func(t *testing.T) {
			t.Parallel()
			if got := fmtElapsedCompact(tc.seconds); got != tc.expected {
				t.Fatalf("fmtElapsedCompact(%d) = %q, want %q", tc.seconds, got, tc.expected)
			}
		})
	}
}

func TestStatusIndicatorTimerFollowsConnection(t *testing.T) {
	base := time.Unix(0, 0)
	now := base
	widget := NewStatusIndicatorWidget(StatusIndicatorOptions{
		Clock: func() time.Time { return now },
	})

	now = base.Add(10 * time.Second)
	if got := widget.ElapsedSeconds(); got != 0 {
		t.Fatalf("disconnected widget counted %ds", got)
	}

	widget.SetState(StatusConnecting, "")
	now = now.Add(2 * time.Second)
	widget.SetState(StatusConnected, "")
	now = now.Add(3 * time.Second)
	if got := widget.ElapsedSeconds(); got != 5 {
		t.Fatalf("elapsed = %d, want 5", got)
	}

	widget.SetState(StatusDisconnected, "")
	now = now.Add(30 * time.Second)
	if got := widget.ElapsedSeconds(); got != 5 {
		t.Fatalf("elapsed after disconnect = %d, want 5", got)
	}

	widget.SetState(StatusConnecting, "")
	now = now.Add(1 * time.Second)
	if got := widget.ElapsedSeconds(); got != 1 {
		t.Fatalf("elapsed after reconnect = %d, want timer reset to 1", got)
	}
}

func TestStatusIndicatorPlain(t *testing.T) {
	now := time.Unix(0, 0)
	widget := NewStatusIndicatorWidget(StatusIndicatorOptions{
		Clock: func() time.Time { return now },
	})

	if got, want := widget.Plain(80, ""), "○ Disconnected"; got != want {
		t.Fatalf("Plain() = %q, want %q", got, want)
	}

	widget.SetState(StatusConnecting, "http://localhost:3000/sse")
	if got, want := widget.Plain(80, "⣾"), "⣾ Connecting: http://localhost:3000/sse (0s)"; got != want {
		t.Fatalf("Plain() = %q, want %q", got, want)
	}

	widget.SetState(StatusError, errors.New("stream ended by server").Error())
	if got, want := widget.Plain(80, ""), "! Connection closed: stream ended by server"; got != want {
		t.Fatalf("Plain() = %q, want %q", got, want)
	}
}

func TestStatusIndicatorClampsToWidth(t *testing.T) {
	widget := NewStatusIndicatorWidget(StatusIndicatorOptions{State: StatusConnected})
	widget.SetState(StatusConnected, "a very long detail that will not fit")

	for _, width := range []int{0, 1, 10, 25} {
		got := widget.Plain(width, "")
		if w := runewidth.StringWidth(got); w > width {
			t.Fatalf("Plain(%d) width = %d (%q)", width, w, got)
		}
	}
}
