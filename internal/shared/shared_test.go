package shared

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestFormatTimeAgo(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	tc := []struct {
		name string
		ago  time.Duration
		want string
	}{
		{name: "seconds", ago: 30 * time.Second, want: "just now"},
		{name: "minutes", ago: 5 * time.Minute, want: "5m ago"},
		{name: "hours", ago: 3 * time.Hour, want: "3h ago"},
		{name: "days", ago: 2 * 24 * time.Hour, want: "2d ago"},
		{name: "months", ago: 65 * 24 * time.Hour, want: "2mo ago"},
		{name: "years", ago: 800 * 24 * time.Hour, want: "2y ago"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatTimeAgo(now.Add(-tt.ago), now); got != tt.want {
				t.Errorf("FormatTimeAgo() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tc := []struct {
		in   time.Duration
		want string
	}{
		{in: 0, want: "0:00"},
		{in: 65 * time.Second, want: "1:05"},
		{in: time.Hour + 2*time.Minute + 3*time.Second, want: "1:02:03"},
		{in: -time.Second, want: "0:00"},
	}
	for _, tt := range tc {
		t.Run(tt.want, func(t *testing.T) {
			if got := FormatDuration(tt.in); got != tt.want {
				t.Errorf("FormatDuration(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatCount(t *testing.T) {
	tc := map[int]string{12: "12", 1500: "1.5k", 2_300_000: "2.3M"}
	for in, want := range tc {
		if got := FormatCount(in); got != want {
			t.Errorf("FormatCount(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestLogger(t *testing.T) {
	t.Run("writes to provided writer", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		WithLogger(logger, "component", "test").Info("hello")
		if !strings.Contains(buf.String(), "component=test") {
			t.Errorf("expected key-value pair in output, got %q", buf.String())
		}
	})

	t.Run("respects level", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		SetLogLevel(logger, ParseLogLevel("warn"))
		logger.Info("hidden")
		if buf.Len() != 0 {
			t.Errorf("expected info to be filtered, got %q", buf.String())
		}
	})

	t.Run("ParseLogLevel defaults to info", func(t *testing.T) {
		if got := ParseLogLevel("nonsense"); got != log.InfoLevel {
			t.Errorf("ParseLogLevel() = %v, want info", got)
		}
		if got := ParseLogLevel(" DEBUG "); got != log.DebugLevel {
			t.Errorf("ParseLogLevel() = %v, want debug", got)
		}
	})

	t.Run("file logger", func(t *testing.T) {
		cfg := LogConfig{File: filepath.Join(t.TempDir(), "rmp.log"), MaxSizeMB: 1, MaxBackups: 1}
		logger, closer := NewFileLogger(cfg)
		logger.Info("to file")
		if err := closer.Close(); err != nil {
			t.Fatalf("failed to close log file: %v", err)
		}
	})
}

func TestGenerateID(t *testing.T) {
	a, b := GenerateID(), GenerateID()
	if a == b {
		t.Error("expected unique ids")
	}
	if len(a) != 36 {
		t.Errorf("expected uuid string, got %q", a)
	}
}

func TestFetchError(t *testing.T) {
	tc := []struct {
		name      string
		err       *FetchError
		transient bool
	}{
		{name: "server error", err: &FetchError{URL: "u", Status: http.StatusBadGateway}, transient: true},
		{name: "rate limited", err: &FetchError{URL: "u", Status: http.StatusTooManyRequests}, transient: true},
		{name: "not found", err: &FetchError{URL: "u", Status: http.StatusNotFound}, transient: false},
		{name: "transport", err: &FetchError{URL: "u", Err: errors.New("connection reset")}, transient: true},
		{name: "canceled", err: &FetchError{URL: "u", Err: fmt.Errorf("do: %w", context.Canceled)}, transient: false},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("fetch page: %w", tt.err)
			if !errors.Is(wrapped, ErrFetchFailed) {
				t.Error("expected FetchError to match ErrFetchFailed")
			}
			if got := IsTransient(wrapped); got != tt.transient {
				t.Errorf("IsTransient() = %v, want %v", got, tt.transient)
			}
		})
	}

	t.Run("non fetch errors are not transient", func(t *testing.T) {
		if IsTransient(ErrNotFound) {
			t.Error("expected ErrNotFound to be permanent")
		}
	})
}

func TestOpenBrowser(t *testing.T) {
	origRuntime, origStart := getRuntime, startCommand
	t.Cleanup(func() { getRuntime, startCommand = origRuntime, origStart })

	tc := []struct {
		goos    string
		want    string
		wantErr bool
	}{
		{goos: "darwin", want: "open"},
		{goos: "linux", want: "xdg-open"},
		{goos: "windows", want: "cmd"},
		{goos: "plan9", wantErr: true},
	}

	for _, tt := range tc {
		t.Run(tt.goos, func(t *testing.T) {
			var launched string
			getRuntime = func() string { return tt.goos }
			startCommand = func(name string, args ...string) error {
				launched = name
				return nil
			}

			err := OpenBrowser("https://example.com")
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error for unsupported platform")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if launched != tt.want {
				t.Errorf("launched %q, want %q", launched, tt.want)
			}
		})
	}
}
