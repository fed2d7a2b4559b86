package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/Iron-Ham/msgslot/internal/logging"
)

const sampleLog = `{"time":"2026-01-02T10:00:00Z","level":"INFO","msg":"serving","component":"server","address":"/tmp/msgslot.sock"}
{"time":"2026-01-02T10:00:01Z","level":"DEBUG","msg":"handle opened","component":"device","instance":5,"handle":1,"open_handles":1}
{"time":"2026-01-02T10:00:02Z","level":"WARN","msg":"open refused","component":"device","instance":5,"policy":"exclusive","open_handles":1}
not json at all
{"time":"2026-01-02T10:00:03Z","level":"DEBUG","msg":"handle closed","component":"device","instance":6,"handle":2,"channel":7}
`

func TestLogEntry_UnmarshalJSON(t *testing.T) {
	line := `{"time":"2026-01-02T10:00:03Z","level":"DEBUG","msg":"handle closed","component":"device","instance":6,"handle":2,"channel":7,"session":3}`

	var entry logEntry
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if entry.Msg != "handle closed" || entry.Component != "device" {
		t.Errorf("entry = %+v", entry)
	}
	if entry.Instance == nil || *entry.Instance != 6 {
		t.Errorf("Instance = %v, want 6", entry.Instance)
	}
	if entry.Handle == nil || *entry.Handle != 2 {
		t.Errorf("Handle = %v, want 2", entry.Handle)
	}
	if entry.Channel == nil || *entry.Channel != 7 {
		t.Errorf("Channel = %v, want 7", entry.Channel)
	}
	if len(entry.Extra) != 1 || entry.Extra["session"] != float64(3) {
		t.Errorf("Extra = %v, want only session", entry.Extra)
	}
}

func TestPassesFilters(t *testing.T) {
	five := 5
	entry := &logEntry{
		Time:     time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC),
		Level:    "WARN",
		Msg:      "open refused",
		Instance: &five,
		Extra:    map[string]any{"policy": "exclusive"},
	}

	tests := []struct {
		name   string
		filter logFilter
		want   bool
	}{
		{"no filters", logFilter{minLevel: -1, instance: -1}, true},
		{"level below", logFilter{minLevel: levelPriority(logging.LevelInfo), instance: -1}, true},
		{"level above", logFilter{minLevel: levelPriority(logging.LevelError), instance: -1}, false},
		{"since before", logFilter{minLevel: -1, instance: -1, since: entry.Time.Add(-time.Minute)}, true},
		{"since after", logFilter{minLevel: -1, instance: -1, since: entry.Time.Add(time.Minute)}, false},
		{"instance match", logFilter{minLevel: -1, instance: 5}, true},
		{"instance mismatch", logFilter{minLevel: -1, instance: 6}, false},
		{"grep message", logFilter{minLevel: -1, instance: -1, grep: regexp.MustCompile("refused")}, true},
		{"grep extra", logFilter{minLevel: -1, instance: -1, grep: regexp.MustCompile("exclusive")}, true},
		{"grep miss", logFilter{minLevel: -1, instance: -1, grep: regexp.MustCompile("bounded")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := passesFilters(entry, tt.filter); got != tt.want {
				t.Errorf("passesFilters() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRenderLogLine_RawText(t *testing.T) {
	const raw = "panic: runtime error"

	tests := []struct {
		name   string
		filter logFilter
		want   bool
	}{
		{"no filters", logFilter{minLevel: -1, instance: -1}, true},
		{"grep match", logFilter{minLevel: -1, instance: -1, grep: regexp.MustCompile("runtime")}, true},
		{"grep miss", logFilter{minLevel: -1, instance: -1, grep: regexp.MustCompile("refused")}, false},
		{"level", logFilter{minLevel: levelPriority(logging.LevelWarn), instance: -1}, false},
		{"since", logFilter{minLevel: -1, instance: -1, since: time.Now().Add(-time.Hour)}, false},
		{"instance", logFilter{minLevel: -1, instance: 5}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := renderLogLine(raw, tt.filter)
			if ok != tt.want {
				t.Fatalf("renderLogLine() ok = %v, want %v", ok, tt.want)
			}
			if ok && got != raw {
				t.Errorf("renderLogLine() = %q, want %q", got, raw)
			}
		})
	}
}

func TestFormatLogEntry(t *testing.T) {
	six := 6
	var channel uint32 = 7
	entry := &logEntry{
		Time:      time.Date(2026, 1, 2, 10, 0, 3, 0, time.UTC),
		Level:     "debug",
		Msg:       "handle closed",
		Component: "device",
		Instance:  &six,
		Channel:   &channel,
		Extra:     map[string]any{"b": 2, "a": 1},
	}

	got := formatLogEntry(entry)
	for _, want := range []string{"[10:00:03.000]", "[DEBUG]", "device:", "handle closed", "instance=6", "channel=7"} {
		if !strings.Contains(got, want) {
			t.Errorf("formatLogEntry() = %q, missing %q", got, want)
		}
	}
	if strings.Index(got, "a=") > strings.Index(got, "b=") {
		t.Errorf("extra fields not sorted: %q", got)
	}
}

func TestLogsCommand(t *testing.T) {
	resetState(t)
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, logging.LogFileName), []byte(sampleLog), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	t.Setenv("MSGSLOT_LOGGING_DIR", dir)

	t.Run("all", func(t *testing.T) {
		resetFlags(rootCmd)
		out, err := executeCommand(rootCmd, "logs")
		if err != nil {
			t.Fatalf("logs error = %v", err)
		}
		for _, want := range []string{"serving", "handle opened", "open refused", "not json at all", "handle closed"} {
			if !strings.Contains(out, want) {
				t.Errorf("logs output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("level", func(t *testing.T) {
		resetFlags(rootCmd)
		out, err := executeCommand(rootCmd, "logs", "--level", "warn")
		if err != nil {
			t.Fatalf("logs error = %v", err)
		}
		if !strings.Contains(out, "open refused") || strings.Contains(out, "handle opened") {
			t.Errorf("logs --level warn output:\n%s", out)
		}
		if strings.Contains(out, "not json at all") {
			t.Errorf("logs --level warn kept a raw line:\n%s", out)
		}
	})

	t.Run("instance", func(t *testing.T) {
		resetFlags(rootCmd)
		out, err := executeCommand(rootCmd, "logs", "--instance", "6")
		if err != nil {
			t.Fatalf("logs error = %v", err)
		}
		if !strings.Contains(out, "handle closed") || strings.Contains(out, "open refused") {
			t.Errorf("logs --instance 6 output:\n%s", out)
		}
	})

	t.Run("tail", func(t *testing.T) {
		resetFlags(rootCmd)
		out, err := executeCommand(rootCmd, "logs", "-n", "1")
		if err != nil {
			t.Fatalf("logs error = %v", err)
		}
		if lines := strings.Count(strings.TrimSpace(out), "\n") + 1; lines != 1 {
			t.Errorf("logs -n 1 printed %d lines:\n%s", lines, out)
		}
	})

	t.Run("no match", func(t *testing.T) {
		resetFlags(rootCmd)
		out, err := executeCommand(rootCmd, "logs", "--grep", "nothing-matches-this")
		if err != nil {
			t.Fatalf("logs error = %v", err)
		}
		if !strings.Contains(out, "No matching log entries found.") {
			t.Errorf("logs output:\n%s", out)
		}
	})

	t.Run("bad grep", func(t *testing.T) {
		resetFlags(rootCmd)
		if _, err := executeCommand(rootCmd, "logs", "--grep", "("); err == nil {
			t.Error("logs --grep ( should fail")
		}
	})
}

func TestLogsCommand_NoDir(t *testing.T) {
	resetState(t)

	out, err := executeCommand(rootCmd, "logs")
	if err != nil {
		t.Fatalf("logs error = %v", err)
	}
	if !strings.Contains(out, "File logging is disabled") {
		t.Errorf("logs output:\n%s", out)
	}
}
