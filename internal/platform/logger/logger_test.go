package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func fixedNow() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC) }

func TestStdLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: Info, App: "pets", Output: &buf}).(*StdLogger)
	l.now = fixedNow

	l.Debug("hidden", nil)
	l.Info("created", map[string]any{"uri": "content://a/pets/1", "": "ignored"})

	got := strings.TrimSpace(buf.String())
	want := "app=pets level=info msg=created ts=2024-05-01T10:00:00Z uri=content://a/pets/1"
	if got != want {
		t.Fatalf("unexpected line\n got: %s\nwant: %s", got, want)
	}
}

func TestStdLogger_JSONWithFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: Debug, Format: FormatJSON, Output: &buf})
	l = l.With(map[string]any{"component": "dispatcher"})

	l.Error("failed to insert row", map[string]any{"error": errors.New("disk full"), "id": 0})

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("json: %v (%s)", err, buf.String())
	}
	if entry["level"] != "error" || entry["component"] != "dispatcher" || entry["error"] != "disk full" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestStdLogger_WithSharesOutput(t *testing.T) {
	var buf bytes.Buffer
	parent := New(Options{Level: Warn, Output: &buf})
	child := parent.With(map[string]any{"k": "v"})

	child.Info("skip", nil)
	child.Warn("keep", nil)
	parent.Error("also", nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "k=v") || strings.Contains(lines[1], "k=v") {
		t.Fatalf("fields leaked between loggers: %q", lines)
	}
}

func TestParse(t *testing.T) {
	if ParseLevel("WARNING") != Warn || ParseLevel("nope") != Info || ParseLevel("debug") != Debug {
		t.Fatal("ParseLevel")
	}
	if ParseFormat("JSON") != FormatJSON || ParseFormat("xml") != FormatText {
		t.Fatal("ParseFormat")
	}
}

func TestNop(t *testing.T) {
	l := Nop().With(map[string]any{"a": 1})
	l.Error("nothing", nil)
}
