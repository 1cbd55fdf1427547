package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestInfoProducesLogfmtWithTimestamp(t *testing.T) {
	buf := new(bytes.Buffer)
	original := Logger()
	ReplaceLogger(slog.New(newHandler(buf, "text")))
	t.Cleanup(func() {
		ReplaceLogger(original)
	})

	Info(context.Background(), "hello", "product", "margaux")

	line := strings.TrimSpace(buf.String())
	for _, want := range []string{"ts=", "level=info", "msg=hello", "product=margaux"} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %q in log line, got %q", want, line)
		}
	}
}

func TestConfigureJSONFormat(t *testing.T) {
	buf := new(bytes.Buffer)
	original := Logger()
	t.Cleanup(func() {
		ReplaceLogger(original)
		_ = SetLevel("info")
	})

	if err := Configure(buf, "json", "debug"); err != nil {
		t.Fatalf("Configure returned error: %v", err)
	}
	Debug(context.Background(), "label rendered", "id", "abc")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected json log line, got %q: %v", buf.String(), err)
	}
	if entry["level"] != "debug" || entry["msg"] != "label rendered" || entry["id"] != "abc" {
		t.Fatalf("unexpected log entry: %v", entry)
	}
}

func TestSetLevelRejectsUnknown(t *testing.T) {
	if err := SetLevel("verbose"); err == nil {
		t.Fatal("expected error for unknown level")
	}
	if err := Configure(nil, "xml", "info"); err == nil {
		t.Fatal("expected error for unknown format")
	}
}
