package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
)

func TestNewRejectsUnknownSettings(t *testing.T) {
	if _, err := New(Config{Level: "loud"}); err == nil {
		t.Fatal("expected error for unknown level")
	}
	if _, err := New(Config{Encoding: "xml"}); err == nil {
		t.Fatal("expected error for unknown encoding")
	}
}

func TestNewWritesServiceAndRequestID(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Config{Level: "debug", Service: "todos", Output: &buf})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	ctx := ContextWithRequestID(context.Background(), "req-42")
	WithRequestID(ctx, log).Debug("todo created")
	_ = log.Sync()

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	if entry["service"] != "todos" || entry["request_id"] != "req-42" || entry["msg"] != "todo created" {
		t.Fatalf("unexpected entry %v", entry)
	}
	if _, ok := entry["timestamp"]; !ok {
		t.Fatalf("missing timestamp in %v", entry)
	}
}

func TestWithRequestIDWithoutID(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Config{Output: &buf})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if got := WithRequestID(context.Background(), log); got != log {
		t.Fatal("logger without request id should be returned unchanged")
	}
	if WithRequestID(context.Background(), nil) != nil {
		t.Fatal("nil logger should stay nil")
	}
}
