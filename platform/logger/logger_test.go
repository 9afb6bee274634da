package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestWithContextAddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("production", &buf)

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-42")
	log.WithContext(ctx).SourceFailure("caller_id", "+16502530000", errors.New("timeout"))

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON output: %v", err)
	}
	if entry["request_id"] != "req-42" || entry["source"] != "caller_id" || entry["msg"] != "lookup_source_failure" {
		t.Fatalf("unexpected entry %v", entry)
	}
}

func TestDevelopmentLogsDebugAsText(t *testing.T) {
	var buf bytes.Buffer
	NewWithWriter("development", &buf).LookupResolved("+16502530000", "local_contact", true, 0)

	if !strings.Contains(buf.String(), "msg=lookup_resolved") {
		t.Fatalf("expected text debug line, got %q", buf.String())
	}
}

func TestProductionSkipsDebug(t *testing.T) {
	var buf bytes.Buffer
	NewWithWriter("production", &buf).LookupResolved("+16502530000", "local_contact", true, 0)
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
}
