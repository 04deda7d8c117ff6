package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestVerbosityGatesDebugLines(t *testing.T) {
	tests := []struct {
		name      string
		verbosity int
		wantDebug bool
	}{
		{"quiet", 0, false},
		{"negative treated as quiet", -3, false},
		{"one", 1, true},
		{"two", 2, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := New(Options{Verbosity: tt.verbosity, Out: &buf})
			log.Info("visible")
			log.V(1).Info("debug line")

			out := buf.String()
			if !strings.Contains(out, "visible") {
				t.Fatalf("info line missing: %q", out)
			}
			if got := strings.Contains(out, "debug line"); got != tt.wantDebug {
				t.Fatalf("debug line present = %v, want %v (%q)", got, tt.wantDebug, out)
			}
		})
	}
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{JSON: true, Out: &buf})
	log.Info("room fetched", "roomId", 12)

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("not JSON: %v (%q)", err, buf.String())
	}
	if entry["msg"] != "room fetched" {
		t.Fatalf("msg = %v", entry["msg"])
	}
	if entry["roomId"] != float64(12) {
		t.Fatalf("roomId = %v", entry["roomId"])
	}
	if entry["logger"] != "larose" {
		t.Fatalf("logger = %v", entry["logger"])
	}
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	ctx := IntoContext(context.Background(), New(Options{Out: &buf}))
	FromContext(ctx).Info("from context")
	if !strings.Contains(buf.String(), "from context") {
		t.Fatalf("logger not carried: %q", buf.String())
	}

	FromContext(context.Background()).Info("discarded")
}
