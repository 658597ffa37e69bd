package log

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

// The global logger configures exactly once, so every test shares one
// sink and decodes only the lines it wrote.
var sink bytes.Buffer

func lastEntry(t *testing.T) map[string]any {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(sink.Bytes()), []byte("\n"))
	var entry map[string]any
	if err := json.Unmarshal(lines[len(lines)-1], &entry); err != nil {
		t.Fatalf("log output is not JSON: %v", err)
	}
	return entry
}

func TestConfigureOnce(t *testing.T) {
	Configure(Config{Level: "debug", Output: &sink, Service: "quarry-test"})
	// Later calls must not reconfigure.
	Configure(Config{Level: "error", Service: "other"})

	l := Base()
	l.Info().Str(FieldEvent, "test.configure").Msg("hello")

	entry := lastEntry(t)
	if entry["service"] != "quarry-test" {
		t.Errorf("expected service quarry-test, got %v", entry["service"])
	}
	if entry["event"] != "test.configure" {
		t.Errorf("expected event test.configure, got %v", entry["event"])
	}
}

func TestWithComponent(t *testing.T) {
	Configure(Config{Level: "debug", Output: &sink, Service: "quarry-test"})

	l := WithComponent("reader")
	l.Info().Msg("page loaded")

	entry := lastEntry(t)
	if entry["component"] != "reader" {
		t.Errorf("expected component reader, got %v", entry["component"])
	}
}

func TestDerive(t *testing.T) {
	Configure(Config{Level: "debug", Output: &sink, Service: "quarry-test"})

	l := Derive(func(ctx *zerolog.Context) {
		*ctx = ctx.Str(FieldPath, "data.qry").Int(FieldRowGroup, 2)
	})
	l.Info().Msg("row group read")

	entry := lastEntry(t)
	if entry["path"] != "data.qry" {
		t.Errorf("expected path data.qry, got %v", entry["path"])
	}
	if entry["row_group"] != float64(2) {
		t.Errorf("expected row_group 2, got %v", entry["row_group"])
	}
}
