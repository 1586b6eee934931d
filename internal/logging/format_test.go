// Beacon - Service Template with Structured Logging and Request Observability
// Copyright 2026 Beacon Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/beaconhq/beacon

package logging

import (
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{"text", FormatText, false},
		{"structured", FormatStructured, false},
		{"pretty", FormatPretty, false},
		{"JSON", FormatJSON, false},
		{"  pretty ", FormatPretty, false},
		{"xml", "", true},
		{"", "", true},
		{"prety", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseFormat(%q) accepted an unknown format", tt.in)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseFormat(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
}

func TestParseRotation(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"size", "daily", "weekly"} {
		if _, err := ParseRotation(name); err != nil {
			t.Errorf("ParseRotation(%q) = %v", name, err)
		}
	}
	for _, name := range []string{"hourly", "", "monthly"} {
		if _, err := ParseRotation(name); err == nil {
			t.Errorf("ParseRotation(%q) accepted an unknown policy", name)
		}
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    zerolog.Level
		wantErr bool
	}{
		{"trace", zerolog.TraceLevel, false},
		{"debug", zerolog.DebugLevel, false},
		{"info", zerolog.InfoLevel, false},
		{"", zerolog.InfoLevel, false},
		{"warn", zerolog.WarnLevel, false},
		{"warning", zerolog.WarnLevel, false},
		{"ERROR", zerolog.ErrorLevel, false},
		{"verbose", zerolog.NoLevel, true},
		{"5", zerolog.NoLevel, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseLevel(%q) accepted an unknown level", tt.in)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
}

// sampleEvent is a zerolog-native JSON event as it reaches the sinks.
const sampleEvent = `{"timestamp":"2026-08-24T10:30:00.123456Z","level":"info",` +
	`"logger":"api","message":"user created","module":"handlers_users",` +
	`"function":"handleCreateUser","line":42,"correlation_id":"abc12345",` +
	`"user_id":7,"email":"a@example.com"}`

func TestRenderJSONRoundTrip(t *testing.T) {
	t.Parallel()

	line, err := renderRecord(FormatJSON, []byte(sampleEvent), true)
	if err != nil {
		t.Fatalf("renderRecord: %v", err)
	}

	var rec record
	if err := json.Unmarshal(line, &rec); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	if rec.Level != "INFO" || rec.Logger != "api" || rec.Message != "user created" {
		t.Errorf("base fields = %+v", rec)
	}
	if rec.Module != "handlers_users" || rec.Function != "handleCreateUser" || rec.Line != 42 {
		t.Errorf("caller fields = %+v", rec)
	}
	if rec.CorrelationID != "abc12345" {
		t.Errorf("correlation_id = %q", rec.CorrelationID)
	}

	// Non-base fields live under extra, never at the top level.
	if _, ok := rec.Extra["user_id"]; !ok {
		t.Error("user_id missing from extra")
	}
	if got := rec.Extra["email"]; got != "a@example.com" {
		t.Errorf("extra email = %v", got)
	}

	var top map[string]any
	if err := json.Unmarshal(line, &top); err != nil {
		t.Fatal(err)
	}
	if _, ok := top["user_id"]; ok {
		t.Error("extra field leaked to top level")
	}
}

func TestRenderExtrasNeverOverwriteBase(t *testing.T) {
	t.Parallel()

	// A duplicate "message" key cannot displace the base message; the JSON
	// decode keeps a single value and splitRecord treats it as base.
	event := `{"timestamp":"2026-08-24T10:30:00Z","level":"warn","logger":"app",` +
		`"message":"real message","custom":"x"}`
	line, err := renderRecord(FormatJSON, []byte(event), true)
	if err != nil {
		t.Fatal(err)
	}
	var rec record
	if err := json.Unmarshal(line, &rec); err != nil {
		t.Fatal(err)
	}
	if rec.Message != "real message" {
		t.Errorf("message = %q", rec.Message)
	}
	if _, ok := rec.Extra["message"]; ok {
		t.Error("base field duplicated into extra")
	}
}

func TestRenderText(t *testing.T) {
	t.Parallel()

	line, err := renderRecord(FormatText, []byte(sampleEvent), true)
	if err != nil {
		t.Fatal(err)
	}
	got := string(line)
	want := "2026-08-24 10:30:00 | INFO     | api | user created\n"
	if got != want {
		t.Errorf("text line = %q, want %q", got, want)
	}
}

func TestRenderStructured(t *testing.T) {
	t.Parallel()

	line, err := renderRecord(FormatStructured, []byte(sampleEvent), true)
	if err != nil {
		t.Fatal(err)
	}
	got := string(line)
	for _, part := range []string{"INFO", "api", "user created",
		"correlation_id=abc12345", "email=a@example.com", "user_id=7"} {
		if !strings.Contains(got, part) {
			t.Errorf("structured line %q missing %q", got, part)
		}
	}
	if strings.Contains(got, "\x1b[") {
		t.Error("structured output contains ANSI sequences")
	}
}

func TestRenderPretty(t *testing.T) {
	t.Parallel()

	colored, err := renderRecord(FormatPretty, []byte(sampleEvent), false)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(colored), colorGreen) {
		t.Error("pretty output missing level color")
	}
	for _, part := range []string{"10:30:00", "INFO", "api", "user created"} {
		if !strings.Contains(string(colored), part) {
			t.Errorf("pretty line missing %q", part)
		}
	}

	plain, err := renderRecord(FormatPretty, []byte(sampleEvent), true)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(plain), "\x1b[") {
		t.Error("NoColor output still contains ANSI sequences")
	}
}

func TestFormatWriterPassesThroughNonJSON(t *testing.T) {
	t.Parallel()

	var buf strings.Builder
	w := newFormatWriter(FormatJSON, &buf, true)
	if _, err := w.Write([]byte("plain text line\n")); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "plain text line\n" {
		t.Errorf("passthrough = %q", buf.String())
	}
}

// failingWriter always errors, standing in for a full disk.
type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errSinkFailed
}

var errSinkFailed = &sinkError{}

type sinkError struct{}

func (*sinkError) Error() string { return "disk full" }

func TestFormatWriterSwallowsSinkErrors(t *testing.T) {
	t.Parallel()

	w := newFormatWriter(FormatJSON, failingWriter{}, true)
	n, err := w.Write([]byte(sampleEvent))
	if err != nil {
		t.Errorf("sink error propagated: %v", err)
	}
	if n != len(sampleEvent) {
		t.Errorf("n = %d, want %d", n, len(sampleEvent))
	}
}

func TestLevelFilterWriter(t *testing.T) {
	t.Parallel()

	var buf strings.Builder
	w := levelFilterWriter{w: &buf, min: zerolog.ErrorLevel}

	if _, err := w.WriteLevel(zerolog.InfoLevel, []byte("info\n")); err != nil {
		t.Fatal(err)
	}
	if _, err := w.WriteLevel(zerolog.ErrorLevel, []byte("error\n")); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "error\n" {
		t.Errorf("filtered output = %q, want only the error line", buf.String())
	}
}
