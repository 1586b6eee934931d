// Beacon - Service Template with Structured Logging and Request Observability
// Copyright 2026 Beacon Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/beaconhq/beacon

package logging

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// Base field names shared by every emitted record. Anything else on an event
// is an "extra" field; extras are additive and never overwrite these.
const (
	fieldTimestamp     = "timestamp"
	fieldLevel         = "level"
	fieldLogger        = "logger"
	fieldMessage       = "message"
	fieldModule        = "module"
	fieldFunction      = "function"
	fieldLine          = "line"
	fieldCorrelationID = "correlation_id"
	fieldRequestID     = "request_id"
)

var baseFields = map[string]struct{}{
	fieldTimestamp:     {},
	fieldLevel:         {},
	fieldLogger:        {},
	fieldMessage:       {},
	fieldModule:        {},
	fieldFunction:      {},
	fieldLine:          {},
	fieldCorrelationID: {},
	fieldRequestID:     {},
}

// record is the canonical on-disk shape of the json format.
type record struct {
	Timestamp     string         `json:"timestamp"`
	Level         string         `json:"level"`
	Logger        string         `json:"logger,omitempty"`
	Message       string         `json:"message"`
	Module        string         `json:"module,omitempty"`
	Function      string         `json:"function,omitempty"`
	Line          int            `json:"line,omitempty"`
	CorrelationID string         `json:"correlation_id,omitempty"`
	RequestID     string         `json:"request_id,omitempty"`
	Extra         map[string]any `json:"extra,omitempty"`
}

// ANSI sequences for the pretty format, matching zerolog.ConsoleWriter's
// palette conventions.
const (
	colorReset   = "\x1b[0m"
	colorDim     = "\x1b[2m"
	colorCyan    = "\x1b[36m"
	colorGreen   = "\x1b[32m"
	colorYellow  = "\x1b[33m"
	colorRed     = "\x1b[31m"
	colorMagenta = "\x1b[35m"
)

func levelColor(level string) string {
	switch level {
	case "TRACE", "DEBUG":
		return colorCyan
	case "INFO":
		return colorGreen
	case "WARN":
		return colorYellow
	case "ERROR":
		return colorRed
	case "FATAL", "PANIC":
		return colorMagenta
	default:
		return ""
	}
}

// formatWriter renders zerolog's native JSON events into one of the four
// output formats before handing them to the underlying sink. It works the
// way zerolog.ConsoleWriter does: decode the event, re-render it.
//
// Write serializes access to the sink so that each record lands as a single
// uninterleaved line, and it swallows sink errors: a full disk or revoked
// permission must never fail the operation that logged.
type formatWriter struct {
	mu      sync.Mutex
	format  Format
	out     io.Writer
	noColor bool
}

func newFormatWriter(format Format, out io.Writer, noColor bool) *formatWriter {
	return &formatWriter{format: format, out: out, noColor: noColor}
}

func (w *formatWriter) Write(p []byte) (int, error) {
	line, err := renderRecord(w.format, p, w.noColor)
	if err != nil {
		// Not a JSON event (e.g. raw writes from a hijacked stdlib logger):
		// pass it through untouched rather than lose it.
		line = append(bytes.TrimRight(p, "\n"), '\n')
	}

	w.mu.Lock()
	_, _ = w.out.Write(line)
	w.mu.Unlock()
	return len(p), nil
}

// renderRecord decodes a single zerolog JSON event and renders it in the
// requested format. The returned slice always ends in a newline.
func renderRecord(format Format, p []byte, noColor bool) ([]byte, error) {
	var fields map[string]any
	dec := json.NewDecoder(bytes.NewReader(p))
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}

	rec := splitRecord(fields)
	switch format {
	case FormatJSON:
		return appendJSON(rec)
	case FormatText:
		return appendText(rec), nil
	case FormatStructured:
		return appendStructured(rec), nil
	case FormatPretty:
		return appendPretty(rec, noColor), nil
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

// splitRecord separates the base field set from extras. Extra keys that
// collide with base names are already deduplicated by the JSON decode, so
// extras can never overwrite base fields here.
func splitRecord(fields map[string]any) record {
	rec := record{
		Timestamp:     stringField(fields, fieldTimestamp),
		Level:         strings.ToUpper(stringField(fields, fieldLevel)),
		Logger:        stringField(fields, fieldLogger),
		Message:       stringField(fields, fieldMessage),
		Module:        stringField(fields, fieldModule),
		Function:      stringField(fields, fieldFunction),
		Line:          intField(fields, fieldLine),
		CorrelationID: stringField(fields, fieldCorrelationID),
		RequestID:     stringField(fields, fieldRequestID),
	}

	for k, v := range fields {
		if _, ok := baseFields[k]; ok {
			continue
		}
		if rec.Extra == nil {
			rec.Extra = make(map[string]any, len(fields))
		}
		rec.Extra[k] = v
	}
	return rec
}

func appendJSON(rec record) ([]byte, error) {
	buf, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	return append(buf, '\n'), nil
}

func appendText(rec record) []byte {
	var b strings.Builder
	b.WriteString(reformatTime(rec.Timestamp, "2006-01-02 15:04:05"))
	b.WriteString(" | ")
	fmt.Fprintf(&b, "%-8s", rec.Level)
	b.WriteString(" | ")
	b.WriteString(rec.Logger)
	b.WriteString(" | ")
	b.WriteString(rec.Message)
	b.WriteByte('\n')
	return []byte(b.String())
}

func appendStructured(rec record) []byte {
	var b strings.Builder
	b.WriteString(rec.Timestamp)
	b.WriteString(" | ")
	fmt.Fprintf(&b, "%-8s", rec.Level)
	b.WriteString(" | ")
	b.WriteString(rec.Logger)
	b.WriteString(" | ")
	b.WriteString(rec.Message)
	for _, kv := range sortedExtras(rec) {
		b.WriteString(" | ")
		b.WriteString(kv)
	}
	b.WriteByte('\n')
	return []byte(b.String())
}

func appendPretty(rec record, noColor bool) []byte {
	dim, reset, lvlColor := colorDim, colorReset, levelColor(rec.Level)
	if noColor {
		dim, reset, lvlColor = "", "", ""
	}

	var b strings.Builder
	b.WriteString(dim)
	b.WriteString(reformatTime(rec.Timestamp, "15:04:05"))
	b.WriteString(reset)
	b.WriteString(" | ")
	b.WriteString(lvlColor)
	fmt.Fprintf(&b, "%-8s", rec.Level)
	b.WriteString(reset)
	b.WriteString(" | ")
	b.WriteString(dim)
	b.WriteString(rec.Logger)
	b.WriteString(reset)
	b.WriteString(" | ")
	b.WriteString(rec.Message)
	if extras := sortedExtras(rec); len(extras) > 0 {
		b.WriteString(dim)
		for _, kv := range extras {
			b.WriteString(" | ")
			b.WriteString(kv)
		}
		b.WriteString(reset)
	}
	b.WriteByte('\n')
	return []byte(b.String())
}

// sortedExtras renders the extra mapping plus the correlation id as
// deterministic key=value pairs.
func sortedExtras(rec record) []string {
	pairs := make([]string, 0, len(rec.Extra)+1)
	if rec.CorrelationID != "" {
		pairs = append(pairs, fieldCorrelationID+"="+rec.CorrelationID)
	}
	keys := make([]string, 0, len(rec.Extra))
	for k := range rec.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		pairs = append(pairs, k+"="+formatValue(rec.Extra[k]))
	}
	return pairs
}

func formatValue(v any) string {
	switch val := v.(type) {
	case json.Number:
		return val.String()
	case string:
		return val
	case float64:
		if val == math.Trunc(val) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%g", val)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// reformatTime re-renders an RFC3339 event timestamp in the given layout.
// Unparseable timestamps are passed through as-is.
func reformatTime(ts, layout string) string {
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return ts
	}
	return t.Format(layout)
}

func stringField(fields map[string]any, key string) string {
	if v, ok := fields[key].(string); ok {
		return v
	}
	return ""
}

func intField(fields map[string]any, key string) int {
	switch v := fields[key].(type) {
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0
		}
		return int(n)
	case float64:
		return int(v)
	default:
		return 0
	}
}

// levelFilterWriter passes events through to the wrapped sink only at or
// above the configured level. Used for the error-only file sink.
type levelFilterWriter struct {
	w   io.Writer
	min zerolog.Level
}

func (l levelFilterWriter) Write(p []byte) (int, error) {
	return l.w.Write(p)
}

func (l levelFilterWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level < l.min {
		return len(p), nil
	}
	return l.w.Write(p)
}
