package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewHandlerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Component: ComponentSplit, Handler: NewHandler(&buf, FormatJSON, slog.LevelInfo)})

	logger.Info("hello", FieldSnapshotID, 7)
	logger.Debug("hidden")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %q", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if entry["component"] != ComponentSplit {
		t.Errorf("component = %v", entry["component"])
	}
	if entry[FieldSnapshotID] != float64(7) {
		t.Errorf("snapshot_id = %v", entry[FieldSnapshotID])
	}
}

func TestNewHandlerFormats(t *testing.T) {
	for _, format := range []Format{FormatText, FormatTint, "unknown"} {
		var buf bytes.Buffer
		h := NewHandler(&buf, format, slog.LevelInfo)
		slog.New(h).Info("message", "key", "value")
		if !strings.Contains(buf.String(), "message") {
			t.Errorf("format %q: output %q missing message", format, buf.String())
		}
	}
}

func TestFromContextDefault(t *testing.T) {
	logger := FromContext(context.Background())
	if logger == nil || logger.Component() != "unknown" {
		t.Fatalf("FromContext() = %+v", logger)
	}
}

func TestMiddlewareChain(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Component: ComponentApp, Handler: NewHandler(&buf, FormatJSON, slog.LevelInfo)})

	var got *Logger
	h := Middleware(base)(ComponentMiddleware(ComponentHTTP)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = FromContext(r.Context())
			NewStructuredLogger(got).LogCalculation(r.Context(), 3, 2, 27, 1000)
		})))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if got == nil || got.Component() != ComponentHTTP {
		t.Fatalf("component = %v, want %q", got, ComponentHTTP)
	}
	for _, want := range []string{`"msg":"Calculation completed"`, `"settlements":2`, `"operation":"calculate"`, `"component":"split"`} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("log output missing %s: %s", want, buf.String())
		}
	}
	if n := strings.Count(buf.String(), `"component":`); n != 1 {
		t.Errorf("component written %d times: %s", n, buf.String())
	}
}

func TestLogHTTPEndLevels(t *testing.T) {
	tests := []struct {
		status int
		level  string
	}{
		{200, `"level":"INFO"`},
		{404, `"level":"WARN"`},
		{502, `"level":"ERROR"`},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		sl := NewStructuredLogger(New(Config{Handler: NewHandler(&buf, FormatJSON, slog.LevelDebug)}))
		sl.LogHTTPEnd(context.Background(), httptest.NewRequest(http.MethodGet, "/x", nil), tt.status, 5, "1.2.3.4")
		if !strings.Contains(buf.String(), tt.level) {
			t.Errorf("status %d: log %s missing %s", tt.status, buf.String(), tt.level)
		}
	}
}

func TestLogFields(t *testing.T) {
	f := NewFields().
		WithCalculation(3, 2, 27, 1000).
		WithOperation(OpCalculate).
		WithError(nil)

	if _, ok := f[FieldError]; ok {
		t.Error("nil error should not add a field")
	}
	if f[FieldTotalNights] != 27 || f[FieldSettlements] != 2 {
		t.Errorf("fields = %v", f)
	}
	if got := len(f.ToSlice()); got != 2*len(f) {
		t.Errorf("ToSlice() len = %d, want %d", got, 2*len(f))
	}
}
