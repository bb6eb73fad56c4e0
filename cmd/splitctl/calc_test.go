package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeBlocks(t *testing.T) (families, stays, expenses string) {
	t.Helper()
	dir := t.TempDir()
	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		return p
	}
	return write("families.txt", "Adams:John,Mary\nOiler:Bob\n"),
		write("stays.txt", "John,5\nMary,5\nBob,10\n"),
		write("expenses.txt", "Adams,rent,100,House\nOiler,food,50\n")
}

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCalcOutputs(t *testing.T) {
	f, s, e := writeBlocks(t)

	tests := []struct {
		format string
		want   string
	}{
		{"text", "Oiler pays Adams: €25.00"},
		{"csv", "SETTLEMENTS"},
		{"json", `"cost_per_night": 7.5`},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			out, err := runCmd(t, "calc", "-f", f, "-s", s, "-e", e, "-o", tt.format)
			if err != nil {
				t.Fatalf("calc error = %v", err)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("output missing %q:\n%s", tt.want, out)
			}
		})
	}
}

func TestCalcErrors(t *testing.T) {
	f, s, e := writeBlocks(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no input", []string{"calc"}, "--saved"},
		{"missing file flag", []string{"calc", "-f", f, "-s", s}, "--expenses is required"},
		{"bad format", []string{"calc", "-f", f, "-s", s, "-e", e, "-o", "xml"}, "unknown output format"},
		{"unreadable file", []string{"calc", "-f", f, "-s", s, "-e", filepath.Join(t.TempDir(), "nope")}, "read expenses"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCmd(t, tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestCalcValidationError(t *testing.T) {
	f, s, _ := writeBlocks(t)
	bad := filepath.Join(t.TempDir(), "expenses.txt")
	if err := os.WriteFile(bad, []byte("Ghosts,food,10\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := runCmd(t, "calc", "-f", f, "-s", s, "-e", bad)
	if err == nil || !strings.Contains(err.Error(), "unknown family/families in expenses: Ghosts") {
		t.Errorf("error = %v", err)
	}
}

func TestSaveAndLoadMemoryBackend(t *testing.T) {
	t.Setenv("DATA_BACKEND", "memory")
	t.Setenv("DATA_DIR", t.TempDir())
	f, s, e := writeBlocks(t)

	out, err := runCmd(t, "save", "-f", f, "-s", s, "-e", e)
	if err != nil {
		t.Fatalf("save error = %v", err)
	}
	if !strings.Contains(out, "Saved mem:1") {
		t.Errorf("save output = %q", out)
	}

	out, err = runCmd(t, "load", "-o", "json")
	if err != nil {
		t.Fatalf("load error = %v", err)
	}
	if !strings.Contains(out, "Nothing saved yet") || !strings.Contains(out, `"families"`) {
		t.Errorf("load output = %q", out)
	}
}
