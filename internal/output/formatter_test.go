package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	restore := SetWriter(&buf)
	t.Cleanup(restore)
	return &buf
}

func TestJSON(t *testing.T) {
	buf := capture(t)

	err := JSON(map[string]interface{}{
		"success": true,
		"domain":  "example.com",
	})
	if err != nil {
		t.Fatalf("JSON failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded["domain"] != "example.com" {
		t.Errorf("expected domain example.com, got %v", decoded["domain"])
	}
	if decoded["success"] != true {
		t.Errorf("expected success true, got %v", decoded["success"])
	}
}

func TestTable(t *testing.T) {
	buf := capture(t)

	Table(
		[]string{"DOMAIN", "ARCHETYPE", "ENABLED"},
		[][]string{
			{"example.com", "static", "yes"},
			{"api.example.com", "proxy", "no"},
		},
	)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines (header, separator, 2 rows), got %d:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "DOMAIN") || !strings.Contains(lines[0], "ENABLED") {
		t.Errorf("header missing columns: %q", lines[0])
	}
	if !strings.Contains(lines[1], "---") {
		t.Errorf("expected separator line, got %q", lines[1])
	}
	if !strings.Contains(lines[2], "example.com") || !strings.Contains(lines[2], "static") {
		t.Errorf("row content missing: %q", lines[2])
	}
}

func TestTableShortRow(t *testing.T) {
	buf := capture(t)

	// Rows shorter than the header must not panic; missing cells are blank.
	Table([]string{"A", "B", "C"}, [][]string{{"only"}})

	if !strings.Contains(buf.String(), "only") {
		t.Errorf("short row missing from output: %q", buf.String())
	}
}

func TestTableEmptyHeaders(t *testing.T) {
	buf := capture(t)

	Table(nil, [][]string{{"ignored"}})

	if buf.Len() != 0 {
		t.Errorf("expected no output for empty headers, got %q", buf.String())
	}
}

func TestStatusPrefixes(t *testing.T) {
	// Disable color so prefixes are matched literally.
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	testCases := []struct {
		name   string
		fn     func(string, ...interface{})
		prefix string
	}{
		{"success", Success, "✓ "},
		{"error", Error, "✗ "},
		{"warn", Warn, "! "},
		{"info", Info, "→ "},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			buf := capture(t)
			tc.fn("site %s done", "example.com")
			out := buf.String()
			if !strings.HasPrefix(out, tc.prefix) {
				t.Errorf("expected prefix %q, got %q", tc.prefix, out)
			}
			if !strings.Contains(out, "site example.com done") {
				t.Errorf("expected formatted message, got %q", out)
			}
		})
	}
}
