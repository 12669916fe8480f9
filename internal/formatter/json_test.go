package formatter

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestJSON_Compact(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, map[string]any{"status": "clean", "n": 2}, false); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != `{"n":2,"status":"clean"}`+"\n" {
		t.Errorf("JSON compact = %q", got)
	}
}

func TestJSON_Pretty(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, map[string]int{"a": 1}, true); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "{\n  \"a\": 1\n}\n" {
		t.Errorf("JSON pretty = %q", got)
	}
}

func TestJSON_NoHTMLEscape(t *testing.T) {
	data, err := MarshalJSON(map[string]string{"md": "a <b> & c"}, false)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "a <b> & c") {
		t.Errorf("HTML characters were escaped: %s", data)
	}
}

func TestJSONL(t *testing.T) {
	type row struct {
		Dir string `json:"dir"`
	}
	var buf bytes.Buffer
	if err := JSONL(&buf, []row{{"a"}, {"b"}}); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	var r row
	if err := json.Unmarshal([]byte(lines[1]), &r); err != nil || r.Dir != "b" {
		t.Errorf("line 2 = %q (%v)", lines[1], err)
	}
}

func TestJSON_Unsupported(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, make(chan int), false); err == nil {
		t.Error("expected error encoding a channel")
	}
}
