package artifact

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		want   State
		reason string
	}{
		{"object", `{"items": []}`, Present, ""},
		{"stub", `{"skipped": true, "reason": "no deck"}`, Stub, "no deck"},
		{"skipped false", `{"skipped": false}`, Present, ""},
		{"array", `[1, 2]`, Corrupt, ""},
		{"broken", `{"items": [`, Corrupt, ""},
		{"trailing", `{} {}`, Corrupt, ""},
		{"trailing newline", "{}\n", Present, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slot := Classify("x", []byte(tt.data))
			if slot.State != tt.want {
				t.Errorf("State = %v, want %v (err %v)", slot.State, tt.want, slot.Err)
			}
			if slot.Reason != tt.reason {
				t.Errorf("Reason = %q, want %q", slot.Reason, tt.reason)
			}
			if (slot.State == Corrupt) != (slot.Err != nil) {
				t.Errorf("Err = %v for state %v", slot.Err, slot.State)
			}
		})
	}
}

func TestStore_LoadWrite(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if got := s.Load("sizing"); got.State != Missing {
		t.Errorf("Load(missing) = %v, want missing", got.State)
	}
	if err := s.Write("sizing", map[string]any{"approach": "both"}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := s.WriteStub("sensitivity", "not requested"); err != nil {
		t.Fatalf("WriteStub: %v", err)
	}

	slot := s.Load("sizing")
	if !slot.Usable() {
		t.Fatalf("Load(sizing) = %v, want present", slot.State)
	}
	var doc struct{ Approach string }
	if err := slot.Decode(&doc); err != nil || doc.Approach != "both" {
		t.Errorf("Decode = %+v, %v", doc, err)
	}
	if got := s.Load("sensitivity"); got.State != Stub || got.Reason != "not requested" {
		t.Errorf("Load(stub) = %v %q", got.State, got.Reason)
	}

	names, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(names, ",") != "sensitivity,sizing" {
		t.Errorf("List = %v", names)
	}
}

func TestNewStore_NotDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewStore(path); !errors.Is(err, ErrNotDirectory) {
		t.Errorf("NewStore(file) err = %v, want ErrNotDirectory", err)
	}
	if _, err := NewStore(filepath.Join(path, "nope")); err == nil {
		t.Error("NewStore(missing) succeeded")
	}
}

func TestSlug(t *testing.T) {
	tests := []struct {
		workflow, subject, want string
	}{
		{"market-sizing", "Acme Corp", "market-sizing-acme-corp"},
		{"deck-review", "  Hello,  World!! ", "deck-review-hello-world"},
		{"ic-sim", "", "ic-sim-untitled"},
		{"ic-sim", "!!!", "ic-sim-untitled"},
		{"ic-sim", strings.Repeat("word ", 20), "ic-sim-" + strings.Repeat("word-", 9) + "word"},
	}
	for _, tt := range tests {
		if got := Slug(tt.workflow, tt.subject); got != tt.want {
			t.Errorf("Slug(%q, %q) = %q, want %q", tt.workflow, tt.subject, got, tt.want)
		}
	}
}

func TestInit(t *testing.T) {
	root := t.TempDir()
	dir, err := Init(root, "market-sizing", "Acme")
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if dir != filepath.Join(root, "market-sizing-acme") {
		t.Errorf("dir = %q", dir)
	}
	if _, err := Init(root, "market-sizing", "ACME"); !errors.Is(err, ErrRunExists) {
		t.Errorf("second Init err = %v, want ErrRunExists", err)
	}
}

func TestWriteOutput_ParentMissing(t *testing.T) {
	target := filepath.Join(t.TempDir(), "nope", "out.json")
	err := WriteOutput(target, []byte("{}"))
	if !errors.Is(err, ErrParentMissing) {
		t.Fatalf("err = %v, want ErrParentMissing", err)
	}
	if _, statErr := os.Stat(filepath.Dir(target)); !os.IsNotExist(statErr) {
		t.Error("WriteOutput created the missing parent directory")
	}
}

func TestWriteOutput(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "out.json")
	if err := WriteOutput(target, []byte("{}\n")); err != nil {
		t.Fatalf("WriteOutput: %v", err)
	}
	data, err := os.ReadFile(target)
	if err != nil || string(data) != "{}\n" {
		t.Errorf("content = %q, %v", data, err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("dir has %d entries, want only the output (temp file leaked)", len(entries))
	}
}

func TestWaitFor(t *testing.T) {
	defer goleak.VerifyNone(t)

	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Write("inputs", map[string]any{}); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- s.WaitFor(ctx, []string{"inputs", "sizing"}) }()

	time.Sleep(50 * time.Millisecond)
	if err := s.Write("sizing", map[string]any{}); err != nil {
		t.Fatal(err)
	}
	if err := <-done; err != nil {
		t.Fatalf("WaitFor: %v", err)
	}
}

func TestWaitFor_Timeout(t *testing.T) {
	defer goleak.VerifyNone(t)

	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err = s.WaitFor(ctx, []string{"checklist"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
	if !strings.Contains(err.Error(), "checklist") {
		t.Errorf("err = %q, want it to name the missing artifact", err)
	}
}
