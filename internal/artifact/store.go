// Package artifact reads and writes the JSON documents a workflow run leaves
// in its run directory.
package artifact

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const (
	// SlugMaxLength is the maximum length of the subject part of a run slug.
	SlugMaxLength = 50

	// SlugMinWordBoundary is the minimum length before trimming at a word boundary.
	SlugMinWordBoundary = 30

	// Ext is the artifact file extension.
	Ext = ".json"
)

// State is the load state of one artifact.
type State int

const (
	Missing State = iota
	Present
	Stub
	Corrupt
)

func (s State) String() string {
	switch s {
	case Present:
		return "present"
	case Stub:
		return "stub"
	case Corrupt:
		return "corrupt"
	default:
		return "missing"
	}
}

// Slot is one artifact as found on disk.
type Slot struct {
	Name  string
	State State

	// Raw holds the file bytes for present, stub and corrupt slots.
	Raw []byte

	// Doc is the decoded object for present and stub slots.
	Doc map[string]any

	// Reason is a stub's declared reason.
	Reason string

	// Err describes why a slot is corrupt.
	Err error
}

// File returns the artifact's file name.
func (s Slot) File() string {
	return s.Name + Ext
}

// Usable reports whether the slot holds real content.
func (s Slot) Usable() bool {
	return s.State == Present
}

// Decode unmarshals the slot into v.
func (s Slot) Decode(v any) error {
	return json.Unmarshal(s.Raw, v)
}

// Store is a run directory.
type Store struct {
	// Dir is the run directory.
	Dir string
}

// NewStore opens the run directory dir. The directory must exist.
func NewStore(dir string) (*Store, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("open run directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("open run directory %s: %w", dir, ErrNotDirectory)
	}
	return &Store{Dir: dir}, nil
}

// Path returns the file path of artifact name.
func (s *Store) Path(name string) string {
	return filepath.Join(s.Dir, name+Ext)
}

// Load reads artifact name. It never fails; problems are reported in the slot.
func (s *Store) Load(name string) Slot {
	slot := Slot{Name: name}
	data, err := os.ReadFile(s.Path(name))
	if os.IsNotExist(err) {
		return slot
	}
	if err != nil {
		slot.State = Corrupt
		slot.Err = err
		return slot
	}
	return Classify(name, data)
}

// Classify determines the state of raw artifact bytes.
func Classify(name string, data []byte) Slot {
	slot := Slot{Name: name, Raw: data}
	var doc any
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil {
		slot.State = Corrupt
		slot.Err = fmt.Errorf("invalid JSON: %w", err)
		return slot
	}
	if _, err := dec.Token(); err != io.EOF {
		slot.State = Corrupt
		slot.Err = fmt.Errorf("invalid JSON: trailing data after document")
		return slot
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		slot.State = Corrupt
		slot.Err = ErrNotObject
		return slot
	}
	slot.Doc = obj
	if skipped, _ := obj["skipped"].(bool); skipped {
		slot.State = Stub
		slot.Reason, _ = obj["reason"].(string)
		return slot
	}
	slot.State = Present
	return slot
}

// Write stores v as artifact name, indented, via an atomic rename.
func (s *Store) Write(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	return atomicWrite(s.Path(name), append(data, '\n'))
}

// WriteStub records that a phase was skipped.
func (s *Store) WriteStub(name, reason string) error {
	return s.Write(name, map[string]any{"skipped": true, "reason": reason})
}

// List returns the artifact names present in the run directory, sorted.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), Ext) || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), Ext))
	}
	return names, nil
}

// Slug names a run: the workflow followed by a URL-safe form of subject.
func Slug(workflow, subject string) string {
	return workflow + "-" + generateSlug(subject)
}

// Init creates the run directory for subject under runsDir and returns its path.
func Init(runsDir, workflow, subject string) (string, error) {
	dir := filepath.Join(runsDir, Slug(workflow, subject))
	if _, err := os.Stat(dir); err == nil {
		return dir, fmt.Errorf("%w: %s", ErrRunExists, dir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create run directory %s: %w", dir, err)
	}
	return dir, nil
}

// generateSlug creates a URL-safe slug from text.
func generateSlug(text string) string {
	s := truncateSlug(slugify(strings.ToLower(text)))
	if s == "" {
		return "untitled"
	}
	return s
}

// slugify replaces non-alphanumeric runs with single hyphens and trims leading/trailing hyphens.
func slugify(input string) string {
	var result strings.Builder
	lastHyphen := false
	for _, r := range input {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			result.WriteRune(r)
			lastHyphen = false
		} else if !lastHyphen {
			result.WriteRune('-')
			lastHyphen = true
		}
	}
	return strings.Trim(result.String(), "-")
}

// truncateSlug limits the slug to SlugMaxLength, preferring word boundaries.
func truncateSlug(s string) string {
	if len(s) <= SlugMaxLength {
		return s
	}
	s = s[:SlugMaxLength]
	if idx := strings.LastIndex(s, "-"); idx > SlugMinWordBoundary {
		s = s[:idx]
	}
	return strings.Trim(s, "-")
}
