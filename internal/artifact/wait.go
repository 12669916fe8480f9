package artifact

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// WaitFor blocks until every named artifact exists in the run directory,
// or ctx ends. Existence is checked again on every directory event.
func (s *Store) WaitFor(ctx context.Context, names []string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() {
		_ = w.Close() //nolint:errcheck // best-effort release
	}()

	if err := w.Add(s.Dir); err != nil {
		return fmt.Errorf("watch %s: %w", s.Dir, err)
	}

	// Check after the watch is in place so no creation is missed.
	pending := s.absent(names)
	for len(pending) > 0 {
		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for %s: %w", strings.Join(pending, ", "), ctx.Err())
		case _, ok := <-w.Events:
			if !ok {
				return errors.New("watcher closed")
			}
			pending = s.absent(pending)
		case err, ok := <-w.Errors:
			if !ok {
				return errors.New("watcher closed")
			}
			return fmt.Errorf("watch %s: %w", s.Dir, err)
		}
	}
	return nil
}

func (s *Store) absent(names []string) []string {
	var out []string
	for _, n := range names {
		if _, err := os.Stat(s.Path(n)); err != nil {
			out = append(out, n)
		}
	}
	return out
}
