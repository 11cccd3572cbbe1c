package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/ragent/internal/core/ports/driven"
	"github.com/custodia-labs/ragent/internal/logger"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

const promptExt = ".txt"

// promptNotes describes each built-in prompt in the directory README.
var promptNotes = map[string]string{
	driven.PromptRAGSystem:   "system instruction for RAG answers",
	driven.PromptRAGUser:     "wraps retrieved context and the question; keep both %s placeholders, context first",
	driven.PromptAgentSystem: "system instruction for the agent loop",
}

// PromptStore serves prompt templates from <dir>/<name>.txt, falling back
// to the built-in defaults for missing or blank files.
//
// The directory is seeded with the defaults on first use. Files are read
// in one pass into an immutable snapshot that Reload discards.
type PromptStore struct {
	dir      string
	defaults map[string]string
	seed     func() error
	snapshot atomic.Pointer[map[string]string]
}

// NewPromptStore creates a prompt store rooted at dir, or ~/.ragent/prompts
// when dir is empty. No I/O happens until the first Load.
func NewPromptStore(dir string) (*PromptStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		dir = filepath.Join(home, ".ragent", "prompts")
	}

	s := &PromptStore{dir: dir, defaults: driven.DefaultPrompts()}
	s.seed = sync.OnceValue(s.writeDefaults)
	return s, nil
}

// Dir returns the prompt directory.
func (s *PromptStore) Dir() string {
	return s.dir
}

// Load returns the named template.
func (s *PromptStore) Load(name string) (string, error) {
	if err := s.seed(); err != nil {
		if prompt, ok := s.defaults[name]; ok {
			return prompt, nil
		}
		return "", fmt.Errorf("prompt store unavailable: %w", err)
	}

	prompts := s.snapshot.Load()
	if prompts == nil {
		loaded := s.readAll()
		prompts = &loaded
		s.snapshot.CompareAndSwap(nil, prompts)
	}

	if prompt, ok := (*prompts)[name]; ok {
		return prompt, nil
	}
	if prompt, ok := s.defaults[name]; ok {
		return prompt, nil
	}
	return "", fmt.Errorf("load prompt %q: %w", name, fs.ErrNotExist)
}

// Reload drops the snapshot so the next Load rereads the directory.
func (s *PromptStore) Reload() {
	s.snapshot.Store(nil)
}

// Watch reloads whenever a prompt file changes until ctx is cancelled.
// ready, when non-nil, is closed once the directory is watched.
func (s *PromptStore) Watch(ctx context.Context, ready chan<- struct{}) error {
	if err := s.seed(); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create prompt watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(s.dir); err != nil {
		return fmt.Errorf("watch %s: %w", s.dir, err)
	}
	if ready != nil {
		close(ready)
	}
	logger.Debug("watching prompts in %s", s.dir)

	const changed = fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&changed != 0 && filepath.Ext(event.Name) == promptExt {
				logger.Debug("prompt file changed: %s", filepath.Base(event.Name))
				s.Reload()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("prompt watcher: %v", err)
		}
	}
}

// readAll loads every non-blank prompt file. Unreadable files are skipped
// so their defaults apply.
func (s *PromptStore) readAll() map[string]string {
	prompts := make(map[string]string)

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		logger.Warn("read prompt directory: %v", err)
		return prompts
	}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != promptExt {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, e.Name()))
		if err != nil {
			logger.Warn("read prompt %s: %v", e.Name(), err)
			continue
		}
		if text := strings.TrimSpace(string(data)); text != "" {
			prompts[strings.TrimSuffix(e.Name(), promptExt)] = text
		}
	}
	return prompts
}

// writeDefaults creates the directory, any missing default prompt files
// and the README. Existing files are never overwritten.
func (s *PromptStore) writeDefaults() error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("create prompt directory: %w", err)
	}
	for name, content := range s.defaults {
		if err := writeIfMissing(filepath.Join(s.dir, name+promptExt), content); err != nil {
			return fmt.Errorf("create default prompt %q: %w", name, err)
		}
	}
	return writeIfMissing(filepath.Join(s.dir, "README.md"), s.readme())
}

func (s *PromptStore) readme() string {
	var b strings.Builder
	b.WriteString("# ragent prompts\n\n")
	b.WriteString("Templates used by the RAG query path and the agent loop. Edit a file\n")
	b.WriteString("to change model behaviour; a running server picks up edits without a\n")
	b.WriteString("restart. Delete a file or empty it to restore the built-in default.\n\n")

	names := make([]string, 0, len(s.defaults))
	for name := range s.defaults {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		fmt.Fprintf(&b, "- `%s%s`: %s\n", name, promptExt, promptNotes[name])
	}
	return b.String()
}

func writeIfMissing(path, content string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if errors.Is(err, fs.ErrExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
