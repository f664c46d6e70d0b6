// Package state persists which orchestrated steps have completed, so an
// interrupted run can resume without repeating work. The store is a small
// line-oriented file, one entry per step, rewritten atomically on every
// update.
package state

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"golang.org/x/sys/unix"
)

// Entry records one completed step and the versioned hash of its bound
// input at completion time.
type Entry struct {
	StepName  string
	InputHash string
}

// Store is the durable step-name to entry mapping. All mutation goes
// through a read-modify-write cycle guarded by an advisory lock; when the
// backing filesystem cannot produce a real file descriptor (tests on
// MemMapFs), updates degrade to last-writer-wins on the atomic rename.
type Store struct {
	fs     afero.Fs
	path   string
	logger *zerolog.Logger
}

// NewStore creates a store persisting at path.
func NewStore(fs afero.Fs, path string, log *zerolog.Logger) *Store {
	return &Store{fs: fs, path: path, logger: log}
}

// Load reads all entries. A missing file is an empty store, not an error.
func (s *Store) Load() (map[string]Entry, error) {
	f, err := s.fs.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]Entry{}, nil
		}
		return nil, fmt.Errorf("open state file: %w", err)
	}
	defer f.Close()

	entries := map[string]Entry{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		name, hash, ok := strings.Cut(line, ":")
		if !ok || name == "" {
			s.logger.Warn().Str("line", line).Msg("malformed state entry, ignoring")
			continue
		}
		// Later lines win; the file should never contain duplicates but a
		// crash mid-rewrite on exotic filesystems could leave them.
		entries[name] = Entry{StepName: name, InputHash: hash}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read state file: %w", err)
	}

	return entries, nil
}

// Get returns the persisted entry for a step, if any.
func (s *Store) Get(stepName string) (Entry, bool, error) {
	entries, err := s.Load()
	if err != nil {
		return Entry{}, false, err
	}
	e, ok := entries[stepName]
	return e, ok, nil
}

// MarkCompleted records a step completion, replacing any prior entry for
// the same step name.
func (s *Store) MarkCompleted(stepName, inputHash string) error {
	unlock, err := s.lock()
	if err != nil {
		return err
	}
	defer unlock()

	entries, err := s.Load()
	if err != nil {
		return err
	}
	entries[stepName] = Entry{StepName: stepName, InputHash: inputHash}

	return s.write(entries)
}

// Clear removes all persisted state; the next run starts fresh.
func (s *Store) Clear() error {
	unlock, err := s.lock()
	if err != nil {
		return err
	}
	defer unlock()

	if err := s.fs.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clear state file: %w", err)
	}
	// The lock sidecar guards a file that no longer exists. The held
	// descriptor survives the unlink, so the deferred unlock still works.
	if err := s.fs.Remove(s.path + ".lock"); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clear state lock: %w", err)
	}
	return nil
}

// Entries returns all persisted entries sorted by step name, for display.
func (s *Store) Entries() ([]Entry, error) {
	m, err := s.Load()
	if err != nil {
		return nil, err
	}

	out := make([]Entry, 0, len(m))
	for _, e := range m {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StepName < out[j].StepName })
	return out, nil
}

// write persists entries atomically: full content to a temp file in the
// same directory, then rename over the old file. Readers never observe a
// partial state file.
func (s *Store) write(entries map[string]Entry) error {
	dir := filepath.Dir(s.path)
	if err := s.fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, "%s:%s\n", name, entries[name].InputHash)
	}

	tmp := s.path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("write state temp file: %w", err)
	}
	if err := s.fs.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}

	return nil
}

// lock takes an exclusive advisory flock on a sidecar lock file, guarding
// the read-modify-write cycle against a second installer instance. On
// filesystems without real descriptors it returns a no-op unlock and the
// atomic rename alone keeps the file consistent (last writer wins).
func (s *Store) lock() (func(), error) {
	if _, ok := s.fs.(*afero.OsFs); !ok {
		return func() {}, nil
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}

	f, err := os.OpenFile(s.path+".lock", os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("open state lock: %w", err)
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		f.Close()
		return nil, fmt.Errorf("lock state file: %w", err)
	}

	return func() {
		_ = unix.Flock(int(f.Fd()), unix.LOCK_UN)
		_ = f.Close()
	}, nil
}
