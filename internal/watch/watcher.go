// SPDX-License-Identifier: MPL-2.0

// Package watch re-runs a command when files under the inkfile directory change.
//
// Events are filtered through doublestar patterns and coalesced over a
// debounce window, so an editor save that writes and renames a temp file
// triggers a single run.
package watch

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/inkjet/inkjet/internal/logging"
)

// DefaultDebounce is the quiet period used when Config.Debounce is not set.
const DefaultDebounce = 500 * time.Millisecond

var (
	// ErrAlreadyRunning is returned by a second call to Run.
	ErrAlreadyRunning = errors.New("watcher already running")

	errWatcherClosed = errors.New("file watcher closed unexpectedly")

	// defaultIgnores are never watched. The shebang scripts inkjet writes next
	// to the inkfile are among them, otherwise every run would trigger the next.
	defaultIgnores = []string{
		"**/.git/**",
		"**/node_modules/**",
		"**/.inkjet.*",
		"**/*.swp",
		"**/*.swo",
		"**/*~",
		"**/.DS_Store",
	}
)

type (
	// Config holds the parameters for a Watcher.
	Config struct {
		// BaseDir is the directory tree to watch. Defaults to the working directory.
		BaseDir string
		// Patterns select the files that trigger a run. Empty matches everything.
		Patterns []string
		// Ignore is merged with the built-in ignores.
		Ignore []string
		// Debounce defaults to DefaultDebounce.
		Debounce time.Duration
		// OnChange receives the changed paths, relative to BaseDir and sorted.
		OnChange func(ctx context.Context, changed []string) error
		// Logger defaults to a discarding logger.
		Logger *log.Logger
	}

	// Watcher fires Config.OnChange after matching files change.
	Watcher struct {
		cfg      Config
		fsw      *fsnotify.Watcher
		ignores  []string
		debounce time.Duration
		baseDir  string
		logger   *log.Logger
		started  atomic.Bool
	}

	// InvalidPatternError is returned for a glob doublestar cannot parse.
	InvalidPatternError struct {
		Pattern string
		Err     error
	}
)

// Error implements the error interface.
func (e *InvalidPatternError) Error() string {
	return fmt.Sprintf("invalid watch pattern %q: %v", e.Pattern, e.Err)
}

// Unwrap returns the doublestar error.
func (e *InvalidPatternError) Unwrap() error { return e.Err }

// New validates cfg and registers every directory under BaseDir that is not ignored.
func New(cfg Config) (*Watcher, error) {
	for _, pat := range slices.Concat(cfg.Patterns, cfg.Ignore) {
		if !doublestar.ValidatePattern(pat) {
			return nil, &InvalidPatternError{Pattern: pat, Err: doublestar.ErrBadPattern}
		}
	}

	baseDir := cfg.BaseDir
	if baseDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		baseDir = wd
	}
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", baseDir, err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	w := &Watcher{
		cfg:      cfg,
		fsw:      fsw,
		ignores:  slices.Concat(defaultIgnores, cfg.Ignore),
		debounce: cmpDuration(cfg.Debounce, DefaultDebounce),
		baseDir:  absBase,
		logger:   logger,
	}
	if err := w.addDirectories(); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// batch collects changed paths until the debounce window closes.
type batch struct {
	mu       sync.Mutex
	pending  map[string]struct{}
	timer    *time.Timer
	debounce time.Duration
	// busy is set while the callback runs.
	busy atomic.Bool
}

// add records rel and restarts the debounce window.
func (b *batch) add(rel string, fire func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending[rel] = struct{}{}
	if b.timer == nil {
		b.timer = time.AfterFunc(b.debounce, fire)
		return
	}
	b.timer.Reset(b.debounce)
}

// take empties the batch. While a callback is busy it re-arms the timer
// instead and reports false.
func (b *batch) take() ([]string, bool) {
	if !b.busy.CompareAndSwap(false, true) {
		b.mu.Lock()
		b.timer.Reset(b.debounce)
		b.mu.Unlock()
		return nil, false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	paths := slices.Sorted(maps.Keys(b.pending))
	clear(b.pending)
	return paths, true
}

func (b *batch) stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.timer != nil {
		b.timer.Stop()
	}
}

// Run processes events until ctx is cancelled. OnChange never runs
// concurrently with itself: changes that arrive during a run are kept and
// delivered once it finishes.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer func() {
		if err := w.fsw.Close(); err != nil {
			w.logger.Warn("closing file watcher", "error", err)
		}
	}()

	b := &batch{pending: map[string]struct{}{}, debounce: w.debounce}
	defer b.stop()
	fire := func() { w.deliver(ctx, b) }

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errWatcherClosed
			}
			if rel, ok := w.relevant(evt); ok {
				b.add(rel, fire)
			}

		case err, ok := <-w.fsw.Errors:
			switch {
			case !ok:
				return errWatcherClosed
			case isFatalFsnotifyError(err):
				return fmt.Errorf("file watcher failed: %w", err)
			}
			w.logger.Warn("file watcher error", "error", err)
		}
	}
}

// relevant returns the slash-separated path of evt relative to BaseDir when
// it passes the ignore list and the patterns. New directories are watched
// as a side effect.
func (w *Watcher) relevant(evt fsnotify.Event) (string, bool) {
	rel, err := filepath.Rel(w.baseDir, evt.Name)
	if err != nil {
		rel = evt.Name
	}
	if evt.Has(fsnotify.Create) {
		w.maybeAddDir(evt.Name, rel)
	}
	if w.isIgnored(rel) || !w.matches(rel) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func (w *Watcher) deliver(ctx context.Context, b *batch) {
	if ctx.Err() != nil {
		return
	}
	changed, ok := b.take()
	if !ok {
		return
	}
	defer b.busy.Store(false)
	if len(changed) == 0 || w.cfg.OnChange == nil {
		return
	}
	w.logger.Debug("files changed", "paths", changed)
	if err := w.cfg.OnChange(ctx, changed); err != nil {
		w.logger.Warn("re-run failed", "error", err)
	}
}

// addDirectories registers BaseDir and its subdirectories. Unreadable
// directories are skipped.
func (w *Watcher) addDirectories() error {
	return filepath.WalkDir(w.baseDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			w.logger.Debug("skipping unreadable path", "path", path, "error", err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(w.baseDir, path)
		if err != nil {
			return nil
		}
		if rel != "." && w.isIgnoredDir(rel) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}

// maybeAddDir extends the watch to directories created after startup.
func (w *Watcher) maybeAddDir(path, rel string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() || w.isIgnoredDir(rel) {
		return
	}
	if err := w.fsw.Add(path); err != nil {
		w.logger.Warn("failed to watch new directory", "path", path, "error", err)
	}
}

func (w *Watcher) isIgnoredDir(rel string) bool {
	return w.isIgnored(rel) || w.isIgnored(rel+"/")
}

func (w *Watcher) isIgnored(rel string) bool {
	return matchAny(w.ignores, rel)
}

func (w *Watcher) matches(rel string) bool {
	return len(w.cfg.Patterns) == 0 || matchAny(w.cfg.Patterns, rel)
}

// DefaultIgnores returns a copy of the built-in ignore patterns.
func DefaultIgnores() []string {
	return slices.Clone(defaultIgnores)
}

func matchAny(patterns []string, rel string) bool {
	name := filepath.ToSlash(rel)
	for _, pat := range patterns {
		if ok, err := doublestar.Match(pat, name); err == nil && ok {
			return true
		}
	}
	return false
}

func cmpDuration(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}
