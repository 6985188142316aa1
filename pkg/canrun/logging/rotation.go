// Package logging provides a unified logging system with rotation support
// for the canrun readiness analyzer.
package logging

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"
)

// RotationConfig controls when the log file rolls over and how many
// rotated files survive.
type RotationConfig struct {
	// MaxSize is the rollover threshold in bytes. Zero selects the
	// default of 10MB.
	MaxSize int64

	// MaxAge is how many days a rotated file is kept. Zero disables
	// age-based pruning.
	MaxAge int

	// MaxBackups is how many rotated files are kept. Zero keeps all,
	// subject to MaxAge.
	MaxBackups int

	// Daily forces a rollover on the first write of each calendar day.
	Daily bool
}

// DefaultRotationConfig returns sensible defaults for rotation.
func DefaultRotationConfig() RotationConfig {
	return RotationConfig{
		MaxSize:    10 * 1024 * 1024, // 10MB
		MaxAge:     30,               // days
		MaxBackups: 5,
		Daily:      true,
	}
}

// rotatedTimeFormat timestamps rotated files: prefix.2006-01-02-150405.ext.
const rotatedTimeFormat = "2006-01-02-150405"

// RotatingWriter is an io.WriteCloser that rolls its file over by size
// and calendar day. A mutex serializes writers within this process; an
// flock around each write serializes the CLI against a concurrently
// running serve process sharing the same file.
type RotatingWriter struct {
	path string
	cfg  RotationConfig

	mu     sync.Mutex
	file   *os.File
	size   int64
	opened time.Time
}

// NewRotatingWriter opens the log file at path, creating parent
// directories as needed, and prunes rotated files left by earlier runs.
func NewRotatingWriter(path string, cfg RotationConfig) (*RotatingWriter, error) {
	if cfg.MaxSize == 0 {
		cfg.MaxSize = DefaultRotationConfig().MaxSize
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}

	w := &RotatingWriter{path: path, cfg: cfg}
	if err := w.open(); err != nil {
		return nil, err
	}
	w.prune()

	return w, nil
}

// Write appends p to the log file, rolling over first when the write
// would cross the size threshold or the calendar day has changed.
func (w *RotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.due(int64(len(p))) {
		if err := w.roll(); err != nil {
			return 0, fmt.Errorf("rotating log file: %w", err)
		}
	}

	if err := syscall.Flock(int(w.file.Fd()), syscall.LOCK_EX); err != nil {
		return 0, fmt.Errorf("locking log file: %w", err)
	}
	n, err := w.file.Write(p)
	_ = syscall.Flock(int(w.file.Fd()), syscall.LOCK_UN) // ignore unlock errors

	w.size += int64(n)
	if err != nil {
		return n, fmt.Errorf("writing log file: %w", err)
	}
	return n, nil
}

// Close syncs and closes the current log file.
func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}
	file := w.file
	w.file = nil

	return errors.Join(file.Sync(), file.Close())
}

// open opens or creates the active log file and records its size and
// modification time for rollover decisions.
func (w *RotatingWriter) open() error {
	file, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		return errors.Join(fmt.Errorf("stat log file: %w", err), file.Close())
	}

	w.file = file
	w.size = info.Size()
	w.opened = info.ModTime()
	return nil
}

// due reports whether the next write of n bytes requires a rollover.
func (w *RotatingWriter) due(n int64) bool {
	if w.size+n > w.cfg.MaxSize {
		return true
	}
	if !w.cfg.Daily {
		return false
	}
	now := time.Now()
	return now.Year() != w.opened.Year() || now.YearDay() != w.opened.YearDay()
}

// roll renames the active file to a timestamped sibling and starts a
// fresh one.
func (w *RotatingWriter) roll() error {
	if w.file != nil {
		if err := w.file.Close(); err != nil {
			return fmt.Errorf("closing log file: %w", err)
		}
		w.file = nil
	}

	if _, err := os.Stat(w.path); err == nil {
		if err := os.Rename(w.path, w.rotatedName(time.Now())); err != nil {
			return fmt.Errorf("renaming log file: %w", err)
		}
	}

	if err := w.open(); err != nil {
		return err
	}
	w.opened = time.Now()
	w.prune()
	return nil
}

// rotatedName builds the sibling name for a rollover at t, e.g.
// canrun.2024-01-20-150405.log.
func (w *RotatingWriter) rotatedName(t time.Time) string {
	ext := filepath.Ext(w.path)
	base := strings.TrimSuffix(w.path, ext)
	return fmt.Sprintf("%s.%s%s", base, t.Format(rotatedTimeFormat), ext)
}

// prune deletes rotated siblings beyond MaxBackups or older than MaxAge.
// Pruning is best effort and never blocks logging.
func (w *RotatingWriter) prune() {
	siblings := w.rotated()

	// Newest first, so the backup budget keeps recent files.
	sort.Slice(siblings, func(i, j int) bool {
		return siblings[i].modTime.After(siblings[j].modTime)
	})

	var cutoff time.Time
	if w.cfg.MaxAge > 0 {
		cutoff = time.Now().AddDate(0, 0, -w.cfg.MaxAge)
	}

	for i, s := range siblings {
		overBudget := w.cfg.MaxBackups > 0 && i >= w.cfg.MaxBackups
		expired := !cutoff.IsZero() && s.modTime.Before(cutoff)
		if overBudget || expired {
			_ = os.Remove(s.path)
		}
	}
}

type rotatedFile struct {
	path    string
	modTime time.Time
}

// rotated lists this writer's rotated siblings on disk.
func (w *RotatingWriter) rotated() []rotatedFile {
	dir := filepath.Dir(w.path)
	base := filepath.Base(w.path)
	ext := filepath.Ext(base)
	prefix := strings.TrimSuffix(base, ext) + "."

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var files []rotatedFile
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || name == base {
			continue
		}
		if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ext) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, rotatedFile{
			path:    filepath.Join(dir, name),
			modTime: info.ModTime(),
		})
	}
	return files
}
