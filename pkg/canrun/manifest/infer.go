package manifest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charlievieth/fastwalk"

	"github.com/jamesainslie/canrun/pkg/canrun/config"
	"github.com/jamesainslie/canrun/pkg/canrun/logging"
	"github.com/jamesainslie/canrun/pkg/canrun/types"
)

// WalkError records a file or directory that could not be inspected.
// Walk errors are collected, not fatal.
type WalkError struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// TreeStats summarizes a project tree walk.
type TreeStats struct {
	// TotalBytes is the combined size of every regular file under the root.
	TotalBytes int64 `json:"total_bytes"`

	// DatasetBytes is the combined size of files with recognized dataset
	// extensions. DatasetFiles counts the files behind it.
	DatasetBytes int64 `json:"dataset_bytes"`
	DatasetFiles int64 `json:"dataset_files"`

	// FilesScanned and DirsScanned count the entries visited.
	FilesScanned int64 `json:"files_scanned"`
	DirsScanned  int64 `json:"dirs_scanned"`

	// Errors holds the entries that could not be inspected.
	Errors []WalkError `json:"errors,omitempty"`

	// Elapsed is the wall time of the walk.
	Elapsed time.Duration `json:"elapsed"`
}

// WalkOptions configures a project tree walk.
type WalkOptions struct {
	// Root is the project directory to walk.
	Root string

	// DatasetExtensions lists the file extensions counted as dataset
	// artifacts, lowercase with the leading dot.
	DatasetExtensions []string

	// Exclude lists directory names skipped during the walk.
	Exclude []string

	// Workers is the number of concurrent walk workers.
	Workers int

	// FollowSymlinks enables following symbolic links.
	FollowSymlinks bool
}

// DefaultWalkOptions returns walk options with sensible defaults.
func DefaultWalkOptions() WalkOptions {
	return WalkOptions{
		Root:              config.DefaultProjectPath,
		DatasetExtensions: config.DefaultDatasetExtensions,
		Exclude:           config.DefaultExclusions,
		Workers:           config.WalkWorkers(0),
	}
}

// Validate fills in defaults for zero-valued fields and clamps the
// worker count.
func (o *WalkOptions) Validate() error {
	if o.Root == "" {
		o.Root = config.DefaultProjectPath
	}
	if len(o.DatasetExtensions) == 0 {
		o.DatasetExtensions = config.DefaultDatasetExtensions
	}
	o.Workers = config.WalkWorkers(o.Workers)
	return nil
}

// Walker computes a project's storage footprint with a parallel
// directory walk.
type Walker struct {
	opts   WalkOptions
	exts   map[string]struct{}
	logger *logging.Logger

	totalBytes   atomic.Int64
	datasetBytes atomic.Int64
	datasetFiles atomic.Int64
	filesScanned atomic.Int64
	dirsScanned  atomic.Int64

	errorsMu sync.Mutex
	errors   []WalkError
}

// NewWalker creates a walker with the given options.
func NewWalker(opts WalkOptions) *Walker {
	_ = opts.Validate()

	exts := make(map[string]struct{}, len(opts.DatasetExtensions))
	for _, ext := range opts.DatasetExtensions {
		exts[strings.ToLower(ext)] = struct{}{}
	}

	return &Walker{
		opts:   opts,
		exts:   exts,
		logger: logging.Get("manifest"),
	}
}

// Walk traverses the project tree and returns its stats. Entries that
// cannot be inspected are recorded in the stats rather than aborting the
// walk. An unusable root wraps types.ErrProjectPath.
func (w *Walker) Walk(ctx context.Context) (*TreeStats, error) {
	start := time.Now()

	root, err := w.validateRoot()
	if err != nil {
		return nil, err
	}

	w.logger.Debug("walking project tree", "root", root, "workers", w.opts.Workers)

	conf := fastwalk.Config{
		Follow:     w.opts.FollowSymlinks,
		NumWorkers: w.opts.Workers,
	}

	// fastwalk has no context support, so bridge cancellation through a
	// channel the callback polls.
	walkCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan struct{})
	go func() {
		<-walkCtx.Done()
		close(done)
	}()

	err = fastwalk.Walk(&conf, root, w.walkFunc(root, done))
	if err != nil && !errors.Is(err, fastwalk.ErrSkipFiles) {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	stats := &TreeStats{
		TotalBytes:   w.totalBytes.Load(),
		DatasetBytes: w.datasetBytes.Load(),
		DatasetFiles: w.datasetFiles.Load(),
		FilesScanned: w.filesScanned.Load(),
		DirsScanned:  w.dirsScanned.Load(),
		Errors:       w.walkErrors(),
		Elapsed:      time.Since(start),
	}

	w.logger.Debug("walk complete",
		"files", stats.FilesScanned,
		"total_bytes", stats.TotalBytes,
		"dataset_bytes", stats.DatasetBytes,
		"errors", len(stats.Errors),
		"elapsed", stats.Elapsed)

	return stats, nil
}

func (w *Walker) validateRoot() (string, error) {
	root, err := filepath.Abs(w.opts.Root)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", types.ErrProjectPath, w.opts.Root, err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", types.ErrProjectPath, w.opts.Root, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", types.ErrProjectPath, w.opts.Root)
	}
	return root, nil
}

func (w *Walker) walkFunc(root string, done <-chan struct{}) fs.WalkDirFunc {
	return func(path string, d fs.DirEntry, err error) error {
		select {
		case <-done:
			return fastwalk.ErrSkipFiles
		default:
		}

		if err != nil {
			w.addError(path, err)
			return nil
		}

		if d.IsDir() {
			if path != root && w.isExcluded(path) {
				return fastwalk.SkipDir
			}
			w.dirsScanned.Add(1)
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			w.addError(path, err)
			return nil
		}

		size := info.Size()
		w.filesScanned.Add(1)
		w.totalBytes.Add(size)

		if _, ok := w.exts[strings.ToLower(filepath.Ext(path))]; ok {
			w.datasetBytes.Add(size)
			w.datasetFiles.Add(1)
		}
		return nil
	}
}

// isExcluded matches the entry's base name against the exclusion list.
// Entries are matched both literally and as glob patterns.
func (w *Walker) isExcluded(path string) bool {
	base := filepath.Base(path)
	for _, pattern := range w.opts.Exclude {
		if pattern == "" {
			continue
		}
		if base == pattern {
			return true
		}
		if matched, err := filepath.Match(pattern, base); err == nil && matched {
			return true
		}
	}
	return false
}

func (w *Walker) addError(path string, err error) {
	w.errorsMu.Lock()
	defer w.errorsMu.Unlock()
	w.errors = append(w.errors, WalkError{Path: path, Error: err.Error()})
}

func (w *Walker) walkErrors() []WalkError {
	w.errorsMu.Lock()
	defer w.errorsMu.Unlock()
	out := make([]WalkError, len(w.errors))
	copy(out, w.errors)
	return out
}
