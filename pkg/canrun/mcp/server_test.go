package mcp

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/canrun/pkg/canrun/manifest"
	"github.com/jamesainslie/canrun/pkg/canrun/probe"
	"github.com/jamesainslie/canrun/pkg/canrun/readiness"
	"github.com/jamesainslie/canrun/pkg/canrun/types"
)

// newTestServer builds a server rooted at the given project directory
// with short probe timeouts.
func newTestServer(t *testing.T, root string) *Server {
	t.Helper()
	return NewServer(Options{
		Run: readiness.Options{
			Probe: probe.Options{
				Timeout:     2 * time.Second,
				ProjectPath: root,
			},
			Resolve: manifest.Options{Root: root},
		},
		RunTimeout: 30 * time.Second,
		Version:    "test",
	})
}

func TestNewServer_DefaultTimeout(t *testing.T) {
	s := NewServer(Options{Version: "test"})

	require.NotNil(t, s)
	require.NotNil(t, s.mcp)
	assert.Equal(t, 15*time.Second, s.opts.RunTimeout)
}

func TestNewServer_KeepsConfiguredTimeout(t *testing.T) {
	s := NewServer(Options{RunTimeout: 3 * time.Second})

	assert.Equal(t, 3*time.Second, s.opts.RunTimeout)
}

func TestServer_RunOptions_OverridesRoot(t *testing.T) {
	s := newTestServer(t, "/orig")

	opts := s.runOptions("/override")

	assert.Equal(t, "/override", opts.Resolve.Root)
	assert.Equal(t, "/override", opts.Probe.ProjectPath)
}

func TestServer_RunOptions_EmptyPathKeepsConfigured(t *testing.T) {
	s := newTestServer(t, "/orig")

	opts := s.runOptions("")

	assert.Equal(t, "/orig", opts.Resolve.Root)
	assert.Equal(t, "/orig", opts.Probe.ProjectPath)
}

func TestServer_ProjectDir_ValidDirectory(t *testing.T) {
	dir := t.TempDir()
	s := newTestServer(t, dir)

	got, err := s.projectDir(dir)

	require.NoError(t, err)
	abs, err := filepath.Abs(dir)
	require.NoError(t, err)
	assert.Equal(t, abs, got)
}

func TestServer_ProjectDir_EmptyFallsBackToConfiguredRoot(t *testing.T) {
	dir := t.TempDir()
	s := newTestServer(t, dir)

	got, err := s.projectDir("")

	require.NoError(t, err)
	abs, err := filepath.Abs(dir)
	require.NoError(t, err)
	assert.Equal(t, abs, got)
}

func TestServer_ProjectDir_Missing(t *testing.T) {
	s := newTestServer(t, t.TempDir())

	_, err := s.projectDir(filepath.Join(t.TempDir(), "nope"))

	assert.ErrorIs(t, err, types.ErrProjectPath)
}

func TestServer_ProjectDir_NotADirectory(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "plain.txt")
	writeFile(t, file, "data")
	s := newTestServer(t, dir)

	_, err := s.projectDir(file)

	assert.ErrorIs(t, err, types.ErrProjectPath)
}
