package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cliHarness struct {
	t          *testing.T
	configPath string
	rootA      string
	rootB      string
	textfile   string
}

func newHarness(t *testing.T) *cliHarness {
	t.Helper()
	h := &cliHarness{
		t:          t,
		configPath: filepath.Join(t.TempDir(), "config.yaml"),
		rootA:      t.TempDir(),
		rootB:      t.TempDir(),
		textfile:   filepath.Join(t.TempDir(), "stowage.prom"),
	}
	h.mustRun("", "config", "set", "backends.a.kind", "local")
	h.mustRun("", "config", "set", "backends.a.root", h.rootA)
	h.mustRun("", "config", "set", "backends.b.kind", "local")
	h.mustRun("", "config", "set", "backends.b.root", h.rootB)
	h.mustRun("", "config", "set", "mirror.backends", "a,b")
	h.mustRun("", "config", "set", "metrics.textfile", h.textfile)
	return h
}

func (h *cliHarness) run(stdin string, args ...string) (string, string, int) {
	var out, errOut bytes.Buffer
	full := append([]string{"--config", h.configPath}, args...)
	code := execute(context.Background(), full, strings.NewReader(stdin), &out, &errOut)
	return out.String(), errOut.String(), code
}

func (h *cliHarness) mustRun(stdin string, args ...string) string {
	h.t.Helper()
	out, errOut, code := h.run(stdin, args...)
	require.Equal(h.t, 0, code, "stowage %v failed: %s", args, errOut)
	return out
}

func TestObjectLifecycleThroughMirror(t *testing.T) {
	h := newHarness(t)

	src := filepath.Join(t.TempDir(), "in.txt")
	require.NoError(t, os.WriteFile(src, []byte("hello mirror"), 0o644))

	assert.Contains(t, h.mustRun("", "object", "put", "docs/a.txt", src), "stored successfully")
	assert.Equal(t, "hello mirror", h.mustRun("", "object", "get", "docs/a.txt"))
	assert.Equal(t, "true\n", h.mustRun("", "object", "exists", "docs/a.txt", "--target", "b"))
	assert.Equal(t, "true\n", h.mustRun("", "object", "folder-exists", "docs"))
	assert.Contains(t, h.mustRun("", "object", "list", "--prefix", "docs/"), "docs/a.txt")

	dst := filepath.Join(t.TempDir(), "out.txt")
	assert.Contains(t, h.mustRun("", "object", "get", "docs/a.txt", dst), "12 bytes")
	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "hello mirror", string(got))

	assert.Contains(t, h.mustRun("nope\n", "object", "delete", "docs/a.txt"), "Deletion cancelled.")
	assert.Equal(t, "true\n", h.mustRun("", "object", "exists", "docs/a.txt"))

	assert.Contains(t, h.mustRun("docs/a.txt\n", "object", "delete", "docs/a.txt"), "deleted successfully")
	assert.Equal(t, "false\n", h.mustRun("", "object", "exists", "docs/a.txt", "--target", "a"))
}

func TestPutFromStdin(t *testing.T) {
	h := newHarness(t)
	h.mustRun("from stdin", "object", "put", "s.txt", "-", "--target", "a")
	assert.Equal(t, "from stdin", h.mustRun("", "object", "get", "s.txt", "--target", "a"))
	assert.Equal(t, "false\n", h.mustRun("", "object", "exists", "s.txt", "--target", "b"))
}

func TestReadOnlyTarget(t *testing.T) {
	h := newHarness(t)
	_, errOut, code := h.run("x", "object", "put", "x.txt", "--read-only")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "permission denied")
}

func TestMirrorFailureBreakdown(t *testing.T) {
	h := newHarness(t)
	// A regular file where b needs a directory makes the write fail on b only
	require.NoError(t, os.WriteFile(filepath.Join(h.rootB, "x"), []byte("not a dir"), 0o644))

	_, errOut, code := h.run("payload", "object", "put", "x/y.txt")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "Mirror write failed")
	assert.Contains(t, errOut, "1 of 2 backend(s) acknowledged the write, 2 required")
}

func TestBackendsList(t *testing.T) {
	h := newHarness(t)
	out := h.mustRun("", "backends", "list")
	assert.Contains(t, out, "reachable")
	assert.Contains(t, out, "local")

	kinds := h.mustRun("", "backends", "kinds")
	for _, kind := range []string{"gcs", "local", "memory", "redis", "s3"} {
		assert.Contains(t, kinds, kind)
	}
}

func TestMigrateMove(t *testing.T) {
	h := newHarness(t)
	h.mustRun("1", "object", "put", "m/one.txt", "--target", "a")
	h.mustRun("2", "object", "put", "m/two.txt", "--target", "a")

	out := h.mustRun("", "migrate", "--from", "a", "--to", "b", "--prefix", "m/", "--delete-source", "--force")
	assert.Contains(t, out, "Migration: 2 transferred, 0 skipped, 0 errors, 2 deleted from source")
	assert.Equal(t, "false\n", h.mustRun("", "object", "exists", "m/one.txt", "--target", "a"))
	assert.Equal(t, "2", h.mustRun("", "object", "get", "m/two.txt", "--target", "b"))
}

func TestMigrateConflictFail(t *testing.T) {
	h := newHarness(t)
	h.mustRun("1", "object", "put", "dup.txt")

	out, errOut, code := h.run("", "migrate", "--from", "a", "--to", "b", "--conflict", "fail")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "1 errors")
	assert.Contains(t, errOut, "migration finished with 1 error(s)")
}

func TestConfigCommands(t *testing.T) {
	h := newHarness(t)

	assert.Contains(t, h.mustRun("", "config", "get", "mirror.backends"), "a,b")
	assert.Contains(t, h.mustRun("", "config", "list"), "backends.a.kind = local")
	assert.Contains(t, h.mustRun("", "config", "list", "-o", "yaml"), "kind: local")

	_, errOut, code := h.run("", "config", "set", "mirror.stratgy", "quorum")
	assert.Equal(t, 1, code)
	assert.NotEmpty(t, errOut)

	h.mustRun("", "config", "delete", "mirror")
	_, _, code = h.run("", "config", "get", "mirror.backends")
	assert.Equal(t, 1, code)
}

func TestMetricsTextfileWritten(t *testing.T) {
	h := newHarness(t)
	h.mustRun("x", "object", "put", "x.txt")

	data, err := os.ReadFile(h.textfile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `stowage_mirror_writes_total{policy="wait_all",result="success"} 1`)
}
