package project

import (
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(h *Handle) []string {
	out := make([]string, 0, len(h.Files))
	for _, f := range h.Files {
		out = append(out, f.Name)
	}
	sort.Strings(out)
	return out
}

func TestLoadSkipsDirectories(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "index.js"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "package.json"), []byte("{}"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(root, "node_modules"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "node_modules", "deep.js"), nil, 0o644))

	h, err := Load(root, LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, root, h.RootPath)
	assert.Len(t, h.Files, 2)
	assert.Equal(t, []string{"index.js", "package.json"}, names(h))

	for _, f := range h.Files {
		assert.True(t, filepath.IsAbs(f.Path))
		assert.Equal(t, f.Name, filepath.Base(f.Path))
	}
}

func TestLoadMissingDirectory(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")

	_, err := Load(missing, LoadOptions{})
	require.Error(t, err)
	assert.True(t, IsPrecondition(err))
	assert.Equal(t, "'"+missing+"' is not a valid directory.", err.Error())
}

func TestLoadFileIsNotDirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "f.txt")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	_, err := Load(file, LoadOptions{})
	assert.True(t, IsPrecondition(err))
}

func TestCheckDir(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, CheckDir("watch", dir))

	missing := filepath.Join(dir, "gone")
	err := CheckDir("watch", missing)
	assert.True(t, IsPrecondition(err))
	assert.Equal(t, "'"+missing+"' is not a valid directory.", err.Error())
}

func TestLoadPattern(t *testing.T) {
	root := t.TempDir()
	for _, n := range []string{"index.js", "routes.js", "package.json", ".env"} {
		require.NoError(t, os.WriteFile(filepath.Join(root, n), nil, 0o644))
	}

	h, err := Load(root, LoadOptions{Pattern: "*.js"})
	require.NoError(t, err)
	assert.Equal(t, []string{"index.js", "routes.js"}, names(h))

	h, err = Load(root, LoadOptions{})
	require.NoError(t, err)
	assert.Len(t, h.Files, 4)

	_, err = Load(root, LoadOptions{Pattern: "[unclosed"})
	assert.ErrorIs(t, err, ErrInvalidPattern)
	assert.Empty(t, KindOf(err))
}

func TestLoadFollowsFileSymlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges")
	}
	root := t.TempDir()
	target := filepath.Join(t.TempDir(), "real.js")
	require.NoError(t, os.WriteFile(target, nil, 0o644))
	require.NoError(t, os.Symlink(target, filepath.Join(root, "link.js")))
	require.NoError(t, os.Symlink(filepath.Join(root, "gone"), filepath.Join(root, "dangling.js")))

	h, err := Load(root, LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"link.js"}, names(h))
}

func TestReadWriteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.js")

	require.NoError(t, WriteFile(path, "const a = 1;\n"))
	got, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "const a = 1;\n", got)

	require.NoError(t, WriteFile(path, "short"))
	got, err = ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "short", got)
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.True(t, IsFilesystem(err))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadFileUTF16(t *testing.T) {
	path := filepath.Join(t.TempDir(), "utf16.txt")
	// "hi" little-endian with BOM
	require.NoError(t, os.WriteFile(path, []byte{0xFF, 0xFE, 'h', 0x00, 'i', 0x00}, 0o644))

	got, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hi", got)

	be := filepath.Join(t.TempDir(), "utf16be.txt")
	require.NoError(t, os.WriteFile(be, []byte{0xFE, 0xFF, 0x00, 'o', 0x00, 'k'}, 0o644))

	got, err = ReadFile(be)
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
}

func TestReadFileInvalidUTF8(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bin")
	require.NoError(t, os.WriteFile(path, []byte{0xC3, 0x28}, 0o644))

	_, err := ReadFile(path)
	assert.True(t, IsFilesystem(err))
}

func TestWriteFileMissingParent(t *testing.T) {
	err := WriteFile(filepath.Join(t.TempDir(), "no", "such", "dir.txt"), "x")
	require.Error(t, err)
	assert.True(t, IsFilesystem(err))
}
