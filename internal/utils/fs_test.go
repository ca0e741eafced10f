package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	require.NoError(t, os.WriteFile(src, []byte("content"), 0640))

	require.NoError(t, CopyPath(src, dst))
	content, err := os.ReadFile(dst)
	require.NoError(t, err)
	require.Equal(t, "content", string(content))
	if !RunningOnWindows {
		stat, err := os.Stat(dst)
		require.NoError(t, err)
		require.Equal(t, os.FileMode(0640), stat.Mode().Perm())
	}

	require.Error(t, CopyFile(dir, filepath.Join(dir, "other")))
}

func TestCopyTree(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "grammar.packed")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "slices"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "vocabulary"), []byte("v"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "slices", "slice_00000.source"), []byte("s"), 0644))
	if !RunningOnWindows {
		require.NoError(t, os.Symlink("vocabulary", filepath.Join(src, "vocab")))
	}

	dst := filepath.Join(dir, "bundle", "grammar.packed")
	require.NoError(t, os.Mkdir(filepath.Dir(dst), 0755))
	require.NoError(t, CopyPath(src, dst))

	content, err := os.ReadFile(filepath.Join(dst, "slices", "slice_00000.source"))
	require.NoError(t, err)
	require.Equal(t, "s", string(content))
	if !RunningOnWindows {
		link, err := os.Readlink(filepath.Join(dst, "vocab"))
		require.NoError(t, err)
		require.Equal(t, "vocabulary", link)
	}

	// The destination must not exist yet.
	require.Error(t, CopyTree(src, dst))
}

func TestCopyTreeThroughSymlink(t *testing.T) {
	if RunningOnWindows {
		t.Skip("symlinks")
	}
	dir := t.TempDir()
	target := filepath.Join(dir, "target")
	require.NoError(t, os.Mkdir(target, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(target, "file"), []byte("x"), 0644))
	require.NoError(t, os.Symlink(target, filepath.Join(dir, "link")))

	dst := filepath.Join(dir, "copy")
	require.NoError(t, CopyPath(filepath.Join(dir, "link"), dst))
	require.FileExists(t, filepath.Join(dst, "file"))
}

func TestCopyPathMissing(t *testing.T) {
	err := CopyPath(filepath.Join(t.TempDir(), "nope"), filepath.Join(t.TempDir(), "dst"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestDirSize(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a"), make([]byte, 10), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "b"), make([]byte, 5), 0644))

	size, err := DirSize(dir)
	require.NoError(t, err)
	require.Equal(t, int64(15), size)

	size, err = DirSize(filepath.Join(dir, "a"))
	require.NoError(t, err)
	require.Equal(t, int64(10), size)
}
