package filesystem

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryFileSystem_WalkIsSortedAndRelative(t *testing.T) {
	mfs := NewMemoryFileSystem("/repo")
	mfs.AddFile("jobs/nightly.kjb", "<job/>")
	mfs.AddFile("load_sales.ktr", "<transformation/>")

	dir, err := mfs.Open("/repo")
	require.NoError(t, err)

	var files []string
	err = dir.Walk(func(file File, err error) error {
		require.NoError(t, err)
		if !file.Info().IsDir() {
			files = append(files, file.RelativePath())
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"jobs/nightly.kjb", "load_sales.ktr"}, files)
}

func TestMemoryFileSystem_ReadFileAndStat(t *testing.T) {
	mfs := NewMemoryFileSystem("/repo")
	mfs.AddFile("a.ktr", "<transformation/>")

	content, err := mfs.ReadFile("/repo/a.ktr")
	require.NoError(t, err)
	assert.Equal(t, "<transformation/>", string(content))

	info, err := mfs.Stat("a.ktr")
	require.NoError(t, err)
	assert.False(t, info.IsDir())
	assert.Equal(t, "a.ktr", info.Name())

	info, err = mfs.Stat("/repo")
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestMemoryFileSystem_MissingPathsAreNotExist(t *testing.T) {
	mfs := NewMemoryFileSystem("/repo")

	_, err := mfs.Stat("nope.ktr")
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	_, err = mfs.ReadFile("nope.ktr")
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	_, err = mfs.Open("nope")
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestMemoryFileSystem_WalkCallbackPanicBecomesError(t *testing.T) {
	mfs := NewMemoryFileSystem("/repo")
	mfs.AddFile("a.ktr", "")

	dir, err := mfs.Open(".")
	require.NoError(t, err)
	err = dir.Walk(func(file File, err error) error {
		panic("boom")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panicked")
}
