package uploads

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowed(t *testing.T) {
	assert.True(t, Allowed("leaf.jpg"))
	assert.True(t, Allowed("leaf.JPEG"))
	assert.True(t, Allowed("leaf.png"))
	assert.False(t, Allowed("notes.txt"))
	assert.False(t, Allowed("archive.tar.gz"))
	assert.False(t, Allowed("noextension"))
}

func TestSaveAndPath(t *testing.T) {
	st, err := New(t.TempDir())
	require.NoError(t, err)

	name, err := st.Save("leaf.JPG", []byte("image"))
	require.NoError(t, err)
	assert.NotEqual(t, "leaf.JPG", name, "stored name is generated")
	assert.Equal(t, ".jpg", filepath.Ext(name))

	path, err := st.Path(name)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "image", string(data))
}

func TestSave_RejectsUnsupportedExtension(t *testing.T) {
	st, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = st.Save("malware.exe", []byte("x"))
	assert.Error(t, err)
}

func TestPath_RejectsTraversal(t *testing.T) {
	st, err := New(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"", "../secret.jpg", "a/b.jpg", "missing.jpg"} {
		_, err := st.Path(name)
		assert.Error(t, err, name)
	}
}

func TestPurgeOlderThan(t *testing.T) {
	dir := t.TempDir()
	st, err := New(dir)
	require.NoError(t, err)

	oldName, err := st.Save("old.jpg", []byte("old"))
	require.NoError(t, err)
	newName, err := st.Save("new.jpg", []byte("new"))
	require.NoError(t, err)

	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, oldName), past, past))

	purged, err := st.PurgeOlderThan(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, purged)

	_, err = st.Path(oldName)
	assert.Error(t, err)
	_, err = st.Path(newName)
	assert.NoError(t, err)
}
