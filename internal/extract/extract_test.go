package extract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestText_PlainFormats(t *testing.T) {
	dir := t.TempDir()

	mdPath := filepath.Join(dir, "notes.md")
	require.NoError(t, os.WriteFile(mdPath, []byte("# Title\n\nbody"), 0o644))

	text, format, err := Text(mdPath)
	require.NoError(t, err)
	assert.Equal(t, "md", format)
	assert.Equal(t, "# Title\n\nbody", text)

	txtPath := filepath.Join(dir, "plain.txt")
	require.NoError(t, os.WriteFile(txtPath, []byte("hello"), 0o644))

	text, format, err = Text(txtPath)
	require.NoError(t, err)
	assert.Equal(t, "txt", format)
	assert.Equal(t, "hello", text)
}

func TestText_UnsupportedFormat(t *testing.T) {
	_, _, err := Text(filepath.Join(t.TempDir(), "report.pdf"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported document format")
}

func TestText_MissingFile(t *testing.T) {
	_, _, err := Text(filepath.Join(t.TempDir(), "absent.txt"))
	require.Error(t, err)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "txt", Format("a.TXT"))
	assert.Equal(t, "txt", Format("a.text"))
	assert.Equal(t, "md", Format("a.markdown"))
	assert.Equal(t, "pdf", Format("a.pdf"))
	assert.Equal(t, "", Format("noext"))
}
