package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDocsUploadCmd_Single(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	path := writeFile(t, t.TempDir(), "notes.md", "# Notes")

	out, err := runCommand(t, "docs", "upload", path, "--kb", "support", "--metadata", `{"team":"ops"}`)

	require.NoError(t, err)
	assert.Contains(t, out, "notes.md -> doc-1 (3 chunks in support)")
	require.Len(t, ts.documents.uploaded, 1)
	assert.Equal(t, "notes.md", ts.documents.uploaded[0].Filename)
	assert.Equal(t, []byte("# Notes"), ts.documents.uploaded[0].Content)
	assert.Equal(t, map[string]any{"team": "ops"}, ts.documents.uploaded[0].Metadata)
}

func TestDocsUploadCmd_Batch(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	dir := t.TempDir()

	out, err := runCommand(t, "docs", "upload", writeFile(t, dir, "a.txt", "a"), writeFile(t, dir, "b.txt", "b"), "--json")

	require.NoError(t, err)
	assert.Contains(t, out, `"total_uploaded": 2`)
	assert.Len(t, ts.documents.uploaded, 2)
}

func TestDocsUploadCmd_MissingFile(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := runCommand(t, "docs", "upload", filepath.Join(t.TempDir(), "missing.txt"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading")
}

func TestDocsUploadCmd_BadMetadata(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	path := writeFile(t, t.TempDir(), "a.txt", "a")

	_, err := runCommand(t, "docs", "upload", path, "--metadata", "not-json")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "--metadata must be a JSON object")
}

func TestDocsAddTextCmd(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := runCommand(t, "docs", "add-text", "some text")

	require.NoError(t, err)
	assert.Contains(t, out, "text -> doc-2")
	assert.Equal(t, "some text", ts.documents.text)
	assert.Equal(t, "default", ts.documents.kb)
}

func TestDocsAddTextCmd_Stdin(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	rootCmd.SetIn(strings.NewReader("from stdin"))

	buf := new(strings.Builder)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"docs", "add-text", "-"})
	defer func() {
		rootCmd.SetArgs(nil)
		resetFlags()
	}()

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "from stdin", ts.documents.text)
}

func TestDocsDeleteCmd(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := runCommand(t, "docs", "delete", "doc-1", "--kb", "legal")

	require.NoError(t, err)
	assert.Contains(t, out, "Document doc-1 deleted (4 chunks)")
	assert.Equal(t, "doc-1", ts.documents.deleted)
	assert.Equal(t, "legal", ts.documents.kb)
}

func TestDocsListCmd(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := runCommand(t, "docs", "list", "--kb", "support", "--json")

	require.NoError(t, err)
	assert.Contains(t, out, `"id": "support"`)
	assert.Contains(t, out, `"total": 1`)
}

func TestKBListCmd(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := runCommand(t, "kb", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "default")
	assert.Contains(t, out, "legal")
	assert.Contains(t, out, "2 chunks")
}
