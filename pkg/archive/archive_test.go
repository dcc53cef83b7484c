package archive

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/grovetools/ausec/errors"
	"github.com/grovetools/ausec/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractText(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteZip(t, dir, "preload-1.zip", map[string]string{
		"xml/eml-110-event-E1.xml":      "<EML>event</EML>",
		"xml/eml-230-candidates-E1.xml": "<EML>Ngā kaitono</EML>",
	})

	text, err := ExtractText(path, "xml/eml-110-event-E1.xml")
	require.NoError(t, err)
	assert.Equal(t, "<EML>event</EML>", text)

	text, err = ExtractText(path, "xml/eml-230-candidates-E1.xml")
	require.NoError(t, err)
	assert.Equal(t, "<EML>Ngā kaitono</EML>", text, "multi-byte text round-trips")
}

func TestExtractTextMissingMember(t *testing.T) {
	path := testutil.WriteZip(t, t.TempDir(), "results.zip", map[string]string{
		"xml/other.xml": "x",
	})

	_, err := ExtractText(path, "xml/eml-110-event-E1.xml")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeMemberNotFound))

	_, err = ExtractText(path, "other.xml")
	assert.True(t, errors.Is(err, errors.ErrCodeMemberNotFound), "directory prefix is part of the name")
}

func TestExtractTextInvalidUTF8(t *testing.T) {
	path := testutil.WriteZip(t, t.TempDir(), "bad.zip", map[string]string{
		"xml/x.xml": string([]byte{0xff, 0xfe, 0x00}),
	})

	_, err := ExtractText(path, "xml/x.xml")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeArchiveCorrupt))
}

func TestExtractTextNotAZip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.zip")
	require.NoError(t, os.WriteFile(path, []byte("truncated download"), 0644))

	_, err := ExtractText(path, "xml/x.xml")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeArchiveCorrupt))

	_, err = ExtractText(filepath.Join(t.TempDir(), "missing.zip"), "xml/x.xml")
	assert.True(t, errors.Is(err, errors.ErrCodeArchiveCorrupt))
}

func TestMembers(t *testing.T) {
	path := testutil.WriteZip(t, t.TempDir(), "results.zip", map[string]string{
		"xml/b.xml": "b",
		"xml/a.xml": "a",
	})

	names, err := Members(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"xml/a.xml", "xml/b.xml"}, names)
}
