package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rbb-data/cpisync/cpi"
)

func writeList(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "warenkorb_ids.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadTrimsAndDeduplicates(t *testing.T) {
	path := writeList(t, "CC13-0111101100\n  CC13-0111102100 \r\n\nCC13-0111101100\nCC13-01\n")

	ids, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []cpi.ItemID{"CC13-0111101100", "CC13-0111102100", "CC13-01"}, ids)
}

func TestLoadWithoutTrailingNewline(t *testing.T) {
	ids, err := Load(writeList(t, "CC13-01\nCC13-02"))
	require.NoError(t, err)
	assert.Len(t, ids, 2)
}

func TestLoadEmptyList(t *testing.T) {
	_, err := Load(writeList(t, "\n  \n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open item list")
}

func TestJoin(t *testing.T) {
	assert.Equal(t, "CC13-01,CC13-02", Join([]cpi.ItemID{"CC13-01", "CC13-02"}))
	assert.Equal(t, "", Join(nil))
}
