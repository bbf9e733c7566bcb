// internal/listcache/cache_test.go
package listcache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestCache(t *testing.T) (*Cache, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "list.txt")
	c, err := New(path, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c, path
}

func TestMissingFileCreatedEmpty(t *testing.T) {
	c, path := newTestCache(t)

	assert.Equal(t, 0, c.Len())
	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestAddWithNote(t *testing.T) {
	c, path := newTestCache(t)

	require.NoError(t, c.Add("A", "scam"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "A,\"scam\"\n", string(raw))
	assert.True(t, c.Contains("A"))

	// A second add of the same address leaves the file untouched.
	require.NoError(t, c.Add("A", ""))
	raw, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "A,\"scam\"\n", string(raw))
}

func TestRoundTrip(t *testing.T) {
	c, path := newTestCache(t)

	require.NoError(t, c.Add("A", "scam"))
	require.NoError(t, c.Add("B", ""))
	require.NoError(t, c.Add("C", "rug, confirmed"))

	reloaded, err := New(path, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer reloaded.Close()

	assert.Equal(t, 3, reloaded.Len())
	for _, addr := range []string{"A", "B", "C"} {
		assert.True(t, reloaded.Contains(addr), addr)
	}

	note, ok := reloaded.Note("A")
	require.True(t, ok)
	assert.Equal(t, "scam", note)

	note, ok = reloaded.Note("C")
	require.True(t, ok)
	assert.Equal(t, "rug, confirmed", note)
}

func TestInitParsesHandWrittenLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "list.txt")
	content := "Mint1\n\n  Mint2  \nMint3,plain note\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	c, err := New(path, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, 3, c.Len())
	assert.True(t, c.Contains("Mint1"))
	assert.True(t, c.Contains("Mint2"))
	assert.True(t, c.Contains("Mint3"))

	note, _ := c.Note("Mint3")
	assert.Equal(t, "plain note", note)
}

func TestReloadReplacesSnapshot(t *testing.T) {
	c, path := newTestCache(t)
	require.NoError(t, c.Add("A", ""))

	require.NoError(t, os.WriteFile(path, []byte("B\n"), 0o644))
	require.NoError(t, c.Init())

	assert.False(t, c.Contains("A"))
	assert.True(t, c.Contains("B"))
}
