package badwords

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAndContains(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "words.txt")
	require.NoError(t, os.WriteFile(file, []byte("scam\nFraud\n\n  spam  \n"), 0o644))

	require.NoError(t, Load(file))

	assert.True(t, Contains("this is a SCAM listing"))
	assert.True(t, Contains("total fraud!"))
	assert.True(t, Contains("spam,spam,spam"))
	assert.False(t, Contains("a perfectly nice request"))
	// substrings of blocked words do not match
	assert.False(t, Contains("scampi for dinner please"))
}

func TestContainsWithEmptyList(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "empty.txt")
	require.NoError(t, os.WriteFile(file, []byte(""), 0o644))
	require.NoError(t, Load(file))

	assert.False(t, Contains("anything at all"))
}

func TestLoadMissingFile(t *testing.T) {
	assert.Error(t, Load(filepath.Join(t.TempDir(), "missing.txt")))
}
