package tempfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHash(t *testing.T) {
	assert.Equal(t, Hash("GCSA + LCP"), Hash("GCSA + LCP"))
	assert.NotEqual(t, Hash("XG"), Hash("GBWT"))
	// usable as a filename regardless of the identifier's characters
	assert.NotContains(t, Hash("VG + Variant Paths"), " ")
	assert.NotContains(t, Hash("a/b"), "/")
}

func TestDir(t *testing.T) {
	custom := t.TempDir()
	SetDir(custom)
	t.Cleanup(func() { SetDir("") })

	assert.Equal(t, custom, Dir())

	SetDir("")
	created := Dir()
	require.NotEmpty(t, created)
	assert.DirExists(t, created)
	// stable across calls
	assert.Equal(t, created, Dir())

	Cleanup()
	assert.NoDirExists(t, created)
}
