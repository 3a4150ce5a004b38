package nutrients_test

import (
	"testing"

	"github.com/sagarpatil/nutriscope/internal/nutrients"
	"github.com/sagarpatil/nutriscope/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	c, err := nutrients.Load()

	require.NoError(t, err)
	assert.NotEmpty(t, c.Version)
	assert.Greater(t, c.Len(), 0)
	assert.Len(t, c.Keys(), c.Len())
}

func TestCatalog_Lookup(t *testing.T) {
	c, err := nutrients.Load()
	require.NoError(t, err)

	entry, ok := c.Lookup("protein")
	require.True(t, ok)
	assert.Equal(t, "protein", entry.Key)
	assert.NotEmpty(t, entry.FullName)
	assert.NotEmpty(t, entry.Unit)

	_, ok = c.Lookup("unobtainium")
	assert.False(t, ok)
}

func TestCatalog_Allowed(t *testing.T) {
	c, err := nutrients.Load()
	require.NoError(t, err)

	assert.True(t, c.Allowed("sodium"))
	assert.False(t, c.Allowed(""))
	assert.False(t, c.Allowed("Protein")) // keys are lowercase
}

func TestCatalog_EntriesWellFormed(t *testing.T) {
	c, err := nutrients.Load()
	require.NoError(t, err)

	for _, key := range c.Keys() {
		entry, ok := c.Lookup(key)
		require.True(t, ok)
		assert.NotEmpty(t, entry.FullName, "key %s", key)
		assert.Contains(t, []string{
			models.ImpactPositive, models.ImpactNeutral, models.ImpactNegative,
		}, entry.Impact, "key %s", key)
	}
}

func TestCatalog_KeysReturnsCopy(t *testing.T) {
	c, err := nutrients.Load()
	require.NoError(t, err)

	keys := c.Keys()
	keys[0] = "mutated"

	assert.NotEqual(t, "mutated", c.Keys()[0])
}
