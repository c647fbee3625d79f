package patterns

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmbeddedTable(t *testing.T) {
	lib, err := Load()
	require.NoError(t, err)
	require.NotEmpty(t, lib.IDs())

	def, ok := lib.Get("buy_home")
	require.True(t, ok)
	assert.Equal(t, "property", def.Theme)
	assert.Equal(t, []string{"propertyPrice", "depositAmount", "purchaseDate"}, def.Params)

	assert.Equal(t, "family", lib.Theme("marriage"))
	assert.Equal(t, []string{"totalCost"}, lib.Params("medical_emergency"))
}

func TestLoadRejectsMalformedTable(t *testing.T) {
	_, err := loadFrom([]byte(`{not json`))
	require.Error(t, err)
}

func TestUnknownScenarioLookups(t *testing.T) {
	lib, err := Load()
	require.NoError(t, err)

	_, ok := lib.Get("no_such_scenario")
	assert.False(t, ok)
	assert.Nil(t, lib.Params("no_such_scenario"))
	assert.Empty(t, lib.Theme("no_such_scenario"))
}

func TestRelatedStaysWithinTheme(t *testing.T) {
	lib, err := Load()
	require.NoError(t, err)

	related := lib.Related("childbirth", 3)
	require.NotEmpty(t, related)
	assert.LessOrEqual(t, len(related), 3)
	for _, id := range related {
		assert.NotEqual(t, "childbirth", id)
		assert.Equal(t, "family", lib.Theme(id))
	}
}

func TestIDsAreSorted(t *testing.T) {
	lib, err := Load()
	require.NoError(t, err)

	ids := lib.IDs()
	for i := 1; i < len(ids); i++ {
		assert.Less(t, ids[i-1], ids[i])
	}
}
