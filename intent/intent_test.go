package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"muadil/models"
)

func TestParseFullQuery(t *testing.T) {
	want := Parse("1500-3000 TL kablosuz 60g altı mouse")

	require.NotNil(t, want.BudgetMin)
	require.NotNil(t, want.BudgetMax)
	assert.Equal(t, 1500.0, *want.BudgetMin)
	assert.Equal(t, 3000.0, *want.BudgetMax)

	assert.Equal(t, models.ConnectionWireless, want.Connection)

	require.NotNil(t, want.WeightMaxG)
	assert.Equal(t, 60, *want.WeightMaxG)
	assert.Nil(t, want.WeightG)
	assert.Nil(t, want.WeightMinG)
}

func TestParseReversedBudget(t *testing.T) {
	want := Parse("3000-1500 tl fare")
	require.NotNil(t, want.BudgetMin)
	assert.Equal(t, 1500.0, *want.BudgetMin)
	assert.Equal(t, 3000.0, *want.BudgetMax)
}

func TestParseDPI(t *testing.T) {
	want := Parse("16000 dpi oyuncu mouse")
	require.NotNil(t, want.DPI)
	assert.Equal(t, 16000, *want.DPI)
}

func TestParseWeightVariants(t *testing.T) {
	exact := Parse("60g mouse")
	require.NotNil(t, exact.WeightG)
	assert.Equal(t, 60, *exact.WeightG)

	atLeast := Parse("80g üstü mouse")
	require.NotNil(t, atLeast.WeightMinG)
	assert.Equal(t, 80, *atLeast.WeightMinG)

	// out of the plausible gram range, must be ignored
	assert.Nil(t, Parse("500g mouse").WeightG)
}

func TestParseWired(t *testing.T) {
	want := Parse("kablolu klavye")
	assert.Equal(t, models.ConnectionWired, want.Connection)
}

func TestParseEmptyQuery(t *testing.T) {
	want := Parse("mouse")
	assert.Nil(t, want.BudgetMin)
	assert.Nil(t, want.DPI)
	assert.Nil(t, want.WeightG)
	assert.Empty(t, want.Connection)
}

func TestWirelessWinsOverWired(t *testing.T) {
	// "kablosuz" beats a stray wired token
	want := Parse("kablosuz wired mouse")
	assert.Equal(t, models.ConnectionWireless, want.Connection)
}

func TestSiteQueryVariants(t *testing.T) {
	variants := SiteQueryVariants("1500-3000 TL kablosuz mouse", models.CategoryMouse)
	assert.Equal(t, []string{"kablosuz mouse", "oyuncu mouse", "kablosuz fare", "oyuncu fare"}, variants)

	for _, v := range variants {
		assert.NotContains(t, v, "1500")
		assert.NotContains(t, v, "tl")
	}
}

func TestSiteQueryVariantsKeyboard(t *testing.T) {
	variants := SiteQueryVariants("mekanik klavye", models.CategoryKeyboard)
	assert.Equal(t, []string{"klavye", "oyuncu klavye"}, variants)
}
