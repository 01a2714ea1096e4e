package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-dhis2bridge/models"
)

func TestCartesianPairs(t *testing.T) {
	attributes := []models.CategoryOptionCombo{
		{ID: 1, Name: "Public"},
		{ID: 2, Name: "Private"},
	}
	categories := []models.CategoryOptionCombo{
		{ID: 3, Name: "Under 5"},
		{ID: 4, Name: "5 and above"},
		{ID: 5, Name: "Unknown age"},
	}

	pairs := models.CartesianPairs(attributes, categories)
	require.Len(t, pairs, 6)
	assert.Equal(t, "Public", pairs[0].Attribute.Name)
	assert.Equal(t, "Under 5", pairs[0].Category.Name)
	assert.Equal(t, "Private", pairs[5].Attribute.Name)
	assert.Equal(t, "Unknown age", pairs[5].Category.Name)

	// every cell appears exactly once
	seen := map[[2]int64]bool{}
	for _, pair := range pairs {
		key := [2]int64{pair.Attribute.ID, pair.Category.ID}
		assert.False(t, seen[key])
		seen[key] = true
	}
}

func TestCartesianPairsEmptySide(t *testing.T) {
	assert.Empty(t, models.CartesianPairs(nil, []models.CategoryOptionCombo{{ID: 1}}))
	assert.Empty(t, models.CartesianPairs([]models.CategoryOptionCombo{{ID: 1}}, nil))
}

func TestMappingName(t *testing.T) {
	assert.Equal(t, "Malaria cases (Public) - Under 5",
		models.MappingName("Malaria cases", "Public", "Under 5"))
}
