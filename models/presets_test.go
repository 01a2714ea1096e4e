package models_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-dhis2bridge/models"
)

func TestPresetRender(t *testing.T) {
	preset := models.PresetQuery{Table: "admissions", DateColumn: "admitted_at"}

	query, err := preset.Render(models.PeriodMonthly)
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT date_trunc('month', admitted_at) AS date, count(*) AS value "+
			"FROM admissions WHERE admitted_at IS NOT NULL GROUP BY 1",
		query)
}

func TestPresetRenderWithCondition(t *testing.T) {
	preset := models.PresetQuery{
		Table:      "encounters",
		DateColumn: "seen_at",
		Condition:  "diagnosis = 'malaria'",
	}

	query, err := preset.Render(models.PeriodWeekly)
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT date_trunc('week', seen_at) AS date, count(*) AS value "+
			"FROM encounters WHERE (diagnosis = 'malaria') AND seen_at IS NOT NULL GROUP BY 1",
		query)
}

func TestPresetRenderValidation(t *testing.T) {
	var mappingErr *models.InvalidMappingError

	preset := models.PresetQuery{DateColumn: "seen_at"}
	_, err := preset.Render(models.PeriodDaily)
	assert.True(t, errors.As(err, &mappingErr))

	preset = models.PresetQuery{Table: "encounters"}
	_, err = preset.Render(models.PeriodDaily)
	assert.True(t, errors.As(err, &mappingErr))

	preset = models.PresetQuery{Table: "encounters", DateColumn: "seen_at"}
	_, err = preset.Render(models.PeriodType("BiWeekly"))
	assert.ErrorIs(t, err, models.ErrUnsupportedPeriodType)
}

func TestRequireResultColumns(t *testing.T) {
	assert.NoError(t, models.RequireResultColumns([]string{"date", "value"}))
	assert.NoError(t, models.RequireResultColumns([]string{"value", "extra", "date"}))

	var mappingErr *models.InvalidMappingError
	assert.True(t, errors.As(models.RequireResultColumns([]string{"date"}), &mappingErr))
	assert.True(t, errors.As(models.RequireResultColumns(nil), &mappingErr))
}
