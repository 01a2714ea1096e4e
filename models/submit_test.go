package models_test

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-dhis2bridge/models"
)

func morbidityRow() models.MappingRow {
	return models.MappingRow{
		MappingID:         1,
		Name:              "Malaria cases (default) - default",
		SQLQuery:          "SELECT date, value FROM cases",
		Active:            true,
		DataElementID:     "DE1",
		AttributeOptionID: "AO1",
		CategoryOptionID:  "CO1",
		PeriodType:        "Monthly",
		OrgUnitID:         "OU1",
	}
}

func TestBuildDataValueSet(t *testing.T) {
	columns := []string{"date", "value"}
	rows := [][]interface{}{
		{time.Date(2023, 10, 1, 0, 0, 0, 0, time.UTC), int64(5)},
		{time.Date(2023, 11, 1, 0, 0, 0, 0, time.UTC), int64(12)},
	}

	payload, err := models.BuildDataValueSet(morbidityRow(), columns, rows, false)
	require.NoError(t, err)
	assert.False(t, payload.DryRun)
	assert.Equal(t, "AO1", payload.AttributeOptionCombo)
	require.Len(t, payload.DataValues, 2)
	assert.Equal(t, models.DataValue{
		DataElement:         "DE1",
		OrgUnit:             "OU1",
		CategoryOptionCombo: "CO1",
		Period:              "202310",
		Value:               "5",
	}, payload.DataValues[0])
	assert.Equal(t, "202311", payload.DataValues[1].Period)
	assert.Equal(t, "12", payload.DataValues[1].Value)
}

func TestBuildDataValueSetDryRun(t *testing.T) {
	payload, err := models.BuildDataValueSet(morbidityRow(), []string{"date", "value"}, nil, true)
	require.NoError(t, err)
	assert.True(t, payload.DryRun)
	assert.Empty(t, payload.DataValues)
}

func TestBuildDataValueSetColumnOrder(t *testing.T) {
	// the query may return the columns in any order, alongside extras
	columns := []string{"extra", "value", "date"}
	rows := [][]interface{}{
		{"ignored", []byte("7"), time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC)},
	}

	payload, err := models.BuildDataValueSet(morbidityRow(), columns, rows, false)
	require.NoError(t, err)
	require.Len(t, payload.DataValues, 1)
	assert.Equal(t, "202402", payload.DataValues[0].Period)
	assert.Equal(t, "7", payload.DataValues[0].Value)
}

func TestBuildDataValueSetMissingColumns(t *testing.T) {
	var mappingErr *models.InvalidMappingError

	_, err := models.BuildDataValueSet(morbidityRow(), []string{"value"}, nil, false)
	assert.True(t, errors.As(err, &mappingErr))

	_, err = models.BuildDataValueSet(morbidityRow(), []string{"date"}, nil, false)
	assert.True(t, errors.As(err, &mappingErr))
}

func TestBuildDataValueSetMissingOrgUnit(t *testing.T) {
	row := morbidityRow()
	row.OrgUnitID = ""

	_, err := models.BuildDataValueSet(row, []string{"date", "value"}, nil, false)
	var mappingErr *models.InvalidMappingError
	require.True(t, errors.As(err, &mappingErr))
	assert.Contains(t, mappingErr.Reason, "organisation unit")
}

func TestBuildDataValueSetNonTimestampDate(t *testing.T) {
	rows := [][]interface{}{{"2023-10-01", int64(5)}}

	_, err := models.BuildDataValueSet(morbidityRow(), []string{"date", "value"}, rows, false)
	var mappingErr *models.InvalidMappingError
	assert.True(t, errors.As(err, &mappingErr))
}

func TestSubmitSkipsInertMappings(t *testing.T) {
	// an inert mapping must be skipped before any database or network
	// access happens, hence the nil store and client
	submitter := models.NewSubmitter(nil, nil)

	row := morbidityRow()
	row.SQLQuery = "   "
	submitted, skipped, err := submitter.Submit(row, false)
	assert.NoError(t, err)
	assert.True(t, skipped)
	assert.Zero(t, submitted)

	row = morbidityRow()
	row.Active = false
	submitted, skipped, err = submitter.Submit(row, false)
	assert.NoError(t, err)
	assert.True(t, skipped)
	assert.Zero(t, submitted)
}

func TestSubmitReportFailed(t *testing.T) {
	r := models.SubmitReport{Outcomes: []models.MappingOutcome{
		{Name: "ok", Submitted: 3},
		{Name: "broken", Error: "query failed"},
		{Name: "inert", Skipped: true},
	}}
	failed := r.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, "broken", failed[0].Name)
}
