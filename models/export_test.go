package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportKey(t *testing.T) {
	assert.Equal(t, "DE1/AO1/CO1", exportKey("DE1", "AO1", "CO1"))
	assert.NotEqual(t, exportKey("DE1", "AO1", "CO1"), exportKey("DE1", "CO1", "AO1"))
}

func TestMappingExportFileRoundTrip(t *testing.T) {
	file := MappingExportFile{DataMappings: []MappingExport{{
		DataElementID:     "DE1",
		AttributeOptionID: "AO1",
		CategoryOptionID:  "CO1",
		Name:              "Malaria cases (Public) - Under 5",
		SQLQuery:          "SELECT date, value FROM cases",
		Active:            true,
	}}}

	raw, err := json.Marshal(file)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"data_mappings"`)
	assert.Contains(t, string(raw), `"mapping_active":true`)

	var decoded MappingExportFile
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, file, decoded)
}
