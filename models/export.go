package models

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"
)

// MappingExport is one data mapping in a configuration transfer file.
// The (data element, attribute option, category option) external id
// triple identifies the cell across installations.
type MappingExport struct {
	DataElementID     string `json:"data_element_id"`
	AttributeOptionID string `json:"attribute_option_id"`
	CategoryOptionID  string `json:"category_option_id"`
	Name              string `json:"name"`
	SQLQuery          string `json:"sql_query"`
	Active            bool   `json:"mapping_active"`
}

// MappingExportFile is the transfer file for a server's mapping
// configuration
type MappingExportFile struct {
	DataMappings []MappingExport `json:"data_mappings"`
}

func exportKey(dataElementID, attributeOptionID, categoryOptionID string) string {
	return fmt.Sprintf("%s/%s/%s", dataElementID, attributeOptionID, categoryOptionID)
}

// ExportMappings collects every mapping reachable from a server into a
// transfer file
func ExportMappings(db *sqlx.DB, serverID int64) (*MappingExportFile, error) {
	rows, err := MappingRowsForServer(db, serverID)
	if err != nil {
		return nil, err
	}
	mappings := lo.Map(rows, func(row MappingRow, _ int) MappingExport {
		return MappingExport{
			DataElementID:     row.DataElementID,
			AttributeOptionID: row.AttributeOptionID,
			CategoryOptionID:  row.CategoryOptionID,
			Name:              row.Name,
			SQLQuery:          row.SQLQuery,
			Active:            row.Active,
		}
	})
	return &MappingExportFile{DataMappings: mappings}, nil
}

// ImportMappings applies a transfer file to a server's mappings. Cells
// present locally get their query and active flag replaced; entries
// whose cell does not exist are reported as missing.
func ImportMappings(db *sqlx.DB, serverID int64, file *MappingExportFile) (imported []string, missing []string, err error) {
	rows, err := MappingRowsForServer(db, serverID)
	if err != nil {
		return nil, nil, err
	}
	byCell := lo.SliceToMap(rows, func(row MappingRow) (string, MappingRow) {
		return exportKey(row.DataElementID, row.AttributeOptionID, row.CategoryOptionID), row
	})
	for _, entry := range file.DataMappings {
		row, ok := byCell[exportKey(entry.DataElementID, entry.AttributeOptionID, entry.CategoryOptionID)]
		if !ok {
			missing = append(missing, entry.Name)
			continue
		}
		mapping, err := GetDataMapping(db, row.MappingID)
		if err != nil {
			return imported, missing, err
		}
		if err := mapping.UpdateConfig(db, entry.SQLQuery, entry.Active); err != nil {
			return imported, missing, err
		}
		imported = append(imported, mapping.Name)
	}
	return imported, missing, nil
}
