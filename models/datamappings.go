package models

import (
	"time"

	"github.com/jmoiron/sqlx"
)

// DataMapping binds one reporting cell of a data element, the
// (attribute option, category option) pair, to a local SQL query whose
// result is submitted as data values. The query and active flag are the
// only locally owned configuration in the tree and survive sync passes
// as long as the cell still exists.
type DataMapping struct {
	ID                 int64     `db:"id" json:"id"`
	DataElementRef     int64     `db:"data_element" json:"dataElement"`
	AttributeOptionRef int64     `db:"attribute_option" json:"attributeOption"`
	CategoryOptionRef  int64     `db:"category_option" json:"categoryOption"`
	Name               string    `db:"name" json:"name"`
	SQLQuery           string    `db:"sql_query" json:"sqlQuery"`
	Active             bool      `db:"active" json:"active"`
	Created            time.Time `db:"created" json:"created"`
	Updated            time.Time `db:"updated" json:"updated"`
}

const createDataMappingSQL = `INSERT INTO data_mappings
	(data_element, attribute_option, category_option, name, sql_query, active, created, updated)
	VALUES (:data_element, :attribute_option, :category_option, :name, :sql_query, :active, now(), now())
	RETURNING id`

// CreateDataMapping inserts a data mapping row
func CreateDataMapping(db *sqlx.DB, mapping DataMapping) (DataMapping, error) {
	rows, err := db.NamedQuery(createDataMappingSQL, mapping)
	if err != nil {
		return mapping, err
	}
	for rows.Next() {
		_ = rows.Scan(&mapping.ID)
	}
	_ = rows.Close()
	return mapping, nil
}

// GetDataMapping retrieves a data mapping by ID
func GetDataMapping(db *sqlx.DB, id int64) (DataMapping, error) {
	var mapping DataMapping
	err := db.Get(&mapping, `SELECT * FROM data_mappings WHERE id = $1`, id)
	return mapping, err
}

// MappingsForElement returns the data mappings of a data element
func MappingsForElement(db *sqlx.DB, dataElementRef int64) ([]DataMapping, error) {
	var mappings []DataMapping
	err := db.Select(&mappings,
		`SELECT * FROM data_mappings WHERE data_element = $1 ORDER BY id`, dataElementRef)
	return mappings, err
}

// UpdateName refreshes the generated display name
func (m *DataMapping) UpdateName(db *sqlx.DB, name string) error {
	m.Name = name
	_, err := db.NamedExec(
		`UPDATE data_mappings SET (name, updated) = (:name, now()) WHERE id = :id`, m)
	return err
}

// UpdateConfig stores the user supplied query and active flag
func (m *DataMapping) UpdateConfig(db *sqlx.DB, sqlQuery string, active bool) error {
	m.SQLQuery = sqlQuery
	m.Active = active
	_, err := db.NamedExec(`UPDATE data_mappings SET
		(sql_query, active, updated) = (:sql_query, :active, now()) WHERE id = :id`, m)
	return err
}

// Delete removes the data mapping row
func (m *DataMapping) Delete(db *sqlx.DB) error {
	_, err := db.Exec(`DELETE FROM data_mappings WHERE id = $1`, m.ID)
	return err
}

// MappingRow is a data mapping joined with everything needed to build
// its data value set: external ids of the element, its cell options and
// the owning data set's org unit, plus the data set's period type.
type MappingRow struct {
	MappingID         int64  `db:"mapping_id" json:"mappingID"`
	Name              string `db:"name" json:"name"`
	SQLQuery          string `db:"sql_query" json:"sqlQuery"`
	Active            bool   `db:"active" json:"active"`
	DataElementID     string `db:"data_element_id" json:"dataElementID"`
	AttributeOptionID string `db:"attribute_option_id" json:"attributeOptionID"`
	CategoryOptionID  string `db:"category_option_id" json:"categoryOptionID"`
	PeriodType        string `db:"period_type" json:"periodType"`
	OrgUnitID         string `db:"org_unit_id" json:"orgUnitID"`
}

const mappingRowsSQL = `
SELECT m.id AS mapping_id, m.name, m.sql_query, m.active,
	e.data_element_id,
	ao.category_option_combo_id AS attribute_option_id,
	co.category_option_combo_id AS category_option_id,
	s.period_type,
	COALESCE(ou.org_unit_id, '') AS org_unit_id
FROM data_mappings m
	JOIN data_elements e ON e.id = m.data_element
	JOIN data_sets s ON s.id = e.data_set
	JOIN category_option_combos ao ON ao.id = m.attribute_option
	JOIN category_option_combos co ON co.id = m.category_option
	LEFT JOIN org_units ou ON ou.id = s.org_unit
WHERE s.server_id = $1
ORDER BY m.id`

// MappingRowsForServer returns every mapping reachable from a server,
// walking server, data set, data element, mapping
func MappingRowsForServer(db *sqlx.DB, serverID int64) ([]MappingRow, error) {
	var mappings []MappingRow
	err := db.Select(&mappings, mappingRowsSQL, serverID)
	return mappings, err
}

// MappingRowForID returns the joined submission view of one mapping
func MappingRowForID(db *sqlx.DB, mappingID int64) (MappingRow, error) {
	var row MappingRow
	err := db.Get(&row, `
SELECT m.id AS mapping_id, m.name, m.sql_query, m.active,
	e.data_element_id,
	ao.category_option_combo_id AS attribute_option_id,
	co.category_option_combo_id AS category_option_id,
	s.period_type,
	COALESCE(ou.org_unit_id, '') AS org_unit_id
FROM data_mappings m
	JOIN data_elements e ON e.id = m.data_element
	JOIN data_sets s ON s.id = e.data_set
	JOIN category_option_combos ao ON ao.id = m.attribute_option
	JOIN category_option_combos co ON co.id = m.category_option
	LEFT JOIN org_units ou ON ou.id = s.org_unit
WHERE m.id = $1`, mappingID)
	return row, err
}
