package models

import (
	"time"

	"github.com/jmoiron/sqlx"

	"go-dhis2bridge/utils/dbutils"
)

// DataSet is the local mirror of a DHIS2 data set. OrgUnitRef is the
// locally chosen organisation unit data values are reported against, it
// is the only attribute of the mirror tree not owned by the remote.
type DataSet struct {
	ID               int64       `db:"id" json:"id"`
	ServerID         int64       `db:"server_id" json:"serverID"`
	DataSetID        string      `db:"data_set_id" json:"dataSetID"`
	Name             string      `db:"name" json:"name"`
	PeriodType       string      `db:"period_type" json:"periodType"`
	OrgUnitRef       dbutils.Int `db:"org_unit" json:"orgUnit,omitempty"`
	CategoryComboRef dbutils.Int `db:"category_combo" json:"categoryCombo,omitempty"`
	Created          time.Time   `db:"created" json:"created"`
	Updated          time.Time   `db:"updated" json:"updated"`
}

const createDataSetSQL = `INSERT INTO data_sets
	(server_id, data_set_id, name, period_type, category_combo, created, updated)
	VALUES (:server_id, :data_set_id, :name, :period_type, :category_combo, now(), now())
	RETURNING id`

// CreateDataSet inserts a data set mirror row
func CreateDataSet(db *sqlx.DB, dataSet DataSet) (DataSet, error) {
	rows, err := db.NamedQuery(createDataSetSQL, dataSet)
	if err != nil {
		return dataSet, err
	}
	for rows.Next() {
		_ = rows.Scan(&dataSet.ID)
	}
	_ = rows.Close()
	return dataSet, nil
}

// GetDataSet retrieves a data set mirror row by local id
func GetDataSet(db *sqlx.DB, id int64) (DataSet, error) {
	var dataSet DataSet
	err := db.Get(&dataSet, `SELECT * FROM data_sets WHERE id = $1`, id)
	return dataSet, err
}

// DataSetsForServer returns the data sets mirrored for a server
func DataSetsForServer(db *sqlx.DB, serverID int64) ([]DataSet, error) {
	var dataSets []DataSet
	err := db.Select(&dataSets,
		`SELECT * FROM data_sets WHERE server_id = $1 ORDER BY id`, serverID)
	return dataSets, err
}

// Update refreshes name, period type and the category combo link from
// the remote detail
func (d *DataSet) Update(db *sqlx.DB, name, periodType string, categoryComboRef int64) error {
	d.Name = name
	d.PeriodType = periodType
	d.CategoryComboRef = dbutils.Int(categoryComboRef)
	_, err := db.NamedExec(`UPDATE data_sets SET
		(name, period_type, category_combo, updated) = (:name, :period_type, :category_combo, now())
		WHERE id = :id`, d)
	return err
}

// SetOrgUnit links the data set to a locally mirrored organisation unit
func (d *DataSet) SetOrgUnit(db *sqlx.DB, orgUnitRef int64) error {
	d.OrgUnitRef = dbutils.Int(orgUnitRef)
	_, err := db.NamedExec(
		`UPDATE data_sets SET (org_unit, updated) = (:org_unit, now()) WHERE id = :id`, d)
	return err
}

// Delete removes the data set and cascades to its data elements
func (d *DataSet) Delete(db *sqlx.DB) error {
	_, err := db.Exec(`DELETE FROM data_sets WHERE id = $1`, d.ID)
	return err
}
