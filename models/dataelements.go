package models

import (
	"time"

	"github.com/jmoiron/sqlx"
)

// DataElement is the local mirror of a DHIS2 data element, owned by its
// data set
type DataElement struct {
	ID               int64     `db:"id" json:"id"`
	DataSetRef       int64     `db:"data_set" json:"dataSet"`
	DataElementID    string    `db:"data_element_id" json:"dataElementID"`
	Name             string    `db:"name" json:"name"`
	AggregationType  string    `db:"aggregation_type" json:"aggregationType"`
	ValueType        string    `db:"value_type" json:"valueType"`
	DomainType       string    `db:"domain_type" json:"domainType"`
	CategoryComboRef int64     `db:"category_combo" json:"categoryCombo"`
	Created          time.Time `db:"created" json:"created"`
	Updated          time.Time `db:"updated" json:"updated"`
}

const createDataElementSQL = `INSERT INTO data_elements
	(data_set, data_element_id, name, aggregation_type, value_type, domain_type,
		category_combo, created, updated)
	VALUES (:data_set, :data_element_id, :name, :aggregation_type, :value_type, :domain_type,
		:category_combo, now(), now())
	RETURNING id`

// CreateDataElement inserts a data element mirror row
func CreateDataElement(db *sqlx.DB, element DataElement) (DataElement, error) {
	rows, err := db.NamedQuery(createDataElementSQL, element)
	if err != nil {
		return element, err
	}
	for rows.Next() {
		_ = rows.Scan(&element.ID)
	}
	_ = rows.Close()
	return element, nil
}

// DataElementsForSet returns the data elements owned by a data set
func DataElementsForSet(db *sqlx.DB, dataSetRef int64) ([]DataElement, error) {
	var elements []DataElement
	err := db.Select(&elements,
		`SELECT * FROM data_elements WHERE data_set = $1 ORDER BY id`, dataSetRef)
	return elements, err
}

// Update refreshes the mutable attributes from the remote detail
func (e *DataElement) Update(db *sqlx.DB, detail *DataElementDetail, categoryComboRef int64) error {
	e.Name = detail.DisplayName
	e.AggregationType = detail.AggregationType
	e.ValueType = detail.ValueType
	e.DomainType = detail.DomainType
	e.CategoryComboRef = categoryComboRef
	_, err := db.NamedExec(`UPDATE data_elements SET
		(name, aggregation_type, value_type, domain_type, category_combo, updated) =
		(:name, :aggregation_type, :value_type, :domain_type, :category_combo, now())
		WHERE id = :id`, e)
	return err
}

// Delete removes the data element and cascades to its data mappings
func (e *DataElement) Delete(db *sqlx.DB) error {
	_, err := db.Exec(`DELETE FROM data_elements WHERE id = $1`, e.ID)
	return err
}
