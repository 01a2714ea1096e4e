package models

import (
	"time"

	"github.com/jmoiron/sqlx"
)

// CategoryCombo is the local mirror of a DHIS2 category combo
type CategoryCombo struct {
	ID                int64     `db:"id" json:"id"`
	ServerID          int64     `db:"server_id" json:"serverID"`
	CategoryComboID   string    `db:"category_combo_id" json:"categoryComboID"`
	Name              string    `db:"name" json:"name"`
	DataDimensionType string    `db:"data_dimension_type" json:"dataDimensionType"`
	Created           time.Time `db:"created" json:"created"`
	Updated           time.Time `db:"updated" json:"updated"`
}

// CategoryOptionCombo is the local mirror of a DHIS2 category option
// combo, owned by its category combo
type CategoryOptionCombo struct {
	ID                    int64     `db:"id" json:"id"`
	ServerID              int64     `db:"server_id" json:"serverID"`
	CategoryComboRef      int64     `db:"category_combo" json:"categoryCombo"`
	CategoryOptionComboID string    `db:"category_option_combo_id" json:"categoryOptionComboID"`
	Name                  string    `db:"name" json:"name"`
	Created               time.Time `db:"created" json:"created"`
	Updated               time.Time `db:"updated" json:"updated"`
}

const createCategoryComboSQL = `INSERT INTO category_combos
	(server_id, category_combo_id, name, data_dimension_type, created, updated)
	VALUES (:server_id, :category_combo_id, :name, :data_dimension_type, now(), now())
	RETURNING id`

// CreateCategoryCombo inserts a category combo mirror row
func CreateCategoryCombo(db *sqlx.DB, combo CategoryCombo) (CategoryCombo, error) {
	rows, err := db.NamedQuery(createCategoryComboSQL, combo)
	if err != nil {
		return combo, err
	}
	for rows.Next() {
		_ = rows.Scan(&combo.ID)
	}
	_ = rows.Close()
	return combo, nil
}

// CategoryCombosForServer returns the category combos mirrored for a server
func CategoryCombosForServer(db *sqlx.DB, serverID int64) ([]CategoryCombo, error) {
	var combos []CategoryCombo
	err := db.Select(&combos,
		`SELECT * FROM category_combos WHERE server_id = $1 ORDER BY id`, serverID)
	return combos, err
}

// GetCategoryComboByUID resolves a category combo by its external id
// within a server. Used when linking data sets and data elements, the
// combo must already have been mirrored.
func GetCategoryComboByUID(db *sqlx.DB, serverID int64, uid string) (CategoryCombo, error) {
	var combo CategoryCombo
	err := db.Get(&combo,
		`SELECT * FROM category_combos WHERE server_id = $1 AND category_combo_id = $2`,
		serverID, uid)
	return combo, err
}

// Update refreshes the mutable attributes from the remote detail
func (c *CategoryCombo) Update(db *sqlx.DB, name, dataDimensionType string) error {
	c.Name = name
	c.DataDimensionType = dataDimensionType
	_, err := db.NamedExec(`UPDATE category_combos SET
		(name, data_dimension_type, updated) = (:name, :data_dimension_type, now())
		WHERE id = :id`, c)
	return err
}

// Delete removes the category combo and cascades to its option combos
func (c *CategoryCombo) Delete(db *sqlx.DB) error {
	_, err := db.Exec(`DELETE FROM category_combos WHERE id = $1`, c.ID)
	return err
}

const createCategoryOptionComboSQL = `INSERT INTO category_option_combos
	(server_id, category_combo, category_option_combo_id, name, created, updated)
	VALUES (:server_id, :category_combo, :category_option_combo_id, :name, now(), now())
	RETURNING id`

// CreateCategoryOptionCombo inserts a category option combo mirror row
func CreateCategoryOptionCombo(db *sqlx.DB, optionCombo CategoryOptionCombo) (CategoryOptionCombo, error) {
	rows, err := db.NamedQuery(createCategoryOptionComboSQL, optionCombo)
	if err != nil {
		return optionCombo, err
	}
	for rows.Next() {
		_ = rows.Scan(&optionCombo.ID)
	}
	_ = rows.Close()
	return optionCombo, nil
}

// OptionCombosForCombo returns the option combos owned by a category combo
func OptionCombosForCombo(db *sqlx.DB, categoryComboRef int64) ([]CategoryOptionCombo, error) {
	var optionCombos []CategoryOptionCombo
	err := db.Select(&optionCombos,
		`SELECT * FROM category_option_combos WHERE category_combo = $1 ORDER BY id`,
		categoryComboRef)
	return optionCombos, err
}

// UpdateName refreshes the display name from the remote detail
func (o *CategoryOptionCombo) UpdateName(db *sqlx.DB, name string) error {
	o.Name = name
	_, err := db.NamedExec(
		`UPDATE category_option_combos SET (name, updated) = (:name, now()) WHERE id = :id`, o)
	return err
}

// Delete removes the category option combo mirror row
func (o *CategoryOptionCombo) Delete(db *sqlx.DB) error {
	_, err := db.Exec(`DELETE FROM category_option_combos WHERE id = $1`, o.ID)
	return err
}
