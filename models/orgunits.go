package models

import (
	"time"

	"github.com/jmoiron/sqlx"
)

// OrgUnit is the local mirror of a DHIS2 organisation unit
type OrgUnit struct {
	ID        int64     `db:"id" json:"id"`
	ServerID  int64     `db:"server_id" json:"serverID"`
	OrgUnitID string    `db:"org_unit_id" json:"orgUnitID"`
	Name      string    `db:"name" json:"name"`
	Created   time.Time `db:"created" json:"created"`
	Updated   time.Time `db:"updated" json:"updated"`
}

const createOrgUnitSQL = `INSERT INTO org_units (server_id, org_unit_id, name, created, updated)
	VALUES (:server_id, :org_unit_id, :name, now(), now()) RETURNING id`

// CreateOrgUnit inserts an organisation unit mirror row
func CreateOrgUnit(db *sqlx.DB, orgUnit OrgUnit) (OrgUnit, error) {
	rows, err := db.NamedQuery(createOrgUnitSQL, orgUnit)
	if err != nil {
		return orgUnit, err
	}
	for rows.Next() {
		_ = rows.Scan(&orgUnit.ID)
	}
	_ = rows.Close()
	return orgUnit, nil
}

// GetOrgUnit retrieves an organisation unit mirror row by local id
func GetOrgUnit(db *sqlx.DB, id int64) (OrgUnit, error) {
	var orgUnit OrgUnit
	err := db.Get(&orgUnit, `SELECT * FROM org_units WHERE id = $1`, id)
	return orgUnit, err
}

// OrgUnitsForServer returns the organisation units mirrored for a server
func OrgUnitsForServer(db *sqlx.DB, serverID int64) ([]OrgUnit, error) {
	var orgUnits []OrgUnit
	err := db.Select(&orgUnits,
		`SELECT * FROM org_units WHERE server_id = $1 ORDER BY id`, serverID)
	return orgUnits, err
}

// UpdateName refreshes the display name from the remote detail
func (o *OrgUnit) UpdateName(db *sqlx.DB, name string) error {
	o.Name = name
	_, err := db.NamedExec(
		`UPDATE org_units SET (name, updated) = (:name, now()) WHERE id = :id`, o)
	return err
}

// Delete removes the organisation unit mirror row
func (o *OrgUnit) Delete(db *sqlx.DB) error {
	_, err := db.Exec(`DELETE FROM org_units WHERE id = $1`, o.ID)
	return err
}
