package models

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	log "github.com/sirupsen/logrus"

	"go-dhis2bridge/utils"
	"go-dhis2bridge/utils/dbutils"
)

// ServerMapByName maps server names to the servers loaded at startup
var ServerMapByName = make(map[string]Server)

// NullTime is a nullable timestamp column
type NullTime struct {
	sql.NullTime
}

// MarshalJSON Implement the json.Marshaller interface
func (nt NullTime) MarshalJSON() ([]byte, error) {
	if !nt.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(nt.Time)
}

// UnmarshalJSON Implement the json.Unmarshaler interface
func (nt *NullTime) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		nt.Valid = false
		return nil
	}
	err := json.Unmarshal(data, &nt.Time)
	nt.Valid = err == nil
	return err
}

// Server is a remote DHIS2 server whose metadata tree is mirrored locally
type Server struct {
	ID        int64     `db:"id" json:"id"`
	UID       string    `db:"uid" json:"uid"`
	Name      string    `db:"name" json:"name"`
	URL       string    `db:"url" json:"url"`
	AuthToken string    `db:"auth_token" json:"-"`
	SyncTime  NullTime  `db:"sync_time" json:"syncTime"`
	Validated bool      `db:"validated" json:"validated"`
	Created   time.Time `db:"created" json:"created"`
	Updated   time.Time `db:"updated" json:"updated"`
}

const createServerSQL = `INSERT INTO servers (uid, name, url, auth_token, created, updated)
	VALUES (:uid, :name, :url, :auth_token, now(), now()) RETURNING id`

const updateServerSQL = `UPDATE servers SET
	(url, auth_token, updated) = (:url, :auth_token, now()) WHERE name = :name`

// CreateServer inserts a server, or refreshes url and token when a
// server with the same name already exists
func CreateServer(db *sqlx.DB, server Server) (Server, error) {
	if server.UID == "" {
		server.UID = utils.GetUID()
	}
	rows, err := db.NamedQuery(createServerSQL, server)
	if err != nil {
		if dbutils.IsUniqueViolation(err) {
			if _, err := db.NamedExec(updateServerSQL, server); err != nil {
				return server, err
			}
			return GetServerByName(db, server.Name)
		}
		return server, err
	}
	for rows.Next() {
		_ = rows.Scan(&server.ID)
	}
	_ = rows.Close()
	return server, nil
}

// ServerInput is the writable subset of a server definition, used both
// by the conf.d files and the create endpoint. The token never appears
// in responses, so the Server struct itself cannot read it back in.
type ServerInput struct {
	Name      string `json:"name"`
	URL       string `json:"url"`
	AuthToken string `json:"auth_token"`
}

// CreateServerFromJSON creates/updates a server from a JSON definition
func CreateServerFromJSON(db *sqlx.DB, serverJSON []byte) (Server, error) {
	var input ServerInput
	if err := json.Unmarshal(serverJSON, &input); err != nil {
		return Server{}, err
	}
	return CreateServer(db, Server{
		Name:      input.Name,
		URL:       input.URL,
		AuthToken: input.AuthToken,
	})
}

// GetServer retrieves a server by ID
func GetServer(db *sqlx.DB, id int64) (Server, error) {
	var server Server
	err := db.Get(&server, `SELECT * FROM servers WHERE id = $1`, id)
	return server, err
}

// GetServerByName retrieves a server by name
func GetServerByName(db *sqlx.DB, name string) (Server, error) {
	var server Server
	err := db.Get(&server, `SELECT * FROM servers WHERE name = $1`, name)
	return server, err
}

// ListServers returns all configured servers
func ListServers(db *sqlx.DB) []Server {
	var servers []Server
	err := db.Select(&servers, `SELECT * FROM servers ORDER BY id`)
	if err != nil {
		log.WithError(err).Error("Failed to list servers")
		return []Server{}
	}
	return servers
}

// SetSyncStatus records the outcome of a sync pass on the server row
func (s *Server) SetSyncStatus(db *sqlx.DB, validated bool) {
	s.Validated = validated
	s.SyncTime = NullTime{sql.NullTime{Time: time.Now(), Valid: true}}
	_, err := db.NamedExec(`UPDATE servers SET
		(sync_time, validated, updated) = (:sync_time, :validated, now()) WHERE id = :id`, s)
	if err != nil {
		log.WithError(err).WithField("server", s.ID).Error("Failed to update server sync status")
	}
}

// DeleteServer deletes a server and, via the schema cascade, its whole
// mirrored tree
func DeleteServer(db *sqlx.DB, id int64) error {
	_, err := db.Exec(`DELETE FROM servers WHERE id = $1`, id)
	return err
}
