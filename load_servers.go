package main

import (
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"

	"go-dhis2bridge/config"
	"go-dhis2bridge/db"
	"go-dhis2bridge/models"
)

// LoadServersFromConfigFiles upserts the servers defined by the JSON
// files in /etc/dhis2bridge/conf.d. A file that fails to parse is
// skipped, the remaining files still load.
func LoadServersFromConfigFiles(serversDirectory string) {
	entries, err := os.ReadDir(serversDirectory)
	if err != nil {
		log.WithError(err).WithField("directory", serversDirectory).Warn(
			"Could not read servers directory")
		return
	}
	dbConn := db.GetDB()
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(serversDirectory, entry.Name())
		serverJSON, err := os.ReadFile(path)
		if err != nil {
			log.WithError(err).WithField("file", path).Error("Failed to read server configuration")
			continue
		}
		srv, err := models.CreateServerFromJSON(dbConn, serverJSON)
		if err != nil {
			log.WithError(err).WithField("file", path).Error("Failed to create/update server")
			continue
		}
		models.ServerMapByName[srv.Name] = srv
		log.WithField("server", srv.Name).Info("Loaded server from configuration file")
	}
}

// LoadServers populates the in-memory server map from the database and
// then applies the conf.d definitions on top
func LoadServers() {
	dbConn := db.GetDB()
	for _, srv := range models.ListServers(dbConn) {
		models.ServerMapByName[srv.Name] = srv
	}
	LoadServersFromConfigFiles(config.BridgeConf.Server.ServersDirectory)
}
