package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	log "github.com/sirupsen/logrus"

	"go-dhis2bridge/models"
)

// ServerController defines the server management methods
type ServerController struct{}

// CreateServer handles POST /servers
func (s *ServerController) CreateServer(c *gin.Context) {
	db := c.MustGet("dbConn").(*sqlx.DB)

	var input models.ServerInput
	if err := c.BindJSON(&input); err != nil {
		log.WithError(err).Error("Error reading server object from POST body")
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid server definition"})
		return
	}
	srv, err := models.CreateServer(db, models.Server{
		Name:      input.Name,
		URL:       input.URL,
		AuthToken: input.AuthToken,
	})
	if err != nil {
		log.WithError(err).Error("Failed to create server")
		c.JSON(http.StatusConflict, gin.H{
			"message":  "Failed to create server",
			"conflict": err.Error(),
		})
		return
	}
	models.ServerMapByName[srv.Name] = srv
	c.JSON(http.StatusOK, srv)
}

// Servers handles GET /servers
func (s *ServerController) Servers(c *gin.Context) {
	db := c.MustGet("dbConn").(*sqlx.DB)
	c.JSON(http.StatusOK, models.ListServers(db))
}

func serverFromParam(c *gin.Context) (models.Server, bool) {
	db := c.MustGet("dbConn").(*sqlx.DB)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid server id"})
		return models.Server{}, false
	}
	server, err := models.GetServer(db, id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Server not found"})
		return models.Server{}, false
	}
	return server, true
}

// SyncServer handles POST /servers/:id/sync and runs one full
// reconciliation pass against the remote tree
func (s *ServerController) SyncServer(c *gin.Context) {
	db := c.MustGet("dbConn").(*sqlx.DB)
	server, ok := serverFromParam(c)
	if !ok {
		return
	}
	client, err := server.NewClient()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	if err := models.NewSyncer(db, client).SyncServer(&server); err != nil {
		log.WithError(err).WithField("server", server.Name).Error("Sync failed")
		c.JSON(http.StatusBadGateway, gin.H{
			"message": "Sync failed",
			"error":   err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":   "Sync completed",
		"syncTime":  server.SyncTime,
		"validated": server.Validated,
	})
}

// SubmitServer handles POST /servers/:id/submit and submits every
// active mapping of the server
func (s *ServerController) SubmitServer(c *gin.Context) {
	db := c.MustGet("dbConn").(*sqlx.DB)
	server, ok := serverFromParam(c)
	if !ok {
		return
	}
	client, err := server.NewClient()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	dryRun := c.DefaultQuery("dryRun", "false") == "true"
	report := models.NewSubmitter(db, client).SubmitAll(&server, dryRun)
	c.JSON(http.StatusOK, report)
}

// SubmissionLogs handles GET /servers/:id/submissions
func (s *ServerController) SubmissionLogs(c *gin.Context) {
	db := c.MustGet("dbConn").(*sqlx.DB)
	server, ok := serverFromParam(c)
	if !ok {
		return
	}
	logs, err := models.SubmissionLogsForServer(db, server.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, logs)
}

// DeleteServer handles DELETE /servers/:id
func (s *ServerController) DeleteServer(c *gin.Context) {
	db := c.MustGet("dbConn").(*sqlx.DB)
	server, ok := serverFromParam(c)
	if !ok {
		return
	}
	if err := models.DeleteServer(db, server.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	delete(models.ServerMapByName, server.Name)
	c.JSON(http.StatusOK, gin.H{"message": "Server deleted"})
}
