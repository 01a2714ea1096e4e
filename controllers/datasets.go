package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	log "github.com/sirupsen/logrus"

	"go-dhis2bridge/models"
)

// DataSetController exposes the mirrored tree and the org unit
// assignment, the only locally owned attribute of a data set
type DataSetController struct{}

// OrgUnitsForServer handles GET /servers/:id/orgunits
func (d *DataSetController) OrgUnitsForServer(c *gin.Context) {
	db := c.MustGet("dbConn").(*sqlx.DB)
	server, ok := serverFromParam(c)
	if !ok {
		return
	}
	orgUnits, err := models.OrgUnitsForServer(db, server.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, orgUnits)
}

// DataSetsForServer handles GET /servers/:id/datasets
func (d *DataSetController) DataSetsForServer(c *gin.Context) {
	db := c.MustGet("dbConn").(*sqlx.DB)
	server, ok := serverFromParam(c)
	if !ok {
		return
	}
	dataSets, err := models.DataSetsForServer(db, server.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dataSets)
}

type orgUnitAssignment struct {
	OrgUnit int64 `json:"orgUnit"`
}

// AssignOrgUnit handles PUT /datasets/:id/orgunit. The organisation
// unit must be mirrored from the same server as the data set.
func (d *DataSetController) AssignOrgUnit(c *gin.Context) {
	db := c.MustGet("dbConn").(*sqlx.DB)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid data set id"})
		return
	}
	dataSet, err := models.GetDataSet(db, id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Data set not found"})
		return
	}
	var assignment orgUnitAssignment
	if err := c.BindJSON(&assignment); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid assignment"})
		return
	}
	orgUnit, err := models.GetOrgUnit(db, assignment.OrgUnit)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Organisation unit not found"})
		return
	}
	if orgUnit.ServerID != dataSet.ServerID {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Organisation unit belongs to a different server"})
		return
	}
	if err := dataSet.SetOrgUnit(db, orgUnit.ID); err != nil {
		log.WithError(err).WithField("dataSet", dataSet.DataSetID).Error("Failed to assign org unit")
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dataSet)
}
