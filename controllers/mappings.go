package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	log "github.com/sirupsen/logrus"

	"go-dhis2bridge/models"
)

// MappingController defines the data mapping management methods
type MappingController struct{}

// MappingsForServer handles GET /servers/:id/mappings
func (m *MappingController) MappingsForServer(c *gin.Context) {
	db := c.MustGet("dbConn").(*sqlx.DB)
	server, ok := serverFromParam(c)
	if !ok {
		return
	}
	rows, err := models.MappingRowsForServer(db, server.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rows)
}

func mappingFromParam(c *gin.Context) (models.DataMapping, bool) {
	db := c.MustGet("dbConn").(*sqlx.DB)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid mapping id"})
		return models.DataMapping{}, false
	}
	mapping, err := models.GetDataMapping(db, id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Mapping not found"})
		return models.DataMapping{}, false
	}
	return mapping, true
}

// GetMapping handles GET /mappings/:id
func (m *MappingController) GetMapping(c *gin.Context) {
	mapping, ok := mappingFromParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, mapping)
}

type mappingUpdateRequest struct {
	SQLQuery string `json:"sqlQuery"`
	Active   bool   `json:"active"`
}

// UpdateMapping handles PUT /mappings/:id. Only the query text and the
// active flag are writable, everything else is owned by the sync pass.
func (m *MappingController) UpdateMapping(c *gin.Context) {
	db := c.MustGet("dbConn").(*sqlx.DB)
	mapping, ok := mappingFromParam(c)
	if !ok {
		return
	}
	var req mappingUpdateRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid mapping update"})
		return
	}
	if err := mapping.UpdateConfig(db, req.SQLQuery, req.Active); err != nil {
		log.WithError(err).WithField("mapping", mapping.Name).Error("Failed to update mapping")
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, mapping)
}

type testQueryRequest struct {
	SQLQuery string `json:"sqlQuery"`
}

// TestQuery handles POST /queries/test. It runs the query and returns
// the preview rows, or the validation failure
func (m *MappingController) TestQuery(c *gin.Context) {
	db := c.MustGet("dbConn").(*sqlx.DB)
	var req testQueryRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid query request"})
		return
	}
	columns, rows, err := models.TestQuery(db, req.SQLQuery)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"columns": columns, "rows": rows})
}

type presetRequest struct {
	models.PresetQuery
	PeriodType models.PeriodType `json:"periodType"`
}

// RenderPreset handles POST /queries/preset and returns the generated
// query text without persisting anything
func (m *MappingController) RenderPreset(c *gin.Context) {
	var req presetRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid preset request"})
		return
	}
	query, err := req.Render(req.PeriodType)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sqlQuery": query})
}

// ExportMappings handles GET /servers/:id/mappings/export
func (m *MappingController) ExportMappings(c *gin.Context) {
	db := c.MustGet("dbConn").(*sqlx.DB)
	server, ok := serverFromParam(c)
	if !ok {
		return
	}
	file, err := models.ExportMappings(db, server.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, file)
}

// ImportMappings handles POST /servers/:id/mappings/import. Mappings in
// the file that no longer exist on the server are reported, not created.
func (m *MappingController) ImportMappings(c *gin.Context) {
	db := c.MustGet("dbConn").(*sqlx.DB)
	server, ok := serverFromParam(c)
	if !ok {
		return
	}
	var file models.MappingExportFile
	if err := c.BindJSON(&file); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid mapping export file"})
		return
	}
	imported, missing, err := models.ImportMappings(db, server.ID, &file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"imported": imported, "missing": missing})
}
