package controllers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"go-dhis2bridge/config"
)

// APIMiddleware will add the db connection to the context
func APIMiddleware(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("dbConn", db)
		c.Next()
	}
}

// TokenAuth checks the Authorization header against the configured API
// token
func TokenAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := strings.SplitN(c.Request.Header.Get("Authorization"), " ", 2)
		if len(auth) != 2 || auth[0] != "Token" ||
			auth[1] != config.BridgeConf.API.AuthToken || auth[1] == "" {
			c.AbortWithStatusJSON(401, gin.H{"message": "Unauthorized"})
			return
		}
		c.Next()
	}
}
