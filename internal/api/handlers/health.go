package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Health provides a minimal liveness check endpoint.
func Health(c *gin.Context) {
	writeJSON(c, http.StatusOK, gin.H{"status": "ok"})
}

// Root answers the banner clients use to check the server is up.
func Root(c *gin.Context) {
	c.String(http.StatusOK, "ParcelBD Server is running...")
}
