package api

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"hackhub/internal/storage"
)

// GET /api/admin/logs?limit=N
func AdminLogs(audit storage.AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.Query("limit"))
		out, err := audit.List(c.Request.Context(), limit)
		if err != nil {
			c.JSON(500, gin.H{"error": "db"})
			return
		}
		c.JSON(200, out)
	}
}
