package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListProducts returns the in-memory catalog snapshot. `?refresh=1`
// refetches from the records API first and reports where the data came
// from.
func (s *Server) ListProducts(c *gin.Context) {
	warning := ""
	source := ""
	if c.Query("refresh") == "1" {
		res, err := s.catalogSvc.Refresh(c.Request.Context())
		if err != nil {
			AbortWithError(c, err)
			return
		}
		source, warning = res.Source, res.Warning
	}

	body := gin.H{"data": s.catalogSvc.List()}
	if source != "" {
		body["source"] = source
	}
	if warning != "" {
		body["warning"] = warning
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) GetStockSummary(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": s.catalogSvc.Summary()})
}
