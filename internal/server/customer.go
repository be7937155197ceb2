package server

import (
	"net/http"

	directorydomain "github.com/Cachi0001/bizcore/internal/directory/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) ListCustomers(c *gin.Context) {
	warning := ""
	source := ""
	if c.Query("refresh") == "1" {
		res, err := s.directorySvc.Refresh(c.Request.Context())
		if err != nil {
			AbortWithError(c, err)
			return
		}
		source, warning = res.Source, res.Warning
	}

	body := gin.H{"data": s.directorySvc.List()}
	if source != "" {
		body["source"] = source
	}
	if warning != "" {
		body["warning"] = warning
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) GetCustomerByID(c *gin.Context) {
	customer, ok := s.directorySvc.Find(c.Param("id"))
	if !ok {
		AbortWithError(c, directorydomain.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": customer})
}

func (s *Server) UpdateCustomer(c *gin.Context) {
	var patch directorydomain.CustomerPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	customer, err := s.directorySvc.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": customer})
}

func (s *Server) DeleteCustomer(c *gin.Context) {
	if err := s.directorySvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) GetCustomerMetrics(c *gin.Context) {
	res, err := s.ltvSvc.Metrics(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	body := gin.H{"data": res.Metrics, "source": res.Source}
	if res.Warning != "" {
		body["warning"] = res.Warning
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) GetCustomerHistory(c *gin.Context) {
	res, err := s.ltvSvc.PurchaseHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	body := gin.H{"data": res.Entries, "source": res.Source}
	if res.Warning != "" {
		body["warning"] = res.Warning
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) ListCustomerMetrics(c *gin.Context) {
	res, err := s.ltvSvc.AllMetrics(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	body := gin.H{"data": res.Metrics, "source": res.Source}
	if res.Warning != "" {
		body["warning"] = res.Warning
	}
	c.JSON(http.StatusOK, body)
}
