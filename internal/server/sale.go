package server

import (
	"net/http"

	saledomain "github.com/Cachi0001/bizcore/internal/sale/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) CreateDraft(c *gin.Context) {
	draft := s.saleSvc.CreateDraft()
	c.JSON(http.StatusCreated, gin.H{"data": draft})
}

func (s *Server) GetDraft(c *gin.Context) {
	draft, err := s.saleSvc.GetDraft(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": draft})
}

func (s *Server) CancelDraft(c *gin.Context) {
	if err := s.saleSvc.CancelDraft(c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) SelectDraftProduct(c *gin.Context) {
	var req struct {
		ProductID string `json:"product_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	draft, warnings, err := s.saleSvc.SelectProduct(c.Param("id"), req.ProductID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, draftResponse(draft, warnings))
}

func (s *Server) SetDraftQuantity(c *gin.Context) {
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	draft, warnings, err := s.saleSvc.SetQuantity(c.Param("id"), req.Quantity)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, draftResponse(draft, warnings))
}

func (s *Server) SetDraftUnitPrice(c *gin.Context) {
	var req struct {
		UnitPrice int64 `json:"unit_price"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	draft, err := s.saleSvc.SetUnitPrice(c.Param("id"), req.UnitPrice)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, draftResponse(draft, nil))
}

func (s *Server) SelectDraftCustomer(c *gin.Context) {
	// An empty or absent customer_id resets the draft to walk-in.
	var req struct {
		CustomerID string `json:"customer_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	draft, err := s.saleSvc.SelectCustomer(c.Param("id"), req.CustomerID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, draftResponse(draft, nil))
}

func (s *Server) SetDraftPaymentMethod(c *gin.Context) {
	var req struct {
		PaymentMethod string `json:"payment_method" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	draft, err := s.saleSvc.SetPaymentMethod(c.Param("id"), req.PaymentMethod)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, draftResponse(draft, nil))
}

func (s *Server) SetDraftDate(c *gin.Context) {
	var req struct {
		Date string `json:"date" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	draft, err := s.saleSvc.SetDate(c.Param("id"), req.Date)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, draftResponse(draft, nil))
}

func (s *Server) SubmitDraft(c *gin.Context) {
	record, err := s.saleSvc.Submit(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": record})
}

func (s *Server) ListSales(c *gin.Context) {
	res, err := s.saleSvc.ListSales(c.Request.Context(), c.Query("from"), c.Query("to"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	body := gin.H{"data": res.Sales, "source": res.Source}
	if res.Warning != "" {
		body["warning"] = res.Warning
	}
	c.JSON(http.StatusOK, body)
}

func draftResponse(draft saledomain.Draft, warnings []saledomain.Warning) gin.H {
	if warnings == nil {
		warnings = []saledomain.Warning{}
	}
	return gin.H{"data": draft, "warnings": warnings}
}
