package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	catalogdomain "github.com/storeops/salescore/internal/catalog/domain"
)

type createProductRequest struct {
	SKU               string `json:"sku"`
	Name              string `json:"name"`
	Price             int64  `json:"price"`
	InitialQuantity   int64  `json:"initial_quantity"`
	CriticalThreshold int64  `json:"critical_threshold"`
	ExcessThreshold   int64  `json:"excess_threshold"`
}

func (s *Server) CreateProduct(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.catalogSvc.Create(c.Request.Context(), catalogdomain.CreateProductRequest{
		SKU:               strings.TrimSpace(req.SKU),
		Name:              strings.TrimSpace(req.Name),
		Price:             req.Price,
		InitialQuantity:   req.InitialQuantity,
		CriticalThreshold: req.CriticalThreshold,
		ExcessThreshold:   req.ExcessThreshold,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListProducts(c *gin.Context) {
	var query struct {
		SKU         string `form:"sku"`
		StockStatus string `form:"stock_status"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.catalogSvc.List(c.Request.Context(), catalogdomain.ListProductFilter{
		SKU:         strings.TrimSpace(query.SKU),
		StockStatus: catalogdomain.StockStatus(strings.ToUpper(strings.TrimSpace(query.StockStatus))),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetProductByID(c *gin.Context) {
	resp, err := s.catalogSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type adjustStockRequest struct {
	Delta int64 `json:"delta"`
}

func (s *Server) AdjustProductStock(c *gin.Context) {
	var req adjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.catalogSvc.AdjustStock(c.Request.Context(), catalogdomain.AdjustStockRequest{
		ProductID: strings.TrimSpace(c.Param("id")),
		Delta:     req.Delta,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
