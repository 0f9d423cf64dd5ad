package server

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/storeops/salescore/internal/providers/pdf"
	saledomain "github.com/storeops/salescore/internal/sale/domain"
)

type createSaleLineRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
	Discount  int64  `json:"discount"`
}

type createSaleRequest struct {
	CustomerID      string                  `json:"customer_id"`
	StoreID         string                  `json:"store_id"`
	EmployeeID      string                  `json:"employee_id"`
	PaymentMethod   string                  `json:"payment_method"`
	Paid            bool                    `json:"paid"`
	ShippingAddress string                  `json:"shipping_address"`
	ShippingCost    int64                   `json:"shipping_cost"`
	DiscountAmount  int64                   `json:"discount_amount"`
	Notes           string                  `json:"notes"`
	Lines           []createSaleLineRequest `json:"lines"`
}

func (s *Server) CreateSale(c *gin.Context) {
	var req createSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	lines := make([]saledomain.CreateSaleLine, 0, len(req.Lines))
	for _, line := range req.Lines {
		lines = append(lines, saledomain.CreateSaleLine{
			ProductID: strings.TrimSpace(line.ProductID),
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Discount:  line.Discount,
		})
	}

	resp, err := s.saleSvc.Create(c.Request.Context(), saledomain.CreateSaleRequest{
		CustomerID:      strings.TrimSpace(req.CustomerID),
		StoreID:         strings.TrimSpace(req.StoreID),
		EmployeeID:      strings.TrimSpace(req.EmployeeID),
		PaymentMethod:   saledomain.PaymentMethod(strings.ToUpper(strings.TrimSpace(req.PaymentMethod))),
		Paid:            req.Paid,
		ShippingAddress: req.ShippingAddress,
		ShippingCost:    req.ShippingCost,
		DiscountAmount:  req.DiscountAmount,
		Notes:           req.Notes,
		Lines:           lines,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListSales(c *gin.Context) {
	var query struct {
		StoreID    string `form:"store_id"`
		CustomerID string `form:"customer_id"`
		Status     string `form:"status"`
		DateFrom   string `form:"date_from"`
		DateTo     string `form:"date_to"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	dateFrom, err := parseOptionalTime(query.DateFrom, false)
	if err != nil {
		AbortWithError(c, newValidationError("date_from", "invalid_date_from", "invalid date_from"))
		return
	}
	dateTo, err := parseOptionalTime(query.DateTo, true)
	if err != nil {
		AbortWithError(c, newValidationError("date_to", "invalid_date_to", "invalid date_to"))
		return
	}

	resp, err := s.saleSvc.List(c.Request.Context(), saledomain.ListSaleRequest{
		StoreID:    strings.TrimSpace(query.StoreID),
		CustomerID: strings.TrimSpace(query.CustomerID),
		Status:     saledomain.SaleStatus(strings.ToUpper(strings.TrimSpace(query.Status))),
		DateFrom:   dateFrom,
		DateTo:     dateTo,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetSaleByID(c *gin.Context) {
	resp, err := s.saleSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetSaleByNumber(c *gin.Context) {
	resp, err := s.saleSvc.GetByNumber(c.Request.Context(), strings.TrimSpace(c.Param("number")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateSaleRequest struct {
	Status      *string    `json:"status"`
	Paid        *bool      `json:"paid"`
	PaymentDate *time.Time `json:"payment_date"`
	Notes       *string    `json:"notes"`
}

func (s *Server) UpdateSale(c *gin.Context) {
	var req updateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	update := saledomain.UpdateSaleRequest{
		Paid:        req.Paid,
		PaymentDate: req.PaymentDate,
		Notes:       req.Notes,
	}
	if req.Status != nil {
		status := saledomain.SaleStatus(strings.ToUpper(strings.TrimSpace(*req.Status)))
		update.Status = &status
	}

	resp, err := s.saleSvc.Update(c.Request.Context(), strings.TrimSpace(c.Param("id")), update)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) MarkSalePaid(c *gin.Context) {
	resp, err := s.saleSvc.MarkPaid(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CompleteSale(c *gin.Context) {
	resp, err := s.saleSvc.Complete(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type cancelSaleRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) CancelSale(c *gin.Context) {
	var req cancelSaleRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
	}

	resp, err := s.saleSvc.Cancel(c.Request.Context(), strings.TrimSpace(c.Param("id")), req.Reason)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) SaleReceipt(c *gin.Context) {
	ctx := c.Request.Context()

	sale, err := s.saleSvc.GetByID(ctx, strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	customer, err := s.customerSvc.GetByID(ctx, sale.CustomerID.String())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	store, err := s.storeSvc.GetByID(ctx, sale.StoreID.String())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	employee, err := s.employeeSvc.GetByID(ctx, sale.EmployeeID.String())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	paymentInfo := "Unpaid"
	if sale.Paid && sale.PaymentDate != nil {
		paymentInfo = "Paid by " + string(sale.PaymentMethod) + " on " + sale.PaymentDate.Format("2006-01-02")
	}

	items := make([]pdf.ReceiptItem, 0, len(sale.Lines))
	for _, line := range sale.Lines {
		items = append(items, pdf.ReceiptItem{
			Description: line.ProductName,
			Qty:         line.Quantity,
			UnitPrice:   line.UnitPrice,
			Amount:      line.LineTotal,
		})
	}

	reader, err := s.pdf.GenerateReceipt(ctx, pdf.ReceiptData{
		StoreName:    store.Name,
		StoreAddress: store.Address,
		SaleNumber:   sale.Number,
		SaleDate:     sale.Date.Format("2006-01-02 15:04"),
		CustomerName: customer.Name,
		EmployeeName: employee.Name,
		PaymentInfo:  paymentInfo,
		Items:        items,
		Subtotal:     sale.SubtotalAmount,
		ShippingCost: sale.ShippingCost,
		Discount:     sale.DiscountAmount,
		Total:        sale.TotalAmount,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if reader == nil {
		AbortWithError(c, ErrInternal)
		return
	}

	doc, err := io.ReadAll(reader)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="receipt-`+sale.Number+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", doc)
}

// parseOptionalTime accepts RFC 3339 timestamps or bare dates; endOfDay
// pushes a bare date to 23:59:59 so range filters are inclusive.
func parseOptionalTime(value string, endOfDay bool) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Second)
	}
	return &t, nil
}
