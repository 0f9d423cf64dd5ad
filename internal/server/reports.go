package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	reportdomain "github.com/storeops/salescore/internal/report/domain"
)

func (s *Server) reportRange(c *gin.Context) (reportdomain.Range, bool) {
	var r reportdomain.Range

	if raw := strings.TrimSpace(c.Query("store_id")); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil {
			AbortWithError(c, newValidationError("store_id", "invalid_store_id", "invalid store_id"))
			return r, false
		}
		r.StoreID = id
	}

	dateFrom, err := parseOptionalTime(c.Query("date_from"), false)
	if err != nil {
		AbortWithError(c, newValidationError("date_from", "invalid_date_from", "invalid date_from"))
		return r, false
	}
	dateTo, err := parseOptionalTime(c.Query("date_to"), true)
	if err != nil {
		AbortWithError(c, newValidationError("date_to", "invalid_date_to", "invalid date_to"))
		return r, false
	}
	r.DateFrom = dateFrom
	r.DateTo = dateTo
	return r, true
}

func (s *Server) ReportDailyTotals(c *gin.Context) {
	r, ok := s.reportRange(c)
	if !ok {
		return
	}

	resp, err := s.reportSvc.DailyTotals(c.Request.Context(), r)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ReportMonthlyTotals(c *gin.Context) {
	r, ok := s.reportRange(c)
	if !ok {
		return
	}

	resp, err := s.reportSvc.MonthlyTotals(c.Request.Context(), r)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ReportTopProducts(c *gin.Context) {
	r, ok := s.reportRange(c)
	if !ok {
		return
	}

	limit := 0
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			AbortWithError(c, newValidationError("limit", "invalid_limit", "invalid limit"))
			return
		}
		limit = parsed
	}

	resp, err := s.reportSvc.TopProducts(c.Request.Context(), r, limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ReportEmployeePerformance(c *gin.Context) {
	r, ok := s.reportRange(c)
	if !ok {
		return
	}

	resp, err := s.reportSvc.EmployeePerformance(c.Request.Context(), r)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
