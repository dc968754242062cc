// controllers/report.go
package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"gymdesk-backend/models"
	"gymdesk-backend/services"
	"gymdesk-backend/utils"

	"github.com/gin-gonic/gin"
)

// ReportController handles all reporting functions
type ReportController struct {
	reports *services.ReportService
}

func NewReportController(reports *services.ReportService) *ReportController {
	return &ReportController{reports: reports}
}

func (rc *ReportController) rangeOf(c *gin.Context) (services.Range, bool) {
	start, end, ok := queryRange(c)
	return services.Range{Start: start, End: end}, ok
}

// GetDSR returns the daily sales report; defaults to today
func (rc *ReportController) GetDSR(c *gin.Context) {
	r, ok := rc.rangeOf(c)
	if !ok {
		return
	}
	if day := c.Query("date"); day != "" && r.Start == nil && r.End == nil {
		d, ok := bodyDate(c, day)
		if !ok {
			return
		}
		start, end := utils.BeginningOfDay(*d), utils.EndOfDay(*d)
		r = services.Range{Start: &start, End: &end}
	}
	out, err := rc.reports.DSR(c.Request.Context(), r)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// GetMonthly groups sales by month; ?year= limits it to one calendar year
func (rc *ReportController) GetMonthly(c *gin.Context) {
	r, ok := rc.rangeOf(c)
	if !ok {
		return
	}
	if raw := c.Query("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil || year < 1970 {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid year")
			return
		}
		start := time.Date(year, 1, 1, 0, 0, 0, 0, time.Local)
		end := start.AddDate(1, 0, 0).Add(-time.Nanosecond)
		r = services.Range{Start: &start, End: &end}
	}
	out, err := rc.reports.Monthly(c.Request.Context(), r)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (rc *ReportController) breakdown(c *gin.Context, fn func(*gin.Context, services.Range) ([]services.Breakdown, error)) {
	r, ok := rc.rangeOf(c)
	if !ok {
		return
	}
	out, err := fn(c, r)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (rc *ReportController) GetProductWise(c *gin.Context) {
	rc.breakdown(c, func(c *gin.Context, r services.Range) ([]services.Breakdown, error) {
		return rc.reports.ProductWise(c.Request.Context(), r)
	})
}

func (rc *ReportController) GetCategoryWise(c *gin.Context) {
	rc.breakdown(c, func(c *gin.Context, r services.Range) ([]services.Breakdown, error) {
		return rc.reports.CategoryWise(c.Request.Context(), r)
	})
}

func (rc *ReportController) GetStaffPerformance(c *gin.Context) {
	rc.breakdown(c, func(c *gin.Context, r services.Range) ([]services.Breakdown, error) {
		return rc.reports.StaffPerformance(c.Request.Context(), r)
	})
}

func (rc *ReportController) GetPaymentModes(c *gin.Context) {
	rc.breakdown(c, func(c *gin.Context, r services.Range) ([]services.Breakdown, error) {
		return rc.reports.PaymentModes(c.Request.Context(), r)
	})
}

// GetFinancial reports payments received by method
func (rc *ReportController) GetFinancial(c *gin.Context) {
	r, ok := rc.rangeOf(c)
	if !ok {
		return
	}
	out, err := rc.reports.Financial(c.Request.Context(), r)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// GetReportAnalytics returns month, quarter and year revenue with growth
func (rc *ReportController) GetReportAnalytics(c *gin.Context) {
	out, err := rc.reports.Analytics(c.Request.Context())
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

type SnapshotInput struct {
	ReportType  string          `json:"reportType" binding:"required,oneof=daily monthly comprehensive custom"`
	StartDate   string          `json:"startDate" binding:"required"`
	EndDate     string          `json:"endDate" binding:"required"`
	GeneratedBy string          `json:"generatedBy"`
	Notes       string          `json:"notes"`
	Data        json.RawMessage `json:"data"`
}

func (rc *ReportController) CreateSnapshot(c *gin.Context) {
	var input SnapshotInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}
	start, ok := bodyDate(c, input.StartDate)
	if !ok {
		return
	}
	end, ok := bodyDate(c, input.EndDate)
	if !ok {
		return
	}
	if len(input.EndDate) == len("2006-01-02") {
		e := utils.EndOfDay(*end)
		end = &e
	}
	snap, err := rc.reports.CreateSnapshot(c.Request.Context(), services.SnapshotInput{
		ReportType:  input.ReportType,
		Start:       *start,
		End:         *end,
		GeneratedBy: input.GeneratedBy,
		Notes:       input.Notes,
		Data:        input.Data,
	})
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, snap)
}

func (rc *ReportController) GetSnapshots(c *gin.Context) {
	snaps, total, err := rc.reports.ListSnapshots(c.Request.Context(), c.Query("reportType"), queryPage(c))
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, listResponse[models.ReportSnapshot]{Data: snaps, Total: total})
}

func (rc *ReportController) GetSnapshot(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	snap, err := rc.reports.GetSnapshot(c.Request.Context(), id)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (rc *ReportController) DeleteSnapshot(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := rc.reports.DeleteSnapshot(c.Request.Context(), id); err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Report deleted successfully"})
}
