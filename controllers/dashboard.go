package controllers

import (
	"fmt"
	"net/http"

	"gymdesk-backend/services"
	"gymdesk-backend/utils"

	"github.com/gin-gonic/gin"
)

type DashboardController struct {
	reports *services.ReportService
	members *services.MemberService
}

func NewDashboardController(reports *services.ReportService, members *services.MemberService) *DashboardController {
	return &DashboardController{reports: reports, members: members}
}

type UpcomingRenewal struct {
	MemberID string `json:"memberID"`
	Name     string `json:"name"`
	Date     string `json:"date"` // e.g. "Today", "Tomorrow", "3 days"
}

func renewalLabel(days int) string {
	switch days {
	case 0:
		return "Today"
	case 1:
		return "Tomorrow"
	default:
		return fmt.Sprintf("%d days", days)
	}
}

func (dc *DashboardController) GetDashboardOverview(c *gin.Context) {
	ctx := c.Request.Context()
	overview, err := dc.reports.Dashboard(ctx)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}

	expiring, err := dc.members.Expiring(ctx, 7)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	renewals := make([]UpcomingRenewal, 0, len(expiring))
	for _, m := range expiring {
		renewals = append(renewals, UpcomingRenewal{
			MemberID: m.MemberCode,
			Name:     m.Name,
			Date:     renewalLabel(m.DaysRemaining),
		})
		if len(renewals) >= 7 {
			break
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"overview":         overview,
		"upcomingRenewals": renewals,
	})
}
