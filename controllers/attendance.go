package controllers

import (
	"net/http"

	"gymdesk-backend/models"
	"gymdesk-backend/services"
	"gymdesk-backend/utils"

	"github.com/gin-gonic/gin"
)

type AttendanceController struct {
	attendance *services.AttendanceService
}

func NewAttendanceController(attendance *services.AttendanceService) *AttendanceController {
	return &AttendanceController{attendance: attendance}
}

type CheckInInput struct {
	MemberID          string `json:"memberId"`
	BiometricTemplate string `json:"biometricTemplate"`
	DeviceID          string `json:"deviceId"`
	Method            string `json:"method" binding:"omitempty,oneof=manual biometric qr rfid"`
	Location          string `json:"location"`
	Timestamp         string `json:"timestamp"`
}

type CheckOutInput struct {
	MemberID  string `json:"memberId" binding:"required"`
	Timestamp string `json:"timestamp"`
}

// CheckIn records a gym visit by member id, member code or fingerprint
func (ac *AttendanceController) CheckIn(c *gin.Context) {
	var input CheckInInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}
	if input.MemberID == "" && input.BiometricTemplate == "" {
		utils.RespondWithError(c, http.StatusBadRequest, "memberId or biometricTemplate is required")
		return
	}
	ts, ok := bodyDate(c, input.Timestamp)
	if !ok {
		return
	}
	rec, member, err := ac.attendance.CheckIn(c.Request.Context(), services.CheckInInput{
		MemberRef:         input.MemberID,
		BiometricTemplate: input.BiometricTemplate,
		DeviceID:          input.DeviceID,
		Method:            input.Method,
		Location:          input.Location,
		Timestamp:         ts,
	})
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":    "Check-in successful",
		"attendance": rec,
		"member": gin.H{
			"id":       member.ID,
			"memberID": member.MemberCode,
			"name":     member.Name,
		},
	})
}

func (ac *AttendanceController) CheckOut(c *gin.Context) {
	var input CheckOutInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}
	ts, ok := bodyDate(c, input.Timestamp)
	if !ok {
		return
	}
	rec, err := ac.attendance.CheckOut(c.Request.Context(), input.MemberID, ts)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Check-out successful", "attendance": rec})
}

// GetCurrent lists members currently checked in
func (ac *AttendanceController) GetCurrent(c *gin.Context) {
	recs, err := ac.attendance.Current(c.Request.Context())
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(recs), "attendance": recs})
}

func (ac *AttendanceController) GetMemberAttendance(c *gin.Context) {
	start, end, ok := queryRange(c)
	if !ok {
		return
	}
	recs, err := ac.attendance.MemberHistory(c.Request.Context(), c.Param("memberId"), start, end, queryPage(c))
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, recs)
}

func (ac *AttendanceController) GetAttendance(c *gin.Context) {
	date, err := parseOptionalDate(c.Query("date"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	recs, total, err := ac.attendance.List(c.Request.Context(), services.AttendanceFilter{
		Date:   date,
		Status: c.Query("status"),
		Page:   queryPage(c),
	})
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, listResponse[models.Attendance]{Data: recs, Total: total})
}

func (ac *AttendanceController) GetStats(c *gin.Context) {
	start, end, ok := queryRange(c)
	if !ok {
		return
	}
	stats, err := ac.attendance.Stats(c.Request.Context(), start, end)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
