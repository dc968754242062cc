package controllers

import (
	"net/http"

	"gymdesk-backend/models"
	"gymdesk-backend/services"
	"gymdesk-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AppointmentController struct {
	appointments *services.AppointmentService
}

func NewAppointmentController(appointments *services.AppointmentService) *AppointmentController {
	return &AppointmentController{appointments: appointments}
}

type AddAppointmentInput struct {
	MemberID      string     `json:"memberId" binding:"required"`
	Date          string     `json:"date" binding:"required"`
	Time          string     `json:"time" binding:"required"`
	Type          string     `json:"type"`
	SessionType   string     `json:"sessionType"`
	SessionPlanID *uuid.UUID `json:"sessionPlanId"`
	StaffID       *uuid.UUID `json:"staffId"`
	Notes         string     `json:"notes"`
}

type UpdateAppointmentInput struct {
	Date               *string    `json:"date"`
	Time               *string    `json:"time"`
	StaffID            *uuid.UUID `json:"staffId"`
	Notes              *string    `json:"notes"`
	Status             *string    `json:"status" binding:"omitempty,oneof=scheduled completed cancelled no-show rescheduled"`
	CancellationReason *string    `json:"cancellationReason"`
}

// AddAppointment books a session, checking the member has credit for it
func (ac *AppointmentController) AddAppointment(c *gin.Context) {
	var input AddAppointmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}
	date, ok := bodyDate(c, input.Date)
	if !ok {
		return
	}
	appt, err := ac.appointments.Create(c.Request.Context(), services.AppointmentInput{
		MemberRef:     input.MemberID,
		Date:          *date,
		Time:          input.Time,
		Type:          input.Type,
		SessionType:   input.SessionType,
		SessionPlanID: input.SessionPlanID,
		StaffID:       input.StaffID,
		Notes:         input.Notes,
	})
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, appt)
}

func (ac *AppointmentController) GetAppointments(c *gin.Context) {
	memberID, ok := queryID(c, "memberId")
	if !ok {
		return
	}
	staffID, ok := queryID(c, "staffId")
	if !ok {
		return
	}
	start, end, ok := queryRange(c)
	if !ok {
		return
	}
	if day := c.Query("date"); day != "" && start == nil && end == nil {
		d, ok := bodyDate(c, day)
		if !ok {
			return
		}
		from, to := utils.BeginningOfDay(*d), utils.EndOfDay(*d)
		start, end = &from, &to
	}
	appts, total, err := ac.appointments.List(c.Request.Context(), services.AppointmentFilter{
		MemberID: memberID,
		StaffID:  staffID,
		Status:   c.Query("status"),
		Start:    start,
		End:      end,
		Page:     queryPage(c),
	})
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, listResponse[models.Appointment]{Data: appts, Total: total})
}

func (ac *AppointmentController) GetAppointment(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	appt, err := ac.appointments.Get(c.Request.Context(), id)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, appt)
}

// CompleteAppointment consumes one session credit; repeating it is a no-op
func (ac *AppointmentController) CompleteAppointment(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	appt, err := ac.appointments.Complete(c.Request.Context(), id)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, appt)
}

func (ac *AppointmentController) UpdateAppointment(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var input UpdateAppointmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}
	update := services.AppointmentUpdate{
		Time:               input.Time,
		StaffID:            input.StaffID,
		Notes:              input.Notes,
		CancellationReason: input.CancellationReason,
	}
	if input.Date != nil {
		d, ok := bodyDate(c, *input.Date)
		if !ok {
			return
		}
		update.Date = d
	}
	if input.Status != nil {
		status := models.AppointmentStatus(*input.Status)
		update.Status = &status
	}
	appt, err := ac.appointments.Update(c.Request.Context(), id, update)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, appt)
}

func (ac *AppointmentController) DeleteAppointment(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := ac.appointments.Delete(c.Request.Context(), id); err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Appointment deleted successfully"})
}

func (ac *AppointmentController) GetAvailableSessions(c *gin.Context) {
	out, err := ac.appointments.AvailableSessions(c.Request.Context(), c.Param("memberId"))
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (ac *AppointmentController) GetBySessionType(c *gin.Context) {
	start, end, ok := queryRange(c)
	if !ok {
		return
	}
	out, err := ac.appointments.BySessionType(c.Request.Context(), start, end)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
