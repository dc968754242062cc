package controllers

import (
	"net/http"

	"gymdesk-backend/models"
	"gymdesk-backend/services"
	"gymdesk-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type NotificationController struct {
	notifications *services.NotificationService
	reminders     *services.ReminderService
}

func NewNotificationController(notifications *services.NotificationService, reminders *services.ReminderService) *NotificationController {
	return &NotificationController{notifications: notifications, reminders: reminders}
}

type SendNotificationInput struct {
	RecipientType string         `json:"recipientType" binding:"required,oneof=member staff all"`
	RecipientID   *uuid.UUID     `json:"recipientID"`
	Type          string         `json:"type" binding:"required,oneof=sms email whatsapp push"`
	Template      string         `json:"template"`
	Subject       string         `json:"subject"`
	Message       string         `json:"message" binding:"required"`
	ScheduledFor  string         `json:"scheduledFor"`
	Context       map[string]any `json:"context"`
}

type BulkNotificationInput struct {
	SendNotificationInput
	Recipients []uuid.UUID `json:"recipients" binding:"required,min=1"`
}

func (nc *NotificationController) toInput(c *gin.Context, in SendNotificationInput) (services.NotificationInput, bool) {
	scheduled, ok := bodyDate(c, in.ScheduledFor)
	if !ok {
		return services.NotificationInput{}, false
	}
	return services.NotificationInput{
		RecipientType: in.RecipientType,
		RecipientID:   in.RecipientID,
		Channel:       in.Type,
		Template:      in.Template,
		Subject:       in.Subject,
		Message:       in.Message,
		ScheduledFor:  scheduled,
		Context:       in.Context,
		CreatedBy:     actorID(c),
	}, true
}

// SendNotification records a message; scheduled ones stay pending
func (nc *NotificationController) SendNotification(c *gin.Context) {
	var input SendNotificationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}
	in, ok := nc.toInput(c, input)
	if !ok {
		return
	}
	n, err := nc.notifications.Send(c.Request.Context(), in)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, n)
}

func (nc *NotificationController) BulkSend(c *gin.Context) {
	var input BulkNotificationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}
	in, ok := nc.toInput(c, input.SendNotificationInput)
	if !ok {
		return
	}
	out, err := nc.notifications.BulkSend(c.Request.Context(), input.RecipientType, input.Recipients, in)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"count": len(out), "notifications": out})
}

func (nc *NotificationController) GetHistory(c *gin.Context) {
	recipientID, ok := queryID(c, "recipientID")
	if !ok {
		return
	}
	start, end, ok := queryRange(c)
	if !ok {
		return
	}
	out, total, err := nc.notifications.History(c.Request.Context(), services.NotificationFilter{
		RecipientType: c.Query("recipientType"),
		RecipientID:   recipientID,
		Channel:       c.Query("type"),
		Status:        c.Query("status"),
		Start:         start,
		End:           end,
		Page:          queryPage(c),
	})
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, listResponse[models.Notification]{Data: out, Total: total})
}

func (nc *NotificationController) GetPending(c *gin.Context) {
	out, err := nc.notifications.Pending(c.Request.Context())
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (nc *NotificationController) MarkSent(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	n, err := nc.notifications.MarkSent(c.Request.Context(), id)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

type MarkFailedInput struct {
	Error string `json:"error" binding:"required"`
}

func (nc *NotificationController) MarkFailed(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var input MarkFailedInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}
	n, err := nc.notifications.MarkFailed(c.Request.Context(), id, input.Error)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

// RunDaily triggers the daily membership pass outside the cron schedule
func (nc *NotificationController) RunDaily(c *gin.Context) {
	c.JSON(http.StatusOK, nc.reminders.RunDaily(c.Request.Context()))
}
