package controllers

import (
	"net/http"
	"time"

	"gymdesk-backend/models"
	"gymdesk-backend/services"
	"gymdesk-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ClassController struct {
	classes *services.ClassService
}

func NewClassController(classes *services.ClassService) *ClassController {
	return &ClassController{classes: classes}
}

type ClassInput struct {
	Name        string     `json:"name" binding:"required"`
	Type        string     `json:"type"`
	Description string     `json:"description"`
	TrainerID   *uuid.UUID `json:"trainerId"`
	IsRecurring bool       `json:"isRecurring"`
	DaysOfWeek  []int      `json:"daysOfWeek" binding:"omitempty,dive,min=0,max=6"`
	Date        string     `json:"date"`
	Time        string     `json:"time" binding:"required"`
	Duration    int        `json:"duration" binding:"min=0"`
	Capacity    int        `json:"capacity" binding:"min=0"`
	Location    string     `json:"location"`
	Status      string     `json:"status" binding:"omitempty,oneof=active inactive cancelled"`
	Notes       string     `json:"notes"`
	ImageURL    string     `json:"imageUrl"`
}

func (in ClassInput) apply(c *gin.Context, cls *models.Class) bool {
	date, ok := bodyDate(c, in.Date)
	if !ok {
		return false
	}
	cls.Name = in.Name
	cls.Type = in.Type
	cls.Description = in.Description
	cls.TrainerID = in.TrainerID
	cls.IsRecurring = in.IsRecurring
	cls.DaysOfWeek = in.DaysOfWeek
	cls.Date = ""
	if date != nil {
		cls.Date = models.DateKey(*date)
	}
	cls.Time = in.Time
	cls.Duration = in.Duration
	if in.Capacity > 0 {
		cls.Capacity = in.Capacity
	}
	cls.Location = in.Location
	if in.Status != "" {
		cls.Status = in.Status
	}
	cls.Notes = in.Notes
	cls.ImageURL = in.ImageURL
	return true
}

func (cc *ClassController) CreateClass(c *gin.Context) {
	var input ClassInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}
	var cls models.Class
	if !input.apply(c, &cls) {
		return
	}
	if err := cc.classes.Create(c.Request.Context(), &cls); err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cls)
}

func (cc *ClassController) GetClasses(c *gin.Context) {
	classes, err := cc.classes.List(c.Request.Context(), c.Query("status"), c.Query("type"))
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, classes)
}

func (cc *ClassController) GetClass(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	cls, err := cc.classes.Get(c.Request.Context(), id)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, cls)
}

func (cc *ClassController) UpdateClass(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var input ClassInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}
	var staged models.Class
	if !input.apply(c, &staged) {
		return
	}
	cls, err := cc.classes.Update(c.Request.Context(), id, func(cls *models.Class) {
		input.apply(c, cls)
	})
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, cls)
}

func (cc *ClassController) DeleteClass(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := cc.classes.Delete(c.Request.Context(), id); err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Class deleted successfully"})
}

type BookingInput struct {
	MemberID     string `json:"memberId" binding:"required"`
	SpecificDate string `json:"specificDate" binding:"required"`
}

func (cc *ClassController) bookingArgs(c *gin.Context) (uuid.UUID, BookingInput, time.Time, bool) {
	id, ok := paramID(c, "id")
	if !ok {
		return uuid.Nil, BookingInput{}, time.Time{}, false
	}
	var input BookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return uuid.Nil, input, time.Time{}, false
	}
	date, ok := bodyDate(c, input.SpecificDate)
	if !ok {
		return uuid.Nil, input, time.Time{}, false
	}
	return id, input, *date, true
}

// BookClass reserves a seat, or a waitlist place when the session is full
func (cc *ClassController) BookClass(c *gin.Context) {
	id, input, date, ok := cc.bookingArgs(c)
	if !ok {
		return
	}
	res, err := cc.classes.Book(c.Request.Context(), id, input.MemberID, date)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	message := "Class booked successfully"
	if res.Booking.Status == models.BookingWaitlist {
		message = "Class is full, added to waitlist"
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":        message,
		"booking":        res.Booking,
		"availableSpots": res.AvailableSpots,
	})
}

func (cc *ClassController) CancelBooking(c *gin.Context) {
	id, input, date, ok := cc.bookingArgs(c)
	if !ok {
		return
	}
	res, err := cc.classes.CancelBooking(c.Request.Context(), id, input.MemberID, date)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Booking cancelled", "booking": res.Booking, "promoted": res.Promoted})
}

type MarkAttendanceInput struct {
	SpecificDate string      `json:"specificDate" binding:"required"`
	Attendees    []uuid.UUID `json:"attendees"`
}

func (cc *ClassController) MarkAttendance(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var input MarkAttendanceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}
	date, ok := bodyDate(c, input.SpecificDate)
	if !ok {
		return
	}
	marked, err := cc.classes.MarkAttendance(c.Request.Context(), id, *date, input.Attendees)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Attendance marked", "attended": marked})
}

// GetSchedule expands classes over a date range, defaulting to the next 7 days
func (cc *ClassController) GetSchedule(c *gin.Context) {
	start, end, ok := queryRange(c)
	if !ok {
		return
	}
	from := utils.BeginningOfDay(time.Now())
	if start != nil {
		from = *start
	}
	to := from.AddDate(0, 0, 6)
	if end != nil {
		to = *end
	}
	if to.Before(from) {
		utils.RespondWithError(c, http.StatusBadRequest, "endDate must not be before startDate")
		return
	}
	schedule, err := cc.classes.Schedule(c.Request.Context(), from, to)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, schedule)
}

func (cc *ClassController) GetBookings(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	date, err := parseOptionalDate(c.Query("date"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	bookings, err := cc.classes.Bookings(c.Request.Context(), id, date)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}

func (cc *ClassController) GetMemberBookings(c *gin.Context) {
	bookings, err := cc.classes.MemberBookings(c.Request.Context(), c.Param("memberId"))
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}
