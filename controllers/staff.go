// controllers/staff.go
package controllers

import (
	"net/http"
	"time"

	"gymdesk-backend/models"
	"gymdesk-backend/services"
	"gymdesk-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type StaffController struct {
	staff *services.StaffService
}

func NewStaffController(staff *services.StaffService) *StaffController {
	return &StaffController{staff: staff}
}

type StaffInput struct {
	Name             string          `json:"name" binding:"required"`
	Role             string          `json:"role"`
	Contact          string          `json:"contact"`
	Email            string          `json:"email" binding:"omitempty,email"`
	LeaveBucket      *int            `json:"leaveBucket" binding:"omitempty,min=0"`
	Status           string          `json:"status" binding:"omitempty,oneof=active inactive"`
	Address          string          `json:"address"`
	Salary           decimal.Decimal `json:"salary"`
	JoiningDate      string          `json:"joiningDate"`
	EmergencyContact string          `json:"emergencyContact"`
	Password         string          `json:"password" binding:"omitempty,min=8"`
}

func (in StaffInput) apply(st *models.Staff, joining *time.Time) {
	st.Name = in.Name
	st.Role = in.Role
	st.Contact = in.Contact
	st.Email = in.Email
	if in.LeaveBucket != nil {
		st.LeaveBucket = *in.LeaveBucket
	}
	if in.Status != "" {
		st.Status = in.Status
	}
	st.Address = in.Address
	st.Salary = in.Salary
	st.JoiningDate = joining
	st.EmergencyContact = in.EmergencyContact
}

func (sc *StaffController) bind(c *gin.Context) (StaffInput, *time.Time, bool) {
	var input StaffInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return input, nil, false
	}
	if input.Contact != "" && !utils.ValidatePhone(input.Contact) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
		return input, nil, false
	}
	joining, ok := bodyDate(c, input.JoiningDate)
	return input, joining, ok
}

func (sc *StaffController) AddStaff(c *gin.Context) {
	input, joining, ok := sc.bind(c)
	if !ok {
		return
	}
	var st models.Staff
	input.apply(&st, joining)
	if err := sc.staff.Create(c.Request.Context(), &st, input.Password); err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, st)
}

func (sc *StaffController) GetStaff(c *gin.Context) {
	out, err := sc.staff.List(c.Request.Context(), c.Query("status"), c.Query("role"))
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (sc *StaffController) GetStaffMember(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	st, err := sc.staff.Get(c.Request.Context(), id)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (sc *StaffController) UpdateStaff(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	input, joining, ok := sc.bind(c)
	if !ok {
		return
	}
	st, err := sc.staff.Update(c.Request.Context(), id, input.Password, func(st *models.Staff) {
		input.apply(st, joining)
	})
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (sc *StaffController) DeleteStaff(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := sc.staff.Delete(c.Request.Context(), id); err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Staff deleted successfully"})
}

type LeaveInput struct {
	From   string `json:"from" binding:"required"`
	To     string `json:"to" binding:"required"`
	Reason string `json:"reason"`
}

// RequestLeave books leave days against the staff member's bucket
func (sc *StaffController) RequestLeave(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var input LeaveInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}
	from, ok := bodyDate(c, input.From)
	if !ok {
		return
	}
	to, ok := bodyDate(c, input.To)
	if !ok {
		return
	}
	st, err := sc.staff.RequestLeave(c.Request.Context(), id, *from, *to, input.Reason)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// GetAvailability lists active staff not on leave on ?date= (default today)
func (sc *StaffController) GetAvailability(c *gin.Context) {
	on := time.Now()
	if raw := c.Query("date"); raw != "" {
		d, ok := bodyDate(c, raw)
		if !ok {
			return
		}
		on = *d
	}
	out, err := sc.staff.Available(c.Request.Context(), on)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
