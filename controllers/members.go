// controllers/members.go
package controllers

import (
	"net/http"
	"strconv"

	"gymdesk-backend/models"
	"gymdesk-backend/services"
	"gymdesk-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type MemberController struct {
	members   *services.MemberService
	uploadDir string
}

func NewMemberController(members *services.MemberService, uploadDir string) *MemberController {
	return &MemberController{members: members, uploadDir: uploadDir}
}

// CreateMemberInput defines the expected JSON structure for creating a member
type CreateMemberInput struct {
	Name            string     `json:"name" binding:"required"`
	Gender          string     `json:"gender" binding:"omitempty,oneof=male female other"`
	DOB             string     `json:"dob"`
	Contact1        string     `json:"contact1"`
	Contact2        string     `json:"contact2"`
	Email           string     `json:"email" binding:"omitempty,email"`
	Address         string     `json:"address"`
	EmergencyName   string     `json:"emergencyName"`
	EmergencyNumber string     `json:"emergencyNumber"`
	Notes           string     `json:"notes"`
	Status          string     `json:"status" binding:"omitempty,oneof=active inactive frozen expired suspended"`
	MembershipPlan  *uuid.UUID `json:"membershipPlan"`
}

// UpdateMemberInput defines the expected JSON structure for updating a member
type UpdateMemberInput struct {
	Name            *string `json:"name"`
	Gender          *string `json:"gender" binding:"omitempty,oneof=male female other"`
	DOB             *string `json:"dob"`
	Contact1        *string `json:"contact1"`
	Contact2        *string `json:"contact2"`
	Email           *string `json:"email" binding:"omitempty,email"`
	Address         *string `json:"address"`
	EmergencyName   *string `json:"emergencyName"`
	EmergencyNumber *string `json:"emergencyNumber"`
	Notes           *string `json:"notes"`
	Status          *string `json:"status" binding:"omitempty,oneof=active inactive frozen expired suspended"`
	AutoRenew       *bool   `json:"autoRenew"`
	ReminderDays    *int    `json:"renewalReminderDays" binding:"omitempty,min=1"`
}

// CreateMember registers a new member
func (mc *MemberController) CreateMember(c *gin.Context) {
	var input CreateMemberInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}
	if input.Contact1 != "" && !utils.ValidatePhone(input.Contact1) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
		return
	}
	dob, ok := bodyDate(c, input.DOB)
	if !ok {
		return
	}

	member, err := mc.members.Create(c.Request.Context(), services.MemberInput{
		Name:            input.Name,
		Gender:          input.Gender,
		DOB:             dob,
		Contact1:        input.Contact1,
		Contact2:        input.Contact2,
		Email:           input.Email,
		Address:         input.Address,
		EmergencyName:   input.EmergencyName,
		EmergencyNumber: input.EmergencyNumber,
		Notes:           input.Notes,
		Status:          models.MemberStatus(input.Status),
		PlanID:          input.MembershipPlan,
	})
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, member)
}

func (mc *MemberController) GetMembers(c *gin.Context) {
	members, total, err := mc.members.List(c.Request.Context(), services.MemberFilter{
		Status: c.Query("status"),
		Search: c.Query("search"),
		Page:   queryPage(c),
	})
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, listResponse[models.Member]{Data: members, Total: total})
}

// GetMember accepts either the uuid or the member code
func (mc *MemberController) GetMember(c *gin.Context) {
	member, err := mc.members.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, member)
}

func (mc *MemberController) UpdateMember(c *gin.Context) {
	var input UpdateMemberInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}
	if input.Contact1 != nil && *input.Contact1 != "" && !utils.ValidatePhone(*input.Contact1) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
		return
	}
	update := services.MemberUpdate{
		Name:            input.Name,
		Gender:          input.Gender,
		Contact1:        input.Contact1,
		Contact2:        input.Contact2,
		Email:           input.Email,
		Address:         input.Address,
		EmergencyName:   input.EmergencyName,
		EmergencyNumber: input.EmergencyNumber,
		Notes:           input.Notes,
		AutoRenew:       input.AutoRenew,
		ReminderDays:    input.ReminderDays,
	}
	if input.DOB != nil {
		dob, ok := bodyDate(c, *input.DOB)
		if !ok {
			return
		}
		update.DOB = dob
	}
	if input.Status != nil {
		status := models.MemberStatus(*input.Status)
		update.Status = &status
	}

	member, err := mc.members.Update(c.Request.Context(), c.Param("id"), update)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, member)
}

func (mc *MemberController) DeleteMember(c *gin.Context) {
	if err := mc.members.Delete(c.Request.Context(), c.Param("id")); err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Member deleted successfully"})
}

type RenewInput struct {
	PlanID    uuid.UUID `json:"planId" binding:"required"`
	AutoRenew *bool     `json:"autoRenew"`
}

func (mc *MemberController) RenewMembership(c *gin.Context) {
	var input RenewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}
	member, err := mc.members.Renew(c.Request.Context(), c.Param("id"), input.PlanID, input.AutoRenew)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Membership renewed", "member": member})
}

type FreezeInput struct {
	StartDate string `json:"startDate" binding:"required"`
	EndDate   string `json:"endDate" binding:"required"`
	Reason    string `json:"reason"`
}

func (mc *MemberController) FreezeMembership(c *gin.Context) {
	var input FreezeInput
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
	member, err := mc.members.Freeze(c.Request.Context(), c.Param("id"), *start, *end, input.Reason, actorID(c))
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Membership frozen", "member": member})
}

func (mc *MemberController) UnfreezeMembership(c *gin.Context) {
	member, err := mc.members.Unfreeze(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Membership unfrozen", "member": member})
}

func (mc *MemberController) GetExpiring(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "7"))
	members, err := mc.members.Expiring(c.Request.Context(), days)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, members)
}

func (mc *MemberController) GetExpired(c *gin.Context) {
	members, err := mc.members.Expired(c.Request.Context())
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, members)
}

type BiometricInput struct {
	Template string `json:"biometricTemplate" binding:"required"`
	DeviceID string `json:"deviceId"`
}

func (mc *MemberController) EnrollBiometric(c *gin.Context) {
	var input BiometricInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}
	member, err := mc.members.EnrollBiometric(c.Request.Context(), c.Param("id"), input.Template, input.DeviceID)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Biometric enrolled", "member": member})
}

func (mc *MemberController) GetOutstanding(c *gin.Context) {
	out, err := mc.members.Outstanding(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// UploadProfilePicture stores a resized profile image and links it to the member
func (mc *MemberController) UploadProfilePicture(c *gin.Context) {
	member, err := mc.members.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	file, err := c.FormFile("profilePicture")
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "profilePicture file is required")
		return
	}
	rel, err := utils.SaveProfileImage(file, mc.uploadDir, member.ID.String())
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	url := "/uploads/" + rel
	member, err = mc.members.Update(c.Request.Context(), member.ID.String(), services.MemberUpdate{ProfilePicture: &url})
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, member)
}
