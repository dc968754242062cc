package controllers

import (
	"net/http"

	"gymdesk-backend/models"
	"gymdesk-backend/services"
	"gymdesk-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type EnquiryController struct {
	enquiries *services.EnquiryService
}

func NewEnquiryController(enquiries *services.EnquiryService) *EnquiryController {
	return &EnquiryController{enquiries: enquiries}
}

type EnquiryInput struct {
	Name    string `json:"name" binding:"required"`
	Contact string `json:"contact"`
	Email   string `json:"email" binding:"omitempty,email"`
	Type    string `json:"type"`
	Remarks string `json:"remarks"`
	Notes   string `json:"notes"`
	Status  string `json:"status" binding:"omitempty,oneof=open closed"`
}

func (in EnquiryInput) apply(e *models.Enquiry) {
	e.Name = in.Name
	e.Contact = in.Contact
	e.Email = in.Email
	e.Type = in.Type
	e.Remarks = in.Remarks
	e.Notes = in.Notes
	if in.Status != "" {
		e.Status = in.Status
	}
}

func (ec *EnquiryController) CreateEnquiry(c *gin.Context) {
	var input EnquiryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}
	var e models.Enquiry
	input.apply(&e)
	if err := ec.enquiries.Create(c.Request.Context(), &e); err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, e)
}

// GetEnquiries filters by ?status= and ?type=
func (ec *EnquiryController) GetEnquiries(c *gin.Context) {
	out, err := ec.enquiries.List(c.Request.Context(), c.Query("status"), c.Query("type"))
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (ec *EnquiryController) GetEnquiry(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	e, err := ec.enquiries.Get(c.Request.Context(), id)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

func (ec *EnquiryController) UpdateEnquiry(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var input EnquiryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}
	e, err := ec.enquiries.Update(c.Request.Context(), id, func(e *models.Enquiry) {
		input.apply(e)
	})
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

func (ec *EnquiryController) DeleteEnquiry(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := ec.enquiries.Delete(c.Request.Context(), id); err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Enquiry deleted successfully"})
}

type ConvertInput struct {
	PlanID *uuid.UUID `json:"planId"`
}

// ConvertEnquiry creates a member from the enquiry
func (ec *EnquiryController) ConvertEnquiry(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var input ConvertInput
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			utils.RespondWithBindError(c, err)
			return
		}
	}
	e, m, err := ec.enquiries.Convert(c.Request.Context(), id, input.PlanID)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Enquiry converted", "enquiry": e, "member": m})
}
