package controllers

import (
	"errors"
	"net/http"
	"time"

	"gymdesk-backend/services"
	"gymdesk-backend/utils"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	staff  *services.StaffService
	secret string
	expiry time.Duration
	secure bool
}

func NewAuthController(staff *services.StaffService, secret string, expiry time.Duration, secure bool) *AuthController {
	return &AuthController{staff: staff, secret: secret, expiry: expiry, secure: secure}
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// controllers/auth.go
func (ac *AuthController) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	st, err := ac.staff.Authenticate(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			utils.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
		} else {
			utils.RespondWithServiceError(c, err)
		}
		return
	}

	token, err := utils.GenerateToken(st.ID.String(), st.Role, ac.secret, ac.expiry)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.SetCookie(
		"token",
		token,
		int(ac.expiry.Seconds()),
		"/",
		"",
		ac.secure,
		true,
	)

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"staff": gin.H{
			"id":    st.ID,
			"email": st.Email,
			"name":  st.Name,
			"role":  st.Role,
		},
	})
}

func (ac *AuthController) Me(c *gin.Context) {
	id := actorID(c)
	if id == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Staff ID not found in context"})
		return
	}
	st, err := ac.staff.Get(c.Request.Context(), *id)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Staff not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"staff": gin.H{
			"id":        st.ID,
			"email":     st.Email,
			"name":      st.Name,
			"role":      st.Role,
			"lastLogin": st.LastLogin,
		},
	})
}
