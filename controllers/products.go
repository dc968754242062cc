package controllers

import (
	"net/http"

	"gymdesk-backend/models"
	"gymdesk-backend/services"
	"gymdesk-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type ProductController struct {
	products *services.ProductService
}

func NewProductController(products *services.ProductService) *ProductController {
	return &ProductController{products: products}
}

type ProductInput struct {
	Name           string                   `json:"name" binding:"required"`
	Price          decimal.Decimal          `json:"price"`
	Duration       int                      `json:"duration" binding:"min=0"`
	Description    string                   `json:"description"`
	Category       string                   `json:"category" binding:"omitempty,oneof=membership session_pack merchandise other"`
	SessionCredits int                      `json:"sessionCredits" binding:"min=0"`
	SessionTypes   []models.PlanSessionType `json:"sessionTypes" binding:"omitempty,dive"`
	TotalSessions  int                      `json:"totalSessions" binding:"min=0"`
	IsUnlimited    bool                     `json:"isUnlimited"`
	Status         string                   `json:"status" binding:"omitempty,oneof=active inactive"`
}

func (in ProductInput) apply(p *models.Product) {
	p.Name = in.Name
	p.Price = in.Price
	p.Duration = in.Duration
	p.Description = in.Description
	p.Category = models.ProductCategory(in.Category)
	p.SessionCredits = in.SessionCredits
	p.SessionTypes = in.SessionTypes
	p.TotalSessions = in.TotalSessions
	p.IsUnlimited = in.IsUnlimited
	if in.Status != "" {
		p.Status = in.Status
	}
}

func (pc *ProductController) CreateProduct(c *gin.Context) {
	var input ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}
	var p models.Product
	input.apply(&p)
	if err := pc.products.Create(c.Request.Context(), &p); err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// GetProducts lists active products; ?status=all includes inactive ones
func (pc *ProductController) GetProducts(c *gin.Context) {
	products, err := pc.products.List(c.Request.Context(), c.Query("status"), c.Query("category"))
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (pc *ProductController) GetProduct(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	p, err := pc.products.Get(c.Request.Context(), id)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (pc *ProductController) UpdateProduct(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var input ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}
	p, err := pc.products.Update(c.Request.Context(), id, func(p *models.Product) {
		category := p.Category
		input.apply(p)
		if input.Category == "" {
			p.Category = category
		}
	})
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// DeleteProduct deactivates a product
func (pc *ProductController) DeleteProduct(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := pc.products.Delete(c.Request.Context(), id); err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deactivated"})
}
