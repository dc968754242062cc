package controllers

import (
	"net/http"

	"gymdesk-backend/models"
	"gymdesk-backend/services"
	"gymdesk-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type SaleController struct {
	sales *services.SalesService
}

func NewSaleController(sales *services.SalesService) *SaleController {
	return &SaleController{sales: sales}
}

type AddSaleInput struct {
	MemberID    string          `json:"memberId" binding:"required"`
	ProductID   *uuid.UUID      `json:"productId"`
	Amount      decimal.Decimal `json:"amount"`
	StaffID     *uuid.UUID      `json:"staffId"`
	PaymentMode string          `json:"paymentMode"`
	Description string          `json:"description"`
	Type        string          `json:"type" binding:"omitempty,oneof=membership session_pack merchandise other"`
}

// AddSale records a sale together with its settled invoice and payment
func (sc *SaleController) AddSale(c *gin.Context) {
	var input AddSaleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}
	res, err := sc.sales.RecordSale(c.Request.Context(), services.SaleInput{
		MemberRef:   input.MemberID,
		ProductID:   input.ProductID,
		Amount:      input.Amount,
		StaffID:     input.StaffID,
		PaymentMode: input.PaymentMode,
		Description: input.Description,
		Type:        input.Type,
	})
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (sc *SaleController) GetSales(c *gin.Context) {
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
	sales, total, err := sc.sales.List(c.Request.Context(), services.SaleFilter{
		MemberID: memberID,
		StaffID:  staffID,
		Type:     c.Query("type"),
		Mode:     c.Query("paymentMode"),
		Start:    start,
		End:      end,
		Page:     queryPage(c),
	})
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, listResponse[models.Sale]{Data: sales, Total: total})
}

func (sc *SaleController) GetSale(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	sale, err := sc.sales.Get(c.Request.Context(), id)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, sale)
}
