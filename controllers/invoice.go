// controllers/invoice.go
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

type InvoiceController struct {
	billing *services.BillingService
}

func NewInvoiceController(billing *services.BillingService) *InvoiceController {
	return &InvoiceController{billing: billing}
}

// InvoiceItemInput defines the structure for an invoice item
type InvoiceItemInput struct {
	Description string          `json:"description" binding:"required"`
	Quantity    int             `json:"quantity" binding:"min=0"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	PlanID      *uuid.UUID      `json:"planId"`
}

// CreateInvoiceInput defines the expected JSON structure for creating an invoice
type CreateInvoiceInput struct {
	MemberID    string             `json:"memberId" binding:"required"`
	InvoiceDate string             `json:"invoiceDate"`
	DueDate     string             `json:"dueDate"`
	Items       []InvoiceItemInput `json:"items" binding:"required,min=1,dive"`
	TaxRate     decimal.Decimal    `json:"taxRate"`
	Discount    decimal.Decimal    `json:"discount"`
	Notes       string             `json:"notes"`
	Draft       bool               `json:"draft"`
}

// UpdateInvoiceInput defines the expected JSON structure for updating an invoice
type UpdateInvoiceInput struct {
	Items    *[]InvoiceItemInput `json:"items" binding:"omitempty,min=1,dive"`
	DueDate  *string             `json:"dueDate"`
	Notes    *string             `json:"notes"`
	TaxRate  *decimal.Decimal    `json:"taxRate"`
	Discount *decimal.Decimal    `json:"discount"`
	Status   *string             `json:"status" binding:"omitempty,oneof=draft pending cancelled"`
}

// RecordPaymentInput defines a payment against an invoice
type RecordPaymentInput struct {
	InvoiceID     *uuid.UUID      `json:"invoiceId"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMode   string          `json:"paymentMode"`
	PaymentDate   string          `json:"paymentDate"`
	TransactionID string          `json:"transactionID"`
	ChequeNumber  string          `json:"chequeNumber"`
	BankName      string          `json:"bankName"`
	Notes         string          `json:"notes"`
}

func itemInputs(in []InvoiceItemInput) []services.ItemInput {
	out := make([]services.ItemInput, len(in))
	for i, it := range in {
		out[i] = services.ItemInput{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			PlanID:      it.PlanID,
		}
	}
	return out
}

// CreateInvoice creates a new invoice for a member
func (ic *InvoiceController) CreateInvoice(c *gin.Context) {
	var input CreateInvoiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}
	invoiceDate, ok := bodyDate(c, input.InvoiceDate)
	if !ok {
		return
	}
	dueDate, ok := bodyDate(c, input.DueDate)
	if !ok {
		return
	}

	invoice, err := ic.billing.CreateInvoice(c.Request.Context(), services.InvoiceInput{
		MemberRef:   input.MemberID,
		Items:       itemInputs(input.Items),
		InvoiceDate: invoiceDate,
		DueDate:     dueDate,
		TaxRate:     input.TaxRate,
		Discount:    input.Discount,
		Notes:       input.Notes,
		Draft:       input.Draft,
		CreatedBy:   actorID(c),
	})
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, invoice)
}

// GetInvoices retrieves invoices with optional status, member and date filters
func (ic *InvoiceController) GetInvoices(c *gin.Context) {
	memberID, ok := queryID(c, "memberId")
	if !ok {
		return
	}
	start, end, ok := queryRange(c)
	if !ok {
		return
	}
	invoices, total, err := ic.billing.ListInvoices(c.Request.Context(), services.InvoiceFilter{
		Status:   c.Query("status"),
		MemberID: memberID,
		Start:    start,
		End:      end,
		Page:     queryPage(c),
	})
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, listResponse[models.Invoice]{Data: invoices, Total: total})
}

func (ic *InvoiceController) GetInvoice(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	invoice, err := ic.billing.GetInvoice(c.Request.Context(), id)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

// UpdateInvoice edits an unpaid invoice
func (ic *InvoiceController) UpdateInvoice(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var input UpdateInvoiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}
	update := services.InvoiceUpdate{
		Notes:    input.Notes,
		TaxRate:  input.TaxRate,
		Discount: input.Discount,
	}
	if input.Items != nil {
		items := itemInputs(*input.Items)
		update.Items = &items
	}
	if input.DueDate != nil {
		due, ok := bodyDate(c, *input.DueDate)
		if !ok {
			return
		}
		update.DueDate = due
	}
	if input.Status != nil {
		status := models.InvoiceStatus(*input.Status)
		update.Status = &status
	}

	invoice, err := ic.billing.UpdateInvoice(c.Request.Context(), id, update)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

func (ic *InvoiceController) DeleteInvoice(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := ic.billing.DeleteInvoice(c.Request.Context(), id); err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Invoice deleted successfully"})
}

func (ic *InvoiceController) recordPayment(c *gin.Context, invoiceID uuid.UUID, input RecordPaymentInput) {
	paymentDate, ok := bodyDate(c, input.PaymentDate)
	if !ok {
		return
	}
	invoice, payment, err := ic.billing.RecordPayment(c.Request.Context(), invoiceID, services.PaymentInput{
		Amount:        input.Amount,
		PaymentMode:   input.PaymentMode,
		PaymentDate:   paymentDate,
		TransactionID: input.TransactionID,
		ChequeNumber:  input.ChequeNumber,
		BankName:      input.BankName,
		Notes:         input.Notes,
		ReceivedBy:    actorID(c),
	})
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Payment recorded successfully",
		"invoice": invoice,
		"payment": payment,
	})
}

// RecordPayment applies a payment to the invoice in the path
func (ic *InvoiceController) RecordPayment(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var input RecordPaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}
	ic.recordPayment(c, id, input)
}

// CreatePayment is the /payments entry point; the invoice comes from the body
func (ic *InvoiceController) CreatePayment(c *gin.Context) {
	var input RecordPaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}
	if input.InvoiceID == nil {
		utils.RespondWithError(c, http.StatusBadRequest, "invoiceId is required")
		return
	}
	ic.recordPayment(c, *input.InvoiceID, input)
}

func (ic *InvoiceController) GetMemberInvoices(c *gin.Context) {
	out, err := ic.billing.MemberInvoices(c.Request.Context(), c.Param("memberId"))
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (ic *InvoiceController) GetPayments(c *gin.Context) {
	memberID, ok := queryID(c, "memberId")
	if !ok {
		return
	}
	invoiceID, ok := queryID(c, "invoiceId")
	if !ok {
		return
	}
	start, end, ok := queryRange(c)
	if !ok {
		return
	}
	payments, total, err := ic.billing.ListPayments(c.Request.Context(), services.PaymentFilter{
		MemberID:  memberID,
		InvoiceID: invoiceID,
		Mode:      c.Query("paymentMode"),
		Start:     start,
		End:       end,
		Page:      queryPage(c),
	})
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, listResponse[models.Payment]{Data: payments, Total: total})
}

func (ic *InvoiceController) GetPayment(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	payment, err := ic.billing.GetPayment(c.Request.Context(), id)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

func (ic *InvoiceController) GetMemberPayments(c *gin.Context) {
	out, err := ic.billing.MemberPayments(c.Request.Context(), c.Param("memberId"))
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
