package handlers

import (
	"errors"
	"time"

	"ambika-sandledger/internal/adapters/http/middleware"
	"ambika-sandledger/internal/core/domain"
	"ambika-sandledger/internal/core/services"
	"ambika-sandledger/internal/pkg/response"
	"ambika-sandledger/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
)

// TransactionHandler handles ledger endpoints
type TransactionHandler struct {
	txnService *services.TransactionService
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(txnService *services.TransactionService) *TransactionHandler {
	return &TransactionHandler{txnService: txnService}
}

// AddTransactionRequest represents a weighbridge entry body.
// TransactionID is optional; the server assigns one when blank.
// BillAmount is the dashboard-priced figure and is stored as submitted.
type AddTransactionRequest struct {
	TransactionID string  `json:"transactionId" validate:"omitempty,max=64"`
	Timestamp     string  `json:"timestamp" validate:"required"`
	TruckNumber   string  `json:"truckNumber" validate:"required,max=30"`
	DriverName    string  `json:"driverName" validate:"required,max=100"`
	InitialWeight float64 `json:"initialWeight" validate:"gte=0"`
	FinalWeight   float64 `json:"finalWeight" validate:"required,gt=0"`
	BillAmount    float64 `json:"billAmount" validate:"required,gt=0"`
}

// ListTransactions returns the caller's rows, or all rows for master,
// newest first
// @Summary List transactions
// @Tags Transactions
// @Produce json
// @Success 200 {array} models.Transaction
// @Router /api/transactions [get]
func (h *TransactionHandler) ListTransactions(c *fiber.Ctx) error {
	identity := middleware.Identity(c)

	txns, err := h.txnService.List(c.Context(), identity)
	if err != nil {
		return response.InternalServerError(c, "Failed to retrieve transactions.")
	}
	return c.Status(fiber.StatusOK).JSON(txns)
}

// AddTransaction appends a ledger row for the calling driver
// @Summary Record transaction
// @Tags Transactions
// @Accept json
// @Produce json
// @Success 201 {object} fiber.Map
// @Failure 400 {object} fiber.Map
// @Failure 403 {object} fiber.Map
// @Failure 409 {object} fiber.Map
// @Router /api/transactions [post]
func (h *TransactionHandler) AddTransaction(c *fiber.Ctx) error {
	identity := middleware.Identity(c)

	var req AddTransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body.")
	}
	if err := validation.Struct(&req); err != nil {
		return response.BadRequest(c, "Missing required transaction data.")
	}

	timestamp, err := time.Parse(time.RFC3339, req.Timestamp)
	if err != nil {
		return response.BadRequest(c, "Invalid timestamp format.")
	}

	txn, err := h.txnService.Record(c.Context(), identity, &services.RecordInput{
		TransactionID: req.TransactionID,
		Timestamp:     timestamp,
		TruckNumber:   req.TruckNumber,
		DriverName:    req.DriverName,
		InitialWeight: req.InitialWeight,
		FinalWeight:   req.FinalWeight,
		BillAmount:    req.BillAmount,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMasterCannotRecord):
			return response.Forbidden(c, "Master users cannot create transactions.")
		case errors.Is(err, domain.ErrDuplicateTransaction):
			return response.Conflict(c, "Transaction ID already exists.")
		case errors.Is(err, domain.ErrInvalidWeights):
			return response.BadRequest(c, "Final weight must be greater than initial weight.")
		case errors.Is(err, domain.ErrInvalidArgument):
			return response.BadRequest(c, "Missing required transaction data.")
		default:
			return response.InternalServerError(c, "Failed to save transaction.")
		}
	}

	return response.Created(c, "Transaction saved successfully.", fiber.Map{
		"id": txn.TransactionID,
	})
}

// ExportCSV streams the full ledger as a CSV attachment (master only)
// @Summary Export transactions CSV
// @Tags Transactions
// @Produce text/csv
// @Success 200 {string} string
// @Failure 404 {string} string
// @Router /api/export/csv [get]
func (h *TransactionHandler) ExportCSV(c *fiber.Ctx) error {
	data, err := h.txnService.ExportCSV(c.Context())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).SendString("No transaction data to export.")
		}
		return response.InternalServerError(c, "Failed to export data.")
	}

	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="ambika_trucking_transactions.csv"`)
	return c.Status(fiber.StatusOK).Send(data)
}
