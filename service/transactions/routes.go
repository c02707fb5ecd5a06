package transactions

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/findash/findash-server/cmd/models"
	"github.com/findash/findash-server/cmd/utils"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

const defaultRecentLimit = 5

type TransactionHandler struct {
	db *gorm.DB
}

func NewTransactionHandler(db *gorm.DB) *TransactionHandler {
	return &TransactionHandler{db: db}
}

// RegisterRoutes registers transaction-related routes with Gorilla Mux
func (h *TransactionHandler) RegisterRoutes(router *mux.Router) {
	transactionRouter := router.PathPrefix("/transactions").Subrouter()

	transactionRouter.HandleFunc("/seed", utils.AuthMiddleware(h.SeedTransactions)).Methods("POST")
	transactionRouter.HandleFunc("/recent", utils.AuthMiddleware(h.GetRecentTransactions)).Methods("GET")
	transactionRouter.HandleFunc("/stats", utils.AuthMiddleware(h.GetStats)).Methods("GET")
	transactionRouter.HandleFunc("/chart-data", utils.AuthMiddleware(h.GetChartData)).Methods("GET")
	transactionRouter.HandleFunc("", utils.AuthMiddleware(h.GetTransactions)).Methods("GET")
	transactionRouter.HandleFunc("", utils.AuthMiddleware(h.CreateTransaction)).Methods("POST")
	transactionRouter.HandleFunc("/{id}", utils.AuthMiddleware(h.UpdateTransaction)).Methods("PUT")
	transactionRouter.HandleFunc("/{id}", utils.AuthMiddleware(h.DeleteTransaction)).Methods("DELETE")
}

// GetTransactions handles retrieving transactions with filtering, search,
// sorting and pagination.
func (h *TransactionHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	params := ParseListParams(r)

	transactions, pagination, err := ListTransactions(h.db, params)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to fetch transactions")
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"transactions": transactions,
			"pagination":   pagination,
		},
	})
}

// GetStats returns aggregate statistics for the whole collection.
func (h *TransactionHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := ComputeStats(h.db)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to fetch statistics")
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Status: "success",
		Data:   stats,
	})
}

// GetChartData returns the time-bucketed series for the overview chart.
func (h *TransactionHandler) GetChartData(w http.ResponseWriter, r *http.Request) {
	period := r.URL.Query().Get("period")
	if period == "" {
		period = "monthly"
	}
	if period != "weekly" && period != "monthly" && period != "yearly" {
		utils.WriteError(w, http.StatusBadRequest, "Invalid period. Use weekly, monthly or yearly")
		return
	}

	points, err := ChartSeries(h.db, period, time.Now())
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to fetch chart data")
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data":   points,
		"period": period,
	})
}

// GetRecentTransactions returns the latest transactions by date.
func (h *TransactionHandler) GetRecentTransactions(w http.ResponseWriter, r *http.Request) {
	limit := defaultRecentLimit
	if parsed, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && parsed >= 1 {
		limit = parsed
	}

	transactions := make([]models.Transaction, 0, limit)
	if err := h.db.Order("date DESC").Limit(limit).Find(&transactions).Error; err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to fetch recent transactions")
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Status: "success",
		Data:   transactions,
	})
}

func validateTransactionFields(amount float64, category, status string) string {
	if amount < 0 {
		return "Amount must be non-negative"
	}
	if !models.ValidCategory(category) {
		return "Category must be Revenue or Expense"
	}
	if !models.ValidStatus(status) {
		return "Status must be Paid or Pending"
	}
	return ""
}

// CreateTransaction inserts a new transaction. The identifier comes from the
// store's auto-increment sequence.
func (h *TransactionHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var createRequest struct {
		Amount      *float64 `json:"amount"`
		Category    string   `json:"category"`
		Status      string   `json:"status"`
		UserID      string   `json:"user_id"`
		UserProfile string   `json:"user_profile"`
	}
	if err := json.NewDecoder(r.Body).Decode(&createRequest); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if createRequest.Amount == nil || createRequest.Category == "" || createRequest.Status == "" || createRequest.UserID == "" {
		utils.WriteError(w, http.StatusBadRequest, "Missing required fields: amount, category, status, user_id")
		return
	}
	if msg := validateTransactionFields(*createRequest.Amount, createRequest.Category, createRequest.Status); msg != "" {
		utils.WriteError(w, http.StatusBadRequest, msg)
		return
	}

	profile := createRequest.UserProfile
	if profile == "" {
		profile = models.DefaultUserProfile
	}

	transaction := models.Transaction{
		Date:        time.Now(),
		Amount:      *createRequest.Amount,
		Category:    createRequest.Category,
		Status:      createRequest.Status,
		UserID:      createRequest.UserID,
		UserProfile: profile,
	}
	if err := h.db.Create(&transaction).Error; err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to create transaction")
		return
	}

	utils.WriteSuccess(w, http.StatusCreated, "Transaction created successfully", transaction)
}

// UpdateTransaction applies a partial update to an existing transaction.
func (h *TransactionHandler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid transaction ID")
		return
	}

	var updateRequest struct {
		Date        *time.Time `json:"date"`
		Amount      *float64   `json:"amount"`
		Category    *string    `json:"category"`
		Status      *string    `json:"status"`
		UserID      *string    `json:"user_id"`
		UserProfile *string    `json:"user_profile"`
	}
	if err := json.NewDecoder(r.Body).Decode(&updateRequest); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var transaction models.Transaction
	if err := h.db.First(&transaction, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteError(w, http.StatusNotFound, "Transaction not found")
		} else {
			utils.WriteError(w, http.StatusInternalServerError, "Failed to update transaction")
		}
		return
	}

	if updateRequest.Date != nil {
		transaction.Date = *updateRequest.Date
	}
	if updateRequest.Amount != nil {
		transaction.Amount = *updateRequest.Amount
	}
	if updateRequest.Category != nil {
		transaction.Category = *updateRequest.Category
	}
	if updateRequest.Status != nil {
		transaction.Status = *updateRequest.Status
	}
	if updateRequest.UserID != nil {
		transaction.UserID = *updateRequest.UserID
	}
	if updateRequest.UserProfile != nil {
		transaction.UserProfile = *updateRequest.UserProfile
	}

	if msg := validateTransactionFields(transaction.Amount, transaction.Category, transaction.Status); msg != "" {
		utils.WriteError(w, http.StatusBadRequest, msg)
		return
	}

	if err := h.db.Save(&transaction).Error; err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to update transaction")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, "Transaction updated successfully", transaction)
}

// DeleteTransaction removes a transaction by identifier.
func (h *TransactionHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid transaction ID")
		return
	}

	result := h.db.Delete(&models.Transaction{}, id)
	if result.Error != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to delete transaction")
		return
	}
	if result.RowsAffected == 0 {
		utils.WriteError(w, http.StatusNotFound, "Transaction not found")
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Status:  "success",
		Message: "Transaction deleted successfully",
	})
}

// isAdmin reports whether the caller's email is listed in ADMIN_EMAILS.
func isAdmin(email string) bool {
	for _, admin := range strings.Split(os.Getenv("ADMIN_EMAILS"), ",") {
		if admin != "" && strings.EqualFold(strings.TrimSpace(admin), email) {
			return true
		}
	}
	return false
}

// SeedTransactions replaces the entire collection from the bundled dataset.
// Destructive, so it is restricted to administrator accounts.
func (h *TransactionHandler) SeedTransactions(w http.ResponseWriter, r *http.Request) {
	claims, err := utils.GetUserFromContext(r)
	if err != nil {
		utils.WriteError(w, http.StatusUnauthorized, "Access token required")
		return
	}
	if !isAdmin(claims.Email) {
		utils.WriteError(w, http.StatusForbidden, "Administrator access required")
		return
	}

	dataPath := os.Getenv("SEED_DATA_PATH")
	if dataPath == "" {
		dataPath = "data/transactions.json"
	}

	seedData, err := LoadSeedData(dataPath)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to load seed data")
		return
	}

	count, err := ReplaceAllTransactions(h.db, seedData)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to seed database")
		return
	}

	utils.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"status":  "success",
		"message": fmt.Sprintf("Database seeded successfully with %d transactions", count),
		"count":   count,
	})
}
