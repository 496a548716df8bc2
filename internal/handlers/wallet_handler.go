package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/goldspin/casino-backend/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WalletHandler handles balance ledger read requests
type WalletHandler struct {
	walletService services.WalletService
}

// NewWalletHandler creates a new WalletHandler
func NewWalletHandler(walletService services.WalletService) *WalletHandler {
	return &WalletHandler{walletService: walletService}
}

// GetTransactions handles GET /users/:userId/transactions
func (h *WalletHandler) GetTransactions(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID format"})
		return
	}
	page, limit := pagination(c)

	txs, err := h.walletService.GetTransactions(c.Request.Context(), userID, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve transactions"})
		return
	}
	c.JSON(http.StatusOK, txs)
}
