package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/goldspin/casino-backend/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TicketHandler handles wager intake and ticket read requests
type TicketHandler struct {
	ticketService services.TicketService
}

// NewTicketHandler creates a new TicketHandler
func NewTicketHandler(ticketService services.TicketService) *TicketHandler {
	return &TicketHandler{ticketService: ticketService}
}

// WagerRequest is the settled wager intake payload. Amount is in minor units.
type WagerRequest struct {
	UserID              string `json:"userId" binding:"required"`
	Amount              int64  `json:"amount" binding:"required,gt=0"`
	SourceTransactionID string `json:"sourceTransactionId" binding:"required"`
}

// ProcessWager handles POST /wagers. Called by the game engine when a wager
// settles; fans the wager out to every participating pool.
func (h *TicketHandler) ProcessWager(c *gin.Context) {
	var req WagerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID format"})
		return
	}

	if err := h.ticketService.ProcessWager(c.Request.Context(), userID, req.Amount, req.SourceTransactionID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process wager: " + err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "Wager processed"})
}

// GetTicketCount handles GET /pools/:id/tickets/:userId/count
func (h *TicketHandler) GetTicketCount(c *gin.Context) {
	poolID, userID, ok := poolAndUser(c)
	if !ok {
		return
	}

	count, err := h.ticketService.GetTicketCount(c.Request.Context(), poolID, userID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Pool not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve ticket count"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"poolId": poolID.Hex(), "userId": userID.Hex(), "tickets": count})
}

// GetTickets handles GET /pools/:id/tickets/:userId
func (h *TicketHandler) GetTickets(c *gin.Context) {
	poolID, userID, ok := poolAndUser(c)
	if !ok {
		return
	}
	page, limit := pagination(c)

	tickets, err := h.ticketService.GetTickets(c.Request.Context(), poolID, userID, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve tickets"})
		return
	}
	c.JSON(http.StatusOK, tickets)
}

// GetOdds handles GET /pools/:id/tickets/:userId/odds
func (h *TicketHandler) GetOdds(c *gin.Context) {
	poolID, userID, ok := poolAndUser(c)
	if !ok {
		return
	}

	odds, err := h.ticketService.GetOdds(c.Request.Context(), poolID, userID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Pool not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute odds"})
		return
	}
	c.JSON(http.StatusOK, odds)
}

func poolAndUser(c *gin.Context) (primitive.ObjectID, primitive.ObjectID, bool) {
	poolID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid pool ID format"})
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID format"})
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	return poolID, userID, true
}
