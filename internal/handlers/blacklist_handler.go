package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goldspin/casino-backend/internal/models"
	"github.com/goldspin/casino-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BlacklistHandler manages the winner exclusion list
type BlacklistHandler struct {
	blacklistRepo repositories.BlacklistRepository
}

// NewBlacklistHandler creates a new BlacklistHandler
func NewBlacklistHandler(blacklistRepo repositories.BlacklistRepository) *BlacklistHandler {
	return &BlacklistHandler{blacklistRepo: blacklistRepo}
}

// BlacklistRequest is the admin exclusion payload
type BlacklistRequest struct {
	UserID string `json:"userId" binding:"required"`
	Reason string `json:"reason" binding:"required"`
}

// Add handles POST /admin/blacklist
func (h *BlacklistHandler) Add(c *gin.Context) {
	var req BlacklistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID format"})
		return
	}

	addedBy, _ := c.Get("userEmail")
	entry := &models.BlacklistEntry{
		UserID:    userID,
		Reason:    req.Reason,
		AddedBy:   stringOr(addedBy, "system"),
		CreatedAt: time.Now(),
	}
	if err := h.blacklistRepo.Add(c.Request.Context(), entry); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add blacklist entry"})
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// Remove handles DELETE /admin/blacklist/:userId
func (h *BlacklistHandler) Remove(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID format"})
		return
	}

	if err := h.blacklistRepo.Remove(c.Request.Context(), userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove blacklist entry"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Blacklist entry removed"})
}

func stringOr(v any, fallback string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return fallback
}

// List handles GET /admin/blacklist
func (h *BlacklistHandler) List(c *gin.Context) {
	entries, err := h.blacklistRepo.FindAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list blacklist"})
		return
	}
	c.JSON(http.StatusOK, entries)
}
