package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/goldspin/casino-backend/internal/models"
	"github.com/goldspin/casino-backend/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PoolHandler handles jackpot pool HTTP requests
type PoolHandler struct {
	poolService services.PoolService
}

// NewPoolHandler creates a new PoolHandler
func NewPoolHandler(poolService services.PoolService) *PoolHandler {
	return &PoolHandler{poolService: poolService}
}

// CreatePoolRequest is the admin pool creation payload
type CreatePoolRequest struct {
	Name                string             `json:"name" binding:"required"`
	PoolType            models.PoolType    `json:"poolType" binding:"required"`
	Currency            string             `json:"currency" binding:"required"`
	SeedAmount          int64              `json:"seedAmount"`
	ContributionRateBps int64              `json:"contributionRateBps" binding:"required"`
	TicketCost          int64              `json:"ticketCost" binding:"required"`
	Tiers               []models.PrizeTier `json:"tiers" binding:"required"`
}

// CreatePool handles POST /admin/pools
func (h *PoolHandler) CreatePool(c *gin.Context) {
	var req CreatePoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pool := &models.JackpotPool{
		Name:                req.Name,
		PoolType:            req.PoolType,
		Currency:            req.Currency,
		SeedAmount:          req.SeedAmount,
		ContributionRateBps: req.ContributionRateBps,
		TicketCost:          req.TicketCost,
		Tiers:               req.Tiers,
	}
	created, err := h.poolService.CreatePool(c.Request.Context(), pool)
	if err != nil {
		if errors.Is(err, services.ErrInvalidTiers) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create pool: " + err.Error()})
		return
	}
	c.JSON(http.StatusCreated, created)
}

// GetPools handles GET /pools with an optional ?status= filter
func (h *PoolHandler) GetPools(c *gin.Context) {
	status := models.PoolStatus(c.Query("status"))
	pools, err := h.poolService.GetPools(c.Request.Context(), status)
	if err != nil {
		if status != "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list pools"})
		return
	}
	c.JSON(http.StatusOK, pools)
}

// GetPoolStatus handles GET /pools/:id/status
func (h *PoolHandler) GetPoolStatus(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	status, err := h.poolService.GetPoolStatus(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Pool not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve pool status"})
		return
	}
	c.JSON(http.StatusOK, status)
}

// UpdateTiersRequest is the admin tier update payload
type UpdateTiersRequest struct {
	Tiers []models.PrizeTier `json:"tiers" binding:"required"`
}

// UpdateTiers handles PUT /admin/pools/:id/tiers
func (h *PoolHandler) UpdateTiers(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}
	var req UpdateTiersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.poolService.UpdateTiers(c.Request.Context(), id, req.Tiers); err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidTiers):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Pool not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update tiers"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Tiers updated"})
}

// PausePool handles POST /admin/pools/:id/pause
func (h *PoolHandler) PausePool(c *gin.Context) {
	h.transition(c, h.poolService.PausePool, "Pool paused")
}

// ResumePool handles POST /admin/pools/:id/resume
func (h *PoolHandler) ResumePool(c *gin.Context) {
	h.transition(c, h.poolService.ResumePool, "Pool resumed")
}

func (h *PoolHandler) transition(c *gin.Context, fn func(ctx context.Context, id primitive.ObjectID) error, ok string) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	if err := fn(c.Request.Context(), id); err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Pool not found"})
		case errors.Is(err, services.ErrAlreadyDrawing):
			c.JSON(http.StatusConflict, gin.H{"error": "A draw is in progress"})
		default:
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": ok})
}
