package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/goldspin/casino-backend/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DrawHandler handles draw-related HTTP requests
type DrawHandler struct {
	drawService   services.DrawService
	ticketService services.TicketService
	prizeService  services.PrizeService
}

// NewDrawHandler creates a new DrawHandler
func NewDrawHandler(drawService services.DrawService, ticketService services.TicketService, prizeService services.PrizeService) *DrawHandler {
	return &DrawHandler{
		drawService:   drawService,
		ticketService: ticketService,
		prizeService:  prizeService,
	}
}

// ExecuteDraw handles POST /admin/pools/:id/draw. Manual trigger; the
// scheduler uses the same service path.
func (h *DrawHandler) ExecuteDraw(c *gin.Context) {
	poolID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	draw, err := h.drawService.ExecuteDraw(c.Request.Context(), poolID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Pool not found"})
		case errors.Is(err, services.ErrAlreadyDrawing):
			c.JSON(http.StatusConflict, gin.H{"error": "A draw is already in progress"})
		case errors.Is(err, services.ErrNoEligibleTickets):
			c.JSON(http.StatusConflict, gin.H{"error": "No eligible tickets for the current cycle"})
		case errors.Is(err, services.ErrPoolNotActive):
			c.JSON(http.StatusConflict, gin.H{"error": "Pool is not active"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Draw failed: " + err.Error()})
		}
		return
	}

	if err := h.ticketService.FlushPending(c.Request.Context(), poolID); err != nil {
		// Draw committed; deferred tickets will be flushed by the scheduler.
		c.JSON(http.StatusOK, gin.H{"draw": draw, "warning": "Pending ticket flush failed, will retry"})
		return
	}
	if err := h.prizeService.CreditDrawWinners(c.Request.Context(), draw.ID); err != nil {
		c.JSON(http.StatusOK, gin.H{"draw": draw, "warning": "Some winners not yet credited, will retry"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"draw": draw})
}

// GetDraw handles GET /draws/:id
func (h *DrawHandler) GetDraw(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	draw, err := h.drawService.GetDraw(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Draw not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve draw"})
		return
	}
	c.JSON(http.StatusOK, draw)
}

// GetLatestDraw handles GET /pools/:id/draws/latest
func (h *DrawHandler) GetLatestDraw(c *gin.Context) {
	poolID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	draw, err := h.drawService.GetLatestDraw(c.Request.Context(), poolID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No draws for this pool yet"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve latest draw"})
		return
	}
	c.JSON(http.StatusOK, draw)
}

// GetDrawHistory handles GET /pools/:id/draws
func (h *DrawHandler) GetDrawHistory(c *gin.Context) {
	poolID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}
	page, limit := pagination(c)

	draws, err := h.drawService.GetDrawHistory(c.Request.Context(), poolID, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve draw history"})
		return
	}
	c.JSON(http.StatusOK, draws)
}

// GetDrawWinners handles GET /draws/:id/winners
func (h *DrawHandler) GetDrawWinners(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	winners, err := h.drawService.GetWinnersByDraw(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve winners"})
		return
	}
	c.JSON(http.StatusOK, winners)
}

// GetUserWinners handles GET /users/:userId/winners
func (h *DrawHandler) GetUserWinners(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID format"})
		return
	}
	page, limit := pagination(c)

	winners, err := h.drawService.GetWinnersByUser(c.Request.Context(), userID, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve winners"})
		return
	}
	c.JSON(http.StatusOK, winners)
}

// CreditWinner handles POST /admin/winners/:id/credit, the manual retry path
func (h *DrawHandler) CreditWinner(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	txID, err := h.prizeService.CreditWinner(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Winner not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to credit winner: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactionId": txID})
}

// pagination reads page/limit query params with sane bounds
func pagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}
