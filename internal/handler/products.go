package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"itstore-assistant/internal/model"
	"itstore-assistant/internal/service"
)

// ProductsHandler serves product discovery endpoints: trending,
// recommendations and search insights.
type ProductsHandler struct {
	chatService  *service.ChatService
	defaultLimit int
	maxLimit     int
}

// NewProductsHandler creates a new products handler
func NewProductsHandler(chatService *service.ChatService, defaultLimit, maxLimit int) *ProductsHandler {
	return &ProductsHandler{
		chatService:  chatService,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

// Trending handles GET /api/v1/products/trending
func (h *ProductsHandler) Trending(c *gin.Context) {
	limit := h.parseLimit(c.Query("limit"))

	products, err := h.chatService.Trending(c.Request.Context(), int64(limit))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get trending products: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products, "count": len(products)})
}

// Recommendations handles GET /api/v1/products/:id/recommendations
func (h *ProductsHandler) Recommendations(c *gin.Context) {
	productID := c.Param("id")
	limit := h.parseLimit(c.Query("limit"))

	products, err := h.chatService.Recommendations(c.Request.Context(), productID, int64(limit))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Failed to get recommendations: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products, "count": len(products)})
}

// Insights handles POST /api/v1/products/insights
func (h *ProductsHandler) Insights(c *gin.Context) {
	var req model.InsightsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	insights, err := h.chatService.Insights(c.Request.Context(), req.Message)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get insights: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, insights)
}

// parseLimit validates and caps the limit query parameter.
func (h *ProductsHandler) parseLimit(raw string) int {
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return h.defaultLimit
	}
	if limit > h.maxLimit {
		return h.maxLimit
	}
	return limit
}
