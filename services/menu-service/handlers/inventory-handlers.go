package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"corpfood-backend/internal/menu"
	"corpfood-backend/pkg/ctxmanage"
	"corpfood-backend/pkg/logkey"

	"github.com/gin-gonic/gin"
)

type availabilityRequest struct {
	IsAvailable *bool `json:"is_available" validate:"required"`
}

func (h *Handler) SetAvailability(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	ownerID, _, ok := authenticatedUser(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	itemID, ok := pathID(c, "id")
	if !ok {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid item id"})
		return
	}

	var req availabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "is_available is required"})
		return
	}

	item, err := h.m.SetAvailability(c.Request.Context(), itemID, ownerID, *req.IsAvailable)
	if err != nil {
		if errors.Is(err, menu.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Menu item not found"})
			return
		}
		slog.Error("setting availability", slog.String(logkey.TraceID, traceId),
			slog.Int64(logkey.ItemID, itemID), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to update availability"})
		return
	}
	c.JSON(http.StatusOK, item)
}

type restockRequest struct {
	// Quantity to add; omitted means reset to the daily maximum.
	Quantity *int `json:"quantity" validate:"omitempty,min=1"`
}

func (h *Handler) RestockItem(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	ownerID, _, ok := authenticatedUser(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	itemID, ok := pathID(c, "id")
	if !ok {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid item id"})
		return
	}

	var req restockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.m.RestockItem(c.Request.Context(), itemID, ownerID, req.Quantity)
	if err != nil {
		if errors.Is(err, menu.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Menu item not found"})
			return
		}
		slog.Error("restocking item", slog.String(logkey.TraceID, traceId),
			slog.Int64(logkey.ItemID, itemID), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to restock item"})
		return
	}
	c.JSON(http.StatusOK, item)
}

type reserveRequest struct {
	CafeID int64              `json:"cafe_id" validate:"required,min=1"`
	Items  []menu.ReserveLine `json:"items" validate:"required,min=1,dive"`
}

// Reserve is the service-to-service endpoint the order checkout calls. It
// atomically checks and decrements stock for every line; a single shortfall
// fails the whole reservation with 409.
func (h *Handler) Reserve(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	var req reserveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reserved, err := h.m.Reserve(c.Request.Context(), req.CafeID, req.Items)
	if err != nil {
		switch {
		case errors.Is(err, menu.ErrInvalidQuantity):
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, menu.ErrCafeNotFound):
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Cafe not found or not active"})
		case errors.Is(err, menu.ErrNotFound):
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, menu.ErrItemUnavailable), errors.Is(err, menu.ErrInsufficientStock):
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			slog.Error("reserving stock", slog.String(logkey.TraceID, traceId),
				slog.Int64(logkey.CafeID, req.CafeID), slog.String(logkey.ERROR, err.Error()))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to reserve stock"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": reserved})
}
