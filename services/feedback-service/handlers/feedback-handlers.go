package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"corpfood-backend/internal/cafes"
	"corpfood-backend/internal/feedback"
	"corpfood-backend/internal/orders"
	"corpfood-backend/pkg/ctxmanage"
	"corpfood-backend/pkg/logkey"

	"github.com/gin-gonic/gin"
)

// CanGive tells the client whether to render the feedback form for an order.
func (h *Handler) CanGive(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	customerID, _, ok := authenticatedUser(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	orderID, ok := pathID(c, "orderID")
	if !ok {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
		return
	}

	eligibility, err := h.f.CanGive(c.Request.Context(), orderID, customerID)
	if err != nil {
		if errors.Is(err, orders.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		slog.Error("checking feedback eligibility", slog.String(logkey.TraceID, traceId),
			slog.Int64(logkey.OrderID, orderID), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to check eligibility"})
		return
	}
	c.JSON(http.StatusOK, eligibility)
}

func (h *Handler) Create(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	customerID, _, ok := authenticatedUser(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	orderID, ok := pathID(c, "orderID")
	if !ok {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
		return
	}

	var req feedback.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fb, err := h.f.Create(c.Request.Context(), orderID, customerID, req)
	if err != nil {
		switch {
		case errors.Is(err, orders.ErrNotFound):
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		case errors.Is(err, feedback.ErrInvalidRating), errors.Is(err, feedback.ErrTextTooLong),
			errors.Is(err, feedback.ErrNotEligible):
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, feedback.ErrAlreadyGiven):
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			slog.Error("creating feedback", slog.String(logkey.TraceID, traceId),
				slog.Int64(logkey.OrderID, orderID), slog.String(logkey.ERROR, err.Error()))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit feedback"})
		}
		return
	}
	c.JSON(http.StatusCreated, fb)
}

func (h *Handler) GetByOrder(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	customerID, _, ok := authenticatedUser(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	orderID, ok := pathID(c, "orderID")
	if !ok {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
		return
	}

	fb, err := h.f.GetByOrder(c.Request.Context(), orderID, customerID)
	if err != nil {
		switch {
		case errors.Is(err, orders.ErrNotFound):
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		case errors.Is(err, feedback.ErrNotFound):
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "No feedback for this order"})
		default:
			slog.Error("fetching feedback", slog.String(logkey.TraceID, traceId),
				slog.Int64(logkey.OrderID, orderID), slog.String(logkey.ERROR, err.Error()))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch feedback"})
		}
		return
	}
	c.JSON(http.StatusOK, fb)
}

func (h *Handler) ListMine(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	customerID, _, ok := authenticatedUser(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	list, err := h.f.ListMine(c.Request.Context(), customerID)
	if err != nil {
		slog.Error("listing feedback", slog.String(logkey.TraceID, traceId),
			slog.Int64(logkey.UserID, customerID), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to list feedback"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"feedbacks": list})
}

// ListByCafe serves the owner dashboard; the cafe must belong to the caller.
func (h *Handler) ListByCafe(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	ownerID, _, ok := authenticatedUser(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	cafeID, ok := pathID(c, "cafeID")
	if !ok {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid cafe id"})
		return
	}

	if _, err := h.cf.GetForOwner(c.Request.Context(), cafeID, ownerID); err != nil {
		if errors.Is(err, cafes.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Cafe not found"})
			return
		}
		slog.Error("verifying cafe ownership", slog.String(logkey.TraceID, traceId),
			slog.Int64(logkey.CafeID, cafeID), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to list feedback"})
		return
	}

	list, err := h.f.ListByCafe(c.Request.Context(), cafeID)
	if err != nil {
		slog.Error("listing cafe feedback", slog.String(logkey.TraceID, traceId),
			slog.Int64(logkey.CafeID, cafeID), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to list feedback"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"feedbacks": list})
}
