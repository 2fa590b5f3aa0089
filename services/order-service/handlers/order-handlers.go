package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"corpfood-backend/internal/orders"
	"corpfood-backend/pkg/ctxmanage"
	"corpfood-backend/pkg/logkey"

	"github.com/gin-gonic/gin"
)

// Create turns the submitted cart snapshot into a PENDING order. Stock is
// re-checked and reserved server-side; payment happens afterwards against
// the created order.
func (h *Handler) Create(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	customerID, _, ok := authenticatedUser(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req orders.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := withAuthHeader(c.Request.Context(), c.Request.Header.Get("Authorization"))
	order, err := h.o.Create(ctx, customerID, req)
	if err != nil {
		switch {
		case errors.Is(err, orders.ErrEmptyOrder), errors.Is(err, orders.ErrInvalidQuantity):
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, orders.ErrInsufficientStock):
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, orders.ErrNotFound):
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			slog.Error("creating order", slog.String(logkey.TraceID, traceId),
				slog.Int64(logkey.UserID, customerID), slog.String(logkey.ERROR, err.Error()))
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to create order"})
		}
		return
	}

	slog.Info("order created", slog.String(logkey.TraceID, traceId),
		slog.Int64(logkey.OrderID, order.ID), slog.String("OrderNumber", order.OrderNumber))
	c.JSON(http.StatusCreated, order)
}

func (h *Handler) Get(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	customerID, _, ok := authenticatedUser(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	orderID, ok := pathID(c, "id")
	if !ok {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
		return
	}

	order, err := h.o.Get(c.Request.Context(), orderID, customerID)
	if err != nil {
		if errors.Is(err, orders.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		slog.Error("fetching order", slog.String(logkey.TraceID, traceId),
			slog.Int64(logkey.OrderID, orderID), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order"})
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) ListMine(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	customerID, _, ok := authenticatedUser(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	list, err := h.o.ListMine(c.Request.Context(), customerID)
	if err != nil {
		slog.Error("listing orders", slog.String(logkey.TraceID, traceId),
			slog.Int64(logkey.UserID, customerID), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to list orders"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": list})
}

// Cancel is customer-initiated and only valid while the order is PENDING.
func (h *Handler) Cancel(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	customerID, _, ok := authenticatedUser(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	orderID, ok := pathID(c, "id")
	if !ok {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
		return
	}

	order, err := h.o.Cancel(c.Request.Context(), orderID, customerID)
	if err != nil {
		switch {
		case errors.Is(err, orders.ErrNotFound):
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		case errors.Is(err, orders.ErrInvalidState):
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			slog.Error("cancelling order", slog.String(logkey.TraceID, traceId),
				slog.Int64(logkey.OrderID, orderID), slog.String(logkey.ERROR, err.Error()))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel order"})
		}
		return
	}
	c.JSON(http.StatusOK, order)
}

type updateStatusRequest struct {
	Status            string `json:"status" validate:"required"`
	EstimatedPrepTime *int   `json:"estimated_preparation_time" validate:"omitempty,min=0"`
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	ownerID, _, ok := authenticatedUser(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	orderID, ok := pathID(c, "id")
	if !ok {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.o.UpdateStatus(c.Request.Context(), orderID, ownerID, req.Status, req.EstimatedPrepTime)
	if err != nil {
		switch {
		case errors.Is(err, orders.ErrNotFound):
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		case errors.Is(err, orders.ErrInvalidStatus), errors.Is(err, orders.ErrInvalidState):
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			slog.Error("updating order status", slog.String(logkey.TraceID, traceId),
				slog.Int64(logkey.OrderID, orderID), slog.String(logkey.ERROR, err.Error()))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order"})
		}
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) ListForCafe(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	ownerID, _, ok := authenticatedUser(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var status *orders.Status
	if v := c.Query("status"); v != "" {
		parsed, err := orders.ParseStatus(v)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		status = &parsed
	}

	list, err := h.o.ListForOwner(c.Request.Context(), ownerID, status)
	if err != nil {
		slog.Error("listing cafe orders", slog.String(logkey.TraceID, traceId),
			slog.Int64(logkey.UserID, ownerID), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to list orders"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": list})
}
