package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"corpfood-backend/internal/orders"
	"corpfood-backend/internal/payments"
	"corpfood-backend/pkg/ctxmanage"
	"corpfood-backend/pkg/logkey"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListMethods(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"methods": payments.Methods()})
}

type processRequest struct {
	OrderID int64  `json:"order_id" validate:"required,min=1"`
	Method  string `json:"payment_method" validate:"required"`
}

// Process settles a PENDING order. A declined charge is a 200 with
// success=false; the caller may retry with another method or cancel the
// order.
func (h *Handler) Process(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	customerID, _, ok := authenticatedUser(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req processRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	receipt, err := h.p.Process(c.Request.Context(), customerID, req.OrderID, req.Method)
	if err != nil {
		switch {
		case errors.Is(err, orders.ErrNotFound):
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		case errors.Is(err, orders.ErrAlreadyPaid):
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, payments.ErrInvalidAmount), errors.Is(err, payments.ErrAmountTooHigh),
			errors.Is(err, payments.ErrInvalidMethod):
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			slog.Error("processing payment", slog.String(logkey.TraceID, traceId),
				slog.Int64(logkey.OrderID, req.OrderID), slog.String(logkey.ERROR, err.Error()))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to process payment"})
		}
		return
	}

	slog.Info("payment processed", slog.String(logkey.TraceID, traceId),
		slog.Int64(logkey.OrderID, req.OrderID), slog.String(logkey.Method, receipt.Method),
		slog.Bool("Success", receipt.Success))
	c.JSON(http.StatusOK, receipt)
}

type refundRequest struct {
	OrderID int64 `json:"order_id" validate:"required,min=1"`
}

func (h *Handler) Refund(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	customerID, _, ok := authenticatedUser(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req refundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	receipt, err := h.p.Refund(c.Request.Context(), customerID, req.OrderID)
	if err != nil {
		switch {
		case errors.Is(err, orders.ErrNotFound):
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		case errors.Is(err, payments.ErrNotFound):
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "No captured payment to refund"})
		default:
			slog.Error("processing refund", slog.String(logkey.TraceID, traceId),
				slog.Int64(logkey.OrderID, req.OrderID), slog.String(logkey.ERROR, err.Error()))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to process refund"})
		}
		return
	}
	c.JSON(http.StatusOK, receipt)
}

func (h *Handler) History(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	customerID, _, ok := authenticatedUser(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	list, err := h.p.History(c.Request.Context(), customerID)
	if err != nil {
		slog.Error("listing transactions", slog.String(logkey.TraceID, traceId),
			slog.Int64(logkey.UserID, customerID), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to list transactions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": list})
}

func (h *Handler) OrderTransactions(c *gin.Context) {
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

	list, err := h.p.OrderTransactions(c.Request.Context(), customerID, orderID)
	if err != nil {
		if errors.Is(err, orders.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		slog.Error("listing order transactions", slog.String(logkey.TraceID, traceId),
			slog.Int64(logkey.OrderID, orderID), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to list transactions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": list})
}
