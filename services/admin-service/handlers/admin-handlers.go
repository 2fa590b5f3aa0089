package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"corpfood-backend/internal/admin"
	"corpfood-backend/internal/users"
	"corpfood-backend/pkg/ctxmanage"
	"corpfood-backend/pkg/logkey"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Stats(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	stats, err := h.a.PlatformStats(c.Request.Context())
	if err != nil {
		slog.Error("fetching platform stats", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) ListUsers(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	list, err := h.a.ListUsers(c.Request.Context())
	if err != nil {
		slog.Error("listing users", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to list users"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": list})
}

// CreateUser lets an administrator provision accounts of any type, including
// cafe owners and other administrators.
func (h *Handler) CreateUser(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	var req users.NewUser
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.u.InsertUser(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, users.ErrDuplicateUser) {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		slog.Error("creating user", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}
	c.JSON(http.StatusCreated, user)
}

type setActiveRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

func (h *Handler) SetUserActive(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	userID, ok := pathID(c, "id")
	if !ok {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}

	var req setActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "is_active is required"})
		return
	}

	if err := h.a.SetUserActive(c.Request.Context(), userID, *req.IsActive); err != nil {
		if errors.Is(err, admin.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		slog.Error("updating user", slog.String(logkey.TraceID, traceId),
			slog.Int64(logkey.UserID, userID), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User updated"})
}

func (h *Handler) ListCafes(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	list, err := h.a.ListCafes(c.Request.Context())
	if err != nil {
		slog.Error("listing cafes", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to list cafes"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cafes": list})
}

func (h *Handler) ListOrders(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	list, err := h.a.ListOrders(c.Request.Context(), c.Query("status"))
	if err != nil {
		slog.Error("listing orders", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to list orders"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": list})
}

func (h *Handler) ListItems(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	list, err := h.a.ListItems(c.Request.Context())
	if err != nil {
		slog.Error("listing menu items", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to list menu items"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": list})
}

func (h *Handler) SetCafeActive(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	cafeID, ok := pathID(c, "id")
	if !ok {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid cafe id"})
		return
	}

	var req setActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "is_active is required"})
		return
	}

	if err := h.a.SetCafeActive(c.Request.Context(), cafeID, *req.IsActive); err != nil {
		if errors.Is(err, admin.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Cafe not found"})
			return
		}
		slog.Error("updating cafe", slog.String(logkey.TraceID, traceId),
			slog.Int64(logkey.CafeID, cafeID), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cafe"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cafe updated"})
}
