package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"corpfood-backend/internal/cafes"
	"corpfood-backend/pkg/ctxmanage"
	"corpfood-backend/pkg/logkey"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListActive(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	list, err := h.cf.ListActive(c.Request.Context())
	if err != nil {
		slog.Error("listing cafes", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to list cafes"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cafes": list})
}

func (h *Handler) Get(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	cafeID, ok := pathID(c, "id")
	if !ok {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid cafe id"})
		return
	}

	cafe, err := h.cf.Get(c.Request.Context(), cafeID)
	if err != nil {
		if errors.Is(err, cafes.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Cafe not found"})
			return
		}
		slog.Error("fetching cafe", slog.String(logkey.TraceID, traceId),
			slog.Int64(logkey.CafeID, cafeID), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cafe"})
		return
	}
	c.JSON(http.StatusOK, cafe)
}

func (h *Handler) Create(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	ownerID, _, ok := authenticatedUser(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req cafes.NewCafe
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cafe, err := h.cf.Insert(c.Request.Context(), ownerID, req)
	if err != nil {
		slog.Error("creating cafe", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to create cafe"})
		return
	}
	c.JSON(http.StatusCreated, cafe)
}

func (h *Handler) ListMine(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	ownerID, _, ok := authenticatedUser(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	list, err := h.cf.ListByOwner(c.Request.Context(), ownerID)
	if err != nil {
		slog.Error("listing owner cafes", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to list cafes"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cafes": list})
}

func (h *Handler) Update(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	ownerID, _, ok := authenticatedUser(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	cafeID, ok := pathID(c, "id")
	if !ok {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid cafe id"})
		return
	}

	var req cafes.UpdateCafe
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	cafe, err := h.cf.Update(c.Request.Context(), cafeID, ownerID, req)
	if err != nil {
		if errors.Is(err, cafes.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Cafe not found"})
			return
		}
		slog.Error("updating cafe", slog.String(logkey.TraceID, traceId),
			slog.Int64(logkey.CafeID, cafeID), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cafe"})
		return
	}
	c.JSON(http.StatusOK, cafe)
}
