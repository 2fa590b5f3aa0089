package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"corpfood-backend/internal/menu"
	"corpfood-backend/pkg/ctxmanage"
	"corpfood-backend/pkg/logkey"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListCategories(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	list, err := h.m.ListCategories(c.Request.Context())
	if err != nil {
		slog.Error("listing categories", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to list categories"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": list})
}

func (h *Handler) CreateCategory(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	var req menu.NewCategory
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category, err := h.m.CreateCategory(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, menu.ErrCategoryExists) {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		slog.Error("creating category", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to create category"})
		return
	}
	c.JSON(http.StatusCreated, category)
}

// ListItems is the public browse endpoint; every filter is optional.
func (h *Handler) ListItems(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	var filter menu.Filter
	if v := c.Query("cafe_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid cafe_id"})
			return
		}
		filter.CafeID = id
	}
	if v := c.Query("category_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid category_id"})
			return
		}
		filter.CategoryID = id
	}
	if v := c.Query("min_price"); v != "" {
		cents, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid min_price"})
			return
		}
		filter.MinPriceCents = &cents
	}
	if v := c.Query("max_price"); v != "" {
		cents, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid max_price"})
			return
		}
		filter.MaxPriceCents = &cents
	}
	filter.AvailableOnly = c.Query("available_only") == "true"

	list, err := h.m.ListFiltered(c.Request.Context(), filter)
	if err != nil {
		slog.Error("listing items", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to list items"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": list})
}

func (h *Handler) SearchItems(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	term := strings.TrimSpace(c.Query("q"))
	if term == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Query parameter q is required"})
		return
	}

	list, err := h.m.Search(c.Request.Context(), term)
	if err != nil {
		slog.Error("searching items", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to search items"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": list})
}

func (h *Handler) GetItem(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	itemID, ok := pathID(c, "id")
	if !ok {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid item id"})
		return
	}

	item, err := h.m.GetItem(c.Request.Context(), itemID)
	if err != nil {
		if errors.Is(err, menu.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Menu item not found"})
			return
		}
		slog.Error("fetching item", slog.String(logkey.TraceID, traceId),
			slog.Int64(logkey.ItemID, itemID), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch item"})
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handler) ListCafeItems(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	cafeID, ok := pathID(c, "id")
	if !ok {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid cafe id"})
		return
	}

	list, err := h.m.ListPublic(c.Request.Context(), cafeID)
	if err != nil {
		slog.Error("listing cafe items", slog.String(logkey.TraceID, traceId),
			slog.Int64(logkey.CafeID, cafeID), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to list items"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": list})
}

func (h *Handler) ListCafeItemsForOwner(c *gin.Context) {
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

	list, err := h.m.ListForOwner(c.Request.Context(), cafeID, ownerID)
	if err != nil {
		slog.Error("listing owner items", slog.String(logkey.TraceID, traceId),
			slog.Int64(logkey.CafeID, cafeID), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to list items"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": list})
}

func (h *Handler) CreateItem(c *gin.Context) {
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

	var req menu.NewItem
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.m.InsertItem(c.Request.Context(), cafeID, ownerID, req)
	if err != nil {
		switch {
		case errors.Is(err, menu.ErrCafeNotFound):
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Cafe not found"})
		case errors.Is(err, menu.ErrCategoryNotFound):
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Category not found"})
		default:
			slog.Error("creating item", slog.String(logkey.TraceID, traceId),
				slog.Int64(logkey.CafeID, cafeID), slog.String(logkey.ERROR, err.Error()))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to create item"})
		}
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *Handler) UpdateItem(c *gin.Context) {
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

	var req menu.UpdateItem
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	item, err := h.m.UpdateItem(c.Request.Context(), itemID, ownerID, req)
	if err != nil {
		if errors.Is(err, menu.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Menu item not found"})
			return
		}
		slog.Error("updating item", slog.String(logkey.TraceID, traceId),
			slog.Int64(logkey.ItemID, itemID), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to update item"})
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handler) DeleteItem(c *gin.Context) {
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

	deleted, err := h.m.DeleteItem(c.Request.Context(), itemID, ownerID)
	if err != nil {
		if errors.Is(err, menu.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Menu item not found"})
			return
		}
		slog.Error("deleting item", slog.String(logkey.TraceID, traceId),
			slog.Int64(logkey.ItemID, itemID), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete item"})
		return
	}

	if deleted {
		c.JSON(http.StatusOK, gin.H{"message": "Menu item deleted"})
		return
	}
	// Items referenced by past orders are retired instead of removed.
	c.JSON(http.StatusOK, gin.H{"message": "Menu item retired from sale"})
}
