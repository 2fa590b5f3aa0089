package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"corpfood-backend/internal/cart"
	"corpfood-backend/internal/consul"
	"corpfood-backend/pkg/ctxmanage"
	"corpfood-backend/pkg/logkey"
	"corpfood-backend/pkg/money"

	"github.com/gin-gonic/gin"
)

// MenuItemResponse is the slice of the menu service's item payload the cart
// needs for its advisory stock check and line snapshot.
type MenuItemResponse struct {
	ID                int64  `json:"id"`
	Name              string `json:"name"`
	PriceCents        int64  `json:"price_cents"`
	AvailableQuantity int    `json:"available_quantity"`
	IsAvailable       bool   `json:"is_available"`
	CafeID            int64  `json:"cafe_id"`
	CafeName          string `json:"cafe_name"`
}

func (h *Handler) View(c *gin.Context) {
	userID, _, ok := authenticatedUser(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	snapshot := h.store.Snapshot(userID)
	c.JSON(http.StatusOK, gin.H{
		"cart":           snapshot,
		"total_cents":    snapshot.Total(),
		"total_display":  snapshot.Total().String(),
		"item_count":     snapshot.ItemCount(),
		"total_quantity": snapshot.TotalQuantity(),
	})
}

func (h *Handler) Count(c *gin.Context) {
	userID, _, ok := authenticatedUser(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	snapshot := h.store.Snapshot(userID)
	c.JSON(http.StatusOK, gin.H{
		"item_count":     snapshot.ItemCount(),
		"total_quantity": snapshot.TotalQuantity(),
	})
}

type addItemRequest struct {
	MenuItemID int64 `json:"menu_item_id" binding:"required,min=1"`
}

// AddItem fetches the live item from the menu service, runs an advisory
// availability check, and puts one unit into the cart. The check is a
// courtesy; the order service re-validates stock authoritatively at checkout.
func (h *Handler) AddItem(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	userID, _, ok := authenticatedUser(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "menu_item_id is required"})
		return
	}

	item, status, err := h.fetchMenuItem(c.Request.Context(), req.MenuItemID, c.Request.Header.Get("Authorization"), traceId)
	if err != nil {
		if status == http.StatusNotFound {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Menu item not found"})
			return
		}
		slog.Error("fetching menu item", slog.String(logkey.TraceID, traceId),
			slog.Int64(logkey.ItemID, req.MenuItemID), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Menu service unavailable"})
		return
	}

	if !item.IsAvailable || item.AvailableQuantity < 1 {
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "Menu item is not available"})
		return
	}

	h.store.With(userID, func(ct *cart.Cart) {
		ct.AddItem(cart.Line{
			ItemID:    item.ID,
			Name:      item.Name,
			UnitPrice: money.Amount(item.PriceCents),
			CafeID:    item.CafeID,
		}, item.CafeName)
	})

	snapshot := h.store.Snapshot(userID)
	c.JSON(http.StatusOK, gin.H{"cart": snapshot, "total_cents": snapshot.Total()})
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) UpdateQuantity(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	userID, _, ok := authenticatedUser(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	itemID, ok := pathID(c, "id")
	if !ok {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid item id"})
		return
	}

	var req updateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	// Advisory ceiling only when raising the quantity; zero or less removes
	// the line without a menu round trip.
	if req.Quantity > 0 {
		item, status, err := h.fetchMenuItem(c.Request.Context(), itemID, c.Request.Header.Get("Authorization"), traceId)
		if err == nil && status == http.StatusOK && req.Quantity > item.AvailableQuantity {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"error": fmt.Sprintf("Only %d units available", item.AvailableQuantity),
			})
			return
		}
	}

	h.store.With(userID, func(ct *cart.Cart) {
		ct.UpdateQuantity(itemID, req.Quantity)
	})

	snapshot := h.store.Snapshot(userID)
	c.JSON(http.StatusOK, gin.H{"cart": snapshot, "total_cents": snapshot.Total()})
}

func (h *Handler) RemoveItem(c *gin.Context) {
	userID, _, ok := authenticatedUser(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	itemID, ok := pathID(c, "id")
	if !ok {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid item id"})
		return
	}

	h.store.With(userID, func(ct *cart.Cart) {
		ct.RemoveItem(itemID)
	})

	snapshot := h.store.Snapshot(userID)
	c.JSON(http.StatusOK, gin.H{"cart": snapshot, "total_cents": snapshot.Total()})
}

func (h *Handler) Clear(c *gin.Context) {
	userID, _, ok := authenticatedUser(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	h.store.Drop(userID)
	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
}

func (h *Handler) fetchMenuItem(ctx context.Context, itemID int64, authHeader, traceId string) (MenuItemResponse, int, error) {
	address, port, err := consul.GetServiceAddress(h.client, "menu")
	if err != nil {
		return MenuItemResponse{}, 0, fmt.Errorf("menu service unavailable: %w", err)
	}

	itemURL := fmt.Sprintf("http://%s:%d/menu/items/%d", address, port, itemID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, itemURL, nil)
	if err != nil {
		return MenuItemResponse{}, 0, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Authorization", authHeader)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return MenuItemResponse{}, 0, fmt.Errorf("error fetching menu service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return MenuItemResponse{}, resp.StatusCode, fmt.Errorf("menu service returned %s", resp.Status)
	}

	var item MenuItemResponse
	if err := json.NewDecoder(resp.Body).Decode(&item); err != nil {
		return MenuItemResponse{}, resp.StatusCode, fmt.Errorf("error decoding menu response: %w", err)
	}
	return item, resp.StatusCode, nil
}
