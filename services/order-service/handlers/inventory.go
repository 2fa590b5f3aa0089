package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"corpfood-backend/internal/consul"
	"corpfood-backend/internal/orders"

	consulapi "github.com/hashicorp/consul/api"
)

type authHeaderKey int

const authHeaderCtxKey authHeaderKey = 1

// withAuthHeader stores the caller's Authorization header so the inventory
// client can forward it on the service-to-service call.
func withAuthHeader(ctx context.Context, header string) context.Context {
	return context.WithValue(ctx, authHeaderCtxKey, header)
}

func authHeaderFrom(ctx context.Context) string {
	header, _ := ctx.Value(authHeaderCtxKey).(string)
	return header
}

// InventoryClient reserves stock against the menu service over HTTP,
// resolving the instance through consul per call.
type InventoryClient struct {
	client *consulapi.Client
}

func NewInventoryClient(client *consulapi.Client) *InventoryClient {
	return &InventoryClient{client: client}
}

type reserveRequest struct {
	CafeID int64         `json:"cafe_id"`
	Items  []reserveLine `json:"items"`
}

type reserveLine struct {
	MenuItemID int64 `json:"menu_item_id"`
	Quantity   int   `json:"quantity"`
}

type reserveResponse struct {
	Items []orders.ReservedItem `json:"items"`
}

type reserveError struct {
	Error string `json:"error"`
}

func (ic *InventoryClient) Reserve(ctx context.Context, cafeID int64, lines []orders.CreateLine) ([]orders.ReservedItem, error) {
	address, port, err := consul.GetServiceAddress(ic.client, "menu")
	if err != nil {
		return nil, fmt.Errorf("menu service unavailable: %w", err)
	}

	payload := reserveRequest{CafeID: cafeID}
	for _, line := range lines {
		payload.Items = append(payload.Items, reserveLine{MenuItemID: line.MenuItemID, Quantity: line.Quantity})
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshalling reserve request: %w", err)
	}

	reserveURL := fmt.Sprintf("http://%s:%d/menu/internal/reserve", address, port)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reserveURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", authHeaderFrom(ctx))

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error calling menu service: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var reserved reserveResponse
		if err := json.NewDecoder(resp.Body).Decode(&reserved); err != nil {
			return nil, fmt.Errorf("error decoding reserve response: %w", err)
		}
		return reserved.Items, nil
	case http.StatusConflict:
		var msg reserveError
		_ = json.NewDecoder(resp.Body).Decode(&msg)
		if msg.Error != "" {
			return nil, fmt.Errorf("%w: %s", orders.ErrInsufficientStock, msg.Error)
		}
		return nil, orders.ErrInsufficientStock
	case http.StatusNotFound:
		var msg reserveError
		_ = json.NewDecoder(resp.Body).Decode(&msg)
		return nil, fmt.Errorf("%w: %s", orders.ErrNotFound, msg.Error)
	default:
		return nil, fmt.Errorf("menu service returned %s", resp.Status)
	}
}
