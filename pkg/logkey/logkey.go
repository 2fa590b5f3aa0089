// Package logkey holds the shared slog attribute keys so every service logs
// the same field names.
package logkey

const (
	TraceID = "TRACE ID"
	ERROR   = "ERROR"

	UserID   = "UserID"
	CafeID   = "CafeID"
	OrderID  = "OrderID"
	ItemID   = "MenuItemID"
	Quantity = "Quantity"
	Status   = "Status"
	Method   = "Method"
	Topic    = "Topic"
)
