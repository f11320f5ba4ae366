package domain

import "time"

type OrderEventType string

const (
	OrderEventConfirmed OrderEventType = "order.confirmed"
	OrderEventCompleted OrderEventType = "order.completed"
)

type OrderEvent struct {
	EventID    string         `json:"event_id"`
	Type       OrderEventType `json:"type"`
	OrderID    int64          `json:"order_id"`
	Email      string         `json:"email"`
	ItemIDs    []int64        `json:"item_ids"`
	TotalPrice int64          `json:"total_price"`
	Timestamp  time.Time      `json:"timestamp"`
}
