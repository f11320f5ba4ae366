package domain

import (
	"strconv"
	"strings"
	"time"
)

type Order struct {
	ID           int64      `json:"id"`
	Email        string     `json:"email"`
	OrderedItems string     `json:"ordered_items"`
	TotalPrice   int64      `json:"total_price"`
	Active       bool       `json:"active"`
	CreatedAt    time.Time  `json:"created_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// ItemIDs parses the denormalized ordered_items snapshot. Malformed
// entries are skipped.
func (o Order) ItemIDs() []int64 {
	if o.OrderedItems == "" {
		return nil
	}
	parts := strings.Split(o.OrderedItems, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// JoinItemIDs renders item ids in the ordered_items format ("1,2,2").
func JoinItemIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}
