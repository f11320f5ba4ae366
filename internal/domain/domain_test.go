package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCart(t *testing.T) {
	t.Run("sums entry prices", func(t *testing.T) {
		cart := NewCart([]CartEntry{
			{ID: 10, ItemID: 1, Price: 120},
			{ID: 11, ItemID: 2, Price: 150},
		})

		assert.Equal(t, int64(270), cart.TotalPrice)
		assert.Equal(t, []int64{1, 2}, cart.ItemIDs())
		assert.False(t, cart.IsEmpty())
	})

	t.Run("empty cart has zero total and no nil slice", func(t *testing.T) {
		cart := NewCart(nil)

		assert.Equal(t, int64(0), cart.TotalPrice)
		assert.NotNil(t, cart.Entries)
		assert.True(t, cart.IsEmpty())
	})
}

func TestOrderItemIDs(t *testing.T) {
	order := Order{OrderedItems: JoinItemIDs([]int64{1, 2, 2})}

	assert.Equal(t, "1,2,2", order.OrderedItems)
	assert.Equal(t, []int64{1, 2, 2}, order.ItemIDs())
	assert.Nil(t, Order{}.ItemIDs())
	assert.Equal(t, []int64{3}, Order{OrderedItems: "x, 3"}.ItemIDs())
}
