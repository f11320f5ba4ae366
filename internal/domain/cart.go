package domain

// CartEntry is one unit of one item pending purchase, joined with the item
// it references.
type CartEntry struct {
	ID       int64  `json:"id"`
	ItemID   int64  `json:"item_id"`
	Title    string `json:"title"`
	Price    int64  `json:"price"`
	ImageURL string `json:"image_url"`
}

type Cart struct {
	Entries    []CartEntry `json:"entries"`
	TotalPrice int64       `json:"total_price"`
}

func NewCart(entries []CartEntry) Cart {
	if entries == nil {
		entries = []CartEntry{}
	}
	var total int64
	for _, e := range entries {
		total += e.Price
	}
	return Cart{Entries: entries, TotalPrice: total}
}

func (c Cart) ItemIDs() []int64 {
	ids := make([]int64, len(c.Entries))
	for i, e := range c.Entries {
		ids[i] = e.ItemID
	}
	return ids
}

func (c Cart) IsEmpty() bool {
	return len(c.Entries) == 0
}
