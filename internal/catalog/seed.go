package catalog

import "github.com/joao-fontenele/coffeeshop/internal/domain"

// DefaultItems is the menu written on first start. Image paths are served
// from the static directory.
func DefaultItems() []domain.Item {
	return []domain.Item{
		{
			ID:          1,
			Title:       "#1. Latte",
			Description: "Hot milk and espresso under a light foam with a hint of vanilla.",
			ImageURL:    "/static/img/coffee/latte.jpg",
			Price:       120,
		},
		{
			ID:          2,
			Title:       "#2. Cappuccino",
			Description: "Hot milk, dense foam and strong espresso finished with cocoa.",
			ImageURL:    "/static/img/coffee/cappuccino.jpg",
			Price:       120,
		},
		{
			ID:          3,
			Title:       "#3. Raf",
			Description: "Creamy milk and espresso with chocolate and cinnamon.",
			ImageURL:    "/static/img/coffee/raf.jpg",
			Price:       150,
		},
		{
			ID:          4,
			Title:       "#4. Americano",
			Description: "Espresso lengthened with hot water.",
			ImageURL:    "/static/img/coffee/americano.jpg",
			Price:       90,
		},
		{
			ID:          5,
			Title:       "#5. Espresso",
			Description: "A short, strong Italian classic.",
			ImageURL:    "/static/img/coffee/espresso.jpg",
			Price:       90,
		},
		{
			ID:          6,
			Title:       "#6. Frappe",
			Description: "Iced coffee with whipped milk cream.",
			ImageURL:    "/static/img/coffee/frappe.jpg",
			Price:       180,
		},
	}
}
