package memory

import (
	"github.com/Zhima-Mochi/minishop-storefront/internal/domain/catalog"
	"github.com/Zhima-Mochi/minishop-storefront/internal/domain/identity"
	"github.com/shopspring/decimal"
)

// DemoProducts seeds the catalog when the storefront runs without remote services.
func DemoProducts() []catalog.Product {
	return []catalog.Product{
		{ID: 1, Name: "Canvas Sneaker", Description: "Low-top canvas sneaker", Price: decimal.RequireFromString("59.90"), InventoryCount: 25, Available: true, Image: "/img/sneaker.png"},
		{ID: 2, Name: "Wool Beanie", Description: "Ribbed merino beanie", Price: decimal.RequireFromString("19.00"), InventoryCount: 40, Available: true, Image: "/img/beanie.png"},
		{ID: 3, Name: "Trail Shoe", Description: "Waterproof trail runner", Price: decimal.RequireFromString("129.00"), InventoryCount: 8, Available: true, Image: "/img/trail.png"},
		{ID: 7, Name: "Limited Tote", Description: "Numbered canvas tote", Price: decimal.RequireFromString("35.00"), InventoryCount: 1, Available: true, Image: "/img/tote.png"},
	}
}

func DemoUsers() []identity.UserProfile {
	return []identity.UserProfile{
		{ID: 1, FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"},
		{ID: 2, FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com"},
	}
}
