package shopify

// Variant represents one matched catalog entry. It is constructed fresh per
// lookup and never cached across parts.
type Variant struct {
	// ID is the numeric variant id. GraphQL global ids are normalized to
	// this numeric form.
	ID int64 `json:"id"`
	// ProductID is the numeric id of the owning product.
	ProductID int64 `json:"product_id"`
	// Title is the variant display title.
	Title string `json:"title"`
	// SKU is the variant SKU exactly as reported by the shop.
	SKU string `json:"sku"`
	// InventoryItemID is the handle used to query stock levels.
	InventoryItemID int64 `json:"inventory_item_id"`
}

// Location is an external stocking location.
type Location struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// InventoryLevel is the available quantity of one inventory item at one
// location. Available is a pointer because the API reports null for
// untracked items; a null level contributes 0 to the aggregate.
type InventoryLevel struct {
	InventoryItemID int64  `json:"inventory_item_id"`
	LocationID      int64  `json:"location_id"`
	Available       *int64 `json:"available"`
}
