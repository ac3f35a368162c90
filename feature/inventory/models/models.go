package models

import "time"

// Part is a managed part in the host inventory system. The core only reads
// identification fields; parts are never created or modified here.
type Part struct {
	ID int64 `gorm:"primaryKey" json:"id"`
	// IPN is the internal part number, used as the lookup key into the
	// external catalog (SKU == IPN).
	IPN        string `gorm:"column:ipn;index" json:"ipn"`
	Name       string `json:"name"`
	Active     bool   `json:"active"`
	CategoryID *int64 `gorm:"index" json:"category_id"`
}

// TableName maps to the host schema.
func (Part) TableName() string { return "part" }

// PartCategory is a node in the host's category tree. Category filters
// include all descendants of the configured categories.
type PartCategory struct {
	ID       int64  `gorm:"primaryKey" json:"id"`
	Name     string `json:"name"`
	ParentID *int64 `gorm:"index" json:"parent_id"`
}

func (PartCategory) TableName() string { return "part_category" }

// StockLocation is a host stocking location. Structural locations are
// containers that cannot hold stock themselves.
type StockLocation struct {
	ID         int64  `gorm:"primaryKey" json:"id"`
	Name       string `json:"name"`
	Structural bool   `json:"structural"`
	ParentID   *int64 `gorm:"index" json:"parent_id"`
}

func (StockLocation) TableName() string { return "stock_location" }

// StockItem is one stock record. The mirror record for a part is the first
// (by id) non-serialized, non-building item at the target location.
type StockItem struct {
	ID         int64   `gorm:"primaryKey" json:"id"`
	PartID     int64   `gorm:"index" json:"part_id"`
	LocationID int64   `gorm:"index" json:"location_id"`
	Quantity   int64   `json:"quantity"`
	Serial     *string `json:"serial"`
	IsBuilding bool    `json:"is_building"`
}

func (StockItem) TableName() string { return "stock_item" }

// StockEntry is an audit-trail row recording a quantity correction. The
// presence of this table is what enables the audited adjustment methods;
// hosts without it degrade to a direct quantity overwrite.
type StockEntry struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	StockItemID int64     `gorm:"index" json:"stock_item_id"`
	// EntryType is the adjustment method: stocktake, add_stock, remove_stock.
	EntryType string `json:"entry_type"`
	// Quantity is the resulting item quantity after the adjustment.
	Quantity int64 `json:"quantity"`
	// Delta is the signed change applied by this entry.
	Delta     int64     `json:"delta"`
	User      string    `json:"user"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

func (StockEntry) TableName() string { return "stock_entry" }
