package inventory

import (
	"shopsync/feature/inventory/models"

	"gorm.io/gorm"
)

// Adjustment method tags, recorded in the per-part sync detail so audited
// and unaudited corrections can be told apart after the fact.
const (
	MethodNoop        = "noop"
	MethodStocktake   = "stocktake"
	MethodAddStock    = "add_stock"
	MethodRemoveStock = "remove_stock"
	MethodHardSet     = "hard_set"
)

// AdjustResult reports the outcome of a quantity correction.
type AdjustResult struct {
	// Changed is false when the correction was a no-op (delta 0).
	Changed bool `json:"changed"`
	// Method is the adjustment method tag that was applied.
	Method string `json:"method"`
	// Delta is the signed quantity change.
	Delta int64 `json:"delta"`
}

// Adjuster applies a quantity correction to a stock item inside an open
// transaction. Implementations are ranked: the mirror manager tries each in
// order and uses the first one whose capability is available, so a host
// with a reduced capability surface degrades gracefully instead of failing
// the run.
type Adjuster interface {
	// Available reports whether this adjuster's host capability exists.
	Available(tx *gorm.DB) bool
	// Apply performs the correction and returns the method tag recorded
	// for it. item.Quantity is updated in place on success.
	Apply(tx *gorm.DB, item *models.StockItem, newQuantity int64, actor, note string) (string, error)
}

// stocktakeAdjuster is the preferred, audited correction: one stocktake
// entry recording the resulting quantity and the applied delta.
type stocktakeAdjuster struct{}

func (stocktakeAdjuster) Available(tx *gorm.DB) bool {
	return tx.Migrator().HasTable(&models.StockEntry{})
}

func (stocktakeAdjuster) Apply(tx *gorm.DB, item *models.StockItem, newQuantity int64, actor, note string) (string, error) {
	entry := models.StockEntry{
		StockItemID: item.ID,
		EntryType:   MethodStocktake,
		Quantity:    newQuantity,
		Delta:       newQuantity - item.Quantity,
		User:        actor,
		Notes:       note,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return "", err
	}
	if err := setQuantity(tx, item, newQuantity); err != nil {
		return "", err
	}
	return MethodStocktake, nil
}

// deltaAdjuster is the directional fallback: an add_stock or remove_stock
// entry scaled by the absolute delta.
type deltaAdjuster struct{}

func (deltaAdjuster) Available(tx *gorm.DB) bool {
	return tx.Migrator().HasTable(&models.StockEntry{})
}

func (deltaAdjuster) Apply(tx *gorm.DB, item *models.StockItem, newQuantity int64, actor, note string) (string, error) {
	delta := newQuantity - item.Quantity
	method := MethodAddStock
	if delta < 0 {
		method = MethodRemoveStock
	}
	entry := models.StockEntry{
		StockItemID: item.ID,
		EntryType:   method,
		Quantity:    newQuantity,
		Delta:       delta,
		User:        actor,
		Notes:       note,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return "", err
	}
	if err := setQuantity(tx, item, newQuantity); err != nil {
		return "", err
	}
	return method, nil
}

// directAdjuster is the last resort: a bare quantity overwrite with no
// history. Always available; its method tag marks the record as unaudited.
type directAdjuster struct{}

func (directAdjuster) Available(*gorm.DB) bool { return true }

func (directAdjuster) Apply(tx *gorm.DB, item *models.StockItem, newQuantity int64, _, _ string) (string, error) {
	if err := setQuantity(tx, item, newQuantity); err != nil {
		return "", err
	}
	return MethodHardSet, nil
}

func setQuantity(tx *gorm.DB, item *models.StockItem, newQuantity int64) error {
	if err := tx.Model(&models.StockItem{}).
		Where("id = ?", item.ID).
		Update("quantity", newQuantity).Error; err != nil {
		return err
	}
	item.Quantity = newQuantity
	return nil
}
