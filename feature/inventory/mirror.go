package inventory

import (
	"context"
	"errors"
	"fmt"

	"shopsync/feature/inventory/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MirrorManager maintains the mirror stock records: exactly one canonical
// non-serialized stock item per (part, target location) pair, mutated only
// through quantity corrections.
type MirrorManager struct {
	db        *gorm.DB
	log       *zap.Logger
	adjusters []Adjuster
}

// NewMirrorManager creates a manager with the standard ranked adjuster
// chain: audited stocktake, then directional add/remove entries, then a
// direct quantity overwrite as last resort.
func NewMirrorManager(db *gorm.DB, log *zap.Logger) *MirrorManager {
	return &MirrorManager{
		db:  db,
		log: log,
		adjusters: []Adjuster{
			stocktakeAdjuster{},
			deltaAdjuster{},
			directAdjuster{},
		},
	}
}

// EnsureMirror returns the canonical mirror record for (part, location),
// creating one with quantity 0 when none exists. When several candidate
// records exist the first by creation order is reused; a second mirror
// record is never created.
func (m *MirrorManager) EnsureMirror(ctx context.Context, partID, locationID int64) (*models.StockItem, error) {
	var item models.StockItem
	err := m.db.WithContext(ctx).
		Where("part_id = ? AND location_id = ? AND serial IS NULL AND is_building = ?", partID, locationID, false).
		Order("id").
		First(&item).Error
	if err == nil {
		return &item, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("inventory: failed to look up mirror record: %w", err)
	}

	item = models.StockItem{PartID: partID, LocationID: locationID, Quantity: 0}
	if err := m.db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, fmt.Errorf("inventory: failed to create mirror record: %w", err)
	}
	m.log.Debug("created mirror record",
		zap.Int64("part", partID),
		zap.Int64("location", locationID),
	)
	return &item, nil
}

// ApplyCorrection sets the mirror record to newQuantity through the first
// available adjuster, inside a single transaction so a failure cannot
// leave the record half-updated. A zero delta is a no-op reported as
// Changed=false.
func (m *MirrorManager) ApplyCorrection(ctx context.Context, item *models.StockItem, newQuantity int64, actor, note string) (AdjustResult, error) {
	delta := newQuantity - item.Quantity
	if delta == 0 {
		return AdjustResult{Changed: false, Method: MethodNoop, Delta: 0}, nil
	}

	var result AdjustResult
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, adjuster := range m.adjusters {
			if !adjuster.Available(tx) {
				continue
			}
			method, err := adjuster.Apply(tx, item, newQuantity, actor, note)
			if err != nil {
				return err
			}
			result = AdjustResult{Changed: true, Method: method, Delta: delta}
			return nil
		}
		// Unreachable: the direct adjuster is always available.
		return errors.New("inventory: no adjustment capability available")
	})
	if err != nil {
		return AdjustResult{}, fmt.Errorf("inventory: correction failed: %w", err)
	}

	if result.Method == MethodHardSet {
		m.log.Warn("applied unaudited quantity overwrite",
			zap.Int64("item", item.ID),
			zap.Int64("delta", delta),
		)
	}
	return result, nil
}
