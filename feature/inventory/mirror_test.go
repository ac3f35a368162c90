package inventory

import (
	"context"
	"testing"

	"shopsync/feature/inventory/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func stringp(s string) *string { return &s }

func TestEnsureMirror_CreatesOnFirstUse(t *testing.T) {
	db := newTestDB(t)
	m := NewMirrorManager(db, zap.NewNop())

	item, err := m.EnsureMirror(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(0), item.Quantity)
	assert.Equal(t, int64(1), item.PartID)
	assert.Equal(t, int64(10), item.LocationID)

	var count int64
	require.NoError(t, db.Model(&models.StockItem{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestEnsureMirror_ReusesFirstByCreationOrder(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&[]models.StockItem{
		{ID: 5, PartID: 1, LocationID: 10, Quantity: 3},
		{ID: 9, PartID: 1, LocationID: 10, Quantity: 7},
	}).Error)

	m := NewMirrorManager(db, zap.NewNop())
	item, err := m.EnsureMirror(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(5), item.ID)

	// No third record appears.
	var count int64
	require.NoError(t, db.Model(&models.StockItem{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestEnsureMirror_IgnoresSerializedAndBuildingItems(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&[]models.StockItem{
		{ID: 1, PartID: 1, LocationID: 10, Quantity: 1, Serial: stringp("SN-1")},
		{ID: 2, PartID: 1, LocationID: 10, Quantity: 1, IsBuilding: true},
	}).Error)

	m := NewMirrorManager(db, zap.NewNop())
	item, err := m.EnsureMirror(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.NotEqual(t, int64(1), item.ID)
	assert.NotEqual(t, int64(2), item.ID)
	assert.Equal(t, int64(0), item.Quantity)
}

func TestApplyCorrection_UsesStocktakeWhenAvailable(t *testing.T) {
	db := newTestDB(t)
	m := NewMirrorManager(db, zap.NewNop())

	item, err := m.EnsureMirror(context.Background(), 1, 10)
	require.NoError(t, err)

	result, err := m.ApplyCorrection(context.Background(), item, 12, "tester", "note")
	require.NoError(t, err)
	assert.True(t, result.Changed)
	assert.Equal(t, MethodStocktake, result.Method)
	assert.Equal(t, int64(12), result.Delta)
	assert.Equal(t, int64(12), item.Quantity)

	var entry models.StockEntry
	require.NoError(t, db.First(&entry).Error)
	assert.Equal(t, MethodStocktake, entry.EntryType)
	assert.Equal(t, int64(12), entry.Quantity)
	assert.Equal(t, int64(12), entry.Delta)
	assert.Equal(t, "tester", entry.User)
	assert.Equal(t, "note", entry.Notes)

	var stored models.StockItem
	require.NoError(t, db.First(&stored, item.ID).Error)
	assert.Equal(t, int64(12), stored.Quantity)
}

func TestApplyCorrection_FallsBackToHardSet(t *testing.T) {
	db := newTestDB(t)
	m := NewMirrorManager(db, zap.NewNop())

	item, err := m.EnsureMirror(context.Background(), 1, 10)
	require.NoError(t, err)

	// Remove the audit capability; the chain must degrade to the direct
	// overwrite instead of failing.
	require.NoError(t, db.Migrator().DropTable(&models.StockEntry{}))

	result, err := m.ApplyCorrection(context.Background(), item, 4, "tester", "note")
	require.NoError(t, err)
	assert.True(t, result.Changed)
	assert.Equal(t, MethodHardSet, result.Method)

	var stored models.StockItem
	require.NoError(t, db.First(&stored, item.ID).Error)
	assert.Equal(t, int64(4), stored.Quantity)
}

func TestApplyCorrection_ZeroDeltaIsNoop(t *testing.T) {
	db := newTestDB(t)
	m := NewMirrorManager(db, zap.NewNop())

	item, err := m.EnsureMirror(context.Background(), 1, 10)
	require.NoError(t, err)

	result, err := m.ApplyCorrection(context.Background(), item, 0, "tester", "note")
	require.NoError(t, err)
	assert.False(t, result.Changed)
	assert.Equal(t, MethodNoop, result.Method)

	var count int64
	require.NoError(t, db.Model(&models.StockEntry{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestApplyCorrection_SecondRunIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	m := NewMirrorManager(db, zap.NewNop())

	item, err := m.EnsureMirror(context.Background(), 1, 10)
	require.NoError(t, err)

	first, err := m.ApplyCorrection(context.Background(), item, 8, "tester", "note")
	require.NoError(t, err)
	assert.True(t, first.Changed)

	// The mirror already matches; reapplying the same target changes
	// nothing and writes no second entry.
	second, err := m.ApplyCorrection(context.Background(), item, 8, "tester", "note")
	require.NoError(t, err)
	assert.False(t, second.Changed)

	var count int64
	require.NoError(t, db.Model(&models.StockEntry{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestApplyCorrection_NegativeDeltaUsesRemoveEntryType(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&models.StockItem{ID: 1, PartID: 1, LocationID: 10, Quantity: 9}).Error)

	var item models.StockItem
	require.NoError(t, db.First(&item, 1).Error)

	// Exercise the directional tier in isolation.
	var result AdjustResult
	err := db.Transaction(func(tx *gorm.DB) error {
		method, err := (deltaAdjuster{}).Apply(tx, &item, 2, "tester", "note")
		result = AdjustResult{Changed: true, Method: method, Delta: 2 - 9}
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, MethodRemoveStock, result.Method)

	var entry models.StockEntry
	require.NoError(t, db.First(&entry).Error)
	assert.Equal(t, int64(-7), entry.Delta)
}
