package inventory

import (
	"context"
	"testing"

	"shopsync/core/database"
	"shopsync/feature/inventory/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func int64p(v int64) *int64 { return &v }

// newTestDB opens an in-memory database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Part{},
		&models.PartCategory{},
		&models.StockLocation{},
		&models.StockItem{},
		&models.StockEntry{},
	))
	return db
}

func TestSelectParts_ActiveOnlyInOrder(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&[]models.Part{
		{ID: 3, IPN: "c", Active: true},
		{ID: 1, IPN: "a", Active: true},
		{ID: 2, IPN: "b", Active: false},
	}).Error)

	repo := NewRepository(db, zap.NewNop())
	parts, err := repo.SelectParts(context.Background(), nil)
	require.NoError(t, err)

	require.Len(t, parts, 2)
	assert.Equal(t, int64(1), parts[0].ID)
	assert.Equal(t, int64(3), parts[1].ID)
}

func TestSelectParts_CategoryFilterIncludesDescendants(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&[]models.PartCategory{
		{ID: 1, Name: "Electronics"},
		{ID: 2, Name: "Resistors", ParentID: int64p(1)},
		{ID: 3, Name: "SMD", ParentID: int64p(2)},
		{ID: 4, Name: "Enclosures"},
	}).Error)
	require.NoError(t, db.Create(&[]models.Part{
		{ID: 1, IPN: "r1", Active: true, CategoryID: int64p(2)},
		{ID: 2, IPN: "r2", Active: true, CategoryID: int64p(3)},
		{ID: 3, IPN: "e1", Active: true, CategoryID: int64p(4)},
		{ID: 4, IPN: "x1", Active: true},
	}).Error)

	repo := NewRepository(db, zap.NewNop())
	parts, err := repo.SelectParts(context.Background(), []int64{1})
	require.NoError(t, err)

	require.Len(t, parts, 2)
	assert.Equal(t, int64(1), parts[0].ID)
	assert.Equal(t, int64(2), parts[1].ID)
}

func TestSelectParts_UnknownCategoryMatchesNothing(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&models.Part{ID: 1, IPN: "a", Active: true}).Error)

	repo := NewRepository(db, zap.NewNop())
	parts, err := repo.SelectParts(context.Background(), []int64{99})
	require.NoError(t, err)
	assert.Empty(t, parts)
}

func TestResolveTargetLocation(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&[]models.StockLocation{
		{ID: 1, Name: "Warehouse", Structural: true},
		{ID: 2, Name: "Shelf A", ParentID: int64p(1)},
		{ID: 3, Name: "Shelf B", ParentID: int64p(1)},
		{ID: 4, Name: "Standalone"},
		{ID: 5, Name: "Empty Structural", Structural: true},
	}).Error)

	repo := NewRepository(db, zap.NewNop())

	t.Run("plain location resolves to itself", func(t *testing.T) {
		loc, err := repo.ResolveTargetLocation(context.Background(), 4)
		require.NoError(t, err)
		assert.Equal(t, int64(4), loc.ID)
	})

	t.Run("structural falls back to first child", func(t *testing.T) {
		loc, err := repo.ResolveTargetLocation(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, int64(2), loc.ID)
	})

	t.Run("structural without children is unusable", func(t *testing.T) {
		_, err := repo.ResolveTargetLocation(context.Background(), 5)
		assert.ErrorIs(t, err, ErrLocationNotUsable)
	})

	t.Run("missing id is unusable", func(t *testing.T) {
		_, err := repo.ResolveTargetLocation(context.Background(), 99)
		assert.ErrorIs(t, err, ErrLocationNotUsable)
	})

	t.Run("zero id is unusable", func(t *testing.T) {
		_, err := repo.ResolveTargetLocation(context.Background(), 0)
		assert.ErrorIs(t, err, ErrLocationNotUsable)
	})
}
