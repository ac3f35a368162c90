package inventory

import (
	"context"
	"errors"
	"fmt"

	"shopsync/feature/inventory/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrLocationNotUsable is returned when the configured target location does
// not exist, or is structural with no non-structural child to fall back to.
var ErrLocationNotUsable = errors.New("inventory: target location not usable")

// Repository reads parts, categories, and locations from the host
// inventory database. It performs no writes; corrections go through the
// MirrorManager.
type Repository struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewRepository creates a repository on the given connection.
func NewRepository(db *gorm.DB, log *zap.Logger) *Repository {
	return &Repository{db: db, log: log}
}

// SelectParts returns the active parts eligible for a sync run, in a
// stable id order. When categoryIDs is non-empty the selection is
// restricted to those categories and all their descendants.
func (r *Repository) SelectParts(ctx context.Context, categoryIDs []int64) ([]models.Part, error) {
	query := r.db.WithContext(ctx).Where("active = ?", true).Order("id")

	if len(categoryIDs) > 0 {
		expanded, err := r.expandCategories(ctx, categoryIDs)
		if err != nil {
			return nil, err
		}
		if len(expanded) == 0 {
			// None of the configured categories exist; nothing matches.
			return nil, nil
		}
		query = query.Where("category_id IN ?", expanded)
	}

	var parts []models.Part
	if err := query.Find(&parts).Error; err != nil {
		return nil, fmt.Errorf("inventory: failed to select parts: %w", err)
	}
	return parts, nil
}

// expandCategories resolves the configured category ids to the full set
// including every descendant. The category tree is loaded once and walked
// in memory rather than issuing one query per level.
func (r *Repository) expandCategories(ctx context.Context, ids []int64) ([]int64, error) {
	var categories []models.PartCategory
	if err := r.db.WithContext(ctx).Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("inventory: failed to load categories: %w", err)
	}

	exists := make(map[int64]bool, len(categories))
	children := make(map[int64][]int64)
	for _, cat := range categories {
		exists[cat.ID] = true
		if cat.ParentID != nil {
			children[*cat.ParentID] = append(children[*cat.ParentID], cat.ID)
		}
	}

	seen := make(map[int64]bool)
	var result []int64
	queue := make([]int64, 0, len(ids))
	for _, id := range ids {
		if exists[id] {
			queue = append(queue, id)
		}
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if seen[id] {
			continue
		}
		seen[id] = true
		result = append(result, id)
		queue = append(queue, children[id]...)
	}
	return result, nil
}

// ResolveTargetLocation validates the configured target location id. A
// structural location cannot hold stock, so it falls back to its first
// non-structural child; if there is none the location is unusable.
func (r *Repository) ResolveTargetLocation(ctx context.Context, id int64) (*models.StockLocation, error) {
	if id <= 0 {
		return nil, ErrLocationNotUsable
	}

	var loc models.StockLocation
	if err := r.db.WithContext(ctx).First(&loc, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLocationNotUsable
		}
		return nil, fmt.Errorf("inventory: failed to load location %d: %w", id, err)
	}

	if !loc.Structural {
		return &loc, nil
	}

	var child models.StockLocation
	err := r.db.WithContext(ctx).
		Where("parent_id = ? AND structural = ?", loc.ID, false).
		Order("id").
		First(&child).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLocationNotUsable
		}
		return nil, fmt.Errorf("inventory: failed to resolve child of structural location %d: %w", id, err)
	}

	r.log.Info("target location is structural, using child",
		zap.Int64("location", loc.ID),
		zap.Int64("child", child.ID),
	)
	return &child, nil
}
