package sync

import (
	"shopsync/feature/inventory"
	"shopsync/feature/shopify"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates the sync feature. archiver may be nil when report
// archiving is disabled.
func NewFeature(shopCfg shopify.Config, cfg Config, db *gorm.DB, archiver *Archiver, logger *zap.Logger) *Feature {
	repo := inventory.NewRepository(db, logger)
	mirrors := inventory.NewMirrorManager(db, logger)
	svc := NewService(shopCfg, cfg, repo, mirrors, archiver, logger)
	h := NewHandler(svc)
	return &Feature{service: svc, handler: h}
}

// Service exposes the underlying service for CLI use.
func (f *Feature) Service() *Service {
	return f.service
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "sync"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
