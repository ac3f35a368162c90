package sync

import (
	"errors"

	"shopsync/core/logger"
	"shopsync/feature/shopify"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the sync feature.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the sync routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/sync")
	group.Post("/run", h.HandleRunSync)
	group.Get("/last", h.HandleLastReport)
	group.Get("/debug-sku", h.HandleDebugSKU)
	group.Get("/unmatched", h.HandleUnmatched)
}

// HandleRunSync triggers a reconciliation run and returns its report. A
// trigger arriving while a run is in flight receives that run's report
// instead of starting a second one.
func (h *Handler) HandleRunSync(c *fiber.Ctx) error {
	actor := c.Query("actor", "api")
	l := logger.WithRayID(h.service.log, c)

	report := h.service.RunSync(c.Context(), actor)
	if !report.OK {
		l.Warn("sync run did not complete", zap.String("error", report.Error))
		return c.Status(fiber.StatusUnprocessableEntity).JSON(report)
	}
	return c.JSON(report)
}

// HandleLastReport returns the most recent run report.
func (h *Handler) HandleLastReport(c *fiber.Ctx) error {
	report := h.service.LastReport()
	if report == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "no run has completed yet",
		})
	}
	return c.JSON(report)
}

// HandleDebugSKU resolves a single SKU and returns the per-location
// availability breakdown behind the aggregate.
func (h *Handler) HandleDebugSKU(c *fiber.Ctx) error {
	sku := c.Query("sku")
	if sku == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "query parameter 'sku' is required",
		})
	}
	l := logger.WithRayID(h.service.log, c)

	probe, err := h.service.FindVariantDebug(c.Context(), sku)
	if err != nil {
		if errors.Is(err, shopify.ErrVariantNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "no variant matches this SKU",
			})
		}
		var cfgErr *ConfigurationError
		if errors.As(err, &cfgErr) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error": cfgErr.Error(),
			})
		}
		l.Error("SKU probe failed", zap.String("sku", sku), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(probe)
}

// HandleUnmatched lists part IPNs with and without a catalog match.
func (h *Handler) HandleUnmatched(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.log, c)

	report, err := h.service.ListUnmatchedSKUs(c.Context())
	if err != nil {
		var cfgErr *ConfigurationError
		if errors.As(err, &cfgErr) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error": cfgErr.Error(),
			})
		}
		l.Error("Unmatched scan failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(report)
}
