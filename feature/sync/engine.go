package sync

import (
	"context"
	"errors"
	"strings"
	"time"

	"shopsync/feature/inventory"
	"shopsync/feature/inventory/models"
	"shopsync/feature/shopify"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Catalog resolves a SKU to its external product variant.
type Catalog interface {
	FindVariantBySKU(ctx context.Context, sku string) (*shopify.Variant, error)
}

// Availability aggregates the externally-reported quantity for an
// inventory item.
type Availability interface {
	AvailableQuantity(ctx context.Context, inventoryItemID int64, restrictToLocation string) (int, error)
}

// PartSource selects the host parts eligible for a run.
type PartSource interface {
	SelectParts(ctx context.Context, categoryIDs []int64) ([]models.Part, error)
}

// MirrorStore owns the mirror stock records and their corrections.
type MirrorStore interface {
	EnsureMirror(ctx context.Context, partID, locationID int64) (*models.StockItem, error)
	ApplyCorrection(ctx context.Context, item *models.StockItem, newQuantity int64, actor, note string) (inventory.AdjustResult, error)
}

// Options is the resolved per-run policy. Unlike Config it carries the
// already-validated target location id and parsed category set.
type Options struct {
	TargetLocationID     int64
	RestrictLocationName string
	DeltaGuard           int64
	DryRun               bool
	Note                 string
	Categories           []int64
	Throttle             time.Duration
	MaxParts             int
	PreviewLimit         int
}

// Engine drives one reconciliation run: select parts, resolve each IPN to
// a variant, aggregate availability, and correct the mirror record. It
// holds no state between runs; every run gets a fresh engine with a fresh
// location cache behind its Availability.
type Engine struct {
	catalog Catalog
	levels  Availability
	mirrors MirrorStore
	parts   PartSource
	log     *zap.Logger
	opts    Options

	sleep func(time.Duration)
}

// NewEngine assembles an engine for a single run.
func NewEngine(catalog Catalog, levels Availability, mirrors MirrorStore, parts PartSource, log *zap.Logger, opts Options) *Engine {
	return &Engine{
		catalog: catalog,
		levels:  levels,
		mirrors: mirrors,
		parts:   parts,
		log:     log,
		opts:    opts,
		sleep:   time.Sleep,
	}
}

// Run executes the reconciliation and always returns a report. Per-part
// failures are tagged in the report and never abort the run; only part
// selection failure or context cancellation clears Report.OK.
func (e *Engine) Run(ctx context.Context, actor string) *Report {
	report := &Report{
		RunID:     uuid.NewString(),
		OK:        true,
		DryRun:    e.opts.DryRun,
		StartedAt: time.Now().UTC(),
	}
	defer func() { report.FinishedAt = time.Now().UTC() }()

	log := e.log.With(zap.String("run_id", report.RunID))
	log.Info("starting reconciliation run",
		zap.Bool("dry_run", e.opts.DryRun),
		zap.Int64("target_location", e.opts.TargetLocationID),
	)

	parts, err := e.parts.SelectParts(ctx, e.opts.Categories)
	if err != nil {
		log.Error("part selection failed", zap.Error(err))
		report.OK = false
		report.Error = err.Error()
		return report
	}

	for i, part := range parts {
		if e.opts.MaxParts > 0 && report.TotalParts >= e.opts.MaxParts {
			log.Info("part cap reached", zap.Int("max_parts", e.opts.MaxParts))
			break
		}
		if err := ctx.Err(); err != nil {
			log.Warn("run cancelled", zap.Int("processed", report.TotalParts))
			report.OK = false
			report.Error = err.Error()
			break
		}
		if i > 0 && e.opts.Throttle > 0 {
			e.sleep(e.opts.Throttle)
		}
		e.processPart(ctx, log, part, actor, report)
	}

	log.Info("reconciliation run finished",
		zap.Int("total_parts", report.TotalParts),
		zap.Int("sku_matched", report.SKUMatched),
		zap.Int("changed", report.Changed),
		zap.Int("skipped_delta_guard", report.SkippedDeltaGuard),
	)
	return report
}

// processPart walks one part through the lookup -> aggregate -> correct
// pipeline and records exactly one detail entry for it.
func (e *Engine) processPart(ctx context.Context, log *zap.Logger, part models.Part, actor string, report *Report) {
	report.TotalParts++

	ipn := strings.TrimSpace(part.IPN)
	if ipn == "" {
		e.appendDetail(report, PartDetail{PartID: part.ID, Status: StatusNoIPN})
		return
	}

	variant, err := e.catalog.FindVariantBySKU(ctx, ipn)
	if err != nil {
		if errors.Is(err, shopify.ErrVariantNotFound) {
			e.appendDetail(report, PartDetail{PartID: part.ID, IPN: ipn, Status: StatusVariantNotFound})
			return
		}
		log.Warn("variant lookup failed", zap.String("ipn", ipn), zap.Error(err))
		e.appendDetail(report, PartDetail{PartID: part.ID, IPN: ipn, Status: StatusLookupError})
		return
	}
	report.SKUMatched++

	target, err := e.levels.AvailableQuantity(ctx, variant.InventoryItemID, e.opts.RestrictLocationName)
	if err != nil {
		if errors.Is(err, shopify.ErrNoInventoryData) {
			e.appendDetail(report, PartDetail{PartID: part.ID, IPN: ipn, Status: StatusNoInventoryData})
			return
		}
		log.Warn("availability query failed", zap.String("ipn", ipn), zap.Error(err))
		e.appendDetail(report, PartDetail{PartID: part.ID, IPN: ipn, Status: StatusInventoryError})
		return
	}

	item, err := e.mirrors.EnsureMirror(ctx, part.ID, e.opts.TargetLocationID)
	if err != nil {
		log.Error("mirror record unavailable", zap.Int64("part", part.ID), zap.Error(err))
		e.appendDetail(report, PartDetail{PartID: part.ID, IPN: ipn, Status: StatusMirrorError})
		return
	}

	detail := PartDetail{
		PartID:  part.ID,
		IPN:     ipn,
		Current: item.Quantity,
		Target:  int64(target),
		Delta:   int64(target) - item.Quantity,
	}

	if e.opts.DeltaGuard > 0 && abs(detail.Delta) > e.opts.DeltaGuard {
		log.Warn("delta exceeds guard, skipping",
			zap.Int64("part", part.ID),
			zap.Int64("delta", detail.Delta),
			zap.Int64("guard", e.opts.DeltaGuard),
		)
		report.SkippedDeltaGuard++
		detail.Status = StatusSkippedDeltaGuard
		e.appendDetail(report, detail)
		return
	}

	if e.opts.DryRun {
		detail.Status = StatusDryRun
		e.appendDetail(report, detail)
		return
	}

	if detail.Delta == 0 {
		detail.Status = StatusNoChange
		e.appendDetail(report, detail)
		return
	}

	result, err := e.mirrors.ApplyCorrection(ctx, item, int64(target), actor, e.opts.Note)
	if err != nil {
		log.Error("correction failed", zap.Int64("part", part.ID), zap.Error(err))
		detail.Status = StatusMirrorError
		e.appendDetail(report, detail)
		return
	}

	if result.Changed {
		report.Changed++
	}
	detail.Status = StatusAdjusted
	detail.Method = result.Method
	e.appendDetail(report, detail)
}

// appendDetail adds a detail entry unless the preview is already full; the
// counters are maintained by the caller either way.
func (e *Engine) appendDetail(report *Report, detail PartDetail) {
	if e.opts.PreviewLimit > 0 && len(report.Details) >= e.opts.PreviewLimit {
		return
	}
	report.Details = append(report.Details, detail)
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
