package sync

import (
	"context"
	"errors"
	"fmt"
	gosync "sync"
	"time"

	"shopsync/feature/inventory"
	"shopsync/feature/shopify"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ConfigurationError marks a run that failed before any part was touched
// because the settings themselves are unusable.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "sync: configuration invalid: " + e.Reason
}

// Service is the long-lived entry point for reconciliation runs. It
// validates configuration, assembles a fresh engine (with a fresh
// run-scoped location cache) per run, collapses concurrent triggers onto
// one run, and keeps the most recent report for inspection.
type Service struct {
	shopCfg shopify.Config
	cfg     Config

	repo     *inventory.Repository
	mirrors  *inventory.MirrorManager
	archiver *Archiver
	log      *zap.Logger

	group singleflight.Group

	mu   gosync.RWMutex
	last *Report
}

// NewService wires a service. archiver may be nil when report archiving is
// disabled.
func NewService(shopCfg shopify.Config, cfg Config, repo *inventory.Repository, mirrors *inventory.MirrorManager, archiver *Archiver, log *zap.Logger) *Service {
	return &Service{
		shopCfg:  shopCfg,
		cfg:      cfg,
		repo:     repo,
		mirrors:  mirrors,
		archiver: archiver,
		log:      log,
	}
}

// RunSync executes one reconciliation run and returns its report. Triggers
// arriving while a run is in flight do not start a second run; they receive
// the in-flight run's report instead.
func (s *Service) RunSync(ctx context.Context, actor string) *Report {
	v, _, _ := s.group.Do("run", func() (any, error) {
		return s.runOnce(ctx, actor), nil
	})
	return v.(*Report)
}

// LastReport returns the most recent run report, or nil when no run has
// completed since startup.
func (s *Service) LastReport() *Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

func (s *Service) runOnce(ctx context.Context, actor string) *Report {
	if err := s.validate(); err != nil {
		return s.finish(ctx, s.failedReport(err))
	}

	location, err := s.repo.ResolveTargetLocation(ctx, s.cfg.TargetLocation)
	if err != nil {
		if errors.Is(err, inventory.ErrLocationNotUsable) {
			err = &ConfigurationError{Reason: fmt.Sprintf("target location %d is not usable", s.cfg.TargetLocation)}
		}
		return s.finish(ctx, s.failedReport(err))
	}

	client := shopify.NewClient(s.shopCfg, s.log)
	levels := shopify.NewLevelService(client, shopify.NewLocationCache(client))

	engine := NewEngine(client, levels, s.mirrors, s.repo, s.log, Options{
		TargetLocationID:     location.ID,
		RestrictLocationName: s.cfg.RestrictLocationName,
		DeltaGuard:           s.cfg.DeltaGuard,
		DryRun:               s.cfg.DryRun,
		Note:                 s.cfg.NoteText,
		Categories:           s.cfg.Categories(),
		Throttle:             time.Duration(s.cfg.ThrottleMs) * time.Millisecond,
		MaxParts:             s.cfg.MaxParts,
		PreviewLimit:         s.cfg.PreviewLimit,
	})

	return s.finish(ctx, engine.Run(ctx, actor))
}

// finish records the report as the latest and archives it best-effort.
func (s *Service) finish(ctx context.Context, report *Report) *Report {
	s.mu.Lock()
	s.last = report
	s.mu.Unlock()

	if s.archiver != nil {
		if err := s.archiver.Archive(ctx, report); err != nil {
			s.log.Warn("report archiving failed",
				zap.String("run_id", report.RunID),
				zap.Error(err),
			)
		}
	}
	return report
}

// validate checks the settings a run cannot proceed without. The target
// location is validated separately against the database.
func (s *Service) validate() error {
	if shopify.NormalizeDomain(s.shopCfg.Domain) == "" {
		return &ConfigurationError{Reason: "shop domain is not set"}
	}
	if s.shopCfg.Token == "" {
		return &ConfigurationError{Reason: "access token is not set"}
	}
	if s.cfg.TargetLocation <= 0 {
		return &ConfigurationError{Reason: "target location is not set"}
	}
	if s.cfg.DeltaGuard < 0 {
		return &ConfigurationError{Reason: "delta guard must not be negative"}
	}
	return nil
}

// failedReport builds a report for a run that never processed a part.
func (s *Service) failedReport(err error) *Report {
	now := time.Now().UTC()
	report := &Report{
		OK:         false,
		Error:      err.Error(),
		DryRun:     s.cfg.DryRun,
		StartedAt:  now,
		FinishedAt: now,
	}
	report.RunID = uuid.NewString()
	s.log.Error("reconciliation run rejected", zap.String("run_id", report.RunID), zap.Error(err))
	return report
}
