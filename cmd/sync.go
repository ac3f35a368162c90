package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"shopsync/core/config"
	"shopsync/core/database"
	"shopsync/core/logger"
	"shopsync/core/storage"
	"shopsync/feature/sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags for sync run command
	dryRunSync  bool
	applySync   bool
	yesConfirm  bool
	maxPartsRun int
	actorName   string
)

// syncCmd is the parent command for all sync operations.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Reconcile inventory mirror records against the shop",
	Long: `Reconcile host inventory mirror records against the stock quantities
the shop reports. Supports dry-run reporting and diagnostic probes.`,
}

// syncRunCmd performs one reconciliation run.
var syncRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one reconciliation pass (dry-run by default)",
	Long: `Run one reconciliation pass over all eligible parts.

Without --apply the configured dry-run setting is forced on, so nothing is
written. With --apply and a non-dry-run configuration, mirror records are
corrected after an interactive confirmation.

Examples:
  # Report only (dry-run)
  sync run

  # Apply corrections (with interactive confirmation)
  sync run --apply

  # Apply with auto-confirm (non-interactive)
  sync run --apply --yes

  # Smoke-test against the first 10 parts
  sync run --max-parts 10`,
	RunE: runSync,
}

// syncSkuCmd probes a single SKU.
var syncSkuCmd = &cobra.Command{
	Use:   "sku <sku>",
	Short: "Resolve one SKU and show the availability breakdown",
	Args:  cobra.ExactArgs(1),
	RunE:  runSkuProbe,
}

// syncUnmatchedCmd lists IPNs without a catalog match.
var syncUnmatchedCmd = &cobra.Command{
	Use:   "unmatched",
	Short: "List part IPNs with no catalog match",
	RunE:  runUnmatched,
}

func init() {
	syncCmd.AddCommand(syncRunCmd)
	syncCmd.AddCommand(syncSkuCmd)
	syncCmd.AddCommand(syncUnmatchedCmd)

	syncRunCmd.Flags().BoolVar(&dryRunSync, "dry-run", false, "Force dry-run (no mutations regardless of configuration)")
	syncRunCmd.Flags().BoolVar(&applySync, "apply", false, "Allow mutations when the configuration disables dry-run")
	syncRunCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm destructive actions (non-interactive)")
	syncRunCmd.Flags().IntVar(&maxPartsRun, "max-parts", 0, "Cap the number of parts processed (0 = unlimited)")
	syncRunCmd.Flags().StringVar(&actorName, "actor", "cli", "Actor recorded on stock adjustments")

	RootCmd.AddCommand(syncCmd)
}

// buildService constructs the sync service from configuration, shared by
// all sync subcommands.
func buildService(cfg *config.Config, l *zap.Logger) (*sync.Service, error) {
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	var archiver *sync.Archiver
	if cfg.Storage.Enabled {
		store, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to storage: %w", err)
		}
		archiver = sync.NewArchiver(store, cfg.Storage.Bucket, l)
	}

	return sync.NewFeature(cfg.Shopify, cfg.Sync, db, archiver, l).Service(), nil
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	// Flags override the configured policy. Writes require an explicit
	// --apply so a bare "sync run" can never mutate anything.
	if dryRunSync || !applySync {
		cfg.Sync.DryRun = true
	}
	if maxPartsRun > 0 {
		cfg.Sync.MaxParts = maxPartsRun
	}

	if !cfg.Sync.DryRun {
		if !confirmDestructiveAction() {
			l.Warn("Operation cancelled by user. No changes were made.")
			return nil
		}
	}

	svc, err := buildService(cfg, l)
	if err != nil {
		return err
	}

	l.Info("Starting reconciliation", zap.Bool("dry_run", cfg.Sync.DryRun))
	report := svc.RunSync(ctx, actorName)
	printRunReport(l, report)

	if !report.OK {
		return fmt.Errorf("run failed: %s", report.Error)
	}
	return nil
}

func runSkuProbe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	svc, err := buildService(cfg, l)
	if err != nil {
		return err
	}

	probe, err := svc.FindVariantDebug(ctx, args[0])
	if err != nil {
		return fmt.Errorf("probe failed: %w", err)
	}

	out, err := json.MarshalIndent(probe, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func runUnmatched(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	svc, err := buildService(cfg, l)
	if err != nil {
		return err
	}

	report, err := svc.ListUnmatchedSKUs(ctx)
	if err != nil {
		return fmt.Errorf("unmatched scan failed: %w", err)
	}

	l.Info("Unmatched scan finished",
		zap.Int("present", len(report.Present)),
		zap.Int("missing", len(report.Missing)),
	)
	for _, ipn := range report.Missing {
		fmt.Println(ipn)
	}
	return nil
}

// printRunReport prints a formatted run report using the logger.
func printRunReport(l *zap.Logger, report *sync.Report) {
	l.Info("Run report",
		zap.String("run_id", report.RunID),
		zap.Bool("ok", report.OK),
		zap.Bool("dry_run", report.DryRun),
		zap.Int("total_parts", report.TotalParts),
		zap.Int("sku_matched", report.SKUMatched),
		zap.Int("changed", report.Changed),
		zap.Int("skipped_delta_guard", report.SkippedDeltaGuard),
	)

	// Show a sample of the per-part details (max 5 for logger)
	maxShow := 5
	if len(report.Details) < maxShow {
		maxShow = len(report.Details)
	}
	for i := 0; i < maxShow; i++ {
		d := report.Details[i]
		l.Info("Sample detail",
			zap.Int64("part", d.PartID),
			zap.String("ipn", d.IPN),
			zap.String("status", d.Status),
			zap.Int64("delta", d.Delta),
		)
	}
	if len(report.Details) > maxShow {
		l.Info("Additional details not shown", zap.Int("count", len(report.Details)-maxShow))
	}
}

// confirmDestructiveAction prompts the user for confirmation or uses --yes flag.
func confirmDestructiveAction() bool {
	if yesConfirm {
		fmt.Println("\n✓ Auto-confirmed via --yes flag")
		return true
	}

	fmt.Print("\n⚠️  Type 'yes' to confirm stock corrections: ")
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	response = strings.TrimSpace(response)
	return response == "yes"
}
