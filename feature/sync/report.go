package sync

import "time"

// Per-part status tags. Only adjusted parts write; everything else is a
// reported, expected outcome of the run.
const (
	// StatusNoIPN marks parts without an internal part number.
	StatusNoIPN = "no_ipn"
	// StatusVariantNotFound marks parts whose IPN has no catalog entry.
	StatusVariantNotFound = "shopify_variant_not_found"
	// StatusLookupError marks parts whose lookup failed after retries.
	StatusLookupError = "shopify_lookup_error"
	// StatusNoInventoryData marks parts with no locations to aggregate over.
	StatusNoInventoryData = "no_inventory_data"
	// StatusInventoryError marks parts whose level query failed after retries.
	StatusInventoryError = "shopify_inventory_error"
	// StatusMirrorError marks parts whose mirror record could not be
	// loaded, created, or corrected.
	StatusMirrorError = "mirror_error"
	// StatusSkippedDeltaGuard marks parts whose delta exceeded the guard.
	StatusSkippedDeltaGuard = "skipped_delta_guard"
	// StatusDryRun marks parts evaluated but not written in a dry run.
	StatusDryRun = "dry_run"
	// StatusNoChange marks parts already at the target quantity.
	StatusNoChange = "no_change"
	// StatusAdjusted marks parts whose mirror record was corrected.
	StatusAdjusted = "adjusted"
)

// PartDetail is one per-part entry in the run report's bounded preview.
type PartDetail struct {
	// PartID is the host part id.
	PartID int64 `json:"part"`
	// IPN is the part's internal part number (== the queried SKU).
	IPN string `json:"ipn,omitempty"`
	// Current is the mirror record quantity before the run.
	Current int64 `json:"current"`
	// Target is the aggregated externally-reported quantity.
	Target int64 `json:"target"`
	// Delta is Target - Current.
	Delta int64 `json:"delta"`
	// Status is one of the Status* tags.
	Status string `json:"status"`
	// Method is the adjustment method tag, set only for adjusted parts.
	Method string `json:"method,omitempty"`
}

// Report is the structured result of one reconciliation run. It is owned
// by the caller; the engine itself keeps no state between runs.
type Report struct {
	// RunID uniquely identifies this run in logs and the archive.
	RunID string `json:"run_id"`
	// OK is false only for configuration failures or a cancelled run;
	// individual part failures never clear it.
	OK bool `json:"ok"`
	// Error carries the failure reason when OK is false.
	Error string `json:"error,omitempty"`
	// DryRun reports whether the run was a dry run.
	DryRun bool `json:"dry_run"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// TotalParts is how many eligible parts the run processed.
	TotalParts int `json:"total_parts"`
	// SKUMatched is how many parts resolved to a catalog entry.
	SKUMatched int `json:"sku_matched"`
	// Changed is how many mirror records were actually corrected.
	Changed int `json:"changed"`
	// SkippedDeltaGuard is how many writes the delta guard blocked.
	SkippedDeltaGuard int `json:"skipped_delta_guard"`

	// Details is a bounded preview of per-part outcomes. The counters
	// above reflect the full run even when this list is capped.
	Details []PartDetail `json:"details_preview"`
}
