package sync

import (
	"strconv"
	"strings"
)

// Config holds the reconciliation policy settings. It is validated once at
// the service boundary before a run starts; invalid values fail the run
// before any part is processed.
type Config struct {
	// TargetLocation is the host stock location id mirror records live in.
	// Structural locations fall back to their first non-structural child.
	TargetLocation int64 `mapstructure:"target_location" default:"0"`
	// RestrictLocationName optionally limits availability aggregation to
	// the single Shopify location with this name.
	RestrictLocationName string `mapstructure:"restrict_location_name" default:""`
	// DeltaGuard is the maximum absolute per-part adjustment; larger
	// deltas are skipped as a safety measure. 0 disables the guard.
	DeltaGuard int64 `mapstructure:"delta_guard" default:"500"`
	// DryRun computes and reports everything but never writes.
	DryRun bool `mapstructure:"dry_run" default:"true"`
	// NoteText is attached to every stock adjustment for audit purposes.
	NoteText string `mapstructure:"note_text" default:"Correction from online shop"`
	// CategoryIDs optionally restricts the run to parts in these
	// categories (comma-separated ids; descendants are included).
	CategoryIDs string `mapstructure:"category_ids" default:""`
	// ThrottleMs is an optional pause between parts, applied proactively
	// on top of the HTTP client's reactive rate-limit handling.
	ThrottleMs int `mapstructure:"throttle_ms" default:"0"`
	// MaxParts caps how many eligible parts one run processes. 0 means
	// unlimited.
	MaxParts int `mapstructure:"max_parts" default:"0"`
	// PreviewLimit bounds the per-part detail list in the run report;
	// counters always reflect the full run.
	PreviewLimit int `mapstructure:"preview_limit" default:"100"`
}

// Categories parses the comma-separated category id list, silently
// skipping blanks and non-numeric tokens the way operators tend to
// produce them ("12, 13,").
func (c Config) Categories() []int64 {
	if strings.TrimSpace(c.CategoryIDs) == "" {
		return nil
	}
	var ids []int64
	for _, token := range strings.Split(c.CategoryIDs, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		id, err := strconv.ParseInt(token, 10, 64)
		if err != nil || id <= 0 {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
