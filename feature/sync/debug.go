package sync

import (
	"context"
	"errors"
	"strings"

	"shopsync/feature/shopify"

	"go.uber.org/zap"
)

// LocationLevel is one per-location availability entry in a variant probe.
type LocationLevel struct {
	LocationID   int64  `json:"location_id"`
	LocationName string `json:"location_name,omitempty"`
	// Available is nil when the shop reports no figure for this location;
	// the aggregator treats that as 0.
	Available *int64 `json:"available"`
}

// VariantProbe is the diagnostic view of a single SKU: the matched variant,
// the per-location breakdown, and the total the sync engine would use.
type VariantProbe struct {
	SKU            string          `json:"sku"`
	Variant        *shopify.Variant `json:"variant"`
	TotalAvailable int             `json:"total_available"`
	Levels         []LocationLevel `json:"levels"`
}

// UnmatchedReport lists which part IPNs currently resolve to a catalog
// entry and which do not. It is read-only; no mirror record is touched.
type UnmatchedReport struct {
	Missing []string `json:"missing"`
	Present []string `json:"present"`
}

// FindVariantDebug resolves one SKU the exact way a run would and returns
// the availability breakdown behind the aggregate. ErrVariantNotFound
// passes through unwrapped so callers can map it to a not-found response.
func (s *Service) FindVariantDebug(ctx context.Context, sku string) (*VariantProbe, error) {
	if err := s.validateShop(); err != nil {
		return nil, err
	}

	client := shopify.NewClient(s.shopCfg, s.log)
	levels := shopify.NewLevelService(client, shopify.NewLocationCache(client))

	variant, err := client.FindVariantBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}

	probe := &VariantProbe{SKU: strings.TrimSpace(sku), Variant: variant}

	raw, selected, err := levels.LevelsForItem(ctx, variant.InventoryItemID, s.cfg.RestrictLocationName)
	if err != nil {
		return nil, err
	}

	names := make(map[int64]string, len(selected))
	for _, loc := range selected {
		names[loc.ID] = loc.Name
	}
	for _, lvl := range raw {
		probe.Levels = append(probe.Levels, LocationLevel{
			LocationID:   lvl.LocationID,
			LocationName: names[lvl.LocationID],
			Available:    lvl.Available,
		})
		if lvl.Available != nil {
			probe.TotalAvailable += int(*lvl.Available)
		}
	}
	return probe, nil
}

// ListUnmatchedSKUs checks every eligible part's IPN against the catalog
// and reports which ones have no match. Lookup errors count a SKU as
// missing rather than aborting the scan.
func (s *Service) ListUnmatchedSKUs(ctx context.Context) (*UnmatchedReport, error) {
	if err := s.validateShop(); err != nil {
		return nil, err
	}

	parts, err := s.repo.SelectParts(ctx, s.cfg.Categories())
	if err != nil {
		return nil, err
	}

	client := shopify.NewClient(s.shopCfg, s.log)
	report := &UnmatchedReport{}

	for _, part := range parts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ipn := strings.TrimSpace(part.IPN)
		if ipn == "" {
			continue
		}
		if _, err := client.FindVariantBySKU(ctx, ipn); err != nil {
			if !errors.Is(err, shopify.ErrVariantNotFound) {
				s.log.Warn("lookup failed during unmatched scan",
					zap.String("ipn", ipn), zap.Error(err))
			}
			report.Missing = append(report.Missing, ipn)
			continue
		}
		report.Present = append(report.Present, ipn)
	}
	return report, nil
}

// validateShop checks only the shop credentials; the probes do not need a
// target location.
func (s *Service) validateShop() error {
	if shopify.NormalizeDomain(s.shopCfg.Domain) == "" {
		return &ConfigurationError{Reason: "shop domain is not set"}
	}
	if s.shopCfg.Token == "" {
		return &ConfigurationError{Reason: "access token is not set"}
	}
	return nil
}
