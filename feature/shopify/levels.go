package shopify

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
)

// levelBatchSize is how many location ids are packed into one
// inventory_levels call (the API accepts up to 50).
const levelBatchSize = 50

// LocationCache fetches the shop's location list at most once and reuses
// it for the remainder of the run. It is owned by exactly one orchestration
// run and discarded with it; it must not be shared across concurrent runs.
type LocationCache struct {
	client *Client

	mu        sync.Mutex
	loaded    bool
	locations []Location
}

// NewLocationCache creates an empty run-scoped cache backed by the client.
func NewLocationCache(client *Client) *LocationCache {
	return &LocationCache{client: client}
}

// Locations returns the shop's full location set, fetching it on first use.
// A failed fetch is not cached, so a later call retries.
func (lc *LocationCache) Locations(ctx context.Context) ([]Location, error) {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	if lc.loaded {
		return lc.locations, nil
	}

	resp, err := lc.client.do(ctx, http.MethodGet, lc.client.restURL("locations.json"), nil, nil)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Locations []Location `json:"locations"`
	}
	if err := resp.decode(&payload); err != nil {
		return nil, err
	}

	lc.locations = payload.Locations
	lc.loaded = true
	return lc.locations, nil
}

// LevelService computes available quantities for an inventory item by
// enumerating stocking locations and summing per-location availability.
type LevelService struct {
	client    *Client
	locations *LocationCache
}

// NewLevelService creates a level service sharing the run's location cache.
func NewLevelService(client *Client, locations *LocationCache) *LevelService {
	return &LevelService{client: client, locations: locations}
}

// AvailableQuantity returns the total available quantity for an inventory
// item, optionally restricted to locations whose name matches
// restrictToLocation (compared case- and Unicode-insensitively).
//
// Result semantics, which tests pin down because they are easy to conflate:
//   - a restriction that matches no configured location yields 0, not an
//     error (a configured-but-absent location means nothing is available
//     there);
//   - zero level records for the item also yield 0 (absence of tracking
//     data means zero stock);
//   - an empty location set with no restriction yields ErrNoInventoryData;
//   - transport/HTTP failures surface as errors from the client.
func (s *LevelService) AvailableQuantity(ctx context.Context, inventoryItemID int64, restrictToLocation string) (int, error) {
	selected, restricted, err := s.selectLocations(ctx, restrictToLocation)
	if err != nil {
		return 0, err
	}
	if len(selected) == 0 {
		if restricted {
			return 0, nil
		}
		return 0, ErrNoInventoryData
	}

	levels, err := s.levelsAt(ctx, inventoryItemID, selected)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, lvl := range levels {
		if lvl.Available != nil {
			total += int(*lvl.Available)
		}
	}
	return total, nil
}

// LevelsForItem returns the raw per-location levels alongside the selected
// locations; the debug probe uses it to show the breakdown behind a sum.
func (s *LevelService) LevelsForItem(ctx context.Context, inventoryItemID int64, restrictToLocation string) ([]InventoryLevel, []Location, error) {
	selected, _, err := s.selectLocations(ctx, restrictToLocation)
	if err != nil {
		return nil, nil, err
	}
	if len(selected) == 0 {
		return nil, nil, nil
	}
	levels, err := s.levelsAt(ctx, inventoryItemID, selected)
	if err != nil {
		return nil, nil, err
	}
	return levels, selected, nil
}

// selectLocations loads the cached location set and applies the optional
// name restriction. restricted reports whether a restriction was in effect.
func (s *LevelService) selectLocations(ctx context.Context, restrictToLocation string) (selected []Location, restricted bool, err error) {
	locations, err := s.locations.Locations(ctx)
	if err != nil {
		return nil, false, err
	}

	name := NormalizeSKU(restrictToLocation)
	if name == "" {
		return locations, false, nil
	}

	for _, loc := range locations {
		if NormalizeSKU(loc.Name) == name {
			selected = append(selected, loc)
		}
	}
	return selected, true, nil
}

// levelsAt queries inventory levels for the item across the given
// locations, batching location ids to keep the call count minimal.
func (s *LevelService) levelsAt(ctx context.Context, inventoryItemID int64, locations []Location) ([]InventoryLevel, error) {
	var all []InventoryLevel

	for start := 0; start < len(locations); start += levelBatchSize {
		end := start + levelBatchSize
		if end > len(locations) {
			end = len(locations)
		}

		ids := make([]string, 0, end-start)
		for _, loc := range locations[start:end] {
			ids = append(ids, strconv.FormatInt(loc.ID, 10))
		}

		query := url.Values{
			"inventory_item_ids": {strconv.FormatInt(inventoryItemID, 10)},
			"location_ids":       {strings.Join(ids, ",")},
		}

		resp, err := s.client.do(ctx, http.MethodGet, s.client.restURL("inventory_levels.json"), query, nil)
		if err != nil {
			return nil, err
		}

		var payload struct {
			InventoryLevels []InventoryLevel `json:"inventory_levels"`
		}
		if err := resp.decode(&payload); err != nil {
			return nil, err
		}
		all = append(all, payload.InventoryLevels...)
	}

	return all, nil
}
