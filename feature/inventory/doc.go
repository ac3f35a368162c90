// Package inventory is the host-side data layer: parts, categories, stock
// locations, and the mirror stock records the sync engine corrects.
//
// # Mirror Records
//
// For each managed part there is at most one canonical mirror record per
// (part, target location) pair: a non-serialized, non-building stock item.
// MirrorManager.EnsureMirror creates it lazily with quantity 0 and always
// reuses the first existing record by creation order.
//
// # Corrections
//
// Quantity corrections go through a ranked chain of Adjuster
// implementations, negotiated by host capability rather than by
// exception-driven fallback:
//
//  1. stocktake: audited entry recording the counted quantity (preferred)
//  2. add_stock / remove_stock: directional entries scaled by |delta|
//  3. hard_set: direct quantity overwrite, no history (last resort)
//
// The chosen method is recorded in the AdjustResult so callers can tell
// audited from unaudited corrections. Each correction runs in one
// transaction per part.
package inventory
