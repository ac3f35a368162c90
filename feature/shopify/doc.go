// Package shopify implements the read-only Shopify Admin API client used
// by the reconciliation engine.
//
// The package covers three concerns:
//
//  1. Client: a rate-limit-aware HTTP client. It watches the
//     X-Shopify-Shop-Api-Call-Limit header and pauses preemptively near the
//     bucket's high-water mark, retries 429/5xx/transport failures with
//     capped exponential backoff (honoring numeric Retry-After), and fails
//     fast on any other 4xx.
//
//  2. Variant lookup: FindVariantBySKU resolves a SKU to its catalog entry
//     via the paginated REST listing, with an optional GraphQL fallback.
//     Matching is exact under NFKC normalization and case folding; fuzzy
//     results from either strategy are never returned.
//
//  3. Availability: LevelService sums per-location available quantities for
//     an inventory item, batching location ids into as few
//     inventory_levels calls as possible. The location list is fetched once
//     per run through LocationCache.
//
// The client never writes to the shop; data flows strictly
// Shopify -> internal mirror records.
package shopify
