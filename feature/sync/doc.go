// Package sync orchestrates the reconciliation of host inventory mirror
// records against the quantities a Shopify shop reports.
//
// One run walks every eligible part: the part's IPN is resolved to a shop
// variant, availability is aggregated across the shop's locations, and the
// mirror stock record is corrected to match. Per-part failures are tagged
// in the run report and never abort the run.
//
// The Service is the long-lived entry point. Each run gets a fresh Engine
// with a fresh run-scoped location cache; concurrent triggers are collapsed
// onto the in-flight run. Finished reports are kept in memory (latest only)
// and archived to object storage when an Archiver is configured.
package sync
