// Package server holds configuration for the HTTP surface.
//
// The actual Fiber application is assembled in cmd/start.go; this package
// only carries the typed settings (listen port, API key) so that core/config
// can aggregate them alongside the other sections.
package server
