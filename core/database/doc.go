// Package database handles connections to the host inventory database.
//
// It provides a wrapper around GORM that configures MySQL connections for
// production deployments and SQLite connections for local development and
// tests. The inventory schema itself (parts, categories, stock locations,
// stock items) is defined in feature/inventory/models.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
package database
