// Package db embeds the database schema applied on startup.
package db

import _ "embed"

// Schema contains the DDL for the orders, order_lines, and price_overrides
// tables. Statements are idempotent so migrations can run on every boot.
//
//go:embed migrations/001_schema.sql
var Schema string
