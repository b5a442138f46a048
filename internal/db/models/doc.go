// Package models holds the gorm models of the capability tables.
//
// The physical names of the identity and foreign key columns differ between
// tenant databases. These models describe the canonical layout created by
// "capcore migrate" and by the tests; the capability package never relies on
// them for reads and discovers the real column names at runtime instead.
package models
