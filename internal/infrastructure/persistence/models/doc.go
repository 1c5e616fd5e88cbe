// Package models contains GORM persistence models. Domain types carry no
// ORM tags; repositories translate at the boundary.
package models
