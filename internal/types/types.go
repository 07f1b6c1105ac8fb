// Package types holds the shared data structures used across the
// application. Keeping them in one place prevents import cycles:
// the lookup controller, store backends, and presenters can all import
// types without depending on each other.
package types

// Student is a student record as shown to the user.
//
// Struct tags serve two purposes:
//
//  1. json:"..." controls how the field appears when encoded to JSON.
//
//  2. validate:"..." holds rules checked by the go-playground/validator
//     package when a record is written through a store. ID is assigned by
//     the store, so it carries no rule.
//
// SID is the lookup key the user types. ID is the store's own identifier
// and is never used for lookups.
type Student struct {
	ID      string `json:"id"`
	SID     string `json:"sid"     validate:"required"`
	Name    string `json:"name"    validate:"required"`
	College string `json:"college" validate:"required"`
	Major   string `json:"major"   validate:"required"`
}
