// Package validation validates tagged structs for handlers and codecs.
//
//	type NodeSpec struct {
//	    ID   string `json:"id" validate:"required"`
//	    Type string `json:"type" validate:"required"`
//	}
//	err := validation.Validate(spec)
//
// Validate returns *errors.AppError with code INVALID_INPUT, json field
// names in the message, and a per-field breakdown in Details.
package validation
