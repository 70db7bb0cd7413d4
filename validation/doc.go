// Package validation validates structs using go-playground/validator tags and
// reports failures as errors.AppError values with per-field details.
//
//	type Declaration struct {
//	    Host string `json:"host" validate:"required"`
//	    Port int    `json:"port" validate:"min=1,max=65535"`
//	}
//	err := validation.Validate(decl)
package validation
