// Package validation turns request validation failures into INVALID_INPUT
// AppErrors with per-field details.
//
// Struct tags cover request bodies:
//
//	type registerPatientRequest struct {
//	    Email    string `json:"email" validate:"required,email,max=255"`
//	    Password string `json:"password" validate:"required,min=8,max=72"`
//	}
//	if err := validation.Validate(req); err != nil { ... }
//
// The Validator collects checks that tags cannot express:
//
//	v := validation.New()
//	v.Required("username", form.Username)
//	if err := v.Err(); err != nil { ... }
package validation
