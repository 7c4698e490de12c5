// Package validator provides declarative form validation for console input.
//
// A Rule pairs a Check function with translation-friendly error metadata.
// Apply evaluates rules and aggregates failures into ValidationErrors, which
// satisfies the error interface so field problems can bubble up in a single
// return value:
//
//	err := validator.Apply(
//	    validator.Required("name", in.Name),
//	    validator.ValidPhone("phone", in.Phone),
//	    validator.When(in.Email != "", validator.ValidEmail("email", in.Email)),
//	)
//	if verrs := validator.ExtractValidationErrors(err); verrs != nil {
//	    // render verrs.Get("phone") next to the phone input
//	}
//
// Rules never touch the network; they run before any store or identity call.
package validator
