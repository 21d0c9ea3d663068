package pricing

import "errors"

// ErrInvalidPricingInput is returned for a non-positive base rate, a negative
// bedroom count, a non-positive window length or a date outside the supported
// event calendar. Handlers should translate this into an HTTP 400 response.
var ErrInvalidPricingInput = errors.New("invalid pricing input")

// ErrUnknownAreaTag is returned when an area tag is not present in the area
// table. It is never replaced by a neutral multiplier.
var ErrUnknownAreaTag = errors.New("unknown area tag")

// ErrInvalidTables is returned when a reference table document fails
// validation at load time.
var ErrInvalidTables = errors.New("invalid reference tables")
