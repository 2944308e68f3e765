// Package filter implements the geometric reduction steps of the pipeline:
// radius cropping around the scan-local origin and minimum-spacing thinning.
package filter

import (
	"fmt"
	"math"
)

// InvalidParameterError reports a filter parameter that fails validation.
// It is raised at configuration time, before any scan is processed, and
// rejects the whole batch.
type InvalidParameterError struct {
	Name   string
	Value  float64
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s=%g: %s", e.Name, e.Value, e.Reason)
}

// Params carries the validated filter configuration for a batch.
type Params struct {
	// Radius is the crop distance in meters from the scan-local origin.
	// +Inf disables cropping; values <= 0 are legal but produce empty scans
	// (flagged as a warning by the caller, not an error).
	Radius float64
	// Spacing is the minimum distance in meters between retained points.
	// Zero disables thinning.
	Spacing float64
}

// Validate checks the parameters before a batch starts. NaN values are
// rejected outright; so is negative spacing. A non-positive radius is not an
// error here (the crop step handles it by producing no points) but callers
// should surface it as a configuration warning.
func (p Params) Validate() error {
	if math.IsNaN(p.Radius) {
		return &InvalidParameterError{Name: "radius", Value: p.Radius, Reason: "must not be NaN"}
	}
	if math.IsNaN(p.Spacing) {
		return &InvalidParameterError{Name: "spacing", Value: p.Spacing, Reason: "must not be NaN"}
	}
	if p.Spacing < 0 {
		return &InvalidParameterError{Name: "spacing", Value: p.Spacing, Reason: "must be >= 0"}
	}
	return nil
}
