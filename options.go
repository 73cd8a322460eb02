package tilekiln

// Projector maps a single input axis into [0,1], as described in
// spec.md §4.A. Concrete implementations (Cartesian, Spherical) live in
// package project; this interface is declared here so Options can
// reference it without creating an import cycle.
type Projector interface {
	ProjectX(x float64) float64
	ProjectY(y float64) float64
}

// Options holds the configuration table from spec.md §6. DefaultOptions
// returns the documented defaults; Validate enforces the InvalidConfig
// rules from spec.md §7.
type Options struct {
	MaxZoom        int
	IndexMaxZoom   int
	IndexMaxPoints int
	Tolerance      float64
	Extent         int
	Buffer         int
	LineMetrics    bool

	PromoteID  string
	GenerateID bool

	// Projector, when non-nil, is used as-is. When nil, the caller
	// resolves Cartesian (if Bounds is set) or Spherical, mirroring
	// spec.md §4.A's "auto" default.
	Projector Projector
	Bounds    *BBox

	// ToleranceFunctionName selects a registered curve by name
	// (default, linear, constant, slowExponential, logarithmic,
	// step). ToleranceFunction, when set, is used directly and takes
	// precedence over the name.
	ToleranceFunctionName string
	ToleranceFunction     ToleranceFunc
}

// DefaultOptions returns the spec.md §6 defaults.
func DefaultOptions() Options {
	return Options{
		MaxZoom:               8,
		IndexMaxZoom:          5,
		IndexMaxPoints:        100000,
		Tolerance:             50,
		Extent:                4096,
		Buffer:                64,
		LineMetrics:           false,
		ToleranceFunctionName: "default",
	}
}

// Validate enforces spec.md §7's InvalidConfig rules and resolves
// ToleranceFunction from ToleranceFunctionName when it isn't already
// set directly.
func (o *Options) Validate() error {
	if o.MaxZoom < 0 || o.MaxZoom > 24 {
		return &InvalidConfigError{Reason: "maxZoom must be in [0,24]"}
	}
	if o.IndexMaxZoom < 0 || o.IndexMaxZoom > o.MaxZoom {
		return &InvalidConfigError{Reason: "indexMaxZoom must be in [0,maxZoom]"}
	}
	if o.PromoteID != "" && o.GenerateID {
		return &InvalidConfigError{Reason: "promoteId and generateId cannot be used together"}
	}
	if o.Projector == nil && o.Bounds == nil {
		// Auto-resolution falls back to Spherical, which needs no
		// bounds, so this is not fatal; no option selects Cartesian
		// without also setting Bounds.
	}
	if o.Extent <= 0 {
		return &InvalidConfigError{Reason: "extent must be positive"}
	}
	if o.Buffer < 0 {
		return &InvalidConfigError{Reason: "buffer must be non-negative"}
	}

	if o.ToleranceFunction == nil {
		fn, ok := ToleranceFunctions[o.ToleranceFunctionName]
		if !ok {
			return &InvalidConfigError{Reason: "unknown tolerance_function: " + o.ToleranceFunctionName}
		}
		o.ToleranceFunction = fn
	}
	return nil
}
