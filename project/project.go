// Package project implements the Projector capability from spec.md
// §4.A: normalising input coordinates into the unit square [0,1]x[0,1].
package project

import (
	"math"

	"github.com/tilekiln/tilekiln"
)

// Cartesian is an affine normalisation against a caller-supplied
// bounding rectangle. Resolve selects it only when Options.Bounds is
// set; a Cartesian with a zero-width or zero-height Bounds maps that
// axis to 0.
type Cartesian struct {
	Bounds tilekiln.BBox
}

var _ tilekiln.Projector = (*Cartesian)(nil)

func (c *Cartesian) ProjectX(x float64) float64 {
	width := c.Bounds[2] - c.Bounds[0]
	if width == 0 {
		return 0
	}
	return (x - c.Bounds[0]) / width
}

func (c *Cartesian) ProjectY(y float64) float64 {
	height := c.Bounds[3] - c.Bounds[1]
	if height == 0 {
		return 0
	}
	return (y - c.Bounds[1]) / height
}

// Spherical is the web-Mercator projector from spec.md §4.A. It needs
// no bounds; the poles map to 0 and 1.
type Spherical struct{}

var _ tilekiln.Projector = (*Spherical)(nil)

func (s *Spherical) ProjectX(x float64) float64 {
	return x/360 + 0.5
}

func (s *Spherical) ProjectY(y float64) float64 {
	sinPhi := math.Sin(y * math.Pi / 180)
	if sinPhi == 1 {
		return 0
	}
	if sinPhi == -1 {
		return 1
	}
	v := 0.5 - math.Log((1+sinPhi)/(1-sinPhi))/(4*math.Pi)
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Resolve picks the projector named by opts, applying spec.md §4.A's
// "auto" default: Cartesian when Bounds is set, Spherical otherwise.
// The error result is always nil: Cartesian is only ever implied by
// Bounds being set, and an explicit Projector is returned unchecked.
func Resolve(opts *tilekiln.Options) (tilekiln.Projector, error) {
	if opts.Projector != nil {
		return opts.Projector, nil
	}
	if opts.Bounds != nil {
		return &Cartesian{Bounds: *opts.Bounds}, nil
	}
	return &Spherical{}, nil
}
