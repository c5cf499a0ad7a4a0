/*
Copyright © 2026 the TideGrid authors.
This file is part of TideGrid.

TideGrid is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

TideGrid is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with TideGrid.  If not, see <http://www.gnu.org/licenses/>.
*/

package tidegrid

import (
	"fmt"
	"math"

	"github.com/ctessum/geom"
	"github.com/ctessum/sparse"
)

// GridData provides access to a gridded data store. It is the only thing a
// GridSource needs from the underlying storage format; NCF implements it
// for NetCDF files, and anything exposing named dimensions and sliceable
// multi-dimensional variables can stand in for it.
type GridData interface {
	// DimLen returns the length of the named dimension.
	DimLen(name string) (int, error)

	// ReadVar reads the named variable. If window is non-nil it gives
	// half-open index ranges restricting the trailing two axes; any
	// leading axes are always read in full. A variable with fewer than
	// two axes may only be read with a nil window.
	ReadVar(name string, window *[2][2]int) (*sparse.DenseArray, error)
}

// GridSource interpolates fields stored in a gridded data set at arbitrary
// physical coordinates. It derives a uniform affine coordinate system from
// two named dimensions and their coordinate variables, optionally restricts
// itself to a coordinate sub-window, manages an optional land mask, and
// builds a fresh Interpolator each time the selected field, mask, or window
// changes.
//
// The zero value is not usable; construct with NewGridSource or
// NewGridSourceFrom. Methods must not be called concurrently.
type GridSource struct {
	data GridData

	shape  [2]int
	origin [2]float64
	delta  [2]float64

	// iranges is the active index window on each axis, half-open. nil
	// until SetRanges is called; SetRanges may only be called once.
	iranges *[2][2]int

	mask      *sparse.DenseArray
	val       *sparse.DenseArray
	fieldName string

	interp *Interpolator

	// OnExtrapolation is forwarded to every Interpolator this source
	// builds. See Interpolator.OnExtrapolation.
	OnExtrapolation func(p geom.Point, i, j int)
}

// NewGridSource creates a GridSource reading from data. dimensions names
// the two dimensions of the logical grid and coordinates the two coordinate
// variables aligned with them, in matching (x, y) order; this order must
// also match the storage order of the fields that will be interpolated.
// The coordinate variables are assumed equi-spaced: only their first and
// last samples are read, so a coordinate variable may be stored 1D or 2D.
func NewGridSource(data GridData, dimensions, coordinates [2]string) (*GridSource, error) {
	g := &GridSource{data: data}
	for k := 0; k < 2; k++ {
		n, err := data.DimLen(dimensions[k])
		if err != nil {
			return nil, err
		}
		crd, err := data.ReadVar(coordinates[k], nil)
		if err != nil {
			return nil, err
		}
		var first, last float64
		switch len(crd.Shape) {
		case 1:
			first = crd.Elements[0]
			last = crd.Elements[len(crd.Elements)-1]
		case 2:
			first = crd.Get(0, 0)
			last = crd.Get(crd.Shape[0]-1, crd.Shape[1]-1)
		default:
			return nil, ConfigError{Reason: fmt.Sprintf(
				"coordinate variable %s has %d dimensions; want 1 or 2",
				coordinates[k], len(crd.Shape))}
		}
		g.shape[k] = n
		g.origin[k] = first
		g.delta[k] = (last - first) / float64(n-1)
	}
	return g, nil
}

// NewGridSourceFrom creates a GridSource that reads field values from data
// but copies its grid identity (shape, origin, spacing, window, and mask)
// from grid. Use it when the field values live in a different backing store
// than the coordinate and mask metadata.
func NewGridSourceFrom(data GridData, grid *GridSource) *GridSource {
	g := &GridSource{
		data:   data,
		shape:  grid.shape,
		origin: grid.origin,
		delta:  grid.delta,
		mask:   grid.mask,
	}
	if grid.iranges != nil {
		ir := *grid.iranges
		g.iranges = &ir
	}
	return g
}

// Shape returns the number of grid points along each axis of the active
// (possibly windowed) grid view.
func (g *GridSource) Shape() [2]int { return g.shape }

// Origin returns the physical coordinate of grid point (0, 0) of the
// active grid view.
func (g *GridSource) Origin() [2]float64 { return g.origin }

// Delta returns the grid spacing along each axis.
func (g *GridSource) Delta() [2]float64 { return g.delta }

// SetRanges restricts the grid view to the index rectangle covering the
// given physical coordinate ranges ([xmin, xmax], [ymin, ymax]), after
// which only that rectangle's data is loaded. This can save a lot of
// memory and I/O when many interpolations happen within a small part of a
// large grid. It may be called at most once per GridSource, and is
// permanent.
func (g *GridSource) SetRanges(ranges [2][2]float64) error {
	if g.iranges != nil {
		return ConfigError{Reason: "SetRanges may only be called once"}
	}
	var ir [2][2]int
	for k := 0; k < 2; k++ {
		// One extra cell below and three above: one each against rounding
		// at the requested limits, one for symmetry, and one because the
		// upper bound is exclusive.
		imin := int(math.Floor((ranges[k][0]-g.origin[k])/g.delta[k])) - 1
		if imin < 0 {
			imin = 0
		}
		imax := int(math.Floor((ranges[k][1]-g.origin[k])/g.delta[k])) + 3
		if imax > g.shape[k] {
			imax = g.shape[k]
		}
		if imin >= imax {
			return ConfigError{Reason: fmt.Sprintf(
				"requested coordinate range %v on axis %d is outside the grid", ranges[k], k)}
		}
		ir[k] = [2]int{imin, imax}
		g.origin[k] += float64(imin) * g.delta[k]
		g.shape[k] = imax - imin
	}
	g.iranges = &ir
	if g.mask != nil {
		g.mask = window(g.mask, ir)
	}
	if g.val != nil {
		g.val = window(g.val, ir)
		g.newInterpolator()
	}
	return nil
}

// SetMask sets the land mask from the named variable, which should hold 0.0
// at invalid (land) points and 1.0 at valid (sea) points; fractional values
// act as interpolation weights. A live Interpolator picks the new mask up
// in place.
func (g *GridSource) SetMask(name string) error {
	mask, err := g.data.ReadVar(name, g.iranges)
	if err != nil {
		return err
	}
	g.mask = mask
	if g.interp != nil {
		g.interp.SetMask(mask)
	}
	return nil
}

// SetMaskFromFillValue derives a binary land mask from the named variable,
// marking points equal to fill as invalid. The variable does not have to be
// the one being interpolated. It must have 2 dimensions, or 3, in which
// case only the first slice along the leading axis is consulted.
func (g *GridSource) SetMaskFromFillValue(name string, fill float64) error {
	val, err := g.data.ReadVar(name, g.iranges)
	if err != nil {
		return err
	}
	var get func(i, j int) float64
	switch len(val.Shape) {
	case 2:
		get = func(i, j int) float64 { return val.Get(i, j) }
	case 3:
		get = func(i, j int) float64 { return val.Get(0, i, j) }
	default:
		return ConfigError{Reason: fmt.Sprintf(
			"mask source variable %s has %d dimensions; want 2 or 3", name, len(val.Shape))}
	}
	nd := len(val.Shape)
	nx, ny := val.Shape[nd-2], val.Shape[nd-1]
	mask := sparse.ZerosDense(nx, ny)
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			if get(i, j) != fill {
				mask.Set(1, i, j)
			}
		}
	}
	g.mask = mask
	if g.interp != nil {
		g.interp.SetMask(mask)
	}
	return nil
}

// SetField selects the variable to interpolate and builds a new
// Interpolator for it, keeping any window and mask already configured. It
// may be called repeatedly to switch between fields.
func (g *GridSource) SetField(name string) error {
	val, err := g.data.ReadVar(name, g.iranges)
	if err != nil {
		return err
	}
	if len(val.Shape) < 2 {
		return ConfigError{Reason: fmt.Sprintf(
			"field variable %s has %d dimensions; want at least 2", name, len(val.Shape))}
	}
	g.val = val
	g.fieldName = name
	g.newInterpolator()
	return nil
}

// GetVal interpolates the field chosen with SetField at physical coordinate
// p. The coordinate order must match the storage order of the field. See
// Interpolator.GetVal for the interpolation and extrapolation semantics.
func (g *GridSource) GetVal(p geom.Point, allowExtrapolation bool) ([]float64, error) {
	if g.interp == nil {
		return nil, ConfigError{Reason: "no field selected: call SetField before GetVal"}
	}
	return g.interp.GetVal(p, allowExtrapolation)
}

func (g *GridSource) newInterpolator() {
	g.interp = NewInterpolator(g.origin, g.delta, g.val, g.mask)
	g.interp.OnExtrapolation = g.OnExtrapolation
}

// window copies the sub-rectangle of a, delimited on its trailing two axes
// by the half-open index ranges ir, keeping any leading axes whole.
func window(a *sparse.DenseArray, ir [2][2]int) *sparse.DenseArray {
	nd := len(a.Shape)
	shape := append([]int{}, a.Shape...)
	shape[nd-2] = ir[0][1] - ir[0][0]
	shape[nd-1] = ir[1][1] - ir[1][0]
	out := sparse.ZerosDense(shape...)
	nx, ny := a.Shape[nd-2], a.Shape[nd-1]
	onx, ony := shape[nd-2], shape[nd-1]
	nc := len(a.Elements) / (nx * ny)
	for c := 0; c < nc; c++ {
		for i := 0; i < onx; i++ {
			src := (c*nx+i+ir[0][0])*ny + ir[1][0]
			dst := (c*onx + i) * ony
			copy(out.Elements[dst:dst+ony], a.Elements[src:src+ony])
		}
	}
	return out
}
