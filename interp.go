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
	"math"

	"github.com/ctessum/geom"
	"github.com/ctessum/sparse"
	"github.com/gonum/floats"
)

// extrapolationOffsets are the index offsets, relative to the lower-left
// corner (i, j) of the interpolation cell, that are searched for valid
// samples when all four cell corners are masked out. The first eight wrap
// around the cell; the last four are its diagonal corners. The pattern
// leans toward higher indices, matching the storage orientation of the
// grids this was built for; it is a fixed-cost heuristic rather than a
// nearest-neighbor search.
var extrapolationOffsets = [12][2]int{
	{-1, 1}, {-1, 0}, {0, -1}, {1, -1}, {2, 0}, {2, 1}, {1, 2}, {0, 2},
	{-1, -1}, {2, -1}, {2, 2}, {-1, 2},
}

// Interpolator answers point-interpolation queries against a single field
// sampled on a uniform 2D grid. The grid's affine coordinate system is
// given by the physical coordinate of sample (0, 0) and the spacing
// between samples along each axis.
//
// An Interpolator is cheap to build and is meant to be thrown away and
// rebuilt whenever the field it samples changes; GridSource does exactly
// that. Only the mask may be replaced on a live Interpolator, via SetMask.
// Methods must not be called concurrently.
type Interpolator struct {
	origin, delta [2]float64
	val           *sparse.DenseArray // shape [component..., nx, ny]
	mask          *sparse.DenseArray // shape [nx, ny]; nil means all valid

	nx, ny int
	nc     int // leading component axes, flattened

	// OnExtrapolation, if non-nil, is called whenever a query point's four
	// surrounding samples are all invalid and neighbor averaging is used
	// instead. It fires once per distinct point; repeated queries at the
	// same coordinate are answered from the cache. Extrapolation is
	// expected to be rare: frequent calls suggest a mis-specified mask.
	OnExtrapolation func(p geom.Point, i, j int)

	// extrapolationPoints caches the neighbor sets found for points that
	// needed extrapolation, keyed by the query coordinate as given.
	extrapolationPoints map[geom.Point][][2]int
}

// NewInterpolator creates an Interpolator for the field val, whose trailing
// two axes must align with the grid described by origin and delta. Any
// leading axes are treated as per-point components (e.g. vector components
// or tidal constituents). mask may be nil, meaning every sample is valid;
// otherwise it must have the same 2D shape as the grid, with 0 marking
// invalid samples, 1 fully valid ones, and fractional values acting as
// interpolation weights. Equal spacing of the underlying coordinates is
// assumed, not checked.
func NewInterpolator(origin, delta [2]float64, val, mask *sparse.DenseArray) *Interpolator {
	nd := len(val.Shape)
	nc := 1
	for _, n := range val.Shape[:nd-2] {
		nc *= n
	}
	return &Interpolator{
		origin:              origin,
		delta:               delta,
		val:                 val,
		mask:                mask,
		nx:                  val.Shape[nd-2],
		ny:                  val.Shape[nd-1],
		nc:                  nc,
		extrapolationPoints: make(map[geom.Point][][2]int),
	}
}

// SetMask replaces the validity mask. Cached extrapolation results depend
// on the mask, so the cache is cleared.
func (ip *Interpolator) SetMask(mask *sparse.DenseArray) {
	ip.mask = mask
	ip.extrapolationPoints = make(map[geom.Point][][2]int)
}

// GetVal bilinearly interpolates the field at physical coordinate p,
// returning one value per leading component axis (a single-element slice
// for a plain 2D field).
//
// With a mask set, each of the four surrounding samples is weighted by its
// validity, and the result is renormalized over the valid weight so that
// partially masked cells interpolate from their valid corners only. If all
// four corners are invalid, the query fails with a CoordinateError unless
// allowExtrapolation is true, in which case the unweighted mean of the
// valid samples in a fixed 12-point neighborhood is returned instead (see
// OnExtrapolation). A query whose cell extends outside the grid fails with
// a CoordinateError regardless of the mask.
func (ip *Interpolator) GetVal(p geom.Point, allowExtrapolation bool) ([]float64, error) {
	xhat := (p.X - ip.origin[0]) / ip.delta[0]
	yhat := (p.Y - ip.origin[1]) / ip.delta[1]
	i := int(math.Floor(xhat))
	j := int(math.Floor(yhat))
	// Negative indices are rejected before anything else; flattened index
	// arithmetic would otherwise alias them onto valid cells.
	if i < 0 || j < 0 {
		return nil, CoordinateError{Point: p, I: i, J: j, Reason: "coordinate out of range"}
	}
	if i+1 > ip.nx-1 || j+1 > ip.ny-1 {
		return nil, CoordinateError{Point: p, I: i, J: j, Reason: "coordinate out of range"}
	}
	alpha := xhat - float64(i)
	beta := yhat - float64(j)

	corners := [4][2]int{{i, j}, {i + 1, j}, {i, j + 1}, {i + 1, j + 1}}
	weights := [4]float64{
		(1 - alpha) * (1 - beta),
		alpha * (1 - beta),
		(1 - alpha) * beta,
		alpha * beta,
	}

	out := make([]float64, ip.nc)
	buf := make([]float64, ip.nc)

	if ip.mask == nil {
		for k, c := range corners {
			ip.sampleInto(buf, c[0], c[1])
			floats.AddScaled(out, weights[k], buf)
		}
		return out, nil
	}

	var sumw float64
	for k, c := range corners {
		weights[k] *= ip.mask.Get(c[0], c[1])
		sumw += weights[k]
	}
	if sumw > 0 {
		for k, c := range corners {
			ip.sampleInto(buf, c[0], c[1])
			floats.AddScaled(out, weights[k], buf)
		}
		floats.Scale(1/sumw, out)
		return out, nil
	}
	if !allowExtrapolation {
		return nil, CoordinateError{Point: p, I: i, J: j, Reason: "probing point inside land mask"}
	}
	pts, err := ip.findExtrapolationPoints(p, i, j)
	if err != nil {
		return nil, err
	}
	for _, q := range pts {
		ip.sampleInto(buf, q[0], q[1])
		floats.Add(out, buf)
	}
	floats.Scale(1/float64(len(pts)), out)
	return out, nil
}

// findExtrapolationPoints returns the grid points to average for a query at
// p whose cell (i, j) is fully masked out. Offsets falling outside the grid
// are skipped. An empty result is an error: the point is inside an invalid
// region with no nearby valid neighbor.
func (ip *Interpolator) findExtrapolationPoints(p geom.Point, i, j int) ([][2]int, error) {
	if pts, ok := ip.extrapolationPoints[p]; ok {
		return pts, nil
	}
	var pts [][2]int
	for _, off := range extrapolationOffsets {
		a, b := i+off[0], j+off[1]
		if a < 0 || a >= ip.nx || b < 0 || b >= ip.ny {
			continue
		}
		if ip.mask.Get(a, b) != 0 {
			pts = append(pts, [2]int{a, b})
		}
	}
	if len(pts) == 0 {
		return nil, CoordinateError{Point: p, I: i, J: j,
			Reason: "inside land mask; extrapolation found no valid neighbors"}
	}
	ip.extrapolationPoints[p] = pts
	if ip.OnExtrapolation != nil {
		ip.OnExtrapolation(p, i, j)
	}
	return pts, nil
}

// sampleInto fills buf with the field values at grid point (i, j), one
// entry per leading component.
func (ip *Interpolator) sampleInto(buf []float64, i, j int) {
	stride := ip.nx * ip.ny
	off := i*ip.ny + j
	for c := range buf {
		buf[c] = ip.val.Elements[c*stride+off]
	}
}
