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

// Package tidegrid interpolates scalar and vector fields sampled on a
// uniform 2D grid, such as tidal or bathymetric data stored in NetCDF
// files, at arbitrary physical coordinates.
//
// The grid must have two coordinate variables (for example longitude and
// latitude), each aligned with one dimension of the logical 2D grid and
// equi-spaced. To interpolate a variable z on a grid with dimensions nx
// and ny:
//
//	f, err := os.Open("foo.nc")
//	...
//	nc, err := tidegrid.OpenNCF(f)
//	...
//	src, err := tidegrid.NewGridSource(nc,
//		[2]string{"nx", "ny"}, [2]string{"longitude", "latitude"})
//	...
//	err = src.SetField("z")
//	...
//	v, err := src.GetVal(geom.Point{X: -3.0, Y: 58.5}, false)
//
// The order of the dimension and coordinate names must agree with each
// other and with the storage order of the interpolated field.
//
// When many interpolations happen within a sub-domain of the grid, calling
// SetRanges first restricts the view to that sub-domain so that only its
// values are read from the file. A land mask can be configured with
// SetMask, or derived from a fill-value convention with
// SetMaskFromFillValue, so that masked-out samples never contribute to
// interpolated values; queries near the mask edge fall back to averaging
// nearby valid samples when extrapolation is enabled. Fields may be
// switched with repeated SetField calls, keeping the window and mask; the
// window may only be set once, and the mask's source should not change
// after it is set.
//
// For the case where the field values live in a different file than the
// coordinate and mask metadata, NewGridSourceFrom copies the grid identity
// of an existing GridSource:
//
//	grid, err := tidegrid.NewGridSource(gridNC,
//		[2]string{"nx", "ny"}, [2]string{"longitude", "latitude"})
//	...
//	grid.SetMask("mask")
//	vals := tidegrid.NewGridSourceFrom(valNC, grid)
//	vals.SetField("temperature")
package tidegrid

// Version gives the version number of this library.
const Version = "1.1.0"
