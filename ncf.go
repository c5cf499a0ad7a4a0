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

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

// NCF is a GridData implementation backed by a NetCDF (classic format)
// file. Variables are read lazily: nothing is loaded until a GridSource
// asks for it, and windowed reads only transfer the requested hyperslab.
type NCF struct {
	cdf.File
}

// OpenNCF opens the NetCDF file in r for reading.
func OpenNCF(r cdf.ReaderWriterAt) (*NCF, error) {
	f, err := cdf.Open(r)
	if err != nil {
		return nil, fmt.Errorf("tidegrid: opening netcdf file: %v", err)
	}
	return &NCF{File: *f}, nil
}

// DimLen returns the length of the named dimension. The cdf header only
// exposes dimensions through the variables defined on them, so the
// dimension must be in use by at least one variable to be found.
func (f *NCF) DimLen(name string) (int, error) {
	for _, v := range f.Header.Variables() {
		for k, d := range f.Header.Dimensions(v) {
			if d == name {
				return f.Header.Lengths(v)[k], nil
			}
		}
	}
	return 0, fmt.Errorf("tidegrid: dimension %s not found in netcdf file", name)
}

// ReadVar reads the named floating-point variable. If window is non-nil it
// gives half-open index ranges restricting the trailing two axes; leading
// axes are always read in full.
func (f *NCF) ReadVar(name string, window *[2][2]int) (*sparse.DenseArray, error) {
	dims := f.Header.Lengths(name)
	if len(dims) == 0 {
		return nil, fmt.Errorf("tidegrid: variable %s not in netcdf file", name)
	}
	if window == nil {
		r := f.Reader(name, nil, nil)
		buf := r.Zero(-1)
		if _, err := r.Read(buf); err != nil {
			return nil, fmt.Errorf("tidegrid: reading netcdf variable %s: %v", name, err)
		}
		data := sparse.ZerosDense(dims...)
		if !copyValues(data.Elements, buf) {
			return nil, fmt.Errorf("tidegrid: variable %s has non-floating-point type %T", name, buf)
		}
		return data, nil
	}

	if len(dims) < 2 {
		return nil, fmt.Errorf(
			"tidegrid: variable %s has %d dimensions; windowed reads need at least 2",
			name, len(dims))
	}
	nd := len(dims)
	imin, imax := window[0][0], window[0][1]
	jmin, jmax := window[1][0], window[1][1]
	shape := append([]int{}, dims...)
	shape[nd-2], shape[nd-1] = imax-imin, jmax-jmin
	data := sparse.ZerosDense(shape...)

	// The file reader only handles contiguous runs (the end index is the
	// inclusive index of the last element), so a rectangular window is read
	// one grid row at a time.
	nlead := 1
	for _, n := range dims[:nd-2] {
		nlead *= n
	}
	start := make([]int, nd)
	end := make([]int, nd)
	ny := jmax - jmin
	pos := 0
	for l := 0; l < nlead; l++ {
		rem := l
		for k := nd - 3; k >= 0; k-- {
			start[k] = rem % dims[k]
			rem /= dims[k]
		}
		copy(end, start)
		start[nd-1], end[nd-1] = jmin, jmax-1
		for i := imin; i < imax; i++ {
			start[nd-2], end[nd-2] = i, i
			r := f.Reader(name, start, end)
			buf := r.Zero(ny)
			if _, err := r.Read(buf); err != nil {
				return nil, fmt.Errorf("tidegrid: reading netcdf variable %s: %v", name, err)
			}
			if !copyValues(data.Elements[pos:pos+ny], buf) {
				return nil, fmt.Errorf("tidegrid: variable %s has non-floating-point type %T", name, buf)
			}
			pos += ny
		}
	}
	return data, nil
}

// copyValues fills dst from a buffer returned by a cdf reader, widening
// float32 data. It reports whether the buffer held floating-point values.
func copyValues(dst []float64, buf interface{}) bool {
	switch b := buf.(type) {
	case []float64:
		copy(dst, b)
	case []float32:
		for i, v := range b {
			dst[i] = float64(v)
		}
	default:
		return false
	}
	return true
}

// FillValue returns the _FillValue attribute of the named variable, if it
// has one of floating-point type.
func (f *NCF) FillValue(name string) (float64, bool) {
	att := f.Header.GetAttribute(name, "_FillValue")
	switch a := att.(type) {
	case []float64:
		if len(a) > 0 {
			return a[0], true
		}
	case []float32:
		if len(a) > 0 {
			return float64(a[0]), true
		}
	}
	return 0, false
}
