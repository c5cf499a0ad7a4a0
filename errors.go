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

	"github.com/ctessum/geom"
)

// CoordinateError is returned by GetVal for a query at a physical
// coordinate that cannot be answered: the mapped grid index is outside the
// grid, or the point lies in a masked-out region. It carries the offending
// coordinate and the grid index it mapped to.
type CoordinateError struct {
	Point  geom.Point
	I, J   int
	Reason string
}

func (e CoordinateError) Error() string {
	return fmt.Sprintf("tidegrid: at (%g, %g), indexed at (%d, %d): %s",
		e.Point.X, e.Point.Y, e.I, e.J, e.Reason)
}

// ConfigError is returned for invalid setup of a GridSource, such as
// windowing twice, requesting a window outside the grid, a coordinate or
// mask variable with an unsupported number of dimensions, or querying
// before a field has been selected.
type ConfigError struct {
	Reason string
}

func (e ConfigError) Error() string {
	return "tidegrid: " + e.Reason
}
