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

package tidegridutil

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/coastalsim/tidegrid"
	"github.com/ctessum/geom"
	"github.com/lnashier/viper"
	"github.com/spf13/cast"
)

// Probe interpolates the field configured in cfg at every probe point and
// writes one CSV line per point to w. Points are given as "x,y" arguments
// and, optionally, read one per line from the configured PointsFile.
func Probe(cfg *viper.Viper, args []string, w io.Writer) error {
	f, err := os.Open(os.ExpandEnv(cfg.GetString("InputFile")))
	if err != nil {
		return fmt.Errorf("tidegrid: opening input file: %v", err)
	}
	defer f.Close()
	nc, err := tidegrid.OpenNCF(f)
	if err != nil {
		return err
	}

	src, err := newGridSource(cfg, nc)
	if err != nil {
		return err
	}

	field := cfg.GetString("Field")
	if field == "" {
		return fmt.Errorf("tidegrid: no field specified; use the --Field flag")
	}
	if err := src.SetField(field); err != nil {
		return err
	}

	points, err := readPoints(cfg.GetString("PointsFile"), args)
	if err != nil {
		return err
	}

	allowExtrapolation := cfg.GetBool("AllowExtrapolation")
	skipErrors := cfg.GetBool("SkipErrors")
	for _, p := range points {
		v, err := src.GetVal(p, allowExtrapolation)
		if err != nil {
			if skipErrors {
				logger.WithError(err).Warn("skipping point")
				continue
			}
			return err
		}
		fmt.Fprintf(w, "%g,%g", p.X, p.Y)
		for _, c := range v {
			fmt.Fprintf(w, ",%g", c)
		}
		fmt.Fprintln(w)
	}
	return nil
}

// newGridSource builds a GridSource from the configured grid identity,
// window, and mask.
func newGridSource(cfg *viper.Viper, nc *tidegrid.NCF) (*tidegrid.GridSource, error) {
	dims := cfg.GetStringSlice("Dimensions")
	coords := cfg.GetStringSlice("Coordinates")
	if len(dims) != 2 || len(coords) != 2 {
		return nil, fmt.Errorf("tidegrid: Dimensions and Coordinates must each name 2 variables")
	}
	src, err := tidegrid.NewGridSource(nc,
		[2]string{dims[0], dims[1]}, [2]string{coords[0], coords[1]})
	if err != nil {
		return nil, err
	}
	src.OnExtrapolation = func(p geom.Point, i, j int) {
		logger.Warnf("extrapolating at point (%g, %g), grid index (%d, %d)", p.X, p.Y, i, j)
	}

	if s := cfg.GetString("Ranges"); s != "" {
		r, err := parseFloats(s, 4)
		if err != nil {
			return nil, fmt.Errorf("tidegrid: invalid Ranges %q: %v", s, err)
		}
		err = src.SetRanges([2][2]float64{{r[0], r[1]}, {r[2], r[3]}})
		if err != nil {
			return nil, err
		}
	}

	maskVar := cfg.GetString("MaskVariable")
	fillVar := cfg.GetString("MaskFillVariable")
	switch {
	case maskVar != "":
		if err := src.SetMask(maskVar); err != nil {
			return nil, err
		}
	case fillVar != "":
		var fill float64
		if s := cfg.GetString("MaskFillValue"); s != "" {
			fill, err = cast.ToFloat64E(s)
			if err != nil {
				return nil, fmt.Errorf("tidegrid: invalid MaskFillValue %q: %v", s, err)
			}
		} else {
			var ok bool
			fill, ok = nc.FillValue(fillVar)
			if !ok {
				return nil, fmt.Errorf(
					"tidegrid: variable %s has no _FillValue attribute; set MaskFillValue explicitly", fillVar)
			}
		}
		if err := src.SetMaskFromFillValue(fillVar, fill); err != nil {
			return nil, err
		}
	}
	return src, nil
}

// readPoints parses probe points from the command-line arguments and,
// when path is not empty, from the named file, one "x,y" point per line.
// Blank lines and lines starting with '#' are ignored.
func readPoints(path string, args []string) ([]geom.Point, error) {
	var points []geom.Point
	for _, arg := range args {
		p, err := parsePoint(arg)
		if err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	if path == "" {
		return points, nil
	}
	f, err := os.Open(os.ExpandEnv(path))
	if err != nil {
		return nil, fmt.Errorf("tidegrid: opening points file: %v", err)
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		p, err := parsePoint(line)
		if err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("tidegrid: reading points file: %v", err)
	}
	return points, nil
}

func parsePoint(s string) (geom.Point, error) {
	xy, err := parseFloats(s, 2)
	if err != nil {
		return geom.Point{}, fmt.Errorf("tidegrid: invalid point %q: %v", s, err)
	}
	return geom.Point{X: xy[0], Y: xy[1]}, nil
}

// parseFloats splits s on commas and converts the parts, requiring
// exactly n of them.
func parseFloats(s string, n int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("want %d comma-separated values but have %d", n, len(parts))
	}
	out := make([]float64, n)
	for i, part := range parts {
		v, err := cast.ToFloat64E(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
