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
	"bytes"
	"io/ioutil"
	"os"
	"testing"

	"github.com/ctessum/cdf"
	"github.com/lnashier/viper"
)

// writeProbeFixture writes a NetCDF file with a 4x4 unit grid, the ramp
// field z[i,j] = i+j, and a depth variable marking the four corners of
// cell (1, 1) as land with its _FillValue attribute.
func writeProbeFixture(t *testing.T) string {
	t.Helper()

	h := cdf.NewHeader([]string{"nx", "ny"}, []int{4, 4})
	h.AddVariable("longitude", []string{"nx"}, []float64{0})
	h.AddVariable("latitude", []string{"ny"}, []float64{0})
	h.AddVariable("z", []string{"nx", "ny"}, []float64{0})
	h.AddVariable("depth", []string{"nx", "ny"}, []float64{0})
	h.AddAttribute("depth", "_FillValue", []float64{-9999})
	h.Define()

	f, err := ioutil.TempFile("", "tidegrid_probe_test")
	if err != nil {
		t.Fatal(err)
	}
	nc, err := cdf.Create(f, h)
	if err != nil {
		t.Fatal(err)
	}

	coord := []float64{0, 1, 2, 3}
	z := make([]float64, 16)
	depth := make([]float64, 16)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			z[i*4+j] = float64(i + j)
			depth[i*4+j] = float64(10 * (i + j))
		}
	}
	for _, ij := range [][2]int{{1, 1}, {2, 1}, {1, 2}, {2, 2}} {
		depth[ij[0]*4+ij[1]] = -9999
	}
	for _, v := range []struct {
		name string
		data interface{}
	}{
		{"longitude", coord},
		{"latitude", coord},
		{"z", z},
		{"depth", depth},
	} {
		end := nc.Header.Lengths(v.name)
		start := make([]int, len(end))
		w := nc.Writer(v.name, start, end)
		if _, err := w.Write(v.data); err != nil {
			t.Fatalf("writing %s: %v", v.name, err)
		}
	}
	if err := cdf.UpdateNumRecs(f); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	return f.Name()
}

func probeConfig(input string) *viper.Viper {
	cfg := viper.New()
	cfg.Set("InputFile", input)
	cfg.Set("Dimensions", []string{"nx", "ny"})
	cfg.Set("Coordinates", []string{"longitude", "latitude"})
	cfg.Set("Field", "z")
	return cfg
}

func TestProbe(t *testing.T) {
	input := writeProbeFixture(t)
	defer os.Remove(input)

	cfg := probeConfig(input)
	var buf bytes.Buffer
	if err := Probe(cfg, []string{"0.5,2.5", "0,0.25"}, &buf); err != nil {
		t.Fatal(err)
	}
	want := "0.5,2.5,3\n0,0.25,0.25\n"
	if buf.String() != want {
		t.Errorf("want %q but have %q", want, buf.String())
	}
}

func TestProbeMaskFromFillAttribute(t *testing.T) {
	input := writeProbeFixture(t)
	defer os.Remove(input)

	// No MaskFillValue configured: the _FillValue attribute of depth
	// is used.
	cfg := probeConfig(input)
	cfg.Set("MaskFillVariable", "depth")
	cfg.Set("AllowExtrapolation", true)

	// Cell (1, 1) is fully land; the 12 valid neighbors of the cell
	// average to (2+1+1+2+4+5+5+4+0+3+6+3)/12 = 3.
	var buf bytes.Buffer
	if err := Probe(cfg, []string{"1.5,1.5"}, &buf); err != nil {
		t.Fatal(err)
	}
	want := "1.5,1.5,3\n"
	if buf.String() != want {
		t.Errorf("want %q but have %q", want, buf.String())
	}

	// Without extrapolation the same point fails, and SkipErrors turns
	// the failure into an empty result.
	cfg.Set("AllowExtrapolation", false)
	buf.Reset()
	if err := Probe(cfg, []string{"1.5,1.5"}, &buf); err == nil {
		t.Error("want error for point inside the land mask")
	}
	cfg.Set("SkipErrors", true)
	buf.Reset()
	if err := Probe(cfg, []string{"1.5,1.5"}, &buf); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "" {
		t.Errorf("want no output but have %q", buf.String())
	}
}

func TestProbePointsFile(t *testing.T) {
	input := writeProbeFixture(t)
	defer os.Remove(input)

	pf, err := ioutil.TempFile("", "tidegrid_points")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(pf.Name())
	if _, err := pf.WriteString("# probe points\n0.5,2.5\n\n2.5,0.5\n"); err != nil {
		t.Fatal(err)
	}
	if err := pf.Close(); err != nil {
		t.Fatal(err)
	}

	cfg := probeConfig(input)
	cfg.Set("PointsFile", pf.Name())
	var buf bytes.Buffer
	if err := Probe(cfg, nil, &buf); err != nil {
		t.Fatal(err)
	}
	want := "0.5,2.5,3\n2.5,0.5,3\n"
	if buf.String() != want {
		t.Errorf("want %q but have %q", want, buf.String())
	}
}

func TestProbeRanges(t *testing.T) {
	input := writeProbeFixture(t)
	defer os.Remove(input)

	cfg := probeConfig(input)
	cfg.Set("Ranges", "2.2,2.4,2.2,2.4")
	var buf bytes.Buffer
	if err := Probe(cfg, []string{"2.5,2.5"}, &buf); err != nil {
		t.Fatal(err)
	}
	want := "2.5,2.5,5\n"
	if buf.String() != want {
		t.Errorf("want %q but have %q", want, buf.String())
	}

	// A window outside the grid is a configuration error.
	cfg.Set("Ranges", "10,11,0,1")
	if err := Probe(cfg, []string{"0.5,0.5"}, &buf); err == nil {
		t.Error("want error for ranges outside the grid")
	}
}
