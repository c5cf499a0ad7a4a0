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

// Package tidegridutil holds the commands of the tidegrid command-line
// tool.
package tidegridutil

import (
	"fmt"
	"os"
	"time"

	"github.com/coastalsim/tidegrid"
	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var logger *logrus.Logger

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	logger = logrus.StandardLogger()
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339Nano,
		DisableSorting:  true,
	})

	// Options are the configuration options available to tidegrid.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "InputFile",
			usage: `
              InputFile is the path of the NetCDF file holding the gridded
              data. It can contain environment variables.`,
			shorthand:  "i",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{probeCmd.Flags()},
		},
		{
			name: "Dimensions",
			usage: `
              Dimensions names the two dimensions of the logical 2D grid,
              in the storage order of the interpolated field.`,
			defaultVal: []string{"nx", "ny"},
			flagsets:   []*pflag.FlagSet{probeCmd.Flags()},
		},
		{
			name: "Coordinates",
			usage: `
              Coordinates names the two coordinate variables aligned with
              the grid dimensions, in the same order as Dimensions.`,
			defaultVal: []string{"longitude", "latitude"},
			flagsets:   []*pflag.FlagSet{probeCmd.Flags()},
		},
		{
			name: "Field",
			usage: `
              Field is the name of the variable to interpolate.`,
			shorthand:  "f",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{probeCmd.Flags()},
		},
		{
			name: "MaskVariable",
			usage: `
              MaskVariable is the name of an optional land-mask variable,
              holding 0.0 at land points and 1.0 at sea points.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{probeCmd.Flags()},
		},
		{
			name: "MaskFillVariable",
			usage: `
              MaskFillVariable is the name of a variable from which a land
              mask should be derived by comparing against a fill value. It
              is ignored when MaskVariable is set.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{probeCmd.Flags()},
		},
		{
			name: "MaskFillValue",
			usage: `
              MaskFillValue is the fill value marking land points in
              MaskFillVariable. When empty, the variable's _FillValue
              attribute is used.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{probeCmd.Flags()},
		},
		{
			name: "Ranges",
			usage: `
              Ranges restricts interpolation to a coordinate sub-window,
              given as "xmin,xmax,ymin,ymax". Only the data within the
              window is read from the file.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{probeCmd.Flags()},
		},
		{
			name: "PointsFile",
			usage: `
              PointsFile is the path of a file holding one "x,y" probe
              point per line, in addition to any points given as
              command-line arguments.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{probeCmd.Flags()},
		},
		{
			name: "AllowExtrapolation",
			usage: `
              AllowExtrapolation enables neighbor-averaging for points
              whose surrounding grid cell is entirely masked out. Each
              extrapolated point is logged.`,
			shorthand:  "e",
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{probeCmd.Flags()},
		},
		{
			name: "SkipErrors",
			usage: `
              SkipErrors logs and skips points that cannot be interpolated
              instead of aborting.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{probeCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("TIDEGRID")

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case []string:
				if option.shorthand == "" {
					set.StringSlice(option.name, option.defaultVal.([]string), option.usage)
				} else {
					set.StringSliceP(option.name, option.shorthand, option.defaultVal.([]string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(probeCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("tidegrid: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "tidegrid",
	Short: "An interpolator for gridded geophysical data.",
	Long: `tidegrid interpolates fields stored on a uniform 2D grid in a NetCDF
file, such as tidal or bathymetric data, at arbitrary coordinates.

Configuration can be changed by using a configuration file (and providing
the path to the file using the --config flag), by using command-line
arguments, or by setting environment variables in the format 'TIDEGRID_var'
where 'var' is the name of the variable to be set.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of tidegrid.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("tidegrid v%s\n", tidegrid.Version)
	},
	DisableAutoGenTag: true,
}

var probeCmd = &cobra.Command{
	Use:   "probe [x,y]...",
	Short: "Interpolate a field at the given points.",
	Long: `probe interpolates the configured field at every probe point, given as
"x,y" arguments or read from PointsFile, and writes one "x,y,value..."
CSV line per point to standard output. Vector fields produce one value
column per component. The coordinate order must match the storage order
of the field in the file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Probe(Cfg, args, os.Stdout)
	},
	DisableAutoGenTag: true,
}
