package cmd

import (
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/vis-sim/osgearth/srs"
	"github.com/vis-sim/osgearth/symbology"
)

type GlobalOptions struct {
	Style      string  `short:"s" long:"style" description:"Style definition file (YAML)"`
	SRS        string  `long:"srs" default:"wgs84" description:"Spatial reference of the input features"`
	MapSRS     string  `long:"map-srs" default:"spherical-mercator" description:"Spatial reference of the map"`
	Geocentric bool    `long:"geocentric" description:"Compile for a geocentric globe"`
	MaxAngle   float64 `long:"max-angle" default:"1" description:"Subdivision granularity in degrees"`
}

var globalOpts = GlobalOptions{}
var parser = flags.NewParser(&globalOpts, flags.HelpFlag|flags.PassDoubleDash)

func Run() error {
	_, err := parser.Parse()
	if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
		parser.WriteHelp(os.Stdout)
		return nil
	}
	return err
}

func (g *GlobalOptions) LoadStyle() (symbology.Style, error) {
	if g.Style == "" {
		return symbology.Style{}, nil
	}
	return symbology.LoadStyle(g.Style)
}

func (g *GlobalOptions) FeatureSRS() (*srs.SpatialReference, error) {
	return srs.Parse(g.SRS)
}

func (g *GlobalOptions) MapSpatialReference() (*srs.SpatialReference, error) {
	return srs.Parse(g.MapSRS)
}
