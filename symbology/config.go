package symbology

import (
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v2"
)

type styleConfig struct {
	Point *struct {
		Fill string  `yaml:"fill"`
		Size float32 `yaml:"size"`
	} `yaml:"point"`
	Line *struct {
		Stroke       string  `yaml:"stroke"`
		Width        float32 `yaml:"width"`
		WidthUnits   string  `yaml:"width-units"`
		Tessellation *int    `yaml:"tessellation"`
	} `yaml:"line"`
	Polygon *struct {
		Fill string `yaml:"fill"`
	} `yaml:"polygon"`
}

// LoadStyle reads a style definition from a YAML file.
func LoadStyle(path string) (Style, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Style{}, err
	}
	return ParseStyle(data)
}

// ParseStyle decodes a YAML style definition.
func ParseStyle(data []byte) (Style, error) {
	config := &styleConfig{}
	err := yaml.Unmarshal(data, config)
	if err != nil {
		return Style{}, err
	}

	style := Style{}

	if config.Point != nil {
		fill, err := ParseColor(config.Point.Fill)
		if err != nil {
			return Style{}, err
		}
		size := config.Point.Size
		if size == 0 {
			size = 1
		}
		style.Point = &PointSymbol{Fill: fill, Size: size}
	}

	if config.Line != nil {
		stroke, err := ParseColor(config.Line.Stroke)
		if err != nil {
			return Style{}, err
		}
		width := config.Line.Width
		if width == 0 {
			width = 1
		}
		units := Pixels
		switch config.Line.WidthUnits {
		case "", "pixels":
		case "meters", "world":
			units = Meters
		default:
			return Style{}, fmt.Errorf("unknown width units %q", config.Line.WidthUnits)
		}
		style.Line = &LineSymbol{
			Stroke:       Stroke{Color: stroke, Width: width, WidthUnits: units},
			Tessellation: config.Line.Tessellation,
		}
	}

	if config.Polygon != nil {
		fill, err := ParseColor(config.Polygon.Fill)
		if err != nil {
			return Style{}, err
		}
		style.Polygon = &PolygonSymbol{Fill: fill}
	}

	return style, nil
}
