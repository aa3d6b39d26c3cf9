// Package symbology holds the resolved styling values consumed by the
// geometry compiler: point, line and polygon symbols plus their colors.
package symbology

// Units describes how a stroke width is measured.
type Units int

const (
	// Pixels widths are applied as line-width render state.
	Pixels Units = iota
	// Meters widths are polygonized into world-unit ribbons.
	Meters
)

// Stroke describes the outline of a line or ring.
type Stroke struct {
	Color      Color
	Width      float32
	WidthUnits Units
}

// LineSymbol styles linear geometry. Tessellation, when set to 0,
// suppresses mesh subdivision on a geocentric map.
type LineSymbol struct {
	Stroke       Stroke
	Tessellation *int
}

// TessellationDisabled reports whether the symbol explicitly opts out
// of mesh subdivision.
func (l *LineSymbol) TessellationDisabled() bool {
	return l != nil && l.Tessellation != nil && *l.Tessellation == 0
}

// PointSymbol styles point geometry.
type PointSymbol struct {
	Fill Color
	Size float32
}

// PolygonSymbol styles filled areas.
type PolygonSymbol struct {
	Fill Color
}

// Style maps symbol kinds to at most one symbol instance each.
type Style struct {
	Point   *PointSymbol
	Line    *LineSymbol
	Polygon *PolygonSymbol
}

// Empty reports whether the style carries no symbols at all.
func (s Style) Empty() bool {
	return s.Point == nil && s.Line == nil && s.Polygon == nil
}

// WithoutLine returns a copy of the style with the line symbol removed.
func (s Style) WithoutLine() Style {
	s.Line = nil
	return s
}

// WithoutPolygon returns a copy of the style with the polygon symbol removed.
func (s Style) WithoutPolygon() Style {
	s.Polygon = nil
	return s
}
