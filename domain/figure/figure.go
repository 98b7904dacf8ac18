package figure

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/tiendc/go-deepcopy"
)

// Value is a coordinate that encodes NaN as JSON null, which plotly reads
// as a gap between line segments.
type Value float64

// Gap separates two line segments inside one trace
var Gap = Value(math.NaN())

// MarshalJSON implements json.Marshaler
func (v Value) MarshalJSON() ([]byte, error) {
	f := float64(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, f, 'g', -1, 64), nil
}

// IsGap reports whether v separates segments
func (v Value) IsGap() bool {
	return math.IsNaN(float64(v))
}

// Marker styles trace points
type Marker struct {
	Size    float64 `json:"size,omitempty"`
	Color   string  `json:"color,omitempty"`
	Opacity float64 `json:"opacity,omitempty"`
	Symbol  string  `json:"symbol,omitempty"`
}

// Line styles trace lines
type Line struct {
	Color string  `json:"color,omitempty"`
	Width float64 `json:"width,omitempty"`
}

// Trace is one plotly data series
type Trace struct {
	Type          string   `json:"type"`
	Mode          string   `json:"mode,omitempty"`
	Name          string   `json:"name,omitempty"`
	LegendGroup   string   `json:"legendgroup,omitempty"`
	X             []Value  `json:"x"`
	Y             []Value  `json:"y"`
	Text          []string `json:"text,omitempty"`
	CustomData    []int    `json:"customdata,omitempty"`
	HoverInfo     string   `json:"hoverinfo,omitempty"`
	HoverTemplate string   `json:"hovertemplate,omitempty"`
	Marker        *Marker  `json:"marker,omitempty"`
	Line          *Line    `json:"line,omitempty"`
	ShowLegend    *bool    `json:"showlegend,omitempty"`

	// SelectedPoints holds positions within the trace. An empty, non-nil
	// slice dims every point of the trace.
	SelectedPoints *[]int `json:"selectedpoints,omitempty"`
}

// Axis configures one plot axis
type Axis struct {
	Title          string `json:"title,omitempty"`
	ShowGrid       bool   `json:"showgrid"`
	ZeroLine       bool   `json:"zeroline"`
	ShowTickLabels bool   `json:"showticklabels"`

	TickVals []Value  `json:"tickvals,omitempty"`
	TickText []string `json:"ticktext,omitempty"`
}

// Layout configures the whole figure
type Layout struct {
	Title      string `json:"title,omitempty"`
	Height     int    `json:"height,omitempty"`
	DragMode   string `json:"dragmode,omitempty"`
	HoverMode  string `json:"hovermode,omitempty"`
	ShowLegend bool   `json:"showlegend"`
	Template   string `json:"template,omitempty"`
	XAxis      Axis   `json:"xaxis"`
	YAxis      Axis   `json:"yaxis"`
}

// Figure is a renderable plotly figure. Builders that decorate a figure
// mutate it in place, so callers that reuse a base figure must Clone it.
type Figure struct {
	Kind   string  `json:"-"`
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Clone returns a deep copy that shares no slices or pointers with f
func (f *Figure) Clone() (*Figure, error) {
	var out Figure
	if err := deepcopy.Copy(&out, f); err != nil {
		return nil, err
	}
	return &out, nil
}

// Trace returns the first trace with the given name
func (f *Figure) Trace(name string) (Trace, bool) {
	for _, t := range f.Data {
		if t.Name == name {
			return t, true
		}
	}
	return Trace{}, false
}

// JSON encodes the figure for plotly.newPlot
func (f *Figure) JSON() (string, error) {
	content, err := json.Marshal(f)
	if err != nil {
		return "", err
	}
	return string(content), nil
}

// Highlight marks the points whose customdata is one of rows as selected.
// Traces without customdata, such as tree edges, are left untouched.
func (f *Figure) Highlight(rows []int) {
	if len(rows) == 0 {
		return
	}
	wanted := make(map[int]bool, len(rows))
	for _, r := range rows {
		wanted[r] = true
	}
	for i := range f.Data {
		t := &f.Data[i]
		if len(t.CustomData) == 0 {
			continue
		}
		points := make([]int, 0)
		for j, row := range t.CustomData {
			if wanted[row] {
				points = append(points, j)
			}
		}
		t.SelectedPoints = &points
	}
}

// Bool returns a pointer for optional boolean fields
func Bool(b bool) *bool {
	return &b
}
