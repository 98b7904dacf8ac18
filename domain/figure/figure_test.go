package figure

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueEncodesGapsAsNull(t *testing.T) {
	content, err := json.Marshal([]Value{1.5, Gap, -2})
	require.NoError(t, err)
	assert.JSONEq(t, `[1.5, null, -2]`, string(content))
	assert.True(t, Gap.IsGap())
}

func TestCloneIsIndependent(t *testing.T) {
	base := &Figure{
		Kind: "scatter",
		Data: make([]Trace, 1, 4),
	}
	base.Data[0] = Trace{
		Type:       "scattergl",
		Name:       "0",
		X:          []Value{1, 2},
		Y:          []Value{3, 4},
		CustomData: []int{0, 1},
		Marker:     &Marker{Color: "#636efa"},
	}

	clone, err := base.Clone()
	require.NoError(t, err)

	clone.Data = append(clone.Data, Trace{Name: "edges"})
	clone.Data[0].X[0] = 99
	clone.Data[0].Marker.Color = "#000000"
	clone.Layout.Title = "changed"

	assert.Len(t, base.Data, 1)
	assert.Equal(t, Value(1), base.Data[0].X[0])
	assert.Equal(t, "#636efa", base.Data[0].Marker.Color)
	assert.Empty(t, base.Layout.Title)
	_, hasEdges := base.Trace("edges")
	assert.False(t, hasEdges)
	assert.Equal(t, "scatter", clone.Kind)
}

func TestFigureJSON(t *testing.T) {
	f := &Figure{Data: []Trace{{Type: "bar", X: []Value{0}, Y: []Value{3}, ShowLegend: Bool(false)}}}
	out, err := f.JSON()
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	data := decoded["data"].([]interface{})
	assert.Len(t, data, 1)
	assert.Equal(t, false, data[0].(map[string]interface{})["showlegend"])
}

func TestHighlightMarksRowsByCustomData(t *testing.T) {
	f := &Figure{Data: []Trace{
		{Name: "edges", X: []Value{0, 1, Gap}},
		{Name: "0", CustomData: []int{0, 4, 8}},
		{Name: "1", CustomData: []int{1, 5}},
	}}

	f.Highlight([]int{8, 0})

	assert.Nil(t, f.Data[0].SelectedPoints, "traces without customdata are untouched")
	require.NotNil(t, f.Data[1].SelectedPoints)
	assert.Equal(t, []int{0, 2}, *f.Data[1].SelectedPoints)
	require.NotNil(t, f.Data[2].SelectedPoints)
	assert.Empty(t, *f.Data[2].SelectedPoints)

	out, err := f.JSON()
	require.NoError(t, err)
	assert.Contains(t, out, `"selectedpoints":[]`)
}

func TestHighlightWithoutRowsIsNoop(t *testing.T) {
	f := &Figure{Data: []Trace{{Name: "0", CustomData: []int{0}}}}
	f.Highlight(nil)
	assert.Nil(t, f.Data[0].SelectedPoints)
}
