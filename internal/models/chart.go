package models

import "encoding/json"

// ChartKind distinguishes the two chart payload shapes
type ChartKind int

const (
	// ChartSingle is {labels, values}
	ChartSingle ChartKind = iota
	// ChartMulti is {labels, series: [{name, data}]}
	ChartMulti
)

func (k ChartKind) String() string {
	if k == ChartMulti {
		return "multi"
	}
	return "single"
}

// Series is one named line of a multi-series chart
type Series struct {
	Name string    `json:"name"`
	Data []float64 `json:"data"`
}

// Chart is a time-series chart payload, resolved once at parse time into
// either a single series (Values) or several named series (Series).
type Chart struct {
	Kind   ChartKind
	Labels []string
	Values []float64
	Series []Series
}

// NewSingleChart creates a single-series chart
func NewSingleChart(labels []string, values []float64) *Chart {
	return &Chart{Kind: ChartSingle, Labels: labels, Values: values}
}

// NewMultiChart creates a multi-series chart
func NewMultiChart(labels []string, series []Series) *Chart {
	return &Chart{Kind: ChartMulti, Labels: labels, Series: series}
}

// MarshalJSON writes the chart back in the wire shape it was parsed from
func (c Chart) MarshalJSON() ([]byte, error) {
	labels := c.Labels
	if labels == nil {
		labels = []string{}
	}

	if c.Kind == ChartMulti {
		series := make([]Series, len(c.Series))
		for i, s := range c.Series {
			if s.Data == nil {
				s.Data = []float64{}
			}
			series[i] = s
		}
		return json.Marshal(struct {
			Labels []string `json:"labels"`
			Series []Series `json:"series"`
		}{labels, series})
	}

	values := c.Values
	if values == nil {
		values = []float64{}
	}
	return json.Marshal(struct {
		Labels []string  `json:"labels"`
		Values []float64 `json:"values"`
	}{labels, values})
}
