package models

// ExportPayload is the request body of the PDF service.
// Chart and Table are omitted when the analysis had none.
type ExportPayload struct {
	Summary           string         `json:"summary"`
	Chart             *Chart         `json:"chart,omitempty"`
	Table             *Table         `json:"table,omitempty"`
	ChartTitle        string         `json:"chart_title"`
	DetectedMetric    string         `json:"detected_metric"`
	MatchedLocations  map[string]any `json:"matched_locations"`
	IsGeneralAnalysis bool           `json:"is_general_analysis"`
	Intent            map[string]any `json:"intent"`
}
