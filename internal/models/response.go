package models

import (
	"fmt"

	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/estatechat/internal/errors"
)

// GJSON paths of the analytics response fields
const (
	FieldSummary           = "summary"
	FieldChart             = "chart"
	FieldTable             = "table"
	FieldDetectedMetric    = "detected_metric"
	FieldChartTitle        = "chart_title"
	FieldMatchedLocations  = "matched_locations"
	FieldIsGeneralAnalysis = "is_general_analysis"
	FieldIntent            = "intent"
	FieldFileUsed          = "file_used"

	FieldChartLabels = "labels"
	FieldChartValues = "values"
	FieldChartSeries = "series"
	FieldSeriesName  = "name"
	FieldSeriesData  = "data"
)

// AnalyticsResponse is a validated response of the analytics service.
// Nil fields were absent (or null) on the wire.
type AnalyticsResponse struct {
	Summary           string
	Chart             *Chart
	Table             *Table
	DetectedMetric    *string
	ChartTitle        *string
	MatchedLocations  map[string]any
	IsGeneralAnalysis *bool
	Intent            map[string]any
	FileUsed          *string
}

// ParseAnalyticsResponse validates body against the response schema and
// decodes it. Structural violations are reported as *errors.ParseError.
func ParseAnalyticsResponse(body []byte) (*AnalyticsResponse, error) {
	if !gjson.ValidBytes(body) {
		return nil, apierrors.NewParseError("response is not valid JSON", "")
	}

	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return nil, apierrors.NewParseError("response is not a JSON object", "")
	}

	summary := root.Get(FieldSummary)
	if !present(summary) {
		return nil, apierrors.NewParseError("missing summary", FieldSummary)
	}
	if summary.Type != gjson.String {
		return nil, apierrors.NewParseError("summary must be a string", FieldSummary)
	}

	resp := &AnalyticsResponse{Summary: summary.String()}

	if r := root.Get(FieldChart); present(r) {
		chart, err := parseChart(r)
		if err != nil {
			return nil, err
		}
		resp.Chart = chart
	}

	if r := root.Get(FieldTable); present(r) {
		table, err := parseTable(r)
		if err != nil {
			return nil, err
		}
		resp.Table = table
	}

	var err error
	if resp.DetectedMetric, err = optionalString(root, FieldDetectedMetric); err != nil {
		return nil, err
	}
	if resp.ChartTitle, err = optionalString(root, FieldChartTitle); err != nil {
		return nil, err
	}
	if resp.FileUsed, err = optionalString(root, FieldFileUsed); err != nil {
		return nil, err
	}
	if resp.MatchedLocations, err = optionalObject(root, FieldMatchedLocations); err != nil {
		return nil, err
	}
	if resp.Intent, err = optionalObject(root, FieldIntent); err != nil {
		return nil, err
	}

	if r := root.Get(FieldIsGeneralAnalysis); present(r) {
		if !r.IsBool() {
			return nil, apierrors.NewParseError("is_general_analysis must be a boolean", FieldIsGeneralAnalysis)
		}
		b := r.Bool()
		resp.IsGeneralAnalysis = &b
	}

	return resp, nil
}

// present treats JSON null the same as a missing key
func present(r gjson.Result) bool {
	return r.Exists() && r.Type != gjson.Null
}

func optionalString(root gjson.Result, path string) (*string, error) {
	r := root.Get(path)
	if !present(r) {
		return nil, nil
	}
	if r.Type != gjson.String {
		return nil, apierrors.NewParseError(path+" must be a string", path)
	}
	s := r.String()
	return &s, nil
}

func optionalObject(root gjson.Result, path string) (map[string]any, error) {
	r := root.Get(path)
	if !present(r) {
		return nil, nil
	}
	if !r.IsObject() {
		return nil, apierrors.NewParseError(path+" must be an object", path)
	}
	m, _ := r.Value().(map[string]interface{})
	if m == nil {
		m = map[string]any{}
	}
	return m, nil
}

func parseChart(r gjson.Result) (*Chart, error) {
	if !r.IsObject() {
		return nil, apierrors.NewParseError("chart must be an object", FieldChart)
	}

	labelsPath := FieldChart + "." + FieldChartLabels
	labelsResult := r.Get(FieldChartLabels)
	if !labelsResult.IsArray() {
		return nil, apierrors.NewParseError("chart labels must be an array", labelsPath)
	}

	labels := []string{}
	var labelErr error
	labelsResult.ForEach(func(i, v gjson.Result) bool {
		if v.Type != gjson.String && v.Type != gjson.Number {
			labelErr = apierrors.NewParseError("chart label must be a string or number", fmt.Sprintf("%s.%d", labelsPath, i.Int()))
			return false
		}
		labels = append(labels, v.String())
		return true
	})
	if labelErr != nil {
		return nil, labelErr
	}

	// series takes precedence over values when both are sent
	if seriesResult := r.Get(FieldChartSeries); present(seriesResult) {
		seriesPath := FieldChart + "." + FieldChartSeries
		if !seriesResult.IsArray() {
			return nil, apierrors.NewParseError("chart series must be an array", seriesPath)
		}

		series := []Series{}
		var seriesErr error
		seriesResult.ForEach(func(i, v gjson.Result) bool {
			path := fmt.Sprintf("%s.%d", seriesPath, i.Int())
			if !v.IsObject() {
				seriesErr = apierrors.NewParseError("series entry must be an object", path)
				return false
			}
			name := v.Get(FieldSeriesName)
			if name.Type != gjson.String {
				seriesErr = apierrors.NewParseError("series name must be a string", path+"."+FieldSeriesName)
				return false
			}
			data, err := parseNumbers(v.Get(FieldSeriesData), path+"."+FieldSeriesData)
			if err != nil {
				seriesErr = err
				return false
			}
			series = append(series, Series{Name: name.String(), Data: data})
			return true
		})
		if seriesErr != nil {
			return nil, seriesErr
		}
		return NewMultiChart(labels, series), nil
	}

	values := []float64{}
	if valuesResult := r.Get(FieldChartValues); present(valuesResult) {
		var err error
		values, err = parseNumbers(valuesResult, FieldChart+"."+FieldChartValues)
		if err != nil {
			return nil, err
		}
	}
	return NewSingleChart(labels, values), nil
}

func parseNumbers(r gjson.Result, path string) ([]float64, error) {
	if !r.IsArray() {
		return nil, apierrors.NewParseError("expected an array of numbers", path)
	}

	nums := []float64{}
	var numErr error
	r.ForEach(func(i, v gjson.Result) bool {
		if v.Type != gjson.Number {
			numErr = apierrors.NewParseError("expected a number", fmt.Sprintf("%s.%d", path, i.Int()))
			return false
		}
		nums = append(nums, v.Float())
		return true
	})
	if numErr != nil {
		return nil, numErr
	}
	return nums, nil
}

func parseTable(r gjson.Result) (*Table, error) {
	if !r.IsArray() {
		return nil, apierrors.NewParseError("table must be an array", FieldTable)
	}

	rows := []Row{}
	var rowErr error
	r.ForEach(func(i, v gjson.Result) bool {
		if !v.IsObject() {
			rowErr = apierrors.NewParseError("table row must be an object", fmt.Sprintf("%s.%d", FieldTable, i.Int()))
			return false
		}
		row := Row{}
		v.ForEach(func(key, cell gjson.Result) bool {
			row = append(row, Cell{
				Column: key.String(),
				Value:  cell.Value(),
				raw:    cell.Raw,
			})
			return true
		})
		rows = append(rows, row)
		return true
	})
	if rowErr != nil {
		return nil, rowErr
	}
	return NewTable(rows), nil
}
