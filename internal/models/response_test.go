package models

import (
	"errors"
	"testing"

	apierrors "github.com/diogo/estatechat/internal/errors"
)

func TestParseAnalyticsResponse_SummaryOnly(t *testing.T) {
	resp, err := ParseAnalyticsResponse([]byte(`{"summary":"Avg price is 300k","detected_metric":"average_price"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.Summary != "Avg price is 300k" {
		t.Errorf("Summary = %q", resp.Summary)
	}
	if resp.DetectedMetric == nil || *resp.DetectedMetric != "average_price" {
		t.Errorf("DetectedMetric = %v, want average_price", resp.DetectedMetric)
	}
	if resp.Chart != nil {
		t.Error("Chart should be absent")
	}
	if resp.Table != nil {
		t.Error("Table should be absent")
	}
	if resp.ChartTitle != nil || resp.FileUsed != nil || resp.IsGeneralAnalysis != nil {
		t.Error("optional scalars should be absent")
	}
	if resp.MatchedLocations != nil || resp.Intent != nil {
		t.Error("optional objects should be absent")
	}
}

func TestParseAnalyticsResponse_AllFields(t *testing.T) {
	body := `{
		"summary": "Prices rose",
		"chart": {"labels": ["2020", 2021], "values": [1.5, 2]},
		"table": [{"year": 2020, "area": "Wakad", "price": 5400.5}, {"year": 2021, "area": "Aundh", "price": null}],
		"detected_metric": "price",
		"chart_title": "Price trend",
		"matched_locations": {"wakad": "Wakad"},
		"is_general_analysis": false,
		"intent": {"type": "trend"},
		"file_used": "listings.csv"
	}`

	resp, err := ParseAnalyticsResponse([]byte(body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.Chart == nil || resp.Chart.Kind != ChartSingle {
		t.Fatalf("Chart = %+v, want single series", resp.Chart)
	}
	if len(resp.Chart.Labels) != 2 || resp.Chart.Labels[1] != "2021" {
		t.Errorf("Labels = %v", resp.Chart.Labels)
	}
	if len(resp.Chart.Values) != 2 || resp.Chart.Values[0] != 1.5 {
		t.Errorf("Values = %v", resp.Chart.Values)
	}

	if resp.Table.Len() != 2 {
		t.Fatalf("Table rows = %d, want 2", resp.Table.Len())
	}
	wantCols := []string{"year", "area", "price"}
	for i, c := range wantCols {
		if resp.Table.Columns[i] != c {
			t.Errorf("Columns[%d] = %s, want %s", i, resp.Table.Columns[i], c)
		}
	}
	if v, ok := resp.Table.Rows[1].Get("price"); !ok || v != nil {
		t.Errorf("null cell = %v, %v", v, ok)
	}

	if resp.IsGeneralAnalysis == nil || *resp.IsGeneralAnalysis {
		t.Errorf("IsGeneralAnalysis = %v, want present false", resp.IsGeneralAnalysis)
	}
	if resp.MatchedLocations["wakad"] != "Wakad" {
		t.Errorf("MatchedLocations = %v", resp.MatchedLocations)
	}
	if resp.Intent["type"] != "trend" {
		t.Errorf("Intent = %v", resp.Intent)
	}
	if resp.FileUsed == nil || *resp.FileUsed != "listings.csv" {
		t.Errorf("FileUsed = %v", resp.FileUsed)
	}
}

func TestParseAnalyticsResponse_MultiSeries(t *testing.T) {
	body := `{"summary":"s","chart":{"labels":["a","b"],"series":[{"name":"wakad","data":[1,2]},{"name":"aundh","data":[3,4]}],"values":[9,9]}}`

	resp, err := ParseAnalyticsResponse([]byte(body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Chart.Kind != ChartMulti {
		t.Fatalf("Kind = %v, want multi", resp.Chart.Kind)
	}
	if len(resp.Chart.Series) != 2 || resp.Chart.Series[1].Name != "aundh" {
		t.Errorf("Series = %+v", resp.Chart.Series)
	}
	if resp.Chart.Values != nil {
		t.Error("Values should not be kept on a multi-series chart")
	}
}

func TestParseAnalyticsResponse_NullIsAbsent(t *testing.T) {
	resp, err := ParseAnalyticsResponse([]byte(`{"summary":"s","chart":null,"table":null,"intent":null,"chart_title":null}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Chart != nil || resp.Table != nil || resp.Intent != nil || resp.ChartTitle != nil {
		t.Errorf("null fields should be absent: %+v", resp)
	}
}

func TestParseAnalyticsResponse_EmptyTable(t *testing.T) {
	resp, err := ParseAnalyticsResponse([]byte(`{"summary":"s","table":[]}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Table == nil {
		t.Fatal("empty table should be present")
	}
	if resp.Table.Len() != 0 {
		t.Errorf("Len() = %d, want 0", resp.Table.Len())
	}
}

func TestParseAnalyticsResponse_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantPath string
	}{
		{"not json", `<html>`, ""},
		{"array root", `[1,2]`, ""},
		{"missing summary", `{"chart":{"labels":[]}}`, "summary"},
		{"summary not string", `{"summary":42}`, "summary"},
		{"chart not object", `{"summary":"s","chart":[1]}`, "chart"},
		{"chart without labels", `{"summary":"s","chart":{"values":[1]}}`, "chart.labels"},
		{"non numeric value", `{"summary":"s","chart":{"labels":["a"],"values":["x"]}}`, "chart.values.0"},
		{"series without name", `{"summary":"s","chart":{"labels":["a"],"series":[{"data":[1]}]}}`, "chart.series.0.name"},
		{"table not array", `{"summary":"s","table":{"a":1}}`, "table"},
		{"table row not object", `{"summary":"s","table":[1]}`, "table.0"},
		{"metric not string", `{"summary":"s","detected_metric":3}`, "detected_metric"},
		{"general not bool", `{"summary":"s","is_general_analysis":"yes"}`, "is_general_analysis"},
		{"intent not object", `{"summary":"s","intent":"trend"}`, "intent"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAnalyticsResponse([]byte(tt.body))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, apierrors.ErrInvalidResponse) {
				t.Errorf("error %v should match ErrInvalidResponse", err)
			}
			var pe *apierrors.ParseError
			if errors.As(err, &pe) && pe.Path != tt.wantPath {
				t.Errorf("Path = %q, want %q", pe.Path, tt.wantPath)
			}
		})
	}
}
