// Package normalize maps analytics responses to bot messages and back to
// the PDF export payload.
package normalize

import (
	"fmt"

	"github.com/diogo/estatechat/internal/models"
)

// Normalize maps a validated analytics response onto a bot message.
// Fields absent from the response stay absent on the message.
func Normalize(resp *models.AnalyticsResponse) models.Message {
	analysis := &models.Analysis{
		Chart:             resp.Chart,
		Table:             resp.Table,
		Metric:            resp.DetectedMetric,
		ChartTitle:        resp.ChartTitle,
		MatchedLocations:  resp.MatchedLocations,
		IsGeneralAnalysis: resp.IsGeneralAnalysis,
		Intent:            resp.Intent,
		FileUsed:          resp.FileUsed,
	}
	return models.NewBotMessage(resp.Summary, analysis)
}

// ExportPayload rebuilds the PDF service payload from a resolved bot
// message, filling the defaults the export schema requires.
func ExportPayload(msg models.Message) (models.ExportPayload, error) {
	if !msg.IsBot() {
		return models.ExportPayload{}, fmt.Errorf("cannot export a %s message", msg.Kind)
	}

	a := msg.Analysis
	if a == nil {
		a = &models.Analysis{}
	}

	payload := models.ExportPayload{
		Summary:           msg.Text,
		Chart:             a.Chart,
		Table:             a.Table,
		ChartTitle:        models.DefaultChartTitle,
		DetectedMetric:    "",
		MatchedLocations:  a.MatchedLocations,
		IsGeneralAnalysis: false,
		Intent:            a.Intent,
	}

	if a.ChartTitle != nil {
		payload.ChartTitle = *a.ChartTitle
	}
	if a.Metric != nil {
		payload.DetectedMetric = *a.Metric
	}
	if a.IsGeneralAnalysis != nil {
		payload.IsGeneralAnalysis = *a.IsGeneralAnalysis
	}
	if payload.MatchedLocations == nil {
		payload.MatchedLocations = map[string]any{}
	}
	if payload.Intent == nil {
		payload.Intent = map[string]any{}
	}

	return payload, nil
}
