// Package models contains data types and constants for the estatechat client.
package models

// Endpoints of the analytics backend, relative to the configured base URL
const (
	DefaultBaseURL = "https://realestateagent-ol6i.onrender.com"
	PathAnalyze    = "/api/analyze/"
	PathExportPDF  = "/api/download-pdf/"
)

// Conversation texts
const (
	GreetingText    = "Hello! Ask me about real estate analytics."
	PlaceholderText = "Analyzing data..."
	ErrorPrefix     = "❌ "
)

// Export defaults applied when a bot message lacks the field
const (
	DefaultChartTitle = "Analysis Report"
	ReportFilePrefix  = "analysis_report_"
	ReportFileExt     = ".pdf"
)

// Accepted spreadsheet MIME types
const (
	MIMETypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MIMETypeXLS  = "application/vnd.ms-excel"
	MIMETypeCSV  = "text/csv"
)

// SupportedFileTypes returns the list of MIME types accepted for attachments
func SupportedFileTypes() []string {
	return []string{
		MIMETypeXLSX,
		MIMETypeXLS,
		MIMETypeCSV,
	}
}

// SupportedExtensions returns the file extensions accepted for attachments
func SupportedExtensions() []string {
	return []string{".xlsx", ".xls", ".csv"}
}

// DefaultHeaders returns the headers sent with every backend request
func DefaultHeaders() map[string]string {
	return map[string]string{
		"Accept":          "application/json, text/plain, */*",
		"Accept-Language": "en-US,en;q=0.9",
		"User-Agent":      "estatechat/0.1 (+https://github.com/diogo/estatechat)",
	}
}
