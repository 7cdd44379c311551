package render

import (
	"fmt"
	"testing"

	"github.com/diogo/estatechat/internal/models"
)

func benchTable(n int) *models.Table {
	rows := make([]models.Row, n)
	for i := range rows {
		rows[i] = models.Row{
			models.NewCell("year", float64(2000+i)),
			models.NewCell("area", fmt.Sprintf("Area %d", i)),
			models.NewCell("avg_price", 5400.25*float64(i+1)),
		}
	}
	return models.NewTable(rows)
}

func BenchmarkTable(b *testing.B) {
	t := benchTable(50)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Table(t, 100, DefaultMaxTableRows, DarkPalette)
	}
}

func BenchmarkMarkdownPooled(b *testing.B) {
	opts := DefaultOptions()
	content := "## Summary\n\nAverage price in **Wakad** rose by 12% between 2020 and 2023."
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Markdown(content, opts); err != nil {
			b.Fatal(err)
		}
	}
}
