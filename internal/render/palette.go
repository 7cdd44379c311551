package render

import "github.com/charmbracelet/lipgloss"

// Palette is the color scheme shared by the CLI and the TUI
type Palette struct {
	Name string

	Surface lipgloss.Color
	Border  lipgloss.Color

	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color

	Text     lipgloss.Color
	TextDim  lipgloss.Color
	TextMute lipgloss.Color

	// Series colors, cycled for multi-series charts
	Series []lipgloss.Color
}

var (
	// DarkPalette is based on Tokyo Night
	DarkPalette = Palette{
		Name:      "dark",
		Surface:   lipgloss.Color("#24283b"),
		Border:    lipgloss.Color("#414868"),
		Primary:   lipgloss.Color("#7aa2f7"),
		Secondary: lipgloss.Color("#9ece6a"),
		Accent:    lipgloss.Color("#bb9af7"),
		Warning:   lipgloss.Color("#e0af68"),
		Error:     lipgloss.Color("#f7768e"),
		Text:      lipgloss.Color("#c0caf5"),
		TextDim:   lipgloss.Color("#565f89"),
		TextMute:  lipgloss.Color("#3b4261"),
		Series: []lipgloss.Color{
			"#4bc0c0", "#f7768e", "#e0af68", "#9ece6a", "#7aa2f7", "#bb9af7",
		},
	}

	// LightPalette is used with the light markdown style
	LightPalette = Palette{
		Name:      "light",
		Surface:   lipgloss.Color("#e9e9ed"),
		Border:    lipgloss.Color("#a8aecb"),
		Primary:   lipgloss.Color("#2e7de9"),
		Secondary: lipgloss.Color("#587539"),
		Accent:    lipgloss.Color("#9854f1"),
		Warning:   lipgloss.Color("#8c6c3e"),
		Error:     lipgloss.Color("#c64343"),
		Text:      lipgloss.Color("#3760bf"),
		TextDim:   lipgloss.Color("#6172b0"),
		TextMute:  lipgloss.Color("#a1a6c5"),
		Series: []lipgloss.Color{
			"#118c74", "#c64343", "#8c6c3e", "#587539", "#2e7de9", "#9854f1",
		},
	}
)

// PaletteFor picks the palette matching the markdown style
func PaletteFor(opts Options) Palette {
	if opts.Light() {
		return LightPalette
	}
	return DarkPalette
}

// SeriesColor returns the color of the i-th series
func (p Palette) SeriesColor(i int) lipgloss.Color {
	if len(p.Series) == 0 {
		return p.Primary
	}
	return p.Series[i%len(p.Series)]
}
