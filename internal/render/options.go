// Package render turns analyses into terminal output: markdown summaries,
// charts and tables.
package render

// Options configures the markdown renderer behavior.
type Options struct {
	// Width is the wrap width (default: 80)
	Width int

	// Style is a glamour style name ("dark", "light", ...) or a JSON theme path
	Style string

	EnableEmoji      bool
	PreserveNewLines bool
	TableWrap        bool
	InlineTableLinks bool
}

// DefaultOptions returns the default configuration.
func DefaultOptions() Options {
	return Options{
		Width:            80,
		Style:            "dark",
		EnableEmoji:      true,
		PreserveNewLines: true,
		TableWrap:        true,
	}
}

// WithWidth returns Options with the specified width.
func (o Options) WithWidth(width int) Options {
	if width > 0 {
		o.Width = width
	}
	return o
}

// WithStyle returns Options with the specified style.
func (o Options) WithStyle(style string) Options {
	o.Style = style
	return o
}

// Light reports whether the style targets light backgrounds
func (o Options) Light() bool {
	return o.Style == "light"
}
