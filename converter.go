package youte

// Converter renders the HTML fragments the provider returns in display
// fields, such as a comment's textDisplay, as plain text.
type Converter interface {
	// Convert returns the visible text of html. Line breaks are kept.
	Convert(html string) (string, error)
}
