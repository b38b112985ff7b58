package tui

import "github.com/charmbracelet/glamour"

// renderMarkdown renders an assistant answer as terminal markdown wrapped to
// the given width. On any rendering failure the raw text is shown instead.
func renderMarkdown(text string, width int) string {
	if width <= 0 {
		width = 80
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return text
	}

	rendered, err := renderer.Render(text)
	if err != nil {
		return text
	}
	return rendered
}
