package aichat

// Style is a named transformation prompt.
type Style struct {
	ID     string
	Name   string
	Prompt string
}

// DefaultPrompt is used when a caller picks no style.
const DefaultPrompt = "Transform this quote in the style of Shakespeare"

var styles = []Style{
	{"shakespeare", "Shakespeare", "Transform this quote as if written by Shakespeare"},
	{"yoda", "Yoda", "Transform this quote in Yoda's speaking style"},
	{"pirate", "Pirate", "Transform this quote as a pirate would say it"},
	{"haiku", "Haiku", "Transform this quote into a haiku"},
	{"proverb", "Ancient Proverb", "Transform this quote into an ancient proverb style"},
}

// Styles returns the bundled transformation styles.
func Styles() []Style {
	out := make([]Style, len(styles))
	copy(out, styles)
	return out
}
