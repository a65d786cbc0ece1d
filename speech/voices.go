package speech

// Voice describes one synthesis voice.
type Voice struct {
	ID          string
	Name        string
	Description string
}

// DefaultVoiceID is used when a caller passes no voice.
const DefaultVoiceID = "pNInz6obpgDQGcFmaJgB"

var voices = []Voice{
	{"pNInz6obpgDQGcFmaJgB", "Adam", "Deep and well-rounded male voice"},
	{"21m00Tcm4TlvDq8ikWAM", "Rachel", "Calm and professional female voice"},
	{"AZnzlk1XvdvUeBnXmlld", "Domi", "Clear and energetic female voice"},
	{"yoZ06aMxZJJ28mfd3POQ", "Sam", "Reliable and trustworthy male voice"},
	{"EXAVITQu4vr4xnSDxMaL", "Elli", "Gentle and friendly female voice"},
	{"MF3mGyEYCl7XYWbV9V6O", "Josh", "Confident and engaging male voice"},
}

// Voices returns the bundled voice registry.
func Voices() []Voice {
	out := make([]Voice, len(voices))
	copy(out, voices)
	return out
}
