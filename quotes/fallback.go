package quotes

// fallbackQuote is a bundled quote served when the API is unreachable.
type fallbackQuote struct {
	title   string
	content string
	author  string
}

// fallbackPool ships with the provider so a dead quote API still yields
// content.
var fallbackPool = []fallbackQuote{
	{"Success", "Success is not final, failure is not fatal: it is the courage to continue that counts.", "Winston Churchill"},
	{"Dreams", "All our dreams can come true, if we have the courage to pursue them.", "Walt Disney"},
	{"Life", "Life is what happens when you are busy making other plans.", "John Lennon"},
	{"Persistence", "It does not matter how slowly you go as long as you do not stop.", "Confucius"},
	{"Wisdom", "The only true wisdom is in knowing you know nothing.", "Socrates"},
	{"Growth", "Be the change you wish to see in the world.", "Mahatma Gandhi"},
	{"Innovation", "Innovation distinguishes between a leader and a follower.", "Steve Jobs"},
	{"Imagination", "Logic will get you from A to B. Imagination will take you everywhere.", "Albert Einstein"},
	{"Purpose", "The two most important days in your life are the day you are born and the day you find out why.", "Mark Twain"},
	{"Growth", "The greatest glory in living lies not in never falling, but in rising every time we fall.", "Nelson Mandela"},
	{"Time", "Yesterday is history, tomorrow is a mystery, but today is a gift. That is why it is called the present.", "Alice Morse Earle"},
	{"Knowledge", "An investment in knowledge pays the best interest.", "Benjamin Franklin"},
	{"Courage", "Courage is not the absence of fear, but the triumph over it.", "Nelson Mandela"},
	{"Experience", "Experience is not what happens to you; it is what you do with what happens to you.", "Aldous Huxley"},
	{"Happiness", "Happiness is not something ready-made. It comes from your own actions.", "Dalai Lama"},
}
