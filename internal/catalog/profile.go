package catalog

import "slices"

// Age brackets offered by the profile form.
var AgeBrackets = []string{"Under 18", "18-24", "25-34", "35-44", "45-54", "55+"}

// Genders offered by the profile form.
var Genders = []string{"male", "female", "non-binary", "prefer-not-to-say"}

// MaxProfileGenres caps how many favourite genres a profile may carry.
const MaxProfileGenres = 3

// Profile is the optional demographic context a client keeps per session.
type Profile struct {
	AgeBracket string   `json:"age,omitempty"`
	Gender     string   `json:"gender,omitempty"`
	Genres     []string `json:"genres,omitempty"`
	Language   string   `json:"language,omitempty"`
}

// ValidAgeBracket reports whether value is empty or a known bracket.
func ValidAgeBracket(value string) bool {
	return value == "" || slices.Contains(AgeBrackets, value)
}

// ValidGender reports whether value is empty or a known option.
func ValidGender(value string) bool {
	return value == "" || slices.Contains(Genders, value)
}

// Quick moods offered as one-tap shortcuts.
var QuickMoods = []string{
	"Tired, need comfort",
	"Date night",
	"Can't sleep",
	"Want to cry",
	"Need a thrill",
	"Lazy Sunday",
}

// FeedbackReasons are the preset reasons a viewer can pick when a set of
// recommendations missed.
var FeedbackReasons = []string{
	"Already seen it",
	"Wrong mood/vibe",
	"Too long",
	"Not on my platform",
	"Wrong language",
	"Too old/new",
}
