package recommend

import (
	"fmt"
	"strings"
	"time"

	"goodwatch/internal/catalog"
)

const moodGuidance = `MOOD MATCHING:
- "tired/exhausted" -> Light, easy plots, comforting. NO complex narratives
- "sad/down" -> Uplifting or cathartic. Avoid tragedy unless asked
- "bored/restless" -> Engaging, fast-paced, plot-driven
- "date night/romantic" -> Romance/romcom, nothing disturbing
- "can't sleep" -> Gripping but not too intense
- "stressed/anxious" -> Calming, feel-good, happy endings
- "intellectual/think" -> Thought-provoking, critically acclaimed
- "fun/party" -> Entertaining, funny, crowd-pleasers`

const ageGuidance = `AGE ADJUSTMENTS:
- Under 18: Age-appropriate, nothing graphic
- 18-24: Recent hits, fast-paced, trending
- 25-34: Quality over hype, mix of new and nostalgic
- 35-44: Classics appreciated, possibly family-friendly
- 45+: Well-crafted storytelling, less CGI-heavy`

const responseFormat = `RESPONSE FORMAT (JSON object):
{
  "movies": [
    {
      "title": "Movie Name",
      "year": 2015,
      "language": "Hindi",
      "why": "Personal 2-3 sentence explanation referencing THEIR mood and preferences",
      "where_to_watch": "Netflix India",
      "runtime": "2h 15m",
      "genres": ["Drama", "Thriller"],
      "director": "Director Name"
    }
  ]
}`

const whyRules = `"WHY" RULES:
- Reference their exact mood words
- Explain why this specific era works for their mood
- Sound like a friend, not a database
- Never say "you might enjoy" - say "this will give you exactly what you need"`

func recommendationPrompt(req Request, freshnessDays int, now time.Time) string {
	var b strings.Builder
	b.WriteString("You are GoodWatch, a movie recommendation engine. Follow these rules strictly.\n")
	if demo := demographics(req.Profile, req.Era); demo != "" {
		fmt.Fprintf(&b, "\nUser demographics: %s\nConsider these demographics and preferences when selecting movies that would resonate with this viewer.\n", demo)
	}
	if watched := req.Exclusions.Titles(); len(watched) > 0 {
		fmt.Fprintf(&b, "\nIMPORTANT: The user has already watched these movies, DO NOT recommend them: %s\n", strings.Join(watched, ", "))
	}

	fmt.Fprintf(&b, `
HARD RULES (never break):
1. ALL 6 movies MUST be in %[1]s - no exceptions
2. ALL 6 movies MUST be %[2]s (era "%[3]s") - no exceptions
3. Return EXACTLY 6 movies: the first 3 are shown, the last 3 are backups
4. NEVER recommend movies from the watched list
5. The first 3 movies must all be DIFFERENT primary genres
6. The first 3 movies must all be from DIFFERENT directors
7. Mix popular and hidden gems: at most 1 blockbuster, at least 1 lesser-known film
8. No two movies from the same franchise or cinematic universe
9. Nothing released in the last %[4]d days (today is %[5]s)
10. Only films available on Indian OTT platforms or in theaters

`, req.Language.Name, req.Era.Describe(), req.Era.Label, freshnessDays, now.Format("2006-01-02"))

	b.WriteString(moodGuidance)
	b.WriteString("\n\n")
	b.WriteString(ageGuidance)
	b.WriteString("\n\n")
	b.WriteString(responseFormat)
	b.WriteString("\n\n")
	b.WriteString(whyRules)
	return b.String()
}

func recommendationUserPrompt(req Request) string {
	return fmt.Sprintf("Mood: %s\nLanguage: %s\nEra: %s", req.Mood, req.Language.Name, req.Era.Label)
}

func replacementPrompt(req ReplacementRequest, freshnessDays int, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are an expert movie curator. Provide exactly %d replacement movie recommendations.\n", req.Count)
	if len(req.Genres) > 0 {
		fmt.Fprintf(&b, "Their favorite genres are: %s.\n", strings.Join(req.Genres, ", "))
	}
	fmt.Fprintf(&b, "Every movie MUST be in %s.\n", req.Language.Name)
	if req.Era.Label != "" {
		fmt.Fprintf(&b, "Every movie MUST be %s.\n", req.Era.Describe())
	}
	if watched := req.Exclusions.Titles(); len(watched) > 0 {
		fmt.Fprintf(&b, "EXCLUDE these already watched or shown movies: %s.\n", strings.Join(watched, ", "))
	}
	fmt.Fprintf(&b, "Nothing released in the last %d days (today is %s).\n", freshnessDays, now.Format("2006-01-02"))
	b.WriteString(`Return a JSON object {"movies": [...]} where each movie has: title, year, why, where_to_watch (Netflix India/Prime Video/Disney+ Hotstar/JioCinema/Zee5/SonyLiv/Theaters), runtime, genres, language, director.`)
	fmt.Fprintf(&b, "\nIf %s movies are unavailable, say so with \"language_fallback\": true rather than switching language.", req.Language.Name)
	return b.String()
}

func replacementUserPrompt(req ReplacementRequest) string {
	return fmt.Sprintf("Current mood: %s. Suggest %d replacement movies.", req.Mood, req.Count)
}

func demographics(p catalog.Profile, era catalog.Era) string {
	var parts []string
	if p.AgeBracket != "" {
		parts = append(parts, "Age: "+p.AgeBracket)
	}
	if p.Gender != "" {
		parts = append(parts, "Gender: "+p.Gender)
	}
	if p.Language != "" {
		parts = append(parts, "Preferred language: "+p.Language)
	}
	if era.Label != "" {
		parts = append(parts, "Preferred era: "+era.Label)
	}
	if len(p.Genres) > 0 {
		parts = append(parts, "Favorite genres: "+strings.Join(p.Genres, ", "))
	}
	return strings.Join(parts, ", ")
}
