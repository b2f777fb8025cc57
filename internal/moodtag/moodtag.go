// Package moodtag derives mood tags from free text.
//
// The same families tag catalog overviews during enrichment and interpret a
// viewer's typed mood at request time; a tag only matches across the two when
// both sides run through Tag.
package moodtag

import (
	"regexp"
	"slices"
	"strings"
)

// Tags emitted by the families below.
const (
	Emotional  = "emotional"
	Cry        = "cry"
	Happy      = "happy"
	Fun        = "fun"
	Romantic   = "romantic"
	Date       = "date"
	Intense    = "intense"
	Thrill     = "thrill"
	Scary      = "scary"
	Action     = "action"
	Adrenaline = "adrenaline"
	Thoughtful = "thoughtful"
	Deep       = "deep"
	Relaxing   = "relaxing"
	Light      = "light"
	Family     = "family"
)

type family struct {
	pattern *regexp.Regexp
	tags    []string
}

// Triggers match at a word start, so "heartbreak" also hits "heartbreaking"
// and "comfort" hits "comfortable".
func newFamily(words []string, tags ...string) family {
	return family{
		pattern: regexp.MustCompile(`\b(?:` + strings.Join(words, "|") + `)`),
		tags:    tags,
	}
}

var families = []family{
	newFamily([]string{"tragedy", "tragic", "tear", "emotional", "heartbreak", "loss", "grief", "sad", "touching", "moving", "cry"}, Emotional, Cry),
	newFamily([]string{"comedy", "funny", "hilarious", "laugh", "humor", "humour", "feel-good", "uplifting", "joy"}, Happy, Fun),
	newFamily([]string{"romance", "love", "relationship", "couple", "date", "romantic"}, Romantic, Date),
	newFamily([]string{"thriller", "suspense", "mystery", "intense", "gripping", "tension", "edge", "thrill"}, Intense, Thrill),
	newFamily([]string{"horror", "scary", "terrifying", "frightening", "creepy", "nightmare"}, Scary),
	newFamily([]string{"action", "adventure", "explosive", "fight", "battle", "war", "chase"}, Action, Adrenaline),
	newFamily([]string{"philosophical", "thought-provoking", "intellectual", "complex", "deep", "meaning"}, Thoughtful, Deep),
	newFamily([]string{"light", "easy", "casual", "relax", "comfort", "gentle", "lazy"}, Relaxing, Light),
	newFamily([]string{"family", "children", "kids", "wholesome", "innocent"}, Family),
}

// Set is an unordered collection of mood tags.
type Set map[string]struct{}

// Tag runs text through every family and returns the accumulated tags. It is
// pure and deterministic; text with no trigger words yields an empty set.
func Tag(text string) Set {
	lowered := strings.ToLower(text)
	set := Set{}
	for _, f := range families {
		if f.pattern.MatchString(lowered) {
			for _, tag := range f.tags {
				set[tag] = struct{}{}
			}
		}
	}
	return set
}

// TagMovie tags a catalog entry from its overview and keywords.
func TagMovie(overview string, keywords []string) Set {
	return Tag(overview + " " + strings.Join(keywords, " "))
}

// Has reports whether tag is in the set.
func (s Set) Has(tag string) bool {
	_, ok := s[tag]
	return ok
}

// Overlaps reports whether any of tags is in the set.
func (s Set) Overlaps(tags []string) bool {
	for _, tag := range tags {
		if s.Has(tag) {
			return true
		}
	}
	return false
}

// Sorted returns the tags in lexical order, never nil.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for tag := range s {
		out = append(out, tag)
	}
	slices.Sort(out)
	return out
}

// Vocabulary lists every tag a family can emit.
func Vocabulary() []string {
	seen := Set{}
	for _, f := range families {
		for _, tag := range f.tags {
			seen[tag] = struct{}{}
		}
	}
	return seen.Sorted()
}
