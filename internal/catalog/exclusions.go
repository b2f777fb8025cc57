package catalog

import (
	"slices"
	"strconv"
)

// Exclusions is a set of movies a viewer must not be shown again. A zero year
// excludes every release of the title.
type Exclusions struct {
	byTitle map[string]map[int]struct{}
	display map[string]string
	ids     map[int64]struct{}
}

// NewExclusions builds an empty set.
func NewExclusions() *Exclusions {
	return &Exclusions{
		byTitle: map[string]map[int]struct{}{},
		display: map[string]string{},
		ids:     map[int64]struct{}{},
	}
}

// Add excludes title (in year, or every year when year is zero).
func (e *Exclusions) Add(title string, year int) {
	key := NormalizeTitle(title)
	if key == "" {
		return
	}
	years, ok := e.byTitle[key]
	if !ok {
		years = map[int]struct{}{}
		e.byTitle[key] = years
		e.display[key] = title
	}
	years[year] = struct{}{}
}

// AddID excludes a catalog row by TMDB id.
func (e *Exclusions) AddID(id int64) {
	if id > 0 {
		e.ids[id] = struct{}{}
	}
}

// AddMovie excludes a movie by id and by title/year.
func (e *Exclusions) AddMovie(m Movie) {
	e.AddID(m.ID)
	e.Add(m.Title, m.Year)
}

// Merge adds every entry of other.
func (e *Exclusions) Merge(other *Exclusions) {
	if other == nil {
		return
	}
	for key, years := range other.byTitle {
		for year := range years {
			e.Add(other.display[key], year)
		}
	}
	for id := range other.ids {
		e.AddID(id)
	}
}

// Excludes reports whether m is in the set. A movie with an unknown year
// matches any excluded release of its title.
func (e *Exclusions) Excludes(m Movie) bool {
	if e == nil {
		return false
	}
	if m.ID > 0 {
		if _, ok := e.ids[m.ID]; ok {
			return true
		}
	}
	years, ok := e.byTitle[NormalizeTitle(m.Title)]
	if !ok {
		return false
	}
	if _, everyYear := years[0]; everyYear || m.Year == 0 {
		return true
	}
	_, hit := years[m.Year]
	return hit
}

// Len reports how many distinct titles and ids are excluded.
func (e *Exclusions) Len() int {
	if e == nil {
		return 0
	}
	return len(e.byTitle) + len(e.ids)
}

// Titles lists excluded titles as "Title (Year)", sorted, for prompts.
func (e *Exclusions) Titles() []string {
	if e == nil {
		return nil
	}
	out := make([]string, 0, len(e.byTitle))
	for key, years := range e.byTitle {
		title := e.display[key]
		for year := range years {
			if year > 0 {
				out = append(out, title+" ("+strconv.Itoa(year)+")")
			} else {
				out = append(out, title)
			}
		}
	}
	slices.Sort(out)
	return out
}
