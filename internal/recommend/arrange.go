package recommend

import (
	"strings"

	"goodwatch/internal/catalog"
)

type diversity struct {
	directors    map[string]struct{}
	genres       map[string]struct{}
	collections  map[int64]struct{}
	blockbusters int
	threshold    float64
}

func newDiversity(threshold float64) *diversity {
	return &diversity{
		directors:   map[string]struct{}{},
		genres:      map[string]struct{}{},
		collections: map[int64]struct{}{},
		threshold:   threshold,
	}
}

func (d *diversity) blockbuster(m catalog.Movie) bool {
	return d.threshold > 0 && m.Popularity >= d.threshold
}

// admits reports whether m can join the displayed set. Unknown directors and
// genres never collide.
func (d *diversity) admits(m catalog.Movie) bool {
	if dir := m.PrimaryDirector(); dir != "" {
		if _, dup := d.directors[dir]; dup {
			return false
		}
	}
	if genre := m.PrimaryGenre(); genre != "" {
		if _, dup := d.genres[genre]; dup {
			return false
		}
	}
	if m.CollectionID > 0 {
		if _, dup := d.collections[m.CollectionID]; dup {
			return false
		}
	}
	return !d.blockbuster(m) || d.blockbusters == 0
}

func (d *diversity) add(m catalog.Movie) {
	if dir := m.PrimaryDirector(); dir != "" {
		d.directors[dir] = struct{}{}
	}
	if genre := m.PrimaryGenre(); genre != "" {
		d.genres[genre] = struct{}{}
	}
	if m.CollectionID > 0 {
		d.collections[m.CollectionID] = struct{}{}
	}
	if d.blockbuster(m) {
		d.blockbusters++
	}
}

// arrange orders candidates into a result. The displayed slots take the first
// mutually diverse set in ranking order; when no such set exists they are
// filled greedily and topped up in candidate order. The rest keep candidate
// order. The output holds at most limit movies.
func arrange(candidates []catalog.Movie, blockbusterPopularity float64, limit int) []catalog.Movie {
	if limit <= 0 {
		limit = ResultSize
	}
	slots := min(DisplayedCount, limit, len(candidates))
	chosen, ok := diverseSet(candidates, blockbusterPopularity, slots)
	if !ok {
		chosen = greedySet(candidates, blockbusterPopularity, slots)
	}

	used := make([]bool, len(candidates))
	out := make([]catalog.Movie, 0, min(limit, len(candidates)))
	for _, i := range chosen {
		used[i] = true
		out = append(out, candidates[i])
	}
	for i, m := range candidates {
		if len(out) == limit {
			break
		}
		if !used[i] {
			out = append(out, m)
		}
	}
	return out
}

// diverseSet returns the indexes of the first size candidates, in
// lexicographic rank order, that pairwise pass the diversity rules.
func diverseSet(candidates []catalog.Movie, threshold float64, size int) ([]int, bool) {
	chosen := make([]int, 0, size)
	var search func(start int) bool
	search = func(start int) bool {
		if len(chosen) == size {
			return true
		}
		for i := start; i <= len(candidates)-(size-len(chosen)); i++ {
			div := newDiversity(threshold)
			for _, c := range chosen {
				div.add(candidates[c])
			}
			if !div.admits(candidates[i]) {
				continue
			}
			chosen = append(chosen, i)
			if search(i + 1) {
				return true
			}
			chosen = chosen[:len(chosen)-1]
		}
		return false
	}
	if !search(0) {
		return nil, false
	}
	return chosen, true
}

// greedySet takes admissible candidates in rank order. It may return fewer
// than size indexes.
func greedySet(candidates []catalog.Movie, threshold float64, size int) []int {
	div := newDiversity(threshold)
	chosen := make([]int, 0, size)
	for i, m := range candidates {
		if len(chosen) == size {
			break
		}
		if div.admits(m) {
			div.add(m)
			chosen = append(chosen, i)
		}
	}
	return chosen
}

// dedupe drops repeated title/year pairs and ids, keeping the first.
func dedupe(movies []catalog.Movie) []catalog.Movie {
	seen := catalog.NewExclusions()
	out := make([]catalog.Movie, 0, len(movies))
	for _, m := range movies {
		if seen.Excludes(m) {
			continue
		}
		seen.AddMovie(m)
		out = append(out, m)
	}
	return out
}

// whereToWatch renders provider names for display.
func whereToWatch(providers []string) string {
	if len(providers) == 0 {
		return "Check local listings"
	}
	return strings.Join(providers[:min(2, len(providers))], " / ")
}
