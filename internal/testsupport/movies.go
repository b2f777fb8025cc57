package testsupport

import (
	"fmt"

	"goodwatch/internal/catalog"
	"goodwatch/internal/moodtag"
)

// Movie builds a tagged catalog row for tests.
func Movie(id int64, title, releaseDate, languageCode, genre, director string, popularity float64, tags ...string) catalog.Movie {
	poster := fmt.Sprintf("/poster-%d.jpg", id)
	if tags == nil {
		tags = []string{}
	}
	return catalog.Movie{
		ID:           id,
		Title:        title,
		ReleaseDate:  releaseDate,
		Year:         catalog.YearFromDate(releaseDate),
		LanguageCode: languageCode,
		Genres:       []string{genre},
		Directors:    []string{director},
		Director:     director,
		Overview:     title + " overview",
		MoodTags:     tags,
		Popularity:   popularity,
		VoteAverage:  7,
		VoteCount:    1000,
		PosterPath:   &poster,
	}
}

// ComfortCatalog is a small English 2010s catalog tagged for "tired, need
// comfort" plus rows outside that language and era. The most popular English
// rows share a director and a genre so diversity arrangement is observable.
func ComfortCatalog() []catalog.Movie {
	light := []string{moodtag.Light, moodtag.Relaxing}
	return []catalog.Movie{
		Movie(1, "Paddington", "2014-11-28", "en", "Family", "Paul King", 150, light...),
		Movie(2, "Paddington 2", "2017-11-10", "en", "Family", "Paul King", 140, light...),
		Movie(3, "Chef", "2014-05-09", "en", "Comedy", "Jon Favreau", 90, light...),
		Movie(4, "The Intern", "2015-09-25", "en", "Comedy", "Nancy Meyers", 80, light...),
		Movie(5, "About Time", "2013-09-04", "en", "Romance", "Richard Curtis", 70, light...),
		Movie(6, "Julie & Julia", "2009-08-07", "en", "Drama", "Nora Ephron", 65, light...),
		Movie(7, "The Secret Life of Walter Mitty", "2013-12-25", "en", "Adventure", "Ben Stiller", 60, light...),
		Movie(8, "Begin Again", "2013-06-27", "en", "Music", "John Carney", 55, light...),
		Movie(9, "Sing Street", "2016-04-15", "en", "Music", "John Carney", 50, light...),
		Movie(10, "Prisoners", "2013-09-20", "en", "Thriller", "Denis Villeneuve", 200, moodtag.Intense, moodtag.Thrill),
		Movie(11, "Piku", "2015-05-08", "hi", "Comedy", "Shoojit Sircar", 40, light...),
		Movie(12, "The Holiday", "2006-12-08", "en", "Romance", "Nancy Meyers", 75, light...),
	}
}
