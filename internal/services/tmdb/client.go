package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// ErrNotFound is returned when TMDB answers 404 for a lookup.
var ErrNotFound = errors.New("tmdb: not found")

// Movie is the summary shape TMDB returns from search, list and discover.
type Movie struct {
	ID               int64   `json:"id"`
	Title            string  `json:"title"`
	OriginalTitle    string  `json:"original_title"`
	OriginalLanguage string  `json:"original_language"`
	Overview         string  `json:"overview"`
	ReleaseDate      string  `json:"release_date"`
	PosterPath       string  `json:"poster_path"`
	Popularity       float64 `json:"popularity"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int64   `json:"vote_count"`
	Adult            bool    `json:"adult"`
}

// Page models a paginated TMDB response.
type Page struct {
	Page         int     `json:"page"`
	Results      []Movie `json:"results"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}

// Genre is a TMDB genre entry.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Person is a cast or crew credit.
type Person struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Job  string `json:"job"`
}

// Keyword is a TMDB keyword.
type Keyword struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Provider is a streaming/rental provider listing.
type Provider struct {
	ProviderID   int64  `json:"provider_id"`
	ProviderName string `json:"provider_name"`
}

// RegionProviders groups providers available in one region.
type RegionProviders struct {
	Link     string     `json:"link"`
	Flatrate []Provider `json:"flatrate"`
	Rent     []Provider `json:"rent"`
	Buy      []Provider `json:"buy"`
}

// Collection identifies the franchise a movie belongs to.
type Collection struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// MovieDetails is the /movie/{id} payload with credits, keywords and watch
// providers appended.
type MovieDetails struct {
	Movie
	IMDbID              string      `json:"imdb_id"`
	Tagline             string      `json:"tagline"`
	Runtime             int         `json:"runtime"`
	Status              string      `json:"status"`
	Genres              []Genre     `json:"genres"`
	BelongsToCollection *Collection `json:"belongs_to_collection"`
	Credits             struct {
		Cast []Person `json:"cast"`
		Crew []Person `json:"crew"`
	} `json:"credits"`
	Keywords struct {
		Keywords []Keyword `json:"keywords"`
	} `json:"keywords"`
	WatchProviders struct {
		Results map[string]RegionProviders `json:"results"`
	} `json:"watch/providers"`
}

// Directors returns the crew members credited as Director.
func (d MovieDetails) Directors() []string {
	var names []string
	for _, crew := range d.Credits.Crew {
		if crew.Job == "Director" && strings.TrimSpace(crew.Name) != "" {
			names = append(names, crew.Name)
		}
	}
	return names
}

// TopCast returns up to limit billed cast names.
func (d MovieDetails) TopCast(limit int) []string {
	var names []string
	for _, member := range d.Credits.Cast {
		if len(names) >= limit {
			break
		}
		names = append(names, member.Name)
	}
	return names
}

// KeywordNames flattens the keyword list.
func (d MovieDetails) KeywordNames() []string {
	names := make([]string, 0, len(d.Keywords.Keywords))
	for _, kw := range d.Keywords.Keywords {
		names = append(names, kw.Name)
	}
	return names
}

// GenreNames flattens the genre list.
func (d MovieDetails) GenreNames() []string {
	names := make([]string, 0, len(d.Genres))
	for _, g := range d.Genres {
		names = append(names, g.Name)
	}
	return names
}

// SearchOptions contains optional parameters for movie search.
type SearchOptions struct {
	Year int
}

// DiscoverOptions filters /discover/movie.
type DiscoverOptions struct {
	Page             int
	OriginalLanguage string
	ReleasedFrom     string
	ReleasedTo       string
}

// Client provides access to the TMDB API.
type Client struct {
	apiKey     string
	baseURL    string
	language   string
	region     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRequestInterval paces outgoing requests to one per interval.
func WithRequestInterval(interval time.Duration) Option {
	return func(c *Client) {
		if interval > 0 {
			c.limiter = rate.NewLimiter(rate.Every(interval), 1)
		}
	}
}

// WithRegion selects the watch-provider region (ISO 3166-1, e.g. "IN").
func WithRegion(region string) Option {
	return func(c *Client) {
		c.region = strings.ToUpper(strings.TrimSpace(region))
	}
}

// New creates a TMDB client.
func New(apiKey, baseURL, language string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("tmdb api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("tmdb base url required")
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		language:   strings.TrimSpace(language),
		region:     "IN",
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Region reports the configured watch-provider region.
func (c *Client) Region() string {
	return c.region
}

// SearchMovie searches TMDB for the supplied title.
func (c *Client) SearchMovie(ctx context.Context, query string, opts SearchOptions) (*Page, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	params := url.Values{}
	params.Set("query", query)
	if opts.Year > 0 {
		params.Set("primary_release_year", strconv.Itoa(opts.Year))
	}
	var payload Page
	if err := c.get(ctx, "/search/movie", params, &payload, "tmdb search"); err != nil {
		return nil, err
	}
	return &payload, nil
}

// ListMovies fetches one page of a /movie/{list} endpoint such as popular
// or top_rated.
func (c *Client) ListMovies(ctx context.Context, list string, page int) (*Page, error) {
	list = strings.Trim(strings.TrimSpace(list), "/")
	if list == "" {
		return nil, errors.New("list endpoint must not be empty")
	}
	params := url.Values{}
	params.Set("page", strconv.Itoa(max(page, 1)))
	var payload Page
	if err := c.get(ctx, "/movie/"+list, params, &payload, "tmdb list "+list); err != nil {
		return nil, err
	}
	return &payload, nil
}

// DiscoverMovies pages through /discover/movie sorted by popularity.
func (c *Client) DiscoverMovies(ctx context.Context, opts DiscoverOptions) (*Page, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(max(opts.Page, 1)))
	params.Set("sort_by", "popularity.desc")
	if opts.OriginalLanguage != "" {
		params.Set("with_original_language", opts.OriginalLanguage)
	}
	if opts.ReleasedFrom != "" {
		params.Set("primary_release_date.gte", opts.ReleasedFrom)
	}
	if opts.ReleasedTo != "" {
		params.Set("primary_release_date.lte", opts.ReleasedTo)
	}
	var payload Page
	if err := c.get(ctx, "/discover/movie", params, &payload, "tmdb discover"); err != nil {
		return nil, err
	}
	return &payload, nil
}

// GetMovieDetails fetches movie details with credits, keywords and watch
// providers appended.
func (c *Client) GetMovieDetails(ctx context.Context, movieID int64) (*MovieDetails, error) {
	if movieID <= 0 {
		return nil, errors.New("movie id must be positive")
	}
	params := url.Values{}
	params.Set("append_to_response", "credits,keywords,watch/providers")
	var payload MovieDetails
	if err := c.get(ctx, fmt.Sprintf("/movie/%d", movieID), params, &payload, "tmdb movie details"); err != nil {
		return nil, err
	}
	return &payload, nil
}

// GetMovieKeywords fetches only the keyword list for a movie.
func (c *Client) GetMovieKeywords(ctx context.Context, movieID int64) ([]string, error) {
	if movieID <= 0 {
		return nil, errors.New("movie id must be positive")
	}
	var payload struct {
		Keywords []Keyword `json:"keywords"`
	}
	if err := c.get(ctx, fmt.Sprintf("/movie/%d/keywords", movieID), url.Values{}, &payload, "tmdb keywords"); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(payload.Keywords))
	for _, kw := range payload.Keywords {
		names = append(names, kw.Name)
	}
	return names, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, target any, op string) error {
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("parse tmdb url: %w", err)
	}
	params.Set("api_key", c.apiKey)
	if c.language != "" {
		params.Set("language", c.language)
	}
	endpoint.RawQuery = params.Encode()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%s: wait for rate limiter: %w", op, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return fmt.Errorf("%s: execute request (latency=%v): %w", op, latency, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("%s returned %d (latency=%v)", op, resp.StatusCode, latency)
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}
