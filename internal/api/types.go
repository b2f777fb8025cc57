package api

import (
	"time"

	"goodwatch/internal/catalog"
	"goodwatch/internal/store"
)

// RecommendationRequest is the POST /api/recommendations body.
type RecommendationRequest struct {
	Mood      string   `json:"mood" validate:"required,min=3,max=500"`
	Age       string   `json:"age,omitempty" validate:"max=32"`
	Gender    string   `json:"gender,omitempty" validate:"max=32"`
	Genres    []string `json:"genres,omitempty" validate:"max=3,dive,max=40"`
	Language  string   `json:"language" validate:"required,max=40"`
	Era       string   `json:"era" validate:"required,max=40"`
	SessionID string   `json:"sessionId,omitempty" validate:"max=128"`
}

// RecommendationResponse carries up to six picks; the first three are shown
// and the rest seed the view's replacement pool.
type RecommendationResponse struct {
	Movies   []catalog.Movie `json:"movies"`
	ViewID   string          `json:"view_id"`
	Strategy string          `json:"strategy"`
}

// ReplacementsRequest is the POST /api/replacements body.
type ReplacementsRequest struct {
	SessionID         string   `json:"session_id" validate:"max=128"`
	Mood              string   `json:"mood" validate:"required,max=500"`
	PreferredLanguage string   `json:"preferred_language,omitempty" validate:"max=40"`
	Era               string   `json:"era,omitempty" validate:"max=40"`
	Genres            []string `json:"genres,omitempty" validate:"max=10,dive,max=40"`
	WatchedTitles     []string `json:"watched_titles" validate:"max=200,dive,max=300"`
	ExcludeIDs        []int64  `json:"exclude_ids" validate:"max=200"`
	Count             int      `json:"count" validate:"min=0,max=20"`
}

// ReplacementsResponse may carry an empty list; it is never null.
type ReplacementsResponse struct {
	Replacements []catalog.Movie `json:"replacements"`
}

// ViewWatchedRequest is the POST /api/views/{viewID}/watched body.
type ViewWatchedRequest struct {
	Index *int `json:"index" validate:"required,min=0,max=20"`
}

// SwapResponse reports one watched action on a results view.
type SwapResponse struct {
	Watched     catalog.Movie   `json:"watched"`
	Replacement *catalog.Movie  `json:"replacement,omitempty"`
	Displayed   []catalog.Movie `json:"displayed"`
	PoolSize    int             `json:"pool_size"`
	State       string          `json:"state"`
	Message     string          `json:"message,omitempty"`
}

// WatchedRequest is the POST /api/watched body.
type WatchedRequest struct {
	SessionID string `json:"session_id" validate:"required,max=128"`
	Title     string `json:"title" validate:"required,max=300"`
	Year      int    `json:"year" validate:"min=0,max=3000"`
}

// WatchedMovie is one entry of a session's watched history.
type WatchedMovie struct {
	Title     string    `json:"title"`
	Year      int       `json:"year,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// WatchedListResponse lists a session's watched marks oldest first.
type WatchedListResponse struct {
	Watched []WatchedMovie `json:"watched"`
}

// FeedbackRequest is the POST /api/feedback body. Reasons are preset labels;
// they are folded into the stored feedback text ahead of the free text.
type FeedbackRequest struct {
	SessionID       string          `json:"session_id" validate:"required,max=128"`
	Mood            string          `json:"mood" validate:"required,max=500"`
	WasHelpful      bool            `json:"was_helpful"`
	Reasons         []string        `json:"reasons,omitempty" validate:"max=6"`
	FeedbackText    string          `json:"feedback_text,omitempty" validate:"max=2000"`
	Recommendations []catalog.Movie `json:"recommendations" validate:"max=12"`
}

// FeedbackCreatedResponse acknowledges a stored feedback row.
type FeedbackCreatedResponse struct {
	ID int64 `json:"id"`
}

// FeedbackListResponse is the admin feedback listing, newest first.
type FeedbackListResponse struct {
	Feedback []store.Feedback `json:"feedback"`
}

// HealthResponse is served from /healthz.
type HealthResponse struct {
	Status   string `json:"status"`
	Strategy string `json:"strategy"`
	Views    int    `json:"views"`
}

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error string `json:"error"`
}
