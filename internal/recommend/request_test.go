package recommend

import (
	"errors"
	"testing"

	"goodwatch/internal/services"
)

func TestNewRequestValidates(t *testing.T) {
	cases := map[string]RequestInput{
		"short mood":     {Mood: "ok", Language: "English", Era: "2010s"},
		"missing lang":   {Mood: "tired", Era: "2010s"},
		"unknown lang":   {Mood: "tired", Language: "Klingon", Era: "2010s"},
		"missing era":    {Mood: "tired", Language: "English"},
		"bad age":        {Mood: "tired", Language: "English", Era: "2010s", AgeBracket: "ancient"},
		"too many genre": {Mood: "tired", Language: "English", Era: "2010s", Genres: []string{"drama", "comedy", "horror", "action"}},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := NewRequest(in); !errors.Is(err, services.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestNewRequestNormalizes(t *testing.T) {
	req, err := NewRequest(RequestInput{
		Mood:       "  tired, need comfort ",
		Language:   "english",
		Era:        "80s & 90s",
		AgeBracket: "25-34",
		Genres:     []string{" science fiction ", ""},
		SessionID:  " s1 ",
	})
	if err != nil {
		t.Fatalf("NewRequest returned error: %v", err)
	}
	if req.Mood != "tired, need comfort" || req.Language.Code != "en" || req.Era.From != "1980-01-01" {
		t.Fatalf("unexpected request %+v", req)
	}
	if len(req.Profile.Genres) != 1 || req.Profile.Genres[0] != "Science Fiction" {
		t.Fatalf("unexpected genres %v", req.Profile.Genres)
	}
	if req.SessionID != "s1" || req.Exclusions == nil {
		t.Fatalf("unexpected session or exclusions %+v", req)
	}
}

func TestNewReplacementRequestDefaults(t *testing.T) {
	req, err := NewReplacementRequest(ReplacementInput{
		Mood:          "bored",
		WatchedTitles: []string{"Chef"},
		ExcludeIDs:    []int64{9},
		Count:         40,
	})
	if err != nil {
		t.Fatalf("NewReplacementRequest returned error: %v", err)
	}
	if req.Language.Name != "English" || req.Count != MaxReplacements || req.Era.Label != "" {
		t.Fatalf("unexpected defaults %+v", req)
	}
	if req.Exclusions.Len() != 2 {
		t.Fatalf("expected title and id exclusions, got %d", req.Exclusions.Len())
	}

	if _, err := NewReplacementRequest(ReplacementInput{Mood: "bored", Era: "1970s"}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected unknown era to fail, got %v", err)
	}
}
