package catalog

import (
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Era is a closed release-date range. From or To may be empty for the
// open-ended buckets.
type Era struct {
	Label string
	From  string
	To    string
}

var eras = []Era{
	{Label: "Classic (pre-1980)", To: "1979-12-31"},
	{Label: "80s & 90s", From: "1980-01-01", To: "1999-12-31"},
	{Label: "2000s", From: "2000-01-01", To: "2009-12-31"},
	{Label: "2010s", From: "2010-01-01", To: "2019-12-31"},
	{Label: "Recent (2020+)", From: "2020-01-01"},
}

var eraAliases = map[string]string{
	"classic":   "Classic (pre-1980)",
	"pre-1980":  "Classic (pre-1980)",
	"80s":       "80s & 90s",
	"90s":       "80s & 90s",
	"80s-90s":   "80s & 90s",
	"80s & 90s": "80s & 90s",
	"2000s":     "2000s",
	"2010s":     "2010s",
	"recent":    "Recent (2020+)",
	"2020+":     "Recent (2020+)",
}

// Eras lists the buckets oldest first.
func Eras() []Era {
	out := make([]Era, len(eras))
	copy(out, eras)
	return out
}

// ParseEra resolves a bucket label (case-insensitive) or a short alias.
func ParseEra(value string) (Era, bool) {
	needle := strings.ToLower(strings.TrimSpace(value))
	if needle == "" {
		return Era{}, false
	}
	if label, ok := eraAliases[needle]; ok {
		needle = strings.ToLower(label)
	}
	for _, era := range eras {
		if strings.ToLower(era.Label) == needle {
			return era, true
		}
	}
	return Era{}, false
}

// EraForDate returns the bucket containing a YYYY-MM-DD release date.
func EraForDate(date string) (Era, bool) {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return Era{}, false
	}
	for _, era := range eras {
		if era.Contains(date) {
			return era, true
		}
	}
	return Era{}, false
}

// EraForYear returns the bucket containing any date in year.
func EraForYear(year int) (Era, bool) {
	if year <= 0 {
		return Era{}, false
	}
	return EraForDate(strconv.Itoa(year) + "-06-30")
}

// Contains reports whether a YYYY-MM-DD date falls inside the bucket. Both
// bounds are inclusive; ISO dates compare correctly as strings.
func (e Era) Contains(date string) bool {
	if len(date) != len(dateLayout) {
		return false
	}
	if e.From != "" && date < e.From {
		return false
	}
	if e.To != "" && date > e.To {
		return false
	}
	return true
}

// ContainsYear reports whether any day of year falls inside the bucket.
// Every bucket boundary sits on a year boundary, so mid-year is representative.
func (e Era) ContainsYear(year int) bool {
	if year <= 0 {
		return false
	}
	return e.Contains(strconv.Itoa(year) + "-06-30")
}

// Describe renders the bucket as a human-readable year range for prompts.
func (e Era) Describe() string {
	switch {
	case e.From == "":
		return "released before " + e.To[:4] + "-12-31 inclusive (pre-1980)"
	case e.To == "":
		return "released " + e.From[:4] + " or later"
	default:
		return "released between " + e.From[:4] + " and " + e.To[:4] + " inclusive"
	}
}

func (e Era) String() string {
	return e.Label
}
