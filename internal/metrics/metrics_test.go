package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordHTTPRequest(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/api/recommendations", "200"))
	RecordHTTPRequest("POST", "/api/recommendations", 200, 15*time.Millisecond)
	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/api/recommendations", "200"))
	if after != before+1 {
		t.Fatalf("expected counter to increase by 1, got %v -> %v", before, after)
	}
}

func TestRecordRecommendationSkipsSizeOnError(t *testing.T) {
	before := testutil.CollectAndCount(RecommendedMovies)
	RecordRecommendation("metrics-test", "rate_limited", 0, time.Millisecond)
	if got := testutil.CollectAndCount(RecommendedMovies); got != before {
		t.Fatalf("expected no size observation on error, series %d -> %d", before, got)
	}
	if got := testutil.ToFloat64(RecommendationsTotal.WithLabelValues("metrics-test", "rate_limited")); got != 1 {
		t.Fatalf("expected one rate_limited recommendation, got %v", got)
	}
}
