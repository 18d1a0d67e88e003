package videoenrich

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type fakeSearcher struct {
	results map[string][]Result
	err     error
	queries []string
}

func (f *fakeSearcher) Search(ctx context.Context, query string) ([]Result, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	for prefix, results := range f.results {
		if strings.Contains(query, prefix) {
			return results, nil
		}
	}
	return nil, nil
}

type fakeProber struct {
	exists map[string]bool
	err    error
	probes []string
}

func (f *fakeProber) Exists(ctx context.Context, videoID string) (bool, error) {
	f.probes = append(f.probes, videoID)
	if f.err != nil {
		return false, f.err
	}
	return f.exists[videoID], nil
}

func TestEnrich_FirstQuerySucceeds(t *testing.T) {
	searcher := &fakeSearcher{results: map[string][]Result{
		"physical therapy exercise": {
			{Link: "https://www.youtube.com/watch?v=abcdefghijk", ThumbnailURL: "https://example.com/thumb.jpg"},
		},
	}}
	prober := &fakeProber{exists: map[string]bool{"abcdefghijk": true}}

	candidate := New(searcher, prober, nil).Enrich(context.Background(), "Heel Slide")

	if candidate.URL != "https://www.youtube.com/watch?v=abcdefghijk" {
		t.Errorf("unexpected url %q", candidate.URL)
	}
	if candidate.ThumbnailURL != "https://example.com/thumb.jpg" {
		t.Errorf("embedded thumbnail not used: %q", candidate.ThumbnailURL)
	}
	if len(searcher.queries) != 1 {
		t.Errorf("expected 1 query, got %d", len(searcher.queries))
	}
}

func TestEnrich_DerivedThumbnail(t *testing.T) {
	searcher := &fakeSearcher{results: map[string][]Result{
		"physical therapy exercise": {
			{Link: "https://youtu.be/abcdefghijk"},
		},
	}}
	prober := &fakeProber{exists: map[string]bool{"abcdefghijk": true}}

	candidate := New(searcher, prober, nil).Enrich(context.Background(), "Heel Slide")

	if candidate.ThumbnailURL != "https://i.ytimg.com/vi/abcdefghijk/hqdefault.jpg" {
		t.Errorf("derived thumbnail wrong: %q", candidate.ThumbnailURL)
	}
}

func TestEnrich_SkipsNonVideoResults(t *testing.T) {
	searcher := &fakeSearcher{results: map[string][]Result{
		"physical therapy exercise": {
			{Link: "https://www.healthline.com/health/knee-exercises"},
			{Link: "https://vimeo.com/12345678"},
			{Link: "https://www.youtube.com/watch?v=abcdefghijk"},
		},
	}}
	prober := &fakeProber{exists: map[string]bool{"abcdefghijk": true}}

	candidate := New(searcher, prober, nil).Enrich(context.Background(), "Heel Slide")

	if candidate.URL != "https://www.youtube.com/watch?v=abcdefghijk" {
		t.Errorf("non-video results not skipped: %q", candidate.URL)
	}
	if len(prober.probes) != 1 {
		t.Errorf("only matching candidates should be probed, got %d probes", len(prober.probes))
	}
}

func TestEnrich_DeadLinkTriggersSingleRetry(t *testing.T) {
	searcher := &fakeSearcher{results: map[string][]Result{
		"physical therapy exercise": {
			{Link: "https://www.youtube.com/watch?v=deadvideo01"},
		},
		"rehabilitation exercise demonstration": {
			{Link: "https://www.youtube.com/watch?v=livevideo02"},
		},
	}}
	prober := &fakeProber{exists: map[string]bool{"livevideo02": true}}

	candidate := New(searcher, prober, nil).Enrich(context.Background(), "Heel Slide")

	if len(searcher.queries) != 2 {
		t.Fatalf("expected exactly 2 queries, got %d: %v", len(searcher.queries), searcher.queries)
	}
	if !strings.Contains(searcher.queries[1], "rehabilitation exercise demonstration") {
		t.Errorf("retry query missing alternate qualifier: %q", searcher.queries[1])
	}
	if candidate.URL != "https://www.youtube.com/watch?v=livevideo02" {
		t.Errorf("retry result not used: %q", candidate.URL)
	}
}

func TestEnrich_BothQueriesExhausted(t *testing.T) {
	searcher := &fakeSearcher{}
	prober := &fakeProber{}

	candidate := New(searcher, prober, nil).Enrich(context.Background(), "Heel Slide")

	if len(searcher.queries) != 2 {
		t.Fatalf("expected exactly 2 queries, got %d", len(searcher.queries))
	}
	if candidate == nil {
		t.Fatal("expected empty candidate, got nil")
	}
	if candidate.URL != "" || candidate.ThumbnailURL != "" {
		t.Errorf("exhausted enrichment must yield empty media: %+v", candidate)
	}
}

func TestEnrich_SearchErrorNonFatal(t *testing.T) {
	searcher := &fakeSearcher{err: errors.New("quota exceeded")}
	prober := &fakeProber{}

	candidate := New(searcher, prober, nil).Enrich(context.Background(), "Heel Slide")

	if candidate == nil || candidate.URL != "" {
		t.Errorf("search failure must degrade to empty media, got %+v", candidate)
	}
	if len(searcher.queries) != 2 {
		t.Errorf("expected both queries attempted, got %d", len(searcher.queries))
	}
}

func TestEnrich_QueryRecorded(t *testing.T) {
	searcher := &fakeSearcher{results: map[string][]Result{
		"physical therapy exercise": {
			{Link: "https://www.youtube.com/watch?v=abcdefghijk"},
		},
	}}
	prober := &fakeProber{exists: map[string]bool{"abcdefghijk": true}}

	candidate := New(searcher, prober, nil).Enrich(context.Background(), "Heel Slide")

	if candidate.Query != "Heel Slide physical therapy exercise" {
		t.Errorf("winning query not recorded: %q", candidate.Query)
	}
}
