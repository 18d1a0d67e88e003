// Package videoenrich resolves a demonstration video and thumbnail for each
// generated exercise proposal. Enrichment is strictly best-effort: any
// failure degrades to empty media fields and never aborts the pipeline.
package videoenrich

import (
	"context"
	"log/slog"

	"github.com/pep-pro/server/pkg/apperrors"
	"github.com/pep-pro/server/pkg/types"
)

// Query qualifiers. The specific phrase is used for the single retry after
// the first candidate fails validation.
const (
	primaryQualifier = "physical therapy exercise"
	retryQualifier   = "rehabilitation exercise demonstration"
)

// Enricher wires the search provider and existence probe together with the
// bounded retry policy: one primary query, at most one alternate query.
type Enricher struct {
	Searcher Searcher
	Prober   Prober
	Logger   *slog.Logger
}

func New(searcher Searcher, prober Prober, logger *slog.Logger) *Enricher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Enricher{Searcher: searcher, Prober: prober, Logger: logger}
}

// Enrich resolves media for one exercise name. The returned candidate has
// empty fields when no validated video could be found; callers persist it
// as-is and move on.
func (e *Enricher) Enrich(ctx context.Context, exerciseName string) *types.VideoCandidate {
	queries := []string{
		exerciseName + " " + primaryQualifier,
		exerciseName + " " + retryQualifier,
	}

	for attempt, query := range queries {
		candidate, err := e.resolveQuery(ctx, query)
		if err != nil {
			e.Logger.Warn("video enrichment attempt failed",
				"error", &apperrors.EnrichmentError{Exercise: exerciseName, Err: err},
				"attempt", attempt+1,
			)
			continue
		}
		if candidate != nil {
			e.Logger.Info("video resolved",
				"exercise", exerciseName,
				"video_url", candidate.URL,
				"attempt", attempt+1,
			)
			return candidate
		}
		e.Logger.Info("no valid video candidate", "exercise", exerciseName, "attempt", attempt+1)
	}

	// Both queries exhausted; the exercise ships without media.
	return &types.VideoCandidate{}
}

// resolveQuery runs one search and validates the best matching candidate.
// Returns (nil, nil) when the query yields no acceptable, existing video.
func (e *Enricher) resolveQuery(ctx context.Context, query string) (*types.VideoCandidate, error) {
	results, err := e.Searcher.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	for _, result := range results {
		videoID, ok := ExtractVideoID(result.Link)
		if !ok {
			// Not a recognized video link; discard entirely.
			continue
		}

		thumbnail := result.ThumbnailURL
		if thumbnail == "" {
			thumbnail = ThumbnailURL(videoID)
		}

		exists, err := e.Prober.Exists(ctx, videoID)
		if err != nil {
			return nil, err
		}
		if !exists {
			// Dead link; the whole query counts as failed and the
			// retry policy decides whether another is issued.
			return nil, nil
		}

		return &types.VideoCandidate{
			URL:          WatchURL(videoID),
			ThumbnailURL: thumbnail,
			Query:        query,
		}, nil
	}

	return nil, nil
}
