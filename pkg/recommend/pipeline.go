// Package recommend implements the exercise recommendation pipeline: cache
// resolution, profile loading, proposal generation, video enrichment and
// deduplicated persistence.
package recommend

import (
	"context"
	"log/slog"
	"time"

	shared "github.com/pep-pro/server/pkg"
	"github.com/pep-pro/server/pkg/apperrors"
	"github.com/pep-pro/server/pkg/bootstrap"
	"github.com/pep-pro/server/pkg/genprovider"
	infrapubsub "github.com/pep-pro/server/pkg/infrastructure/pubsub"
	"github.com/pep-pro/server/pkg/types"
	"github.com/pep-pro/server/pkg/videoenrich"
)

// Source values reported to callers.
const (
	SourceCache     = "cache"
	SourceGenerated = "generated"
)

// A cache hit needs at least this many distinct exercises already linked.
const cacheHitThreshold = 3

// Up to this many template exercises serve as the fallback set.
const templateFallbackLimit = 5

// EventExercisesGenerated is published after every generated (non-cache) run.
const EventExercisesGenerated = "com.peppro.exercises.generated"

// VideoResolver is what the pipeline needs from the enrichment stage.
type VideoResolver interface {
	Enrich(ctx context.Context, exerciseName string) *types.VideoCandidate
}

// ProviderFactory builds a generation provider for a resolved kind and a
// freshly fetched API key.
type ProviderFactory func(kind genprovider.Kind, apiKey string) genprovider.Provider

// Request is the pipeline input, already decoded from transport.
type Request struct {
	PatientID   string
	ProviderTag string
}

// Result is the finalized recommendation set.
type Result struct {
	Exercises []*types.Exercise
	Source    string
}

// Pipeline runs one recommendation request end to end. All collaborators
// are injected so tests can substitute fakes; nothing is module-scoped.
type Pipeline struct {
	DB          shared.Database
	Secrets     shared.SecretStore
	Pub         shared.Publisher
	Config      *bootstrap.Config
	Enricher    VideoResolver
	NewProvider ProviderFactory
	Logger      *slog.Logger
	Now         func() time.Time
}

// NewPipeline wires a pipeline from a bootstrapped service. The video
// search key is fetched per run inside buildEnricher, not here.
func NewPipeline(svc *bootstrap.Service, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		DB:          svc.DB,
		Secrets:     svc.Secrets,
		Pub:         svc.Pub,
		Config:      svc.Config,
		NewProvider: genprovider.New,
		Logger:      logger,
		Now:         time.Now,
	}
}

// Run executes the recommendation pipeline for one patient.
//
// Cache hit returns immediately with zero generation or enrichment calls.
// GenerationError and PersistenceError abort; enrichment failures degrade
// to empty media fields per proposal.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	if req.PatientID == "" {
		return nil, apperrors.NewValidation("missing patient_id")
	}
	kind, err := genprovider.ParseKind(req.ProviderTag)
	if err != nil {
		return nil, err
	}

	logger := p.Logger.With("patient_id", req.PatientID)

	// 1. Existing linked exercises (or template fallback) may already
	// satisfy the request without touching any generative provider.
	cached, err := p.resolveFromCache(ctx, req.PatientID)
	if err != nil {
		return nil, err
	}
	if len(cached) >= cacheHitThreshold {
		logger.Info("serving exercises from cache", "count", len(cached))
		return &Result{Exercises: cached, Source: SourceCache}, nil
	}

	// 2. Full profile, pain points resolved.
	profile, err := p.loadProfile(ctx, req.PatientID)
	if err != nil {
		return nil, err
	}

	// 3. Generate proposals. Credentials are fetched fresh per run.
	apiKey, err := p.Secrets.GetSecret(ctx, p.Config.ProjectID, kind.SecretName())
	if err != nil {
		return nil, err
	}
	provider := p.NewProvider(kind, apiKey)

	logger.Info("generating exercise proposals", "provider", provider.Name())
	proposals, err := genprovider.GenerateProposals(ctx, provider, profile)
	if err != nil {
		return nil, err
	}

	enricher, err := p.videoResolver(ctx)
	if err != nil {
		// Misconfigured search degrades every proposal to empty media
		// rather than failing the run.
		logger.Warn("video enrichment unavailable", "error", err)
		enricher = nil
	}

	// 4. Enrich and persist sequentially, one proposal at a time.
	now := p.Now()
	exercises := make([]*types.Exercise, 0, len(proposals))
	for _, proposal := range proposals {
		video := &types.VideoCandidate{}
		if enricher != nil {
			video = enricher.Enrich(ctx, proposal.Name)
		}

		exercise, err := p.persistProposal(ctx, req.PatientID, proposal, video, now)
		if err != nil {
			return nil, err
		}
		exercises = append(exercises, exercise)
	}

	p.publishGenerated(ctx, req.PatientID, provider.Name(), exercises)

	logger.Info("exercises generated", "count", len(exercises))
	return &Result{Exercises: exercises, Source: SourceGenerated}, nil
}

// videoResolver returns the configured enricher, building the default
// search-backed one on first use when none was injected.
func (p *Pipeline) videoResolver(ctx context.Context) (VideoResolver, error) {
	if p.Enricher != nil {
		return p.Enricher, nil
	}
	if p.Config.SearchEngineID == "" {
		return nil, apperrors.NewValidation("video search engine not configured")
	}
	searchKey, err := p.Secrets.GetSecret(ctx, p.Config.ProjectID, shared.SecretVideoSearchAPIKey)
	if err != nil {
		return nil, err
	}
	searcher := &videoenrich.CustomSearchClient{APIKey: searchKey, EngineID: p.Config.SearchEngineID}
	return videoenrich.New(searcher, videoenrich.NewOEmbedProber(), p.Logger), nil
}

// publishGenerated emits the post-run event. Best effort: a publish
// failure is logged, never surfaced.
func (p *Pipeline) publishGenerated(ctx context.Context, patientID, providerName string, exercises []*types.Exercise) {
	ids := make([]string, 0, len(exercises))
	for _, ex := range exercises {
		ids = append(ids, ex.ID)
	}

	e, err := infrapubsub.NewCloudEvent("recommend-pipeline", EventExercisesGenerated, map[string]interface{}{
		"patient_id":   patientID,
		"provider":     providerName,
		"exercise_ids": ids,
	})
	if err != nil {
		p.Logger.Warn("failed to build generated event", "error", err)
		return
	}
	if _, err := p.Pub.PublishCloudEvent(ctx, shared.TopicExercisesGenerated, e); err != nil {
		p.Logger.Warn("failed to publish generated event", "error", err)
	}
}
