// Package prescribe holds the clinician-facing write paths: adding a
// custom exercise to a patient's plan and modifying an existing
// prescription, including the patient-specific video fork.
package prescribe

import (
	"context"
	"fmt"
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

// Event types published on the exercise-modified topic.
const (
	EventCustomAdded      = "com.peppro.exercise.custom-added"
	EventExerciseModified = "com.peppro.exercise.modified"
)

// VideoResolver is what the custom-exercise path needs from video
// enrichment.
type VideoResolver interface {
	Enrich(ctx context.Context, exerciseName string) *types.VideoCandidate
}

// ProviderFactory builds a generation backend from a parsed kind and key.
type ProviderFactory func(kind genprovider.Kind, apiKey string) genprovider.Provider

// Service carries the dependencies for both clinician flows.
type Service struct {
	DB          shared.Database
	Secrets     shared.SecretStore
	Pub         shared.Publisher
	Store       shared.BlobStore
	Config      *bootstrap.Config
	Enricher    VideoResolver
	NewProvider ProviderFactory
	Logger      *slog.Logger
	Now         func() time.Time
}

// NewService wires a prescribe service from a bootstrapped service.
func NewService(svc *bootstrap.Service, logger *slog.Logger) *Service {
	return &Service{
		DB:          svc.DB,
		Secrets:     svc.Secrets,
		Pub:         svc.Pub,
		Store:       svc.Store,
		Config:      svc.Config,
		NewProvider: genprovider.New,
		Logger:      logger,
		Now:         time.Now,
	}
}

// videoResolver returns the configured enricher, building the default
// search-backed one when none was injected.
func (s *Service) videoResolver(ctx context.Context) (VideoResolver, error) {
	if s.Enricher != nil {
		return s.Enricher, nil
	}
	if s.Config.SearchEngineID == "" {
		return nil, apperrors.NewValidation("video search engine not configured")
	}
	searchKey, err := s.Secrets.GetSecret(ctx, s.Config.ProjectID, shared.SecretVideoSearchAPIKey)
	if err != nil {
		return nil, err
	}
	searcher := &videoenrich.CustomSearchClient{APIKey: searchKey, EngineID: s.Config.SearchEngineID}
	return videoenrich.New(searcher, videoenrich.NewOEmbedProber(), s.Logger), nil
}

// uploadVideo stores a clinician-provided recording and returns its
// public URL.
func (s *Service) uploadVideo(ctx context.Context, exerciseID, contentType string, data []byte) (string, error) {
	object := fmt.Sprintf("custom/%s%s", exerciseID, videoExtension(contentType))
	url, err := s.Store.WritePublic(ctx, s.Config.VideoBucket, object, contentType, data)
	if err != nil {
		return "", &apperrors.PersistenceError{Op: "video upload", Err: err}
	}
	return url, nil
}

func videoExtension(contentType string) string {
	switch contentType {
	case "video/mp4":
		return ".mp4"
	case "video/quicktime":
		return ".mov"
	case "video/webm":
		return ".webm"
	default:
		return ""
	}
}

// publish emits an event on the exercise-modified topic. Best effort: a
// publish failure is logged, never surfaced.
func (s *Service) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	e, err := infrapubsub.NewCloudEvent("prescribe", eventType, data)
	if err != nil {
		s.Logger.Warn("failed to build event", "type", eventType, "error", err)
		return
	}
	if _, err := s.Pub.PublishCloudEvent(ctx, shared.TopicExerciseModified, e); err != nil {
		s.Logger.Warn("failed to publish event", "type", eventType, "error", err)
	}
}
