package recommend

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/pep-pro/server/pkg/apperrors"
	"github.com/pep-pro/server/pkg/bootstrap"
	"github.com/pep-pro/server/pkg/testing/mocks"
	"github.com/pep-pro/server/pkg/types"
)

func testPipeline(db *mocks.MockDatabase) *Pipeline {
	return &Pipeline{
		DB:      db,
		Secrets: &mocks.MockSecretStore{},
		Pub:     &mocks.MockPublisher{},
		Config:  &bootstrap.Config{ProjectID: "test-project"},
		Logger:  slog.Default(),
		Now:     func() time.Time { return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC) },
	}
}

func linkTo(exerciseID string) *types.PatientExercise {
	return &types.PatientExercise{ID: "link-" + exerciseID, PatientID: "p1", ExerciseID: exerciseID}
}

func TestResolveFromCache_LinkedExercisesHit(t *testing.T) {
	db := &mocks.MockDatabase{
		ListPatientExercisesFunc: func(ctx context.Context, patientID string) ([]*types.PatientExercise, error) {
			return []*types.PatientExercise{linkTo("e1"), linkTo("e2"), linkTo("e3")}, nil
		},
		GetExerciseFunc: func(ctx context.Context, id string) (*types.Exercise, error) {
			return &types.Exercise{ID: id, Name: "Exercise " + id}, nil
		},
	}

	exercises, err := testPipeline(db).resolveFromCache(context.Background(), "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(exercises) != 3 {
		t.Errorf("expected 3 exercises, got %d", len(exercises))
	}
}

func TestResolveFromCache_DuplicateLinksCollapse(t *testing.T) {
	db := &mocks.MockDatabase{
		ListPatientExercisesFunc: func(ctx context.Context, patientID string) ([]*types.PatientExercise, error) {
			// Four links but only two distinct exercises.
			return []*types.PatientExercise{linkTo("e1"), linkTo("e1"), linkTo("e2"), linkTo("e2")}, nil
		},
		GetExerciseFunc: func(ctx context.Context, id string) (*types.Exercise, error) {
			return &types.Exercise{ID: id}, nil
		},
		ListPainPointsFunc: func(ctx context.Context, patientID string) ([]*types.PainPoint, error) {
			return nil, nil
		},
	}

	exercises, err := testPipeline(db).resolveFromCache(context.Background(), "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exercises != nil {
		t.Errorf("two distinct exercises must not hit, got %d", len(exercises))
	}
}

func TestResolveFromCache_DanglingLinkSkipped(t *testing.T) {
	db := &mocks.MockDatabase{
		ListPatientExercisesFunc: func(ctx context.Context, patientID string) ([]*types.PatientExercise, error) {
			return []*types.PatientExercise{linkTo("e1"), linkTo("gone"), linkTo("e2"), linkTo("e3")}, nil
		},
		GetExerciseFunc: func(ctx context.Context, id string) (*types.Exercise, error) {
			if id == "gone" {
				return nil, &apperrors.NotFoundError{Resource: "exercise", ID: id}
			}
			return &types.Exercise{ID: id}, nil
		},
	}

	exercises, err := testPipeline(db).resolveFromCache(context.Background(), "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(exercises) != 3 {
		t.Errorf("dangling link must be skipped, got %d exercises", len(exercises))
	}
}

func TestResolveFromCache_NoPainPointsForcesGeneration(t *testing.T) {
	templatesQueried := false
	db := &mocks.MockDatabase{
		ListPatientExercisesFunc: func(ctx context.Context, patientID string) ([]*types.PatientExercise, error) {
			return nil, nil
		},
		ListPainPointsFunc: func(ctx context.Context, patientID string) ([]*types.PainPoint, error) {
			return nil, nil
		},
		ListTemplateExercisesFunc: func(ctx context.Context, limit int) ([]*types.Exercise, error) {
			templatesQueried = true
			return nil, nil
		},
	}

	exercises, err := testPipeline(db).resolveFromCache(context.Background(), "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exercises != nil {
		t.Errorf("expected nil result, got %d exercises", len(exercises))
	}
	if templatesQueried {
		t.Error("templates must not be queried without pain points")
	}
}

func TestResolveFromCache_TemplateFallback(t *testing.T) {
	var gotLimit int
	db := &mocks.MockDatabase{
		ListPatientExercisesFunc: func(ctx context.Context, patientID string) ([]*types.PatientExercise, error) {
			return []*types.PatientExercise{linkTo("e1")}, nil
		},
		GetExerciseFunc: func(ctx context.Context, id string) (*types.Exercise, error) {
			return &types.Exercise{ID: id}, nil
		},
		ListPainPointsFunc: func(ctx context.Context, patientID string) ([]*types.PainPoint, error) {
			return []*types.PainPoint{{ID: "pp1", Description: "pain under the kneecap", Severity: 5}}, nil
		},
		ListTemplateExercisesFunc: func(ctx context.Context, limit int) ([]*types.Exercise, error) {
			gotLimit = limit
			out := make([]*types.Exercise, limit)
			for i := range out {
				out[i] = &types.Exercise{ID: fmt.Sprintf("tpl-%d", i), IsTemplate: true}
			}
			return out, nil
		},
	}

	exercises, err := testPipeline(db).resolveFromCache(context.Background(), "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotLimit != templateFallbackLimit {
		t.Errorf("expected limit %d, got %d", templateFallbackLimit, gotLimit)
	}
	if len(exercises) != templateFallbackLimit {
		t.Errorf("expected %d templates, got %d", templateFallbackLimit, len(exercises))
	}
}
