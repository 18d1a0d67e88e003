package shared

import (
	"context"

	"github.com/cloudevents/sdk-go/v2/event"

	"github.com/pep-pro/server/pkg/types"
)

// --- Persistence Interfaces ---

type Database interface {
	// Patients
	GetPatient(ctx context.Context, id string) (*types.Patient, error)
	SetPatient(ctx context.Context, patient *types.Patient) error

	// Pain points
	ListPainPoints(ctx context.Context, patientID string) ([]*types.PainPoint, error)

	// Exercises
	GetExercise(ctx context.Context, id string) (*types.Exercise, error)
	// FindExerciseByName returns (nil, nil) when no exercise carries the
	// exact name. Name matching is case-sensitive.
	FindExerciseByName(ctx context.Context, name string) (*types.Exercise, error)
	ListTemplateExercises(ctx context.Context, limit int) ([]*types.Exercise, error)
	SetExercise(ctx context.Context, exercise *types.Exercise) error
	UpdateExercise(ctx context.Context, id string, data map[string]interface{}) error

	// Patient-exercise links
	GetPatientExercise(ctx context.Context, id string) (*types.PatientExercise, error)
	ListPatientExercises(ctx context.Context, patientID string) ([]*types.PatientExercise, error)
	SetPatientExercise(ctx context.Context, link *types.PatientExercise) error
	UpdatePatientExercise(ctx context.Context, id string, data map[string]interface{}) error
}

// --- Secret Interfaces ---

type SecretStore interface {
	GetSecret(ctx context.Context, projectID, name string) (string, error)
}

// --- Messaging Interfaces ---

type Publisher interface {
	PublishCloudEvent(ctx context.Context, topic string, e event.Event) (string, error)
}

// --- Storage Interfaces ---

type BlobStore interface {
	// WritePublic uploads an object, makes it world-readable and returns
	// its public URL.
	WritePublic(ctx context.Context, bucket, object, contentType string, data []byte) (string, error)
	Read(ctx context.Context, bucket, object string) ([]byte, error)
}
