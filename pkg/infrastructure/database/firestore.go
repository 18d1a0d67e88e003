package database

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	shared "github.com/pep-pro/server/pkg"
	"github.com/pep-pro/server/pkg/apperrors"
	storage "github.com/pep-pro/server/pkg/storage/firestore"
	"github.com/pep-pro/server/pkg/types"
)

// FirestoreAdapter provides database operations using Firestore.
// It wraps our typed storage client.
type FirestoreAdapter struct {
	Client  *firestore.Client
	storage *storage.Client
}

var _ shared.Database = (*FirestoreAdapter)(nil)

func NewFirestoreAdapter(client *firestore.Client) *FirestoreAdapter {
	return &FirestoreAdapter{
		Client:  client,
		storage: storage.NewClient(client),
	}
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

func (a *FirestoreAdapter) GetPatient(ctx context.Context, id string) (*types.Patient, error) {
	patient, err := a.storage.Patients().Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, &apperrors.NotFoundError{Resource: "patient", ID: id}
		}
		return nil, err
	}
	return patient, nil
}

func (a *FirestoreAdapter) SetPatient(ctx context.Context, patient *types.Patient) error {
	return a.storage.Patients().Doc(patient.ID).Set(ctx, patient)
}

func (a *FirestoreAdapter) ListPainPoints(ctx context.Context, patientID string) ([]*types.PainPoint, error) {
	return a.storage.PainPoints().Where("patient_id", "==", patientID).GetAll(ctx)
}

func (a *FirestoreAdapter) GetExercise(ctx context.Context, id string) (*types.Exercise, error) {
	exercise, err := a.storage.Exercises().Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, &apperrors.NotFoundError{Resource: "exercise", ID: id}
		}
		return nil, err
	}
	return exercise, nil
}

// FindExerciseByName is the dedup lookup: exact, case-sensitive name match.
// Returns (nil, nil) when no exercise carries the name.
func (a *FirestoreAdapter) FindExerciseByName(ctx context.Context, name string) (*types.Exercise, error) {
	matches, err := a.storage.Exercises().Where("name", "==", name).Limit(1).GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}
	return matches[0], nil
}

func (a *FirestoreAdapter) ListTemplateExercises(ctx context.Context, limit int) ([]*types.Exercise, error) {
	return a.storage.Exercises().Where("is_template", "==", true).Limit(limit).GetAll(ctx)
}

func (a *FirestoreAdapter) SetExercise(ctx context.Context, exercise *types.Exercise) error {
	return a.storage.Exercises().Doc(exercise.ID).Set(ctx, exercise)
}

func (a *FirestoreAdapter) UpdateExercise(ctx context.Context, id string, data map[string]interface{}) error {
	return a.storage.Exercises().Doc(id).Update(ctx, data)
}

func (a *FirestoreAdapter) GetPatientExercise(ctx context.Context, id string) (*types.PatientExercise, error) {
	link, err := a.storage.PatientExercises().Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, &apperrors.NotFoundError{Resource: "patient exercise", ID: id}
		}
		return nil, err
	}
	return link, nil
}

func (a *FirestoreAdapter) ListPatientExercises(ctx context.Context, patientID string) ([]*types.PatientExercise, error) {
	return a.storage.PatientExercises().Where("patient_id", "==", patientID).GetAll(ctx)
}

func (a *FirestoreAdapter) SetPatientExercise(ctx context.Context, link *types.PatientExercise) error {
	return a.storage.PatientExercises().Doc(link.ID).Set(ctx, link)
}

func (a *FirestoreAdapter) UpdatePatientExercise(ctx context.Context, id string, data map[string]interface{}) error {
	return a.storage.PatientExercises().Doc(id).Update(ctx, data)
}
