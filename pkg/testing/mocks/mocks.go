package mocks

import (
	"context"
	"fmt"

	"github.com/cloudevents/sdk-go/v2/event"

	"github.com/pep-pro/server/pkg/apperrors"
	"github.com/pep-pro/server/pkg/types"
)

// --- Mock Database ---

type MockDatabase struct {
	GetPatientFunc            func(ctx context.Context, id string) (*types.Patient, error)
	SetPatientFunc            func(ctx context.Context, patient *types.Patient) error
	ListPainPointsFunc        func(ctx context.Context, patientID string) ([]*types.PainPoint, error)
	GetExerciseFunc           func(ctx context.Context, id string) (*types.Exercise, error)
	FindExerciseByNameFunc    func(ctx context.Context, name string) (*types.Exercise, error)
	ListTemplateExercisesFunc func(ctx context.Context, limit int) ([]*types.Exercise, error)
	SetExerciseFunc           func(ctx context.Context, exercise *types.Exercise) error
	UpdateExerciseFunc        func(ctx context.Context, id string, data map[string]interface{}) error
	GetPatientExerciseFunc    func(ctx context.Context, id string) (*types.PatientExercise, error)
	ListPatientExercisesFunc  func(ctx context.Context, patientID string) ([]*types.PatientExercise, error)
	SetPatientExerciseFunc    func(ctx context.Context, link *types.PatientExercise) error
	UpdatePatientExerciseFunc func(ctx context.Context, id string, data map[string]interface{}) error
}

func (m *MockDatabase) GetPatient(ctx context.Context, id string) (*types.Patient, error) {
	if m.GetPatientFunc != nil {
		return m.GetPatientFunc(ctx, id)
	}
	return nil, &apperrors.NotFoundError{Resource: "patient", ID: id}
}

func (m *MockDatabase) SetPatient(ctx context.Context, patient *types.Patient) error {
	if m.SetPatientFunc != nil {
		return m.SetPatientFunc(ctx, patient)
	}
	return nil
}

func (m *MockDatabase) ListPainPoints(ctx context.Context, patientID string) ([]*types.PainPoint, error) {
	if m.ListPainPointsFunc != nil {
		return m.ListPainPointsFunc(ctx, patientID)
	}
	return nil, nil
}

func (m *MockDatabase) GetExercise(ctx context.Context, id string) (*types.Exercise, error) {
	if m.GetExerciseFunc != nil {
		return m.GetExerciseFunc(ctx, id)
	}
	return nil, &apperrors.NotFoundError{Resource: "exercise", ID: id}
}

func (m *MockDatabase) FindExerciseByName(ctx context.Context, name string) (*types.Exercise, error) {
	if m.FindExerciseByNameFunc != nil {
		return m.FindExerciseByNameFunc(ctx, name)
	}
	return nil, nil
}

func (m *MockDatabase) ListTemplateExercises(ctx context.Context, limit int) ([]*types.Exercise, error) {
	if m.ListTemplateExercisesFunc != nil {
		return m.ListTemplateExercisesFunc(ctx, limit)
	}
	return nil, nil
}

func (m *MockDatabase) SetExercise(ctx context.Context, exercise *types.Exercise) error {
	if m.SetExerciseFunc != nil {
		return m.SetExerciseFunc(ctx, exercise)
	}
	return nil
}

func (m *MockDatabase) UpdateExercise(ctx context.Context, id string, data map[string]interface{}) error {
	if m.UpdateExerciseFunc != nil {
		return m.UpdateExerciseFunc(ctx, id, data)
	}
	return nil
}

func (m *MockDatabase) GetPatientExercise(ctx context.Context, id string) (*types.PatientExercise, error) {
	if m.GetPatientExerciseFunc != nil {
		return m.GetPatientExerciseFunc(ctx, id)
	}
	return nil, &apperrors.NotFoundError{Resource: "patient exercise", ID: id}
}

func (m *MockDatabase) ListPatientExercises(ctx context.Context, patientID string) ([]*types.PatientExercise, error) {
	if m.ListPatientExercisesFunc != nil {
		return m.ListPatientExercisesFunc(ctx, patientID)
	}
	return nil, nil
}

func (m *MockDatabase) SetPatientExercise(ctx context.Context, link *types.PatientExercise) error {
	if m.SetPatientExerciseFunc != nil {
		return m.SetPatientExerciseFunc(ctx, link)
	}
	return nil
}

func (m *MockDatabase) UpdatePatientExercise(ctx context.Context, id string, data map[string]interface{}) error {
	if m.UpdatePatientExerciseFunc != nil {
		return m.UpdatePatientExerciseFunc(ctx, id, data)
	}
	return nil
}

// --- Mock Secrets ---

type MockSecretStore struct {
	GetSecretFunc func(ctx context.Context, projectID, name string) (string, error)
}

func (m *MockSecretStore) GetSecret(ctx context.Context, projectID, name string) (string, error) {
	if m.GetSecretFunc != nil {
		return m.GetSecretFunc(ctx, projectID, name)
	}
	return "mock-secret-value", nil
}

// --- Mock Publisher ---

type MockPublisher struct {
	PublishCloudEventFunc func(ctx context.Context, topic string, e event.Event) (string, error)
	Published             []event.Event
}

func (m *MockPublisher) PublishCloudEvent(ctx context.Context, topic string, e event.Event) (string, error) {
	m.Published = append(m.Published, e)
	if m.PublishCloudEventFunc != nil {
		return m.PublishCloudEventFunc(ctx, topic, e)
	}
	return "msg-id", nil
}

// --- Mock Storage ---

type MockBlobStore struct {
	WritePublicFunc func(ctx context.Context, bucket, object, contentType string, data []byte) (string, error)
	ReadFunc        func(ctx context.Context, bucket, object string) ([]byte, error)
}

func (m *MockBlobStore) WritePublic(ctx context.Context, bucket, object, contentType string, data []byte) (string, error) {
	if m.WritePublicFunc != nil {
		return m.WritePublicFunc(ctx, bucket, object, contentType, data)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, object), nil
}

func (m *MockBlobStore) Read(ctx context.Context, bucket, object string) ([]byte, error) {
	if m.ReadFunc != nil {
		return m.ReadFunc(ctx, bucket, object)
	}
	return []byte("mock-data"), nil
}
