package prescribe

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/pep-pro/server/pkg/apperrors"
	"github.com/pep-pro/server/pkg/bootstrap"
	"github.com/pep-pro/server/pkg/genprovider"
	"github.com/pep-pro/server/pkg/testing/mocks"
	"github.com/pep-pro/server/pkg/types"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type scriptedProvider struct {
	output string
	err    error
	calls  int
}

func (s *scriptedProvider) Name() string { return "scripted" }

func (s *scriptedProvider) Complete(ctx context.Context, prompt string) (string, error) {
	s.calls++
	return s.output, s.err
}

type staticResolver struct {
	candidate types.VideoCandidate
	calls     int
}

func (r *staticResolver) Enrich(ctx context.Context, exerciseName string) *types.VideoCandidate {
	r.calls++
	c := r.candidate
	return &c
}

const singleProposal = `[{"name": "Wall Sit", "description": "Isometric quad hold.", "target_joints": ["knee"], "instructions": ["Lean against a wall", "Hold for thirty seconds"]}]`

func testService(db *mocks.MockDatabase, provider *scriptedProvider) (*Service, *mocks.MockPublisher, *mocks.MockBlobStore) {
	pub := &mocks.MockPublisher{}
	store := &mocks.MockBlobStore{}
	svc := &Service{
		DB:       db,
		Secrets:  &mocks.MockSecretStore{},
		Pub:      pub,
		Store:    store,
		Config:   &bootstrap.Config{ProjectID: "test-project", VideoBucket: "test-videos"},
		Enricher: &staticResolver{},
		NewProvider: func(kind genprovider.Kind, apiKey string) genprovider.Provider {
			return provider
		},
		Logger: slog.Default(),
		Now:    func() time.Time { return testNow },
	}
	return svc, pub, store
}

func patientDB() *mocks.MockDatabase {
	return &mocks.MockDatabase{
		GetPatientFunc: func(ctx context.Context, id string) (*types.Patient, error) {
			if id == "p1" {
				return &types.Patient{ID: "p1", Name: "Alex"}, nil
			}
			return nil, &apperrors.NotFoundError{Resource: "patient", ID: id}
		},
	}
}

func TestAddCustom_Validation(t *testing.T) {
	svc, _, _ := testService(patientDB(), &scriptedProvider{})

	tests := []struct {
		name string
		req  CustomRequest
	}{
		{"missing patient", CustomRequest{PTID: "pt1", Name: "Wall Sit"}},
		{"missing pt", CustomRequest{PatientID: "p1", Name: "Wall Sit"}},
		{"missing name", CustomRequest{PatientID: "p1", PTID: "pt1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddCustom(context.Background(), tt.req)
			var vErr *apperrors.ValidationError
			if !errors.As(err, &vErr) {
				t.Errorf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestAddCustom_GeneratesNewExercise(t *testing.T) {
	db := patientDB()
	var inserted *types.Exercise
	var linked *types.PatientExercise
	db.SetExerciseFunc = func(ctx context.Context, ex *types.Exercise) error {
		inserted = ex
		return nil
	}
	db.SetPatientExerciseFunc = func(ctx context.Context, link *types.PatientExercise) error {
		linked = link
		return nil
	}

	provider := &scriptedProvider{output: singleProposal}
	svc, pub, _ := testService(db, provider)

	result, err := svc.AddCustom(context.Background(), CustomRequest{
		PatientID:         "p1",
		PTID:              "pt1",
		Name:              "Wall Sit",
		VoiceInstructions: "keep the back flat",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Reused {
		t.Error("expected a generated exercise, not a reuse")
	}
	if provider.calls != 1 {
		t.Errorf("expected 1 generation call, got %d", provider.calls)
	}
	if inserted == nil {
		t.Fatal("exercise not inserted")
	}
	if inserted.Source != types.SourcePTCreated {
		t.Errorf("expected pt-created provenance, got %q", inserted.Source)
	}
	if inserted.CreatedBy != "pt1" {
		t.Errorf("creator not recorded: %q", inserted.CreatedBy)
	}
	if linked == nil || !linked.PTModified || linked.PTID != "pt1" {
		t.Errorf("link not marked as clinician-owned: %+v", linked)
	}
	if len(pub.Published) != 1 || pub.Published[0].Type() != EventCustomAdded {
		t.Errorf("custom-added event not published")
	}
}

func TestAddCustom_ReusesExistingByName(t *testing.T) {
	db := patientDB()
	existing := &types.Exercise{ID: "e-existing", Name: "Wall Sit", VideoURL: "https://www.youtube.com/watch?v=abcdefghijk"}
	db.FindExerciseByNameFunc = func(ctx context.Context, name string) (*types.Exercise, error) {
		return existing, nil
	}
	inserts := 0
	db.SetExerciseFunc = func(ctx context.Context, ex *types.Exercise) error {
		inserts++
		return nil
	}

	provider := &scriptedProvider{output: singleProposal}
	svc, _, _ := testService(db, provider)

	result, err := svc.AddCustom(context.Background(), CustomRequest{PatientID: "p1", PTID: "pt1", Name: "Wall Sit"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.Reused {
		t.Error("expected reuse of existing exercise")
	}
	if provider.calls != 0 {
		t.Errorf("reuse must not call the backend, got %d calls", provider.calls)
	}
	if inserts != 0 {
		t.Error("reuse must not insert")
	}
	if result.Exercise.ID != "e-existing" {
		t.Errorf("wrong exercise linked: %q", result.Exercise.ID)
	}
}

func TestAddCustom_UploadedVideoWinsOverEnrichment(t *testing.T) {
	db := patientDB()
	var inserted *types.Exercise
	db.SetExerciseFunc = func(ctx context.Context, ex *types.Exercise) error {
		inserted = ex
		return nil
	}

	svc, _, store := testService(db, &scriptedProvider{output: singleProposal})
	resolver := svc.Enricher.(*staticResolver)

	var uploadedObject string
	store.WritePublicFunc = func(ctx context.Context, bucket, object, contentType string, data []byte) (string, error) {
		uploadedObject = object
		return "https://storage.googleapis.com/" + bucket + "/" + object, nil
	}

	_, err := svc.AddCustom(context.Background(), CustomRequest{
		PatientID:        "p1",
		PTID:             "pt1",
		Name:             "Wall Sit",
		VideoData:        []byte("fake-mp4-bytes"),
		VideoContentType: "video/mp4",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resolver.calls != 0 {
		t.Error("provided recording must suppress enrichment")
	}
	if inserted == nil || inserted.VideoURL == "" {
		t.Fatal("uploaded video url not set")
	}
	if uploadedObject != "custom/"+inserted.ID+".mp4" {
		t.Errorf("unexpected object name %q", uploadedObject)
	}
}

func TestAddCustom_UnknownPatient(t *testing.T) {
	svc, _, _ := testService(patientDB(), &scriptedProvider{})

	_, err := svc.AddCustom(context.Background(), CustomRequest{PatientID: "ghost", PTID: "pt1", Name: "Wall Sit"})

	var nfErr *apperrors.NotFoundError
	if !errors.As(err, &nfErr) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}
