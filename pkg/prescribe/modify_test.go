package prescribe

import (
	"context"
	"errors"
	"testing"

	"github.com/pep-pro/server/pkg/apperrors"
	"github.com/pep-pro/server/pkg/testing/mocks"
	"github.com/pep-pro/server/pkg/types"
)

func prescriptionDB() *mocks.MockDatabase {
	return &mocks.MockDatabase{
		GetPatientExerciseFunc: func(ctx context.Context, id string) (*types.PatientExercise, error) {
			if id == "pe1" {
				return &types.PatientExercise{
					ID:          "pe1",
					PatientID:   "p1",
					ExerciseID:  "e1",
					Frequency:   types.DefaultFrequency,
					Sets:        types.DefaultSets,
					Repetitions: types.DefaultRepetitions,
				}, nil
			}
			return nil, &apperrors.NotFoundError{Resource: "patient exercise", ID: id}
		},
		GetExerciseFunc: func(ctx context.Context, id string) (*types.Exercise, error) {
			return &types.Exercise{
				ID:          id,
				Name:        "Heel Slide",
				Description: "Range of motion work.",
				VideoURL:    "https://www.youtube.com/watch?v=abcdefghijk",
			}, nil
		},
	}
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func TestModify_Validation(t *testing.T) {
	svc, _, _ := testService(prescriptionDB(), &scriptedProvider{})

	if _, err := svc.Modify(context.Background(), ModifyRequest{PTID: "pt1"}); err == nil {
		t.Error("expected error for missing patient_exercise_id")
	}
	if _, err := svc.Modify(context.Background(), ModifyRequest{PatientExerciseID: "pe1"}); err == nil {
		t.Error("expected error for missing pt_id")
	}
}

func TestModify_UnknownLink(t *testing.T) {
	svc, _, _ := testService(prescriptionDB(), &scriptedProvider{})

	_, err := svc.Modify(context.Background(), ModifyRequest{PatientExerciseID: "ghost", PTID: "pt1"})

	var nfErr *apperrors.NotFoundError
	if !errors.As(err, &nfErr) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestModify_PrescriptionUpdate(t *testing.T) {
	db := prescriptionDB()
	var gotID string
	var update map[string]interface{}
	db.UpdatePatientExerciseFunc = func(ctx context.Context, id string, data map[string]interface{}) error {
		gotID = id
		update = data
		return nil
	}

	svc, pub, _ := testService(db, &scriptedProvider{})

	result, err := svc.Modify(context.Background(), ModifyRequest{
		PatientExerciseID: "pe1",
		PTID:              "pt1",
		Sets:              intPtr(4),
		Repetitions:       intPtr(12),
		Notes:             strPtr("increase depth gradually"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotID != "pe1" {
		t.Errorf("updated wrong link %q", gotID)
	}
	if update["pt_modified"] != true || update["pt_id"] != "pt1" {
		t.Errorf("clinician ownership not recorded: %v", update)
	}
	if update["sets"] != 4 || update["repetitions"] != 12 {
		t.Errorf("prescription values not applied: %v", update)
	}
	if _, ok := update["frequency"]; ok {
		t.Error("omitted frequency must stay untouched")
	}
	if result.Link.Sets != 4 || result.Link.Notes != "increase depth gradually" {
		t.Errorf("returned link stale: %+v", result.Link)
	}
	if result.Exercise != nil {
		t.Error("no fork expected without a recording")
	}
	if len(pub.Published) != 1 || pub.Published[0].Type() != EventExerciseModified {
		t.Error("modified event not published")
	}
}

func TestModify_VideoForksExercise(t *testing.T) {
	db := prescriptionDB()
	var fork *types.Exercise
	db.SetExerciseFunc = func(ctx context.Context, ex *types.Exercise) error {
		fork = ex
		return nil
	}
	var update map[string]interface{}
	db.UpdatePatientExerciseFunc = func(ctx context.Context, id string, data map[string]interface{}) error {
		update = data
		return nil
	}

	svc, _, store := testService(db, &scriptedProvider{})
	uploadedURL := ""
	store.WritePublicFunc = func(ctx context.Context, bucket, object, contentType string, data []byte) (string, error) {
		uploadedURL = "https://storage.googleapis.com/" + bucket + "/" + object
		return uploadedURL, nil
	}

	result, err := svc.Modify(context.Background(), ModifyRequest{
		PatientExerciseID: "pe1",
		PTID:              "pt1",
		VideoData:         []byte("fake-mp4-bytes"),
		VideoContentType:  "video/mp4",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if fork == nil {
		t.Fatal("exercise not forked")
	}
	if fork.ID == "e1" {
		t.Error("fork must get a new id")
	}
	if fork.OriginalExerciseID != "e1" {
		t.Errorf("fork must reference the original: %q", fork.OriginalExerciseID)
	}
	if fork.VideoURL != uploadedURL {
		t.Errorf("fork missing uploaded recording: %q", fork.VideoURL)
	}
	if fork.Name != "Heel Slide" {
		t.Errorf("fork lost base fields: %q", fork.Name)
	}
	if fork.Source != types.SourcePTCreated || fork.CreatedBy != "pt1" {
		t.Errorf("fork provenance wrong: %q by %q", fork.Source, fork.CreatedBy)
	}
	if update["exercise_id"] != fork.ID {
		t.Error("link not re-pointed at the fork")
	}
	if result.Link.ExerciseID != fork.ID {
		t.Error("returned link not re-pointed")
	}
	if result.Exercise == nil || result.Exercise.ID != fork.ID {
		t.Error("fork not returned")
	}
}

func TestModify_UpdateFailure(t *testing.T) {
	db := prescriptionDB()
	db.UpdatePatientExerciseFunc = func(ctx context.Context, id string, data map[string]interface{}) error {
		return errors.New("deadline exceeded")
	}

	svc, pub, _ := testService(db, &scriptedProvider{})

	_, err := svc.Modify(context.Background(), ModifyRequest{PatientExerciseID: "pe1", PTID: "pt1"})

	var pErr *apperrors.PersistenceError
	if !errors.As(err, &pErr) {
		t.Fatalf("expected PersistenceError, got %v", err)
	}
	if len(pub.Published) != 0 {
		t.Error("failed update must not publish")
	}
}
