package prescribe

import (
	"context"

	"github.com/google/uuid"

	"github.com/pep-pro/server/pkg/apperrors"
	"github.com/pep-pro/server/pkg/types"
)

// ModifyRequest adjusts an existing prescription. Nil optional fields
// leave the stored value untouched.
type ModifyRequest struct {
	PatientExerciseID string
	PTID              string
	Frequency         *string
	Sets              *int
	Repetitions       *int
	Notes             *string
	VideoData         []byte
	VideoContentType  string
}

// ModifyResult reports the updated link and, when a recording was
// provided, the patient-specific exercise fork it now points at.
type ModifyResult struct {
	Link     *types.PatientExercise
	Exercise *types.Exercise
}

// Modify applies a clinician's changes to one prescription. A provided
// recording forks the shared exercise into a patient-specific copy so
// the original stays untouched for every other patient, and re-points
// the link at the fork.
func (s *Service) Modify(ctx context.Context, req ModifyRequest) (*ModifyResult, error) {
	if req.PatientExerciseID == "" {
		return nil, apperrors.NewValidation("missing patient_exercise_id")
	}
	if req.PTID == "" {
		return nil, apperrors.NewValidation("missing pt_id")
	}

	logger := s.Logger.With("patient_exercise_id", req.PatientExerciseID)

	link, err := s.DB.GetPatientExercise(ctx, req.PatientExerciseID)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	update := map[string]interface{}{
		"pt_modified": true,
		"pt_id":       req.PTID,
		"updated_at":  now,
	}
	link.PTModified = true
	link.PTID = req.PTID

	if req.Frequency != nil {
		update["frequency"] = *req.Frequency
		link.Frequency = *req.Frequency
	}
	if req.Sets != nil {
		update["sets"] = *req.Sets
		link.Sets = *req.Sets
	}
	if req.Repetitions != nil {
		update["repetitions"] = *req.Repetitions
		link.Repetitions = *req.Repetitions
	}
	if req.Notes != nil {
		update["notes"] = *req.Notes
		link.Notes = *req.Notes
	}

	var fork *types.Exercise
	if len(req.VideoData) > 0 {
		fork, err = s.forkWithVideo(ctx, link, req)
		if err != nil {
			return nil, err
		}
		update["exercise_id"] = fork.ID
		link.ExerciseID = fork.ID
	}

	if err := s.DB.UpdatePatientExercise(ctx, link.ID, update); err != nil {
		return nil, &apperrors.PersistenceError{Op: "patient exercise update", Err: err}
	}

	s.publish(ctx, EventExerciseModified, map[string]interface{}{
		"patient_exercise_id": link.ID,
		"patient_id":          link.PatientID,
		"exercise_id":         link.ExerciseID,
		"pt_id":               req.PTID,
		"video_replaced":      fork != nil,
	})

	logger.Info("prescription modified", "exercise_id", link.ExerciseID, "video_replaced", fork != nil)
	return &ModifyResult{Link: link, Exercise: fork}, nil
}

// forkWithVideo copies the linked exercise into a patient-specific
// document carrying the uploaded recording.
func (s *Service) forkWithVideo(ctx context.Context, link *types.PatientExercise, req ModifyRequest) (*types.Exercise, error) {
	base, err := s.DB.GetExercise(ctx, link.ExerciseID)
	if err != nil {
		return nil, err
	}

	forkID := uuid.NewString()
	url, err := s.uploadVideo(ctx, forkID, req.VideoContentType, req.VideoData)
	if err != nil {
		return nil, err
	}

	fork := &types.Exercise{
		ID:                 forkID,
		Name:               base.Name,
		Description:        base.Description,
		TargetJoints:       base.TargetJoints,
		Instructions:       base.Instructions,
		VideoURL:           url,
		OriginalExerciseID: base.ID,
		Source:             types.SourcePTCreated,
		CreatedBy:          req.PTID,
		CreatedAt:          s.Now(),
	}
	if err := s.DB.SetExercise(ctx, fork); err != nil {
		return nil, &apperrors.PersistenceError{Op: "exercise fork insert", Err: err}
	}
	return fork, nil
}
