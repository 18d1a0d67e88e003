package prescribe

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pep-pro/server/pkg/apperrors"
	"github.com/pep-pro/server/pkg/genprovider"
	"github.com/pep-pro/server/pkg/types"
)

// CustomRequest adds a clinician-named exercise to a patient's plan.
type CustomRequest struct {
	PatientID         string
	PTID              string
	Name              string
	VoiceInstructions string
	ProviderTag       string
	VideoData         []byte
	VideoContentType  string
}

// CustomResult reports the exercise that ended up linked, and whether an
// existing one was reused instead of generated.
type CustomResult struct {
	Exercise *types.Exercise
	Link     *types.PatientExercise
	Reused   bool
}

// AddCustom links a clinician-requested exercise to a patient. An
// existing exercise with the same name is reused as-is; otherwise the
// generation backend fills in description, joints and instructions from
// the name and any dictated notes. A provided recording always wins over
// video enrichment.
func (s *Service) AddCustom(ctx context.Context, req CustomRequest) (*CustomResult, error) {
	if req.PatientID == "" {
		return nil, apperrors.NewValidation("missing patient_id")
	}
	if req.PTID == "" {
		return nil, apperrors.NewValidation("missing pt_id")
	}
	if req.Name == "" {
		return nil, apperrors.NewValidation("missing exercise_name")
	}

	logger := s.Logger.With("patient_id", req.PatientID, "exercise_name", req.Name)

	if _, err := s.DB.GetPatient(ctx, req.PatientID); err != nil {
		return nil, err
	}

	existing, err := s.DB.FindExerciseByName(ctx, req.Name)
	if err != nil {
		return nil, &apperrors.PersistenceError{Op: "exercise lookup", Err: err}
	}

	now := s.Now()
	var exercise *types.Exercise
	reused := existing != nil

	if reused {
		logger.Info("reusing existing exercise", "exercise_id", existing.ID)
		exercise = existing
	} else {
		exercise, err = s.generateCustom(ctx, req, now)
		if err != nil {
			return nil, err
		}
	}

	// A reused exercise keeps its recording; merge only into the missing
	// field, same as the generation pipeline's backfill.
	if len(req.VideoData) > 0 && (!reused || exercise.VideoURL == "") {
		url, err := s.uploadVideo(ctx, exercise.ID, req.VideoContentType, req.VideoData)
		if err != nil {
			return nil, err
		}
		if reused {
			if err := s.DB.UpdateExercise(ctx, exercise.ID, map[string]interface{}{
				"video_url": url,
			}); err != nil {
				return nil, &apperrors.PersistenceError{Op: "exercise backfill", Err: err}
			}
		}
		exercise.VideoURL = url
	}

	if !reused {
		if err := s.DB.SetExercise(ctx, exercise); err != nil {
			return nil, &apperrors.PersistenceError{Op: "exercise insert", Err: err}
		}
	}

	link := types.NewPatientExercise(uuid.NewString(), req.PatientID, exercise.ID, now)
	link.PTModified = true
	link.PTID = req.PTID
	if err := s.DB.SetPatientExercise(ctx, link); err != nil {
		return nil, &apperrors.PersistenceError{Op: "patient exercise link", Err: err}
	}

	s.publish(ctx, EventCustomAdded, map[string]interface{}{
		"patient_id":  req.PatientID,
		"exercise_id": exercise.ID,
		"pt_id":       req.PTID,
		"reused":      reused,
	})

	logger.Info("custom exercise linked", "exercise_id", exercise.ID, "reused", reused)
	return &CustomResult{Exercise: exercise, Link: link, Reused: reused}, nil
}

// generateCustom builds a brand new exercise document from a single
// generation call, with video enrichment when no recording was provided.
func (s *Service) generateCustom(ctx context.Context, req CustomRequest, now time.Time) (*types.Exercise, error) {
	kind, err := genprovider.ParseKind(req.ProviderTag)
	if err != nil {
		return nil, err
	}
	apiKey, err := s.Secrets.GetSecret(ctx, s.Config.ProjectID, kind.SecretName())
	if err != nil {
		return nil, err
	}
	provider := s.NewProvider(kind, apiKey)

	s.Logger.Info("generating custom exercise", "provider", provider.Name())
	proposal, err := genprovider.GenerateSingle(ctx, provider, req.Name, req.VoiceInstructions)
	if err != nil {
		return nil, err
	}

	exercise := &types.Exercise{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Description:  proposal.Description,
		TargetJoints: proposal.TargetJoints,
		Instructions: proposal.Instructions,
		Source:       types.SourcePTCreated,
		CreatedBy:    req.PTID,
		CreatedAt:    now,
	}

	if len(req.VideoData) == 0 {
		enricher, err := s.videoResolver(ctx)
		if err != nil {
			s.Logger.Warn("video enrichment unavailable", "error", err)
		} else {
			video := enricher.Enrich(ctx, exercise.Name)
			exercise.VideoURL = video.URL
			exercise.VideoThumbnailURL = video.ThumbnailURL
		}
	}
	return exercise, nil
}
