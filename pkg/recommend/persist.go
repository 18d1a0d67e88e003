package recommend

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pep-pro/server/pkg/apperrors"
	"github.com/pep-pro/server/pkg/genprovider"
	"github.com/pep-pro/server/pkg/types"
)

// persistProposal merges one enriched proposal into the exercise store and
// links it to the patient.
//
// The exercise name is the dedup key. An existing record is only ever
// back-filled: empty video fields take the proposal's values, populated
// ones are never overwritten. A new record gets a fresh id and
// llm-generated provenance. Either way a patient link is created with the
// default prescription.
//
// The name lookup and the subsequent write are separate operations with no
// cross-record transaction; two concurrent runs proposing the same new
// name can race and duplicate. Known limitation of the store.
func (p *Pipeline) persistProposal(ctx context.Context, patientID string, proposal *genprovider.Proposal, video *types.VideoCandidate, now time.Time) (*types.Exercise, error) {
	existing, err := p.DB.FindExerciseByName(ctx, proposal.Name)
	if err != nil {
		return nil, &apperrors.PersistenceError{Op: "exercise lookup", Err: err}
	}

	var exercise *types.Exercise
	if existing != nil {
		patch := make(map[string]interface{})
		if existing.VideoURL == "" && video.URL != "" {
			patch["video_url"] = video.URL
			existing.VideoURL = video.URL
		}
		if existing.VideoThumbnailURL == "" && video.ThumbnailURL != "" {
			patch["video_thumbnail_url"] = video.ThumbnailURL
			existing.VideoThumbnailURL = video.ThumbnailURL
		}
		if len(patch) > 0 {
			if err := p.DB.UpdateExercise(ctx, existing.ID, patch); err != nil {
				return nil, &apperrors.PersistenceError{Op: "exercise backfill", Err: err}
			}
		}
		exercise = existing
	} else {
		exercise = &types.Exercise{
			ID:                uuid.NewString(),
			Name:              proposal.Name,
			Description:       proposal.Description,
			TargetJoints:      proposal.TargetJoints,
			Instructions:      proposal.Instructions,
			VideoURL:          video.URL,
			VideoThumbnailURL: video.ThumbnailURL,
			IsTemplate:        false,
			Source:            types.SourceLLMGenerated,
			CreatedAt:         now,
		}
		if err := p.DB.SetExercise(ctx, exercise); err != nil {
			return nil, &apperrors.PersistenceError{Op: "exercise insert", Err: err}
		}
	}

	link := types.NewPatientExercise(uuid.NewString(), patientID, exercise.ID, now)
	if err := p.DB.SetPatientExercise(ctx, link); err != nil {
		return nil, &apperrors.PersistenceError{Op: "patient exercise link", Err: err}
	}

	return exercise, nil
}
