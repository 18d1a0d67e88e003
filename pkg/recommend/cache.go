package recommend

import (
	"context"
	"errors"

	"github.com/pep-pro/server/pkg/apperrors"
	"github.com/pep-pro/server/pkg/types"
)

// resolveFromCache decides whether persisted exercises satisfy the request
// without calling any generative provider.
//
// The patient's linked exercises are resolved first; three or more distinct
// ones are a cache hit. With fewer, patients who reported pain points get
// up to five template exercises as a fallback set; patients without pain
// points get nothing, forcing generation.
func (p *Pipeline) resolveFromCache(ctx context.Context, patientID string) ([]*types.Exercise, error) {
	links, err := p.DB.ListPatientExercises(ctx, patientID)
	if err != nil {
		return nil, err
	}

	if len(links) > 0 {
		seen := make(map[string]bool, len(links))
		var exercises []*types.Exercise

		for _, link := range links {
			if link.ExerciseID == "" || seen[link.ExerciseID] {
				continue
			}
			seen[link.ExerciseID] = true

			exercise, err := p.DB.GetExercise(ctx, link.ExerciseID)
			if err != nil {
				var nfe *apperrors.NotFoundError
				if errors.As(err, &nfe) {
					// Dangling link; skip rather than fail the run.
					p.Logger.Warn("patient exercise link points at missing exercise",
						"patient_id", patientID, "exercise_id", link.ExerciseID)
					continue
				}
				return nil, err
			}
			exercises = append(exercises, exercise)
		}

		if len(exercises) >= cacheHitThreshold {
			return exercises, nil
		}
	}

	painPoints, err := p.DB.ListPainPoints(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if len(painPoints) == 0 {
		// Nothing to fall back on; the caller must generate.
		return nil, nil
	}

	// TODO: match templates against pain point descriptions instead of
	// returning an unfiltered slice. Intended matching semantics are not
	// defined anywhere yet, so this stays a plain limit query.
	return p.DB.ListTemplateExercises(ctx, templateFallbackLimit)
}
