package recommend

import (
	"context"

	"github.com/pep-pro/server/pkg/types"
)

// loadProfile fetches the patient and resolves their pain points. The
// profile is treated as immutable for the rest of the run. Read-only; a
// missing patient surfaces as NotFoundError.
func (p *Pipeline) loadProfile(ctx context.Context, patientID string) (*types.Patient, error) {
	patient, err := p.DB.GetPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}

	painPoints, err := p.DB.ListPainPoints(ctx, patientID)
	if err != nil {
		return nil, err
	}
	patient.PainPoints = painPoints

	return patient, nil
}
