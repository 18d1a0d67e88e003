// Package types holds the domain records persisted in Firestore.
// Records are plain structs; the storage layer owns the map conversion.
package types

import "time"

// Exercise provenance values for the Source field.
const (
	SourceSystemTemplate = "system-template"
	SourceLLMGenerated   = "llm-generated"
	SourcePTCreated      = "pt-created"
)

// Default prescription applied when an exercise is first linked to a
// patient. A physical therapist may adjust these later.
const (
	DefaultFrequency   = "daily"
	DefaultSets        = 3
	DefaultRepetitions = 10
)

// Patient is a single patient profile. Immutable for the duration of a
// recommendation run once loaded.
type Patient struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Age               int       `json:"age"`
	ExerciseFrequency string    `json:"exercise_frequency"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`

	// PainPoints are resolved alongside the patient when loading a full
	// profile. Not stored on the patient document itself.
	PainPoints []*PainPoint `json:"pain_points,omitempty"`
}

// PainPoint describes one reported complaint, severity on a 1-10 scale.
type PainPoint struct {
	ID          string    `json:"id"`
	PatientID   string    `json:"patient_id"`
	Description string    `json:"description"`
	Severity    int       `json:"severity"`
	CreatedAt   time.Time `json:"created_at"`
}

// Exercise is a rehabilitation exercise. Name is the dedup key: unique
// within the store, case-sensitive exact match.
type Exercise struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Description       string   `json:"description"`
	TargetJoints      []string `json:"target_joints"`
	Instructions      []string `json:"instructions"`
	VideoURL          string   `json:"video_url"`
	VideoThumbnailURL string   `json:"video_thumbnail_url"`
	IsTemplate        bool     `json:"is_template"`
	Source            string   `json:"source"`
	// OriginalExerciseID points at the exercise a pt-created copy was
	// forked from, empty otherwise.
	OriginalExerciseID string    `json:"original_exercise_id,omitempty"`
	CreatedBy          string    `json:"created_by,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}

// PatientExercise links an exercise into a patient's plan. One link per
// assignment event; dedup happens at the Exercise level, not here.
type PatientExercise struct {
	ID            string    `json:"id"`
	PatientID     string    `json:"patient_id"`
	ExerciseID    string    `json:"exercise_id"`
	RecommendedAt time.Time `json:"recommended_at"`
	PTModified    bool      `json:"pt_modified"`
	PTID          string    `json:"pt_id,omitempty"`
	Frequency     string    `json:"frequency"`
	Sets          int       `json:"sets"`
	Repetitions   int       `json:"repetitions"`
	Notes         string    `json:"notes"`
}

// NewPatientExercise builds a link with the default prescription.
func NewPatientExercise(id, patientID, exerciseID string, now time.Time) *PatientExercise {
	return &PatientExercise{
		ID:            id,
		PatientID:     patientID,
		ExerciseID:    exerciseID,
		RecommendedAt: now,
		Frequency:     DefaultFrequency,
		Sets:          DefaultSets,
		Repetitions:   DefaultRepetitions,
	}
}

// VideoCandidate is a transient enrichment result. Never persisted on its
// own; its fields are copied onto the Exercise that it was resolved for.
type VideoCandidate struct {
	URL          string
	ThumbnailURL string
	Query        string
}
