package firestore

import (
	"time"

	"github.com/pep-pro/server/pkg/types"
)

// Helper to safely get string from map
func getString(m map[string]interface{}, key string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// Helper to safely get int from map (Firestore hands numbers back as int64)
func getInt(m map[string]interface{}, key string) int {
	if v, ok := m[key]; ok {
		switch n := v.(type) {
		case int64:
			return int(n)
		case int:
			return n
		case float64:
			return int(n)
		}
	}
	return 0
}

// Helper to safely get bool from map
func getBool(m map[string]interface{}, key string) bool {
	if v, ok := m[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return false
}

// Helper to safely get time from map
func getTime(m map[string]interface{}, key string) time.Time {
	if v, ok := m[key]; ok {
		if t, ok := v.(time.Time); ok {
			return t
		}
	}
	return time.Time{}
}

// Helper to safely get a string slice from map (Firestore arrays come back
// as []interface{})
func getStringSlice(m map[string]interface{}, key string) []string {
	v, ok := m[key]
	if !ok {
		return nil
	}
	raw, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// --- Patient Converters ---

func PatientToFirestore(p *types.Patient) map[string]interface{} {
	return map[string]interface{}{
		"id":                 p.ID,
		"name":               p.Name,
		"age":                p.Age,
		"exercise_frequency": p.ExerciseFrequency,
		"created_at":         p.CreatedAt,
		"updated_at":         p.UpdatedAt,
	}
}

func FirestoreToPatient(m map[string]interface{}) *types.Patient {
	return &types.Patient{
		ID:                getString(m, "id"),
		Name:              getString(m, "name"),
		Age:               getInt(m, "age"),
		ExerciseFrequency: getString(m, "exercise_frequency"),
		CreatedAt:         getTime(m, "created_at"),
		UpdatedAt:         getTime(m, "updated_at"),
	}
}

// --- PainPoint Converters ---

func PainPointToFirestore(p *types.PainPoint) map[string]interface{} {
	return map[string]interface{}{
		"id":          p.ID,
		"patient_id":  p.PatientID,
		"description": p.Description,
		"severity":    p.Severity,
		"created_at":  p.CreatedAt,
	}
}

func FirestoreToPainPoint(m map[string]interface{}) *types.PainPoint {
	return &types.PainPoint{
		ID:          getString(m, "id"),
		PatientID:   getString(m, "patient_id"),
		Description: getString(m, "description"),
		Severity:    getInt(m, "severity"),
		CreatedAt:   getTime(m, "created_at"),
	}
}

// --- Exercise Converters ---

func ExerciseToFirestore(e *types.Exercise) map[string]interface{} {
	m := map[string]interface{}{
		"id":                  e.ID,
		"name":                e.Name,
		"description":         e.Description,
		"target_joints":       e.TargetJoints,
		"instructions":        e.Instructions,
		"video_url":           e.VideoURL,
		"video_thumbnail_url": e.VideoThumbnailURL,
		"is_template":         e.IsTemplate,
		"source":              e.Source,
		"created_at":          e.CreatedAt,
	}
	if e.OriginalExerciseID != "" {
		m["original_exercise_id"] = e.OriginalExerciseID
	}
	if e.CreatedBy != "" {
		m["created_by"] = e.CreatedBy
	}
	return m
}

func FirestoreToExercise(m map[string]interface{}) *types.Exercise {
	return &types.Exercise{
		ID:                 getString(m, "id"),
		Name:               getString(m, "name"),
		Description:        getString(m, "description"),
		TargetJoints:       getStringSlice(m, "target_joints"),
		Instructions:       getStringSlice(m, "instructions"),
		VideoURL:           getString(m, "video_url"),
		VideoThumbnailURL:  getString(m, "video_thumbnail_url"),
		IsTemplate:         getBool(m, "is_template"),
		Source:             getString(m, "source"),
		OriginalExerciseID: getString(m, "original_exercise_id"),
		CreatedBy:          getString(m, "created_by"),
		CreatedAt:          getTime(m, "created_at"),
	}
}

// --- PatientExercise Converters ---

func PatientExerciseToFirestore(pe *types.PatientExercise) map[string]interface{} {
	m := map[string]interface{}{
		"id":             pe.ID,
		"patient_id":     pe.PatientID,
		"exercise_id":    pe.ExerciseID,
		"recommended_at": pe.RecommendedAt,
		"pt_modified":    pe.PTModified,
		"frequency":      pe.Frequency,
		"sets":           pe.Sets,
		"repetitions":    pe.Repetitions,
		"notes":          pe.Notes,
	}
	if pe.PTID != "" {
		m["pt_id"] = pe.PTID
	}
	return m
}

func FirestoreToPatientExercise(m map[string]interface{}) *types.PatientExercise {
	return &types.PatientExercise{
		ID:            getString(m, "id"),
		PatientID:     getString(m, "patient_id"),
		ExerciseID:    getString(m, "exercise_id"),
		RecommendedAt: getTime(m, "recommended_at"),
		PTModified:    getBool(m, "pt_modified"),
		PTID:          getString(m, "pt_id"),
		Frequency:     getString(m, "frequency"),
		Sets:          getInt(m, "sets"),
		Repetitions:   getInt(m, "repetitions"),
		Notes:         getString(m, "notes"),
	}
}
