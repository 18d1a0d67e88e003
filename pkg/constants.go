package shared

const (
	ProjectID  = "pep-pro" // Can be overridden by env var in main if needed
	DatabaseID = "pep-pro"

	TopicExercisesGenerated = "topic-exercises-generated"
	TopicExerciseModified   = "topic-exercise-modified"

	CollectionPatients         = "patients"
	CollectionPainPoints       = "pain_points"
	CollectionExercises        = "exercises"
	CollectionPatientExercises = "patient_exercises"

	// Secret Manager secret ids. Keys are fetched fresh per invocation,
	// never cached across requests.
	SecretAnthropicAPIKey   = "anthropic-api-key"
	SecretOpenAIAPIKey      = "openai-api-key"
	SecretGeminiAPIKey      = "gemini-api-key"
	SecretVideoSearchAPIKey = "video-search-api-key"

	// Bucket holding clinician-uploaded demonstration videos.
	ExerciseVideoBucket = "duoligo-pt-app-videos"
)
