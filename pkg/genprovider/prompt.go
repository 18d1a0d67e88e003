package genprovider

import (
	"fmt"
	"strings"

	"github.com/pep-pro/server/pkg/types"
)

// SystemPrompt frames every generation request.
const SystemPrompt = "You are a senior physical therapist specializing in knee rehabilitation."

const responseFormat = `Format your response as JSON according to this structure:
` + "```json" + `
[
  {
    "name": "Exercise Name",
    "description": "Brief description of the exercise",
    "target_joints": ["knee", "ankle"],
    "instructions": [
      "Step 1",
      "Step 2",
      "Step 3"
    ]
  }
]
` + "```" + `

Respond ONLY with the JSON array and nothing else.`

// BuildPrompt renders a patient profile into the natural-language request
// sent to the generation backend. Demonstration videos are resolved by the
// enrichment stage, so the prompt never asks for them.
func BuildPrompt(profile *types.Patient) string {
	name := profile.Name
	if name == "" {
		name = "the patient"
	}

	age := "unknown age"
	if profile.Age > 0 {
		age = fmt.Sprintf("%d", profile.Age)
	}

	frequency := profile.ExerciseFrequency
	if frequency == "" {
		frequency = types.DefaultFrequency
	}

	painPointsText := "No specific pain points mentioned."
	if len(profile.PainPoints) > 0 {
		descriptions := make([]string, 0, len(profile.PainPoints))
		for _, pp := range profile.PainPoints {
			descriptions = append(descriptions, fmt.Sprintf("%s (severity: %d/10)", pp.Description, pp.Severity))
		}
		painPointsText = "Pain points: " + strings.Join(descriptions, "; ")
	}

	return fmt.Sprintf(`I need to generate personalized knee rehabilitation exercises for a patient with the following profile:

Name: %s
Age: %s
Exercise frequency: %s
%s

Please provide 3-5 evidence-based exercises appropriate for knee rehabilitation for this specific patient.
Consider standard physical therapy protocols and clinical practice guidelines.

For each exercise, include:
1. A clear name
2. A concise description
3. Target joints (comma-separated list)
4. Step-by-step instructions (semicolon-separated list)

%s`, name, age, frequency, painPointsText, responseFormat)
}

// BuildSinglePrompt asks for details of one named exercise, optionally
// steered by a clinician's dictated instructions.
func BuildSinglePrompt(exerciseName, voiceInstructions string) string {
	guidance := ""
	if voiceInstructions != "" {
		guidance = fmt.Sprintf("\nThe physical therapist described it as follows: %s\n", voiceInstructions)
	}

	return fmt.Sprintf(`I need the details of a knee rehabilitation exercise called "%s".
%s
Provide a concise description, the target joints, and step-by-step instructions suitable for a patient performing it unsupervised.

%s`, exerciseName, guidance, responseFormat)
}
