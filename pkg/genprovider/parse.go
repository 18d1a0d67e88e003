package genprovider

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/pep-pro/server/pkg/apperrors"
)

// Proposal is one generated exercise, lists already normalized. Proposals
// carry no video fields: media resolution belongs to the enrichment stage.
type Proposal struct {
	Name         string
	Description  string
	TargetJoints []string
	Instructions []string
}

// Backends are prompted for a bare JSON array but routinely decorate it
// with a markdown code fence anyway.
var fenceRE = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// proposalJSON tolerates the two shapes backends actually return for list
// fields: a JSON array or a single delimited string.
type proposalJSON struct {
	Name         string      `json:"name"`
	Description  string      `json:"description"`
	TargetJoints interface{} `json:"target_joints"`
	Instructions interface{} `json:"instructions"`
}

// ExtractProposals pulls the proposal array out of a provider's free-text
// response. All failures are ParseError, kept distinct from transport
// failures so parsing edge cases can be tested in isolation.
func ExtractProposals(raw string) ([]*Proposal, error) {
	content := strings.TrimSpace(raw)
	if content == "" {
		return nil, &apperrors.ParseError{Detail: "empty response"}
	}

	if m := fenceRE.FindStringSubmatch(content); m != nil {
		content = m[1]
	}

	var decoded []proposalJSON
	if err := json.Unmarshal([]byte(content), &decoded); err != nil {
		return nil, &apperrors.ParseError{
			Detail:  "response does not contain a JSON array",
			Snippet: snippet(content),
			Err:     err,
		}
	}

	if len(decoded) == 0 {
		return nil, &apperrors.ParseError{Detail: "proposal array is empty"}
	}

	proposals := make([]*Proposal, 0, len(decoded))
	for _, d := range decoded {
		if d.Name == "" {
			return nil, &apperrors.ParseError{Detail: "proposal missing name", Snippet: d.Description}
		}
		proposals = append(proposals, &Proposal{
			Name:         d.Name,
			Description:  d.Description,
			TargetJoints: NormalizeList(d.TargetJoints, ","),
			Instructions: NormalizeList(d.Instructions, ";"),
		})
	}
	return proposals, nil
}

// NormalizeList coerces a decoded JSON value into a clean string list.
// Arrays pass through element-wise; a single delimited string is split on
// sep. Elements are trimmed and empties dropped.
func NormalizeList(v interface{}, sep string) []string {
	var items []string
	switch val := v.(type) {
	case []interface{}:
		for _, item := range val {
			if s, ok := item.(string); ok {
				items = append(items, s)
			}
		}
	case string:
		items = strings.Split(val, sep)
	default:
		return nil
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func snippet(s string) string {
	const max = 80
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
