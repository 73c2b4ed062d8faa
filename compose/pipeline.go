package compose

import "strings"

// Pipeline is a named, ordered sequence of handler stages selected by
// trigger phrases in the request text.
type Pipeline struct {
	ID       string
	Stages   []string
	Triggers []string
}

// Matches reports whether the lower-cased request contains one of the
// pipeline's trigger phrases.
func (p Pipeline) Matches(request string) bool {
	lower := strings.ToLower(request)
	for _, phrase := range p.Triggers {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// DefaultPipelines returns the built-in multi-handler pipelines.
func DefaultPipelines() []Pipeline {
	return []Pipeline{
		{
			ID:       "hire_to_onboard",
			Stages:   []string{"recruitment", "onboarding"},
			Triggers: []string{"hire and onboard", "recruit and onboard"},
		},
		{
			ID:       "onboard_to_performance",
			Stages:   []string{"onboarding", "performance"},
			Triggers: []string{"onboard and performance", "onboard and goals"},
		},
		{
			ID:       "complete_employee_lifecycle",
			Stages:   []string{"recruitment", "onboarding", "performance"},
			Triggers: []string{"complete process", "end-to-end", "full lifecycle"},
		},
	}
}
