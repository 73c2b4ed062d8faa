package types

// Response is the envelope returned by every handler invocation and by the
// composer. Once returned it must be treated as immutable.
type Response struct {
	Success     bool           `json:"success"`
	Message     string         `json:"message"`
	Data        map[string]any `json:"data,omitempty"`
	ActionTaken string         `json:"action_taken,omitempty"`
	NextSteps   []string       `json:"next_steps,omitempty"`
	// Confidence is nil when the producing handler did not report one.
	Confidence *float64 `json:"confidence_score,omitempty"`
}

// ConfidencePtr returns a pointer to v, for populating Response.Confidence.
func ConfidencePtr(v float64) *float64 { return &v }

// ConfidenceOr returns the reported confidence, or def when none was set.
func (r *Response) ConfidenceOr(def float64) float64 {
	if r == nil || r.Confidence == nil {
		return def
	}
	return *r.Confidence
}

// WithData returns r with key set in Data, allocating the map if needed.
// Intended for enriching a response before it is handed to the caller,
// not for mutating a response already returned.
func (r *Response) WithData(key string, value any) *Response {
	if r.Data == nil {
		r.Data = make(map[string]any)
	}
	r.Data[key] = value
	return r
}

// Failure builds an unsuccessful Response with actionable next steps.
// Validation failures surface through this rather than as errors.
func Failure(message string, nextSteps ...string) *Response {
	return &Response{
		Success:   false,
		Message:   message,
		NextSteps: nextSteps,
	}
}
