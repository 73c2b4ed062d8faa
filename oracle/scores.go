package oracle

import (
	"encoding/json"
	"strings"

	"github.com/BaSui01/hrflow/types"
)

// ParseScoreMap extracts a validated numeric score map from raw oracle
// output. Only the given keys are kept; every value is clamped into [0,1].
// The output may wrap the JSON object in markdown code fences or prose;
// the first balanced object found is parsed. Anything unparsable returns
// an ORACLE_MALFORMED error so the caller can fall back.
func ParseScoreMap(raw string, keys []string) (map[string]float64, error) {
	obj, ok := extractObject(raw)
	if !ok {
		return nil, types.NewError(types.ErrOracleMalformed, "no JSON object in oracle output")
	}

	var parsed map[string]float64
	if err := json.Unmarshal([]byte(obj), &parsed); err != nil {
		return nil, types.NewError(types.ErrOracleMalformed, "oracle score map is not numeric").WithCause(err)
	}

	scores := make(map[string]float64, len(keys))
	for _, key := range keys {
		if v, ok := parsed[key]; ok {
			scores[key] = Clamp(v)
		}
	}
	if len(scores) == 0 {
		return nil, types.NewError(types.ErrOracleMalformed, "oracle score map contains no known keys")
	}
	return scores, nil
}

// Clamp forces a score into [0,1].
func Clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// extractObject returns the first balanced {...} block of raw, with any
// markdown code fences stripped first.
func extractObject(raw string) (string, bool) {
	s := raw
	if i := strings.Index(s, "```"); i >= 0 {
		s = s[i+3:]
		s = strings.TrimPrefix(s, "json")
		if j := strings.Index(s, "```"); j >= 0 {
			s = s[:j]
		}
	}

	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
