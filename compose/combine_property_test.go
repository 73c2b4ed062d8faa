package compose

import (
	"fmt"
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/BaSui01/hrflow/types"
)

func TestProperty_CombinedSuccessIsStageConjunction(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("combined success is true iff every stage succeeded", prop.ForAll(
		func(successes []bool) bool {
			if len(successes) == 0 {
				return true
			}
			results := make([]StageResult, len(successes))
			wantSuccess := true
			for i, ok := range successes {
				if !ok {
					wantSuccess = false
				}
				results[i] = StageResult{
					Stage:    fmt.Sprintf("stage_%d", i),
					Response: &types.Response{Success: ok, Message: "m"},
				}
			}
			combined := combine("p", results)
			return combined.Success == wantSuccess
		},
		gen.SliceOf(gen.Bool()),
	))

	properties.Property("confidence is the stage mean with 0.5 for silent stages", prop.ForAll(
		func(confidences []float64, reported []bool) bool {
			n := len(confidences)
			if len(reported) < n {
				n = len(reported)
			}
			if n == 0 {
				return true
			}
			results := make([]StageResult, n)
			sum := 0.0
			for i := 0; i < n; i++ {
				resp := &types.Response{Success: true, Message: "m"}
				if reported[i] {
					resp.Confidence = types.ConfidencePtr(confidences[i])
					sum += confidences[i]
				} else {
					sum += 0.5
				}
				results[i] = StageResult{Stage: fmt.Sprintf("stage_%d", i), Response: resp}
			}
			combined := combine("p", results)
			return math.Abs(combined.ConfidenceOr(-1)-sum/float64(n)) < 1e-9
		},
		gen.SliceOf(gen.Float64Range(0, 1)),
		gen.SliceOf(gen.Bool()),
	))

	properties.Property("next steps never exceed five and keep stage order", prop.ForAll(
		func(counts []int) bool {
			results := make([]StageResult, len(counts))
			var all []string
			for i, count := range counts {
				steps := make([]string, count)
				for j := range steps {
					steps[j] = fmt.Sprintf("s%d_%d", i, j)
				}
				all = append(all, steps...)
				results[i] = StageResult{
					Stage:    fmt.Sprintf("stage_%d", i),
					Response: &types.Response{Success: true, Message: "m", NextSteps: steps},
				}
			}
			combined := combine("p", results)
			if len(combined.NextSteps) > 5 {
				return false
			}
			want := all
			if len(want) > 5 {
				want = want[:5]
			}
			if len(combined.NextSteps) != len(want) {
				return false
			}
			for i := range want {
				if combined.NextSteps[i] != want[i] {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 4)),
	))

	properties.TestingRun(t)
}
