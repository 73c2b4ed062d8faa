package compose

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/hrflow/handler"
	"github.com/BaSui01/hrflow/routing"
	"github.com/BaSui01/hrflow/types"
)

type stageHandler struct {
	handler.Base
	respond func(reqCtx map[string]any) (*types.Response, error)
}

func newStageHandler(name string, respond func(reqCtx map[string]any) (*types.Response, error)) *stageHandler {
	return &stageHandler{
		Base:    handler.NewBase(name, name+" stage", []string{name}),
		respond: respond,
	}
}

func (s *stageHandler) Process(ctx context.Context, request string, reqCtx map[string]any) (*types.Response, error) {
	return s.respond(reqCtx)
}

func newComposer(t *testing.T, handlers ...handler.Handler) *Composer {
	t.Helper()
	reg, err := handler.NewRegistry(handlers...)
	require.NoError(t, err)
	router, err := routing.NewRouter(reg, routing.NewEvaluator(nil))
	require.NoError(t, err)
	c, err := NewComposer(reg, router)
	require.NoError(t, err)
	return c
}

func okResponse(message string, data map[string]any, confidence float64, nextSteps ...string) func(map[string]any) (*types.Response, error) {
	return func(map[string]any) (*types.Response, error) {
		return &types.Response{
			Success:    true,
			Message:    message,
			Data:       data,
			NextSteps:  nextSteps,
			Confidence: types.ConfidencePtr(confidence),
		}, nil
	}
}

func TestComposer_HireAndOnboard(t *testing.T) {
	t.Parallel()

	var onboardingSaw map[string]any
	recruitment := newStageHandler("recruitment",
		okResponse("Offer extended to Dana Reyes", map[string]any{"candidate_id": "c-7"}, 0.9, "Collect signed offer"))
	onboarding := newStageHandler("onboarding", func(reqCtx map[string]any) (*types.Response, error) {
		onboardingSaw = reqCtx
		return &types.Response{
			Success:    true,
			Message:    "Onboarding checklist created",
			Confidence: types.ConfidencePtr(0.7),
			NextSteps:  []string{"Assign a buddy"},
		}, nil
	})
	performance := newStageHandler("performance", okResponse("unused", nil, 0.5))

	c := newComposer(t, recruitment, onboarding, performance)
	resp, err := c.Run(context.Background(), "Please hire and onboard Dana Reyes", map[string]any{"requester": "hr-lead"})
	require.NoError(t, err)

	assert.True(t, resp.Success)
	lines := strings.Split(resp.Message, "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Recruitment: Offer extended to Dana Reyes", lines[0])
	assert.Equal(t, "Onboarding: Onboarding checklist created", lines[1])
	assert.Equal(t, "multi_handler_workflow_completed", resp.ActionTaken)
	assert.Equal(t, []string{"Collect signed offer", "Assign a buddy"}, resp.NextSteps)
	assert.InDelta(t, 0.8, resp.ConfidenceOr(0), 1e-9)

	// The recruitment stage's data reaches onboarding via the context.
	require.NotNil(t, onboardingSaw)
	assert.Equal(t, "hr-lead", onboardingSaw["requester"])
	assert.Equal(t, map[string]any{"candidate_id": "c-7"}, onboardingSaw["recruitment_results"])
	assert.Equal(t, "recruitment_completion", onboardingSaw["triggered_by"])
}

func TestComposer_FailedStage(t *testing.T) {
	t.Parallel()

	recruitment := newStageHandler("recruitment", func(map[string]any) (*types.Response, error) {
		return types.Failure("no matching candidates"), nil
	})
	var onboardingCtx map[string]any
	onboarding := newStageHandler("onboarding", func(reqCtx map[string]any) (*types.Response, error) {
		onboardingCtx = reqCtx
		return &types.Response{Success: true, Message: "checklist ready"}, nil
	})

	c := newComposer(t, recruitment, onboarding)
	resp, err := c.Run(context.Background(), "hire and onboard someone", nil)
	require.NoError(t, err)

	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "Recruitment: Failed - no matching candidates")
	assert.Contains(t, resp.Message, "Onboarding: checklist ready")
	assert.Equal(t, "multi_handler_workflow_partial", resp.ActionTaken)

	// A failed stage must not feed data forward.
	require.NotNil(t, onboardingCtx)
	assert.NotContains(t, onboardingCtx, "recruitment_results")
}

func TestComposer_StageErrorBecomesFailure(t *testing.T) {
	t.Parallel()

	recruitment := newStageHandler("recruitment", func(map[string]any) (*types.Response, error) {
		return nil, errors.New("ats connection refused")
	})
	onboarding := newStageHandler("onboarding", okResponse("ready", nil, 0.6))

	c := newComposer(t, recruitment, onboarding)
	resp, err := c.Run(context.Background(), "hire and onboard someone", nil)
	require.NoError(t, err)

	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "Recruitment: Failed - ats connection refused")
}

func TestComposer_FallbackToSingleHandler(t *testing.T) {
	t.Parallel()

	recruitment := newStageHandler("recruitment", okResponse("interview scheduled", nil, 0.9))
	onboarding := newStageHandler("onboarding", okResponse("unused", nil, 0.5))
	performance := newStageHandler("performance", okResponse("unused", nil, 0.5))

	c := newComposer(t, recruitment, onboarding, performance)
	resp, err := c.Run(context.Background(), "schedule an interview with the recruitment team", nil)
	require.NoError(t, err)
	assert.Equal(t, "interview scheduled", resp.Message)
}

func TestComposer_NextStepsCapped(t *testing.T) {
	t.Parallel()

	recruitment := newStageHandler("recruitment",
		okResponse("done", nil, 0.5, "r1", "r2", "r3", "r4"))
	onboarding := newStageHandler("onboarding",
		okResponse("done", nil, 0.5, "o1", "o2", "o3"))

	c := newComposer(t, recruitment, onboarding)
	resp, err := c.Run(context.Background(), "hire and onboard", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"r1", "r2", "r3", "r4", "o1"}, resp.NextSteps)
}

func TestComposer_UnknownStageIsConfigError(t *testing.T) {
	t.Parallel()

	reg, err := handler.NewRegistry(newStageHandler("recruitment", okResponse("x", nil, 0.5)))
	require.NoError(t, err)
	router, err := routing.NewRouter(reg, routing.NewEvaluator(nil))
	require.NoError(t, err)

	_, err = NewComposer(reg, router, WithPipelines([]Pipeline{
		{ID: "broken", Stages: []string{"recruitment", "ghost"}, Triggers: []string{"x"}},
	}))
	assert.True(t, types.IsConfigError(err))
}

func TestStageTitle(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Recruitment", stageTitle("recruitment"))
	assert.Equal(t, "Employee Management", stageTitle("employee_management"))
}
