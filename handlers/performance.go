package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/BaSui01/hrflow/handler"
	"github.com/BaSui01/hrflow/notify"
	"github.com/BaSui01/hrflow/persistence"
	"github.com/BaSui01/hrflow/types"
)

// Performance handles review scheduling, goal setting and feedback.
type Performance struct {
	handler.Base
	deps Deps
}

// NewPerformance creates the performance handler.
func NewPerformance(deps Deps) *Performance {
	return &Performance{
		Base: handler.NewBase("performance", "Handles reviews, goals, feedback and development", []string{
			"performance reviews",
			"goal setting",
			"progress tracking",
			"feedback collection",
			"development planning",
			"skill assessment",
			"performance analytics",
			"review scheduling",
			"360 feedback",
			"career development",
		}),
		deps: deps.normalize(),
	}
}

func (h *Performance) Process(ctx context.Context, request string, reqCtx map[string]any) (*types.Response, error) {
	switch {
	case containsAny(request, "schedule", "review"):
		return h.scheduleReview(ctx, request, reqCtx)
	case containsAny(request, "goal", "goals", "objective"):
		return h.setGoals(ctx, request, reqCtx)
	case containsAny(request, "feedback"):
		return h.collectFeedback(request), nil
	default:
		return h.generalInquiry(), nil
	}
}

func (h *Performance) scheduleReview(ctx context.Context, request string, reqCtx map[string]any) (*types.Response, error) {
	employeeID := stringFromCtx(reqCtx, "employee_id")
	if employeeID == "" {
		return types.Failure(
			"Please specify the employee for the performance review.",
			"Provide employee ID", "Pick a review period",
		), nil
	}

	reviewID, err := h.deps.Directory.Create(ctx, persistence.KindReview, map[string]any{
		"employee_id": employeeID,
		"reviewer":    stringFromCtx(reqCtx, "reviewer"),
		"due_date":    stringFromCtx(reqCtx, "due_date"),
		"period":      stringFromCtx(reqCtx, "period"),
	})
	if err != nil {
		return nil, fmt.Errorf("create review record: %w", err)
	}

	if h.deps.Notifier != nil {
		if email := stringFromCtx(reqCtx, "reviewer_email"); email != "" {
			msg := notify.ReviewReminder(email,
				stringFromCtx(reqCtx, "reviewer"),
				stringFromCtx(reqCtx, "employee_name"),
				stringFromCtx(reqCtx, "due_date"),
			)
			if err := h.deps.Notifier.Send(ctx, msg); err != nil {
				h.deps.Logger.Warn("review reminder failed", zap.Error(err))
			}
		}
	}

	return (&types.Response{
		Success:     true,
		Message:     fmt.Sprintf("Performance review scheduled. Review ID: %s", reviewID),
		ActionTaken: "review_scheduled",
		NextSteps:   []string{"Notify the reviewer", "Collect self-assessment", "Gather peer feedback"},
		Confidence:  types.ConfidencePtr(0.9),
	}).WithData("review_id", reviewID), nil
}

func (h *Performance) setGoals(ctx context.Context, request string, reqCtx map[string]any) (*types.Response, error) {
	employeeID := stringFromCtx(reqCtx, "employee_id")
	goals, _ := reqCtx["goals"].([]string)
	if employeeID == "" || len(goals) == 0 {
		return types.Failure(
			"I need the employee and at least one goal to record.",
			"Provide employee ID", "List goals for the period",
		), nil
	}

	err := h.deps.Directory.Update(ctx, persistence.KindEmployee, employeeID, map[string]any{
		"goals": goals,
	})
	if err == persistence.ErrRecordNotFound {
		return types.Failure(fmt.Sprintf("No employee found with ID %s.", employeeID)), nil
	}
	if err != nil {
		return nil, fmt.Errorf("record goals: %w", err)
	}

	return (&types.Response{
		Success:     true,
		Message:     fmt.Sprintf("Recorded %d goal(s) for employee %s.", len(goals), employeeID),
		ActionTaken: "goals_set",
		NextSteps:   []string{"Schedule a progress check-in", "Share goals with the manager"},
		Confidence:  types.ConfidencePtr(0.85),
	}).WithData("goals", goals), nil
}

func (h *Performance) collectFeedback(request string) *types.Response {
	return &types.Response{
		Success:     true,
		Message:     "I can collect 360 feedback for an employee. Tell me who the feedback is for and who should be asked.",
		ActionTaken: "feedback_requested",
		NextSteps:   []string{"Name the employee", "List reviewers", "Set a deadline"},
		Confidence:  types.ConfidencePtr(0.7),
	}
}

func (h *Performance) generalInquiry() *types.Response {
	return &types.Response{
		Success:     true,
		Message:     "I can schedule performance reviews, record goals and collect feedback.",
		ActionTaken: "general_inquiry",
		NextSteps:   []string{"Schedule a review", "Set goals for an employee"},
		Confidence:  types.ConfidencePtr(0.5),
	}
}
