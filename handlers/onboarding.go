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

// StandardOnboardingTasks is the default checklist for a new hire.
var StandardOnboardingTasks = []string{
	"Complete I-9 form",
	"Submit tax documents",
	"Review employee handbook",
	"Set up workspace",
	"IT equipment assignment",
	"Benefits enrollment",
	"Department introduction",
}

// Onboarding handles new hire processes: checklists, welcome materials
// and progress tracking.
type Onboarding struct {
	handler.Base
	deps Deps
}

// NewOnboarding creates the onboarding handler.
func NewOnboarding(deps Deps) *Onboarding {
	return &Onboarding{
		Base: handler.NewBase("onboarding", "Handles new hire processes, documentation and orientation", []string{
			"new hire onboarding",
			"document collection",
			"task assignment",
			"checklist management",
			"welcome materials",
			"training scheduling",
			"equipment requests",
			"system access setup",
			"orientation planning",
			"progress tracking",
		}),
		deps: deps.normalize(),
	}
}

func (h *Onboarding) Process(ctx context.Context, request string, reqCtx map[string]any) (*types.Response, error) {
	switch {
	case containsAny(request, "start onboarding", "begin onboarding", "onboard", "new hire"):
		return h.startOnboarding(ctx, request, reqCtx)
	case containsAny(request, "checklist", "progress", "status"):
		return h.checkProgress(ctx, request, reqCtx)
	default:
		return h.generalInquiry(), nil
	}
}

func (h *Onboarding) startOnboarding(ctx context.Context, request string, reqCtx map[string]any) (*types.Response, error) {
	name := stringFromCtx(reqCtx, "employee_name")
	if name == "" {
		// A composed pipeline hands the hire over from recruitment.
		if prev, ok := reqCtx["recruitment_results"].(map[string]any); ok {
			name, _ = prev["candidate_name"].(string)
		}
	}
	if name == "" {
		return types.Failure(
			"I need the new hire's details to start onboarding.",
			"Provide employee name", "Provide start date", "Assign a manager",
		), nil
	}

	checklist := make([]map[string]any, 0, len(StandardOnboardingTasks))
	for _, task := range StandardOnboardingTasks {
		checklist = append(checklist, map[string]any{"task": task, "status": "pending"})
	}

	onboardingID, err := h.deps.Directory.Create(ctx, persistence.KindOnboarding, map[string]any{
		"employee_name": name,
		"start_date":    stringFromCtx(reqCtx, "start_date"),
		"checklist":     checklist,
	})
	if err != nil {
		return nil, fmt.Errorf("create onboarding record: %w", err)
	}

	if h.deps.Notifier != nil {
		if email := stringFromCtx(reqCtx, "employee_email"); email != "" {
			company := stringFromCtx(reqCtx, "company")
			if company == "" {
				company = "the company"
			}
			msg := notify.OnboardingChecklist(email, name, company, StandardOnboardingTasks)
			if err := h.deps.Notifier.Send(ctx, msg); err != nil {
				h.deps.Logger.Warn("onboarding checklist mail failed", zap.Error(err))
			}
		}
	}

	h.deps.Logger.Info("onboarding started",
		zap.String("onboarding_id", onboardingID),
		zap.String("employee", name),
	)
	return (&types.Response{
		Success:     true,
		Message:     fmt.Sprintf("Onboarding started for %s with %d checklist tasks.", name, len(StandardOnboardingTasks)),
		ActionTaken: "onboarding_started",
		NextSteps:   []string{"Assign onboarding buddy", "Schedule orientation", "Track checklist completion"},
		Confidence:  types.ConfidencePtr(0.9),
	}).WithData("onboarding_id", onboardingID), nil
}

func (h *Onboarding) checkProgress(ctx context.Context, request string, reqCtx map[string]any) (*types.Response, error) {
	onboardingID := stringFromCtx(reqCtx, "onboarding_id")
	if onboardingID == "" {
		return types.Failure(
			"Please provide the onboarding record to check.",
			"Provide onboarding ID",
		), nil
	}

	rec, err := h.deps.Directory.Get(ctx, persistence.KindOnboarding, onboardingID)
	if err == persistence.ErrRecordNotFound {
		return types.Failure(fmt.Sprintf("No onboarding record found for ID %s.", onboardingID)), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load onboarding record: %w", err)
	}

	pending := 0
	if checklist, ok := rec["checklist"].([]any); ok {
		for _, item := range checklist {
			if m, ok := item.(map[string]any); ok && m["status"] == "pending" {
				pending++
			}
		}
	} else if checklist, ok := rec["checklist"].([]map[string]any); ok {
		for _, m := range checklist {
			if m["status"] == "pending" {
				pending++
			}
		}
	}

	return (&types.Response{
		Success:     true,
		Message:     fmt.Sprintf("Onboarding %s has %d pending tasks.", onboardingID, pending),
		ActionTaken: "onboarding_progress_checked",
		Confidence:  types.ConfidencePtr(0.85),
	}).WithData("pending_tasks", pending), nil
}

func (h *Onboarding) generalInquiry() *types.Response {
	return &types.Response{
		Success:     true,
		Message:     "I can start onboarding for a new hire, send welcome materials and track checklist progress.",
		ActionTaken: "general_inquiry",
		NextSteps:   []string{"Start onboarding for a new hire", "Check onboarding progress"},
		Confidence:  types.ConfidencePtr(0.5),
	}
}
