package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/BaSui01/hrflow/handler"
	"github.com/BaSui01/hrflow/notify"
	"github.com/BaSui01/hrflow/oracle"
	"github.com/BaSui01/hrflow/persistence"
	"github.com/BaSui01/hrflow/types"
)

// Recruitment handles hiring requests: job postings, candidate
// screening and interview scheduling.
type Recruitment struct {
	handler.Base
	deps Deps
}

// NewRecruitment creates the recruitment handler.
func NewRecruitment(deps Deps) *Recruitment {
	return &Recruitment{
		Base: handler.NewBase("recruitment", "Handles hiring, candidates, job postings and interviews", []string{
			"job posting",
			"candidate screening",
			"resume analysis",
			"interview scheduling",
			"skill matching",
			"candidate ranking",
			"application tracking",
			"reference checking",
			"offer management",
		}),
		deps: deps.normalize(),
	}
}

func (h *Recruitment) Process(ctx context.Context, request string, reqCtx map[string]any) (*types.Response, error) {
	switch {
	case containsAny(request, "post", "job opening", "open a position", "create a job"):
		return h.createJobPosting(ctx, request, reqCtx)
	case containsAny(request, "screen", "resume", "cv"):
		return h.screenCandidate(ctx, request, reqCtx)
	case containsAny(request, "schedule", "interview"):
		return h.scheduleInterview(ctx, request, reqCtx)
	default:
		return h.generalInquiry(request), nil
	}
}

func (h *Recruitment) createJobPosting(ctx context.Context, request string, reqCtx map[string]any) (*types.Response, error) {
	title := stringFromCtx(reqCtx, "job_title")
	if title == "" {
		return types.Failure(
			"I need more information to create a job posting. Please provide the job title and requirements.",
			"Provide job title", "Add job description", "List requirements",
		), nil
	}

	jobID, err := h.deps.Directory.Create(ctx, persistence.KindJob, map[string]any{
		"title":       title,
		"description": stringFromCtx(reqCtx, "job_description"),
		"department":  stringFromCtx(reqCtx, "department"),
	})
	if err != nil {
		return nil, fmt.Errorf("create job posting: %w", err)
	}

	h.deps.Logger.Info("job posting created", zap.String("job_id", jobID), zap.String("title", title))
	return (&types.Response{
		Success:     true,
		Message:     fmt.Sprintf("Job posting created successfully! Job ID: %s", jobID),
		ActionTaken: "job_posting_created",
		NextSteps:   []string{"Review posting", "Publish to job boards", "Set up candidate pipeline"},
		Confidence:  types.ConfidencePtr(0.9),
	}).WithData("job_id", jobID), nil
}

func (h *Recruitment) screenCandidate(ctx context.Context, request string, reqCtx map[string]any) (*types.Response, error) {
	name := stringFromCtx(reqCtx, "candidate_name")
	if name == "" {
		return types.Failure(
			"Please provide candidate details for screening.",
			"Provide candidate name", "Attach resume text", "Specify job position",
		), nil
	}

	resume := stringFromCtx(reqCtx, "resume_text")
	record := map[string]any{
		"name":   name,
		"email":  stringFromCtx(reqCtx, "candidate_email"),
		"job_id": stringFromCtx(reqCtx, "job_id"),
		"resume": resume,
	}

	analysis := h.analyzeResume(ctx, name, resume)
	if analysis != "" {
		record["screening_notes"] = analysis
	}

	candidateID, err := h.deps.Directory.Create(ctx, persistence.KindCandidate, record)
	if err != nil {
		return nil, fmt.Errorf("store candidate: %w", err)
	}

	resp := (&types.Response{
		Success:     true,
		Message:     fmt.Sprintf("Candidate %s recorded and queued for screening.", name),
		ActionTaken: "candidate_screened",
		NextSteps:   []string{"Run screening workflow", "Review screening results"},
		Confidence:  types.ConfidencePtr(0.85),
	}).WithData("candidate_id", candidateID)
	if analysis != "" {
		resp = resp.WithData("screening_notes", analysis)
	}
	return resp, nil
}

// analyzeResume asks the oracle for a short first-pass read of the
// resume. Returns "" when no oracle is configured, there is no resume
// text, or the call fails; screening still proceeds on record creation.
func (h *Recruitment) analyzeResume(ctx context.Context, name, resume string) string {
	if h.deps.Oracle == nil || resume == "" {
		return ""
	}
	prompt := fmt.Sprintf("Give a three-sentence first-pass assessment of this resume for candidate %s:\n\n%s", name, resume)
	analysis, err := h.deps.Oracle.Complete(ctx, prompt, &oracle.Options{
		System:      "You are an HR screening assistant. Be factual and brief.",
		Temperature: 0.3,
		MaxTokens:   256,
	})
	if err != nil {
		h.deps.Logger.Warn("resume analysis unavailable", zap.Error(err))
		return ""
	}
	return analysis
}

func (h *Recruitment) scheduleInterview(ctx context.Context, request string, reqCtx map[string]any) (*types.Response, error) {
	candidateID := stringFromCtx(reqCtx, "candidate_id")
	if candidateID == "" {
		return types.Failure(
			"Please specify the candidate for interview scheduling.",
			"Provide candidate ID", "Select interviewers", "Choose time slots",
		), nil
	}

	interviewID, err := h.deps.Directory.Create(ctx, persistence.KindInterview, map[string]any{
		"candidate_id": candidateID,
		"date":         stringFromCtx(reqCtx, "interview_date"),
		"time":         stringFromCtx(reqCtx, "interview_time"),
		"interviewer":  stringFromCtx(reqCtx, "interviewer"),
		"position":     stringFromCtx(reqCtx, "position"),
	})
	if err != nil {
		return nil, fmt.Errorf("schedule interview: %w", err)
	}

	if h.deps.Notifier != nil {
		if email := stringFromCtx(reqCtx, "candidate_email"); email != "" {
			msg := notify.InterviewInvitation(email,
				stringFromCtx(reqCtx, "candidate_name"),
				stringFromCtx(reqCtx, "position"),
				stringFromCtx(reqCtx, "interview_date"),
				stringFromCtx(reqCtx, "interview_time"),
				stringFromCtx(reqCtx, "location"),
				stringFromCtx(reqCtx, "interviewer"),
			)
			if err := h.deps.Notifier.Send(ctx, msg); err != nil {
				h.deps.Logger.Warn("interview invitation failed", zap.Error(err))
			}
		}
	}

	return (&types.Response{
		Success:     true,
		Message:     fmt.Sprintf("Interview scheduled. Interview ID: %s", interviewID),
		ActionTaken: "interview_scheduled",
		NextSteps:   []string{"Confirm with interviewers", "Send calendar invites", "Prepare interview questions"},
		Confidence:  types.ConfidencePtr(0.9),
	}).WithData("interview_id", interviewID), nil
}

func (h *Recruitment) generalInquiry(request string) *types.Response {
	return &types.Response{
		Success:     true,
		Message:     "I can help with job postings, candidate screening, interview scheduling and offer management. What would you like to do?",
		ActionTaken: "general_inquiry",
		NextSteps:   []string{"Create a job posting", "Screen a candidate", "Schedule an interview"},
		Confidence:  types.ConfidencePtr(0.5),
	}
}
