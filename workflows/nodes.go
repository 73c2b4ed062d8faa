// Package workflows defines the built-in HR workflow graphs and their
// node implementations: candidate screening, interview process,
// employee onboarding and performance review.
package workflows

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/hrflow/handlers"
	"github.com/BaSui01/hrflow/notify"
	"github.com/BaSui01/hrflow/oracle"
	"github.com/BaSui01/hrflow/persistence"
	"github.com/BaSui01/hrflow/workflow"
)

// Nodes bundles the collaborators the workflow node functions use.
// Oracle and Notifier may be nil; the affected steps then degrade to
// recorded decisions without external calls.
type Nodes struct {
	dir      persistence.Directory
	notifier notify.Notifier
	oracle   oracle.Oracle
	logger   *zap.Logger
}

// NewNodes creates the node set.
func NewNodes(dir persistence.Directory, notifier notify.Notifier, o oracle.Oracle, logger *zap.Logger) *Nodes {
	if dir == nil {
		dir = persistence.NewMemoryDirectory()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Nodes{dir: dir, notifier: notifier, oracle: o, logger: logger}
}

// ScreenCandidate evaluates the candidate on state.CandidateID and
// stores the analysis in state.ScreeningResults. Without an oracle the
// candidate is marked for manual review.
func (n *Nodes) ScreenCandidate(ctx context.Context, state *workflow.State) error {
	if state.CandidateID == "" {
		return fmt.Errorf("no candidate id provided for screening")
	}

	candidate, err := n.dir.Get(ctx, persistence.KindCandidate, state.CandidateID)
	if err == persistence.ErrRecordNotFound {
		return fmt.Errorf("candidate %s not found", state.CandidateID)
	}
	if err != nil {
		return fmt.Errorf("load candidate %s: %w", state.CandidateID, err)
	}

	analysis := "recommendation: needs_review (no screening oracle configured)"
	if n.oracle != nil {
		prompt := buildScreeningPrompt(candidate, state.Metadata)
		reply, err := n.oracle.Complete(ctx, prompt, &oracle.Options{
			System:      "You screen job candidates. Reply with a JSON object containing score (0-100), strengths, concerns, recommendation (proceed, reject or needs_review) and reasoning.",
			Temperature: 0.3,
			MaxTokens:   1024,
		})
		if err != nil {
			return fmt.Errorf("screening oracle: %w", err)
		}
		analysis = reply
	}

	state.ScreeningResults = map[string]any{
		"candidate_id": state.CandidateID,
		"ai_analysis":  analysis,
		"screener":     "oracle",
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
	}
	name, _ := candidate["name"].(string)
	if name == "" {
		name = state.CandidateID
	}
	state.AddMessage("screening", fmt.Sprintf("Candidate %s screened", name))

	n.logger.Info("candidate screened", zap.String("candidate_id", state.CandidateID))
	return nil
}

func buildScreeningPrompt(candidate map[string]any, metadata map[string]any) string {
	var b strings.Builder
	b.WriteString("Screen this candidate for the position:\n\n")
	fields := []struct{ key, label string }{
		{"name", "Name"},
		{"experience", "Experience"},
		{"skills", "Skills"},
		{"education", "Education"},
		{"resume", "Resume"},
	}
	for _, f := range fields {
		if v, ok := candidate[f.key]; ok {
			fmt.Fprintf(&b, "%s: %v\n", f.label, v)
		}
	}
	requirements := "General requirements"
	if v, ok := metadata["job_requirements"].(string); ok && v != "" {
		requirements = v
	}
	fmt.Fprintf(&b, "\nJob Requirements: %s\n", requirements)
	b.WriteString("\nReturn JSON with score (0-100), strengths, concerns, recommendation (proceed, reject or needs_review) and reasoning.")
	return b.String()
}

// ScreeningDecision routes after screening on the analysis text.
func ScreeningDecision(state *workflow.State) string {
	analysis, _ := state.ScreeningResults["ai_analysis"].(string)
	lower := strings.ToLower(analysis)
	switch {
	case strings.Contains(lower, "reject"):
		return "send_rejection"
	case strings.Contains(lower, "proceed"):
		return "schedule_interview"
	default:
		return "needs_review"
	}
}

// ScheduleInterview creates an interview record for the screened
// candidate and invites them.
func (n *Nodes) ScheduleInterview(ctx context.Context, state *workflow.State) error {
	if len(state.ScreeningResults) == 0 && state.CandidateID == "" {
		return fmt.Errorf("no screening results available for interview scheduling")
	}
	candidateID := state.CandidateID
	if v, ok := state.ScreeningResults["candidate_id"].(string); ok && v != "" {
		candidateID = v
	}

	interviewID, err := n.dir.Create(ctx, persistence.KindInterview, map[string]any{
		"candidate_id": candidateID,
		"job_id":       state.JobID,
		"type":         "initial_screening",
		"notes":        "Generated from screening workflow",
	})
	if err != nil {
		return fmt.Errorf("create interview: %w", err)
	}
	state.InterviewID = interviewID

	candidate, err := n.dir.Get(ctx, persistence.KindCandidate, candidateID)
	if err == nil {
		n.sendCandidateMail(ctx, state, candidate, "interview_invitation")
	}

	state.AddMessage("scheduling", fmt.Sprintf("Interview scheduled for candidate %s", candidateID))
	n.logger.Info("interview scheduled",
		zap.String("candidate_id", candidateID),
		zap.String("interview_id", interviewID),
	)
	return nil
}

// InterviewDecision routes after an interview on the recorded decision.
func InterviewDecision(state *workflow.State) string {
	decision, _ := state.InterviewResults["decision"].(string)
	if strings.Contains(strings.ToLower(decision), "hire") {
		return "start_onboarding"
	}
	return "send_rejection"
}

// InitiateOnboarding creates the onboarding record and checklist for
// state.EmployeeID.
func (n *Nodes) InitiateOnboarding(ctx context.Context, state *workflow.State) error {
	if state.EmployeeID == "" {
		return fmt.Errorf("no employee id provided for onboarding")
	}

	employee, err := n.dir.Get(ctx, persistence.KindEmployee, state.EmployeeID)
	if err == persistence.ErrRecordNotFound {
		return fmt.Errorf("employee %s not found", state.EmployeeID)
	}
	if err != nil {
		return fmt.Errorf("load employee %s: %w", state.EmployeeID, err)
	}

	checklist := make([]workflow.ChecklistItem, 0, len(handlers.StandardOnboardingTasks))
	records := make([]map[string]any, 0, len(handlers.StandardOnboardingTasks))
	for _, task := range handlers.StandardOnboardingTasks {
		checklist = append(checklist, workflow.ChecklistItem{Task: task, Status: "pending"})
		records = append(records, map[string]any{"task": task, "status": "pending"})
	}

	onboardingID, err := n.dir.Create(ctx, persistence.KindOnboarding, map[string]any{
		"employee_id": state.EmployeeID,
		"checklist":   records,
		"started_at":  time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("create onboarding record: %w", err)
	}

	state.OnboardingChecklist = checklist
	if state.Metadata == nil {
		state.Metadata = make(map[string]any)
	}
	state.Metadata["onboarding_id"] = onboardingID

	name, _ := employee["name"].(string)
	if name == "" {
		name = state.EmployeeID
	}
	state.AddMessage("onboarding", fmt.Sprintf("Onboarding initiated for employee %s", name))
	n.logger.Info("onboarding initiated", zap.String("employee_id", state.EmployeeID))
	return nil
}

// CreateReview creates a performance review record for
// state.EmployeeID.
func (n *Nodes) CreateReview(ctx context.Context, state *workflow.State) error {
	if state.EmployeeID == "" {
		return fmt.Errorf("no employee id provided for performance review")
	}

	employee, err := n.dir.Get(ctx, persistence.KindEmployee, state.EmployeeID)
	if err == persistence.ErrRecordNotFound {
		return fmt.Errorf("employee %s not found", state.EmployeeID)
	}
	if err != nil {
		return fmt.Errorf("load employee %s: %w", state.EmployeeID, err)
	}

	period := "annual"
	if v, ok := state.Metadata["review_period"].(string); ok && v != "" {
		period = v
	}
	reviewID, err := n.dir.Create(ctx, persistence.KindReview, map[string]any{
		"employee_id":   state.EmployeeID,
		"reviewer_id":   state.Metadata["reviewer_id"],
		"review_period": period,
	})
	if err != nil {
		return fmt.Errorf("create review record: %w", err)
	}
	state.ReviewID = reviewID

	if email, _ := employee["email"].(string); email != "" && n.notifier != nil {
		name, _ := employee["name"].(string)
		due, _ := state.Metadata["due_date"].(string)
		msg := notify.ReviewReminder(email, name, name, due)
		if err := n.notifier.Send(ctx, msg); err != nil {
			n.logger.Warn("review notification failed", zap.Error(err))
		} else {
			state.RecordNotification("performance_review", email)
		}
	}

	name, _ := employee["name"].(string)
	if name == "" {
		name = state.EmployeeID
	}
	state.AddMessage("performance_review", fmt.Sprintf("Performance review created for employee %s", name))
	n.logger.Info("performance review created",
		zap.String("employee_id", state.EmployeeID),
		zap.String("review_id", reviewID),
	)
	return nil
}

// Notify sends the notification matching the current step:
// send_welcome, send_rejection, needs_review or notify_completion.
func (n *Nodes) Notify(ctx context.Context, state *workflow.State) error {
	switch state.CurrentStep {
	case "send_welcome":
		if state.EmployeeID == "" {
			return nil
		}
		employee, err := n.dir.Get(ctx, persistence.KindEmployee, state.EmployeeID)
		if err != nil {
			return fmt.Errorf("load employee %s: %w", state.EmployeeID, err)
		}
		n.sendEmployeeMail(ctx, state, employee, "welcome")

	case "send_rejection":
		if state.CandidateID == "" {
			return nil
		}
		candidate, err := n.dir.Get(ctx, persistence.KindCandidate, state.CandidateID)
		if err != nil {
			return fmt.Errorf("load candidate %s: %w", state.CandidateID, err)
		}
		n.sendCandidateMail(ctx, state, candidate, "rejection")

	case "needs_review":
		state.AddMessage("decision", "Candidate flagged for manual review")

	case "notify_completion":
		state.AddMessage("completion", "Workflow completed successfully")
	}
	return nil
}

func (n *Nodes) sendCandidateMail(ctx context.Context, state *workflow.State, candidate map[string]any, kind string) {
	email, _ := candidate["email"].(string)
	if email == "" || n.notifier == nil {
		return
	}
	name, _ := candidate["name"].(string)
	position, _ := state.Metadata["position"].(string)

	var msg *notify.Message
	switch kind {
	case "rejection":
		msg = notify.RejectionNotice(email, name, position)
	default:
		date, _ := state.Metadata["interview_date"].(string)
		timeSlot, _ := state.Metadata["interview_time"].(string)
		location, _ := state.Metadata["location"].(string)
		interviewer, _ := state.Metadata["interviewer"].(string)
		msg = notify.InterviewInvitation(email, name, position, date, timeSlot, location, interviewer)
	}
	if err := n.notifier.Send(ctx, msg); err != nil {
		n.logger.Warn("candidate notification failed", zap.String("kind", kind), zap.Error(err))
		return
	}
	state.RecordNotification(kind, email)
}

func (n *Nodes) sendEmployeeMail(ctx context.Context, state *workflow.State, employee map[string]any, kind string) {
	email, _ := employee["email"].(string)
	if email == "" || n.notifier == nil {
		return
	}
	name, _ := employee["name"].(string)
	company, _ := state.Metadata["company"].(string)
	if company == "" {
		company = "the company"
	}
	startDate, _ := employee["start_date"].(string)

	msg := notify.WelcomeEmail(email, name, company, startDate)
	if err := n.notifier.Send(ctx, msg); err != nil {
		n.logger.Warn("employee notification failed", zap.String("kind", kind), zap.Error(err))
		return
	}
	state.RecordNotification(kind, email)
}
