package workflows

import (
	"time"

	"github.com/BaSui01/hrflow/workflow"
)

// Workflow type names registered by Graphs.
const (
	TypeCandidateScreening = "candidate_screening"
	TypeInterviewProcess   = "interview_process"
	TypeEmployeeOnboarding = "employee_onboarding"
	TypePerformanceReview  = "performance_review"
)

// CandidateScreeningGraph screens a candidate and routes on the
// analysis: proceed schedules an interview, reject notifies the
// candidate and anything else lands in manual review.
func CandidateScreeningGraph(n *Nodes) *workflow.Graph {
	return workflow.NewGraphBuilder(TypeCandidateScreening).
		AddNode("screen_candidate", n.ScreenCandidate).
		WithRetry("screen_candidate", 3, 500*time.Millisecond).
		AddNode("schedule_interview", n.ScheduleInterview).
		AddNode("send_rejection", n.Notify).
		AddNode("needs_review", n.Notify).
		AddConditionalEdge("screen_candidate", ScreeningDecision, map[string]string{
			"schedule_interview": "schedule_interview",
			"send_rejection":     "send_rejection",
			"needs_review":       "needs_review",
		}).
		AddEdge("schedule_interview", workflow.Terminal).
		AddEdge("send_rejection", workflow.Terminal).
		AddEdge("needs_review", workflow.Terminal).
		SetEntry("screen_candidate").
		MustBuild()
}

// InterviewProcessGraph schedules the interview and routes on the
// recorded hiring decision.
func InterviewProcessGraph(n *Nodes) *workflow.Graph {
	return workflow.NewGraphBuilder(TypeInterviewProcess).
		AddNode("conduct_interview", n.ScheduleInterview).
		AddNode("start_onboarding", n.InitiateOnboarding).
		AddNode("send_rejection", n.Notify).
		AddConditionalEdge("conduct_interview", InterviewDecision, map[string]string{
			"start_onboarding": "start_onboarding",
			"send_rejection":   "send_rejection",
		}).
		AddEdge("start_onboarding", workflow.Terminal).
		AddEdge("send_rejection", workflow.Terminal).
		SetEntry("conduct_interview").
		MustBuild()
}

// EmployeeOnboardingGraph sets up the onboarding checklist and sends
// the welcome mail.
func EmployeeOnboardingGraph(n *Nodes) *workflow.Graph {
	return workflow.NewGraphBuilder(TypeEmployeeOnboarding).
		AddNode("initiate_onboarding", n.InitiateOnboarding).
		AddNode("send_welcome", n.Notify).
		AddEdge("initiate_onboarding", "send_welcome").
		AddEdge("send_welcome", workflow.Terminal).
		SetEntry("initiate_onboarding").
		MustBuild()
}

// PerformanceReviewGraph creates the review record and notifies the
// participants.
func PerformanceReviewGraph(n *Nodes) *workflow.Graph {
	return workflow.NewGraphBuilder(TypePerformanceReview).
		AddNode("create_review", n.CreateReview).
		AddNode("notify_completion", n.Notify).
		AddEdge("create_review", "notify_completion").
		AddEdge("notify_completion", workflow.Terminal).
		SetEntry("create_review").
		MustBuild()
}

// Graphs returns all built-in workflow graphs, ready to register with
// an engine.
func Graphs(n *Nodes) []*workflow.Graph {
	return []*workflow.Graph{
		CandidateScreeningGraph(n),
		InterviewProcessGraph(n),
		EmployeeOnboardingGraph(n),
		PerformanceReviewGraph(n),
	}
}
