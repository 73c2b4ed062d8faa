package workflow

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle status of one workflow execution.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	// StatusPaused is reserved for future suspend support. The engine never
	// sets it.
	StatusPaused    Status = "paused"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether s is a final status.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// Message is one entry in the ordered execution log of a run.
type Message struct {
	Kind      string    `json:"kind"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ChecklistItem is a single onboarding task.
type ChecklistItem struct {
	Task    string `json:"task"`
	Status  string `json:"status"`
	DueDate string `json:"due_date,omitempty"`
}

// NotificationRecord records one notification sent during a run.
type NotificationRecord struct {
	Kind      string    `json:"kind"`
	Recipient string    `json:"recipient"`
	Timestamp time.Time `json:"timestamp"`
}

// State is the shared mutable state of one workflow execution. Exactly one
// execution owns a State at a time; it is never shared across thread ids.
type State struct {
	WorkflowType string `json:"workflow_type"`
	ExecutionID  string `json:"execution_id"`
	CurrentStep  string `json:"current_step"`
	Status       Status `json:"status"`

	CandidateID string `json:"candidate_id,omitempty"`
	EmployeeID  string `json:"employee_id,omitempty"`
	JobID       string `json:"job_id,omitempty"`
	InterviewID string `json:"interview_id,omitempty"`
	ReviewID    string `json:"review_id,omitempty"`

	Messages  []Message         `json:"messages"`
	Decisions map[string]string `json:"decisions"`
	Metadata  map[string]any    `json:"metadata"`

	ScreeningResults    map[string]any       `json:"screening_results,omitempty"`
	InterviewResults    map[string]any       `json:"interview_results,omitempty"`
	OnboardingChecklist []ChecklistItem      `json:"onboarding_checklist,omitempty"`
	NotificationsSent   []NotificationRecord `json:"notifications_sent"`

	// Errors is append-only and never cleared mid-run.
	Errors     []string `json:"errors"`
	RetryCount int      `json:"retry_count"`

	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// NewState creates an empty running State for one execution. A zero
// threadID gets a generated id.
func NewState(workflowType, threadID string) *State {
	if threadID == "" {
		threadID = uuid.NewString()
	}
	return &State{
		WorkflowType: workflowType,
		ExecutionID:  threadID,
		Status:       StatusRunning,
		Decisions:    make(map[string]string),
		Metadata:     make(map[string]any),
		StartedAt:    time.Now().UTC(),
	}
}

// normalize fills the identity and bookkeeping fields on a caller-supplied
// seed state so node functions never see nil maps.
func (s *State) normalize(workflowType, threadID string) {
	s.WorkflowType = workflowType
	if threadID != "" {
		s.ExecutionID = threadID
	}
	if s.ExecutionID == "" {
		s.ExecutionID = uuid.NewString()
	}
	if s.Decisions == nil {
		s.Decisions = make(map[string]string)
	}
	if s.Metadata == nil {
		s.Metadata = make(map[string]any)
	}
	if s.StartedAt.IsZero() {
		s.StartedAt = time.Now().UTC()
	}
	s.Status = StatusRunning
	s.CompletedAt = nil
}

// AddMessage appends an entry to the execution log.
func (s *State) AddMessage(kind, content string) {
	s.Messages = append(s.Messages, Message{
		Kind:      kind,
		Content:   content,
		Timestamp: time.Now().UTC(),
	})
}

// AddError appends an error entry. The list is append-only.
func (s *State) AddError(msg string) {
	s.Errors = append(s.Errors, msg)
}

// RecordNotification appends a sent-notification record.
func (s *State) RecordNotification(kind, recipient string) {
	s.NotificationsSent = append(s.NotificationsSent, NotificationRecord{
		Kind:      kind,
		Recipient: recipient,
		Timestamp: time.Now().UTC(),
	})
}
