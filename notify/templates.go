package notify

import (
	"fmt"
	"strings"
)

// Templates below mirror the standard HR communications: welcome mail,
// interview invitation, rejection notice, review reminder and the
// onboarding checklist.

// WelcomeEmail greets a new hire before their first day.
func WelcomeEmail(to, name, company, startDate string) *Message {
	return &Message{
		To:      to,
		Subject: fmt.Sprintf("Welcome to %s!", company),
		Kind:    "welcome",
		Body: fmt.Sprintf(
			"Hi %s,\n\nWelcome to %s! We are excited to have you on board.\n"+
				"Your start date is %s. You will receive your onboarding checklist separately.\n\n"+
				"Best regards,\nHR Team",
			name, company, startDate),
	}
}

// InterviewInvitation notifies a candidate of a scheduled interview.
func InterviewInvitation(to, candidate, position, date, timeSlot, location, interviewer string) *Message {
	return &Message{
		To:      to,
		Subject: fmt.Sprintf("Interview Scheduled - %s", position),
		Kind:    "interview_invitation",
		Body: fmt.Sprintf(
			"Hi %s,\n\nYour interview for the %s position has been scheduled.\n\n"+
				"Date: %s\nTime: %s\nLocation: %s\nInterviewer: %s\n\n"+
				"Please reply to confirm your attendance.\n\nBest regards,\nHR Team",
			candidate, position, date, timeSlot, location, interviewer),
	}
}

// RejectionNotice informs a candidate they were not selected.
func RejectionNotice(to, candidate, position string) *Message {
	return &Message{
		To:      to,
		Subject: fmt.Sprintf("Update on your %s application", position),
		Kind:    "rejection",
		Body: fmt.Sprintf(
			"Hi %s,\n\nThank you for your interest in the %s position. "+
				"After careful consideration we have decided not to move forward with your application.\n"+
				"We encourage you to apply for future openings that match your profile.\n\n"+
				"Best regards,\nHR Team",
			candidate, position),
	}
}

// ReviewReminder nudges a reviewer about an upcoming performance review.
func ReviewReminder(to, reviewer, employee, dueDate string) *Message {
	return &Message{
		To:      to,
		Subject: fmt.Sprintf("Performance Review Due - %s", employee),
		Kind:    "review_reminder",
		Body: fmt.Sprintf(
			"Hi %s,\n\nThe performance review for %s is due on %s. "+
				"Please complete the review form before the due date.\n\n"+
				"Best regards,\nHR Team",
			reviewer, employee, dueDate),
	}
}

// OnboardingChecklist sends a new hire their task list.
func OnboardingChecklist(to, name, company string, tasks []string) *Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\nHere is your onboarding checklist:\n\n", name)
	for i, task := range tasks {
		fmt.Fprintf(&b, "%d. %s\n", i+1, task)
	}
	b.WriteString("\nYour onboarding coordinator will check in during your first week.\n\nBest regards,\nHR Team")
	return &Message{
		To:      to,
		Subject: fmt.Sprintf("Welcome to %s - Onboarding Checklist", company),
		Kind:    "onboarding_checklist",
		Body:    b.String(),
	}
}
