package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/BaSui01/hrflow/handler"
	"github.com/BaSui01/hrflow/persistence"
	"github.com/BaSui01/hrflow/types"
)

// EmployeeManagement handles employee records, directory searches and
// policy questions.
type EmployeeManagement struct {
	handler.Base
	deps Deps
}

// NewEmployeeManagement creates the employee management handler.
func NewEmployeeManagement(deps Deps) *EmployeeManagement {
	return &EmployeeManagement{
		Base: handler.NewBase("employee_management", "Handles employee records, policies, benefits and leave", []string{
			"employee records",
			"policy queries",
			"benefits information",
			"leave management",
			"employee directory",
			"organizational chart",
			"document requests",
			"compliance tracking",
			"employee updates",
			"hr policies",
		}),
		deps: deps.normalize(),
	}
}

func (h *EmployeeManagement) Process(ctx context.Context, request string, reqCtx map[string]any) (*types.Response, error) {
	switch {
	case containsAny(request, "add employee", "create employee", "new employee record"):
		return h.createEmployee(ctx, request, reqCtx)
	case containsAny(request, "find", "search", "look up", "directory"):
		return h.searchEmployees(ctx, request, reqCtx)
	case containsAny(request, "update", "change"):
		return h.updateEmployee(ctx, request, reqCtx)
	case containsAny(request, "policy", "policies", "benefits", "leave"):
		return h.policyInquiry(request), nil
	default:
		return h.generalInquiry(), nil
	}
}

func (h *EmployeeManagement) createEmployee(ctx context.Context, request string, reqCtx map[string]any) (*types.Response, error) {
	name := stringFromCtx(reqCtx, "employee_name")
	if name == "" {
		return types.Failure(
			"I need the employee's details to create a record.",
			"Provide employee name", "Provide department", "Provide job title",
		), nil
	}

	employeeID, err := h.deps.Directory.Create(ctx, persistence.KindEmployee, map[string]any{
		"name":       name,
		"email":      stringFromCtx(reqCtx, "employee_email"),
		"department": stringFromCtx(reqCtx, "department"),
		"title":      stringFromCtx(reqCtx, "title"),
	})
	if err != nil {
		return nil, fmt.Errorf("create employee record: %w", err)
	}

	h.deps.Logger.Info("employee record created", zap.String("employee_id", employeeID))
	return (&types.Response{
		Success:     true,
		Message:     fmt.Sprintf("Employee record created for %s. Employee ID: %s", name, employeeID),
		ActionTaken: "employee_record_created",
		NextSteps:   []string{"Start onboarding", "Enroll in benefits"},
		Confidence:  types.ConfidencePtr(0.9),
	}).WithData("employee_id", employeeID), nil
}

func (h *EmployeeManagement) searchEmployees(ctx context.Context, request string, reqCtx map[string]any) (*types.Response, error) {
	term := stringFromCtx(reqCtx, "search_term")
	if term == "" {
		term = request
	}

	matches, err := h.deps.Directory.Search(ctx, persistence.KindEmployee, term)
	if err != nil {
		return nil, fmt.Errorf("search employees: %w", err)
	}
	if len(matches) == 0 {
		return types.Failure("No employees matched your search.", "Try a different name or department"), nil
	}

	return (&types.Response{
		Success:     true,
		Message:     fmt.Sprintf("Found %d matching employee(s).", len(matches)),
		ActionTaken: "employees_found",
		Confidence:  types.ConfidencePtr(0.85),
	}).WithData("employees", matches), nil
}

func (h *EmployeeManagement) updateEmployee(ctx context.Context, request string, reqCtx map[string]any) (*types.Response, error) {
	employeeID := stringFromCtx(reqCtx, "employee_id")
	update, _ := reqCtx["update"].(map[string]any)
	if employeeID == "" || len(update) == 0 {
		return types.Failure(
			"Please specify which employee to update and the new values.",
			"Provide employee ID", "Provide fields to change",
		), nil
	}

	err := h.deps.Directory.Update(ctx, persistence.KindEmployee, employeeID, update)
	if err == persistence.ErrRecordNotFound {
		return types.Failure(fmt.Sprintf("No employee found with ID %s.", employeeID)), nil
	}
	if err != nil {
		return nil, fmt.Errorf("update employee record: %w", err)
	}

	return (&types.Response{
		Success:     true,
		Message:     fmt.Sprintf("Employee %s updated.", employeeID),
		ActionTaken: "employee_record_updated",
		Confidence:  types.ConfidencePtr(0.9),
	}).WithData("employee_id", employeeID), nil
}

func (h *EmployeeManagement) policyInquiry(request string) *types.Response {
	return &types.Response{
		Success:     true,
		Message:     "You can find HR policies in the employee handbook. For benefits and leave questions I can route you to the right specialist.",
		ActionTaken: "policy_inquiry",
		NextSteps:   []string{"Open the employee handbook", "Contact the benefits team"},
		Confidence:  types.ConfidencePtr(0.7),
	}
}

func (h *EmployeeManagement) generalInquiry() *types.Response {
	return &types.Response{
		Success:     true,
		Message:     "I can manage employee records, search the directory and answer policy questions.",
		ActionTaken: "general_inquiry",
		NextSteps:   []string{"Add an employee record", "Search the directory"},
		Confidence:  types.ConfidencePtr(0.5),
	}
}
