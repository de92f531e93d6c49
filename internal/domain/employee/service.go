package employee

import (
	"context"
)

// EmployeeService defines business logic for roster administration
type EmployeeService interface {
	// CreateEmployee provisions an identity account and the employee record (admin only)
	CreateEmployee(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error)

	GetEmployee(ctx context.Context, id string) (EmployeeResponse, error)

	// ListEmployees searches and sorts the roster (admin only)
	ListEmployees(ctx context.Context, filter EmployeeFilter) ([]EmployeeResponse, error)

	// UpdateEmployee applies a partial update and keeps the identity account in sync
	UpdateEmployee(ctx context.Context, req UpdateEmployeeRequest) (EmployeeResponse, error)

	// SetEmployeeStatus activates or deactivates the employee and its account
	SetEmployeeStatus(ctx context.Context, req SetStatusRequest) (EmployeeResponse, error)

	// CheckAdmin reports whether the email belongs to an active administrator
	CheckAdmin(ctx context.Context, req CheckAdminRequest) (CheckAdminResponse, error)
}
