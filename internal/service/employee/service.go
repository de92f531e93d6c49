package employee

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/hoursync/hoursync-backend-go/internal/domain/attendance"
	"github.com/hoursync/hoursync-backend-go/internal/domain/employee"
	"github.com/hoursync/hoursync-backend-go/internal/pkg/database"
	"github.com/hoursync/hoursync-backend-go/internal/pkg/email"
	"github.com/hoursync/hoursync-backend-go/internal/pkg/identity"
	"github.com/hoursync/hoursync-backend-go/internal/pkg/validator"
)

type EmployeeServiceImpl struct {
	tx           database.Transactor
	employeeRepo employee.EmployeeRepository
	identity     identity.Provider
	emailService email.EmailService
	windows      []string
	// async runs best-effort side effects such as emails
	async func(fn func())
}

func NewEmployeeService(
	tx database.Transactor,
	employeeRepo employee.EmployeeRepository,
	provider identity.Provider,
	emailService email.EmailService,
	schedule attendance.Schedule,
) employee.EmployeeService {
	windows := make([]string, 0, len(attendance.PunchTypes))
	for _, p := range attendance.PunchTypes {
		windows = append(windows, schedule.Windows[p].String())
	}
	return &EmployeeServiceImpl{
		tx:           tx,
		employeeRepo: employeeRepo,
		identity:     provider,
		emailService: emailService,
		windows:      windows,
		async:        func(fn func()) { go fn() },
	}
}

// actorIDFromContext returns the employee_id claim of the caller, if any.
func actorIDFromContext(ctx context.Context) string {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return ""
	}
	id, _ := claims["employee_id"].(string)
	return id
}

// CreateEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) CreateEmployee(ctx context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	if err := s.checkUniqueness(ctx, req.Email, req.CPF, ""); err != nil {
		return employee.EmployeeResponse{}, err
	}

	account, err := s.identity.CreateAccount(ctx, identity.CreateAccountParams{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.Name,
	})
	if err != nil {
		return employee.EmployeeResponse{}, mapIdentityError(err)
	}

	newEmployee := employee.Employee{
		ID:      account.ID,
		Name:    req.Name,
		Email:   req.Email,
		CPF:     validator.DigitsOnly(req.CPF),
		Role:    strings.TrimSpace(req.Role),
		Sector:  strings.TrimSpace(req.Sector),
		Status:  employee.StatusActive,
		IsAdmin: req.IsAdmin,
	}
	if req.BirthDate != nil {
		birthDate, _ := time.Parse("2006-01-02", *req.BirthDate)
		newEmployee.BirthDate = &birthDate
	}
	if req.Address != nil {
		newEmployee.Address = req.Address.ToAddress()
	}

	created, err := s.employeeRepo.Create(ctx, newEmployee)
	if err != nil {
		// The account would otherwise log in without a roster entry.
		if disableErr := s.identity.SetDisabled(ctx, account.ID, true); disableErr != nil {
			slog.Error("Failed to disable orphaned identity account", "account_id", account.ID, "error", disableErr)
		}
		return employee.EmployeeResponse{}, err
	}

	slog.Info("Employee created", "employee_id", created.ID, "is_admin", created.IsAdmin)
	s.async(func() {
		if err := s.emailService.SendAccountCreated(created.Email, created.Name, s.windows); err != nil {
			slog.Error("Failed to send account created email", "employee_id", created.ID, "error", err)
		}
	})

	return employee.NewEmployeeResponse(created), nil
}

// GetEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) GetEmployee(ctx context.Context, id string) (employee.EmployeeResponse, error) {
	emp, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	return employee.NewEmployeeResponse(emp), nil
}

// ListEmployees implements employee.EmployeeService.
func (s *EmployeeServiceImpl) ListEmployees(ctx context.Context, filter employee.EmployeeFilter) ([]employee.EmployeeResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	employees, err := s.employeeRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]employee.EmployeeResponse, 0, len(employees))
	for _, emp := range employees {
		responses = append(responses, employee.NewEmployeeResponse(emp))
	}
	return responses, nil
}

// UpdateEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) UpdateEmployee(ctx context.Context, req employee.UpdateEmployeeRequest) (employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}
	if !req.HasChanges() {
		return employee.EmployeeResponse{}, employee.ErrNoFieldsToUpdate
	}

	current, err := s.employeeRepo.GetByID(ctx, req.ID)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	if req.Email != nil || req.CPF != nil {
		email, cpf := current.Email, current.CPF
		if req.Email != nil {
			email = *req.Email
		}
		if req.CPF != nil {
			cpf = *req.CPF
		}
		if err := s.checkUniqueness(ctx, email, cpf, current.ID); err != nil {
			return employee.EmployeeResponse{}, err
		}
	}

	var params identity.UpdateAccountParams
	if req.Name != nil && strings.TrimSpace(*req.Name) != current.Name {
		name := strings.TrimSpace(*req.Name)
		params.DisplayName = &name
	}
	if req.Email != nil && *req.Email != current.Email {
		params.Email = req.Email
	}

	var updated employee.Employee
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		updated, err = s.employeeRepo.Update(ctx, current.ID, req)
		if err != nil {
			return err
		}
		if params.DisplayName == nil && params.Email == nil {
			return nil
		}
		if err := s.identity.UpdateAccount(ctx, current.ID, params); err != nil {
			return mapIdentityError(err)
		}
		return nil
	})
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	return employee.NewEmployeeResponse(updated), nil
}

// SetEmployeeStatus implements employee.EmployeeService.
func (s *EmployeeServiceImpl) SetEmployeeStatus(ctx context.Context, req employee.SetStatusRequest) (employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}
	status := employee.Status(req.Status)

	current, err := s.employeeRepo.GetByID(ctx, req.ID)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	if current.Status == status {
		if status == employee.StatusActive {
			return employee.EmployeeResponse{}, employee.ErrEmployeeAlreadyActive
		}
		return employee.EmployeeResponse{}, employee.ErrEmployeeAlreadyInactive
	}
	if status == employee.StatusInactive && actorIDFromContext(ctx) == current.ID {
		return employee.EmployeeResponse{}, employee.ErrCannotDeactivateSelf
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.employeeRepo.SetStatus(ctx, current.ID, status); err != nil {
			return err
		}
		err := s.identity.SetDisabled(ctx, current.ID, status == employee.StatusInactive)
		if errors.Is(err, identity.ErrAccountNotFound) {
			slog.Warn("Employee has no identity account", "employee_id", current.ID)
			return nil
		}
		return err
	})
	if err != nil {
		return employee.EmployeeResponse{}, fmt.Errorf("failed to set employee status: %w", err)
	}

	current.Status = status
	slog.Info("Employee status changed", "employee_id", current.ID, "status", status)
	s.async(func() {
		if err := s.emailService.SendAccountStatusChanged(current.Email, current.Name, status == employee.StatusActive); err != nil {
			slog.Error("Failed to send account status email", "employee_id", current.ID, "error", err)
		}
	})

	return employee.NewEmployeeResponse(current), nil
}

// CheckAdmin implements employee.EmployeeService.
func (s *EmployeeServiceImpl) CheckAdmin(ctx context.Context, req employee.CheckAdminRequest) (employee.CheckAdminResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.CheckAdminResponse{}, err
	}

	emp, err := s.employeeRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return employee.CheckAdminResponse{Email: req.Email}, nil
		}
		return employee.CheckAdminResponse{}, err
	}

	return employee.CheckAdminResponse{
		Email:   req.Email,
		IsAdmin: emp.IsAdmin && emp.IsActive(),
	}, nil
}

func (s *EmployeeServiceImpl) checkUniqueness(ctx context.Context, email, cpf, excludeID string) error {
	emailTaken, cpfTaken, err := s.employeeRepo.ExistsByEmailOrCPF(ctx, email, cpf, excludeID)
	if err != nil {
		return err
	}
	if emailTaken {
		return employee.ErrEmailExists
	}
	if cpfTaken {
		return employee.ErrCPFExists
	}
	return nil
}

func mapIdentityError(err error) error {
	switch {
	case errors.Is(err, identity.ErrEmailTaken):
		return employee.ErrEmailExists
	case errors.Is(err, identity.ErrWeakPassword):
		return validator.ValidationErrors{{Field: "password", Message: identity.ErrWeakPassword.Error()}}
	}
	return fmt.Errorf("identity provider error: %w", err)
}
