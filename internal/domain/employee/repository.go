package employee

import "context"

type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)
	GetByEmail(ctx context.Context, email string) (Employee, error)
	ExistsByEmailOrCPF(ctx context.Context, email, cpf string, excludeID string) (emailTaken bool, cpfTaken bool, err error)
	List(ctx context.Context, filter EmployeeFilter) ([]Employee, error)
	ListActiveIDs(ctx context.Context) ([]string, error)
	Create(ctx context.Context, newEmployee Employee) (Employee, error)
	Update(ctx context.Context, id string, req UpdateEmployeeRequest) (Employee, error)
	SetStatus(ctx context.Context, id string, status Status) error
}
