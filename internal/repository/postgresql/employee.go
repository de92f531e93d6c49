package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hoursync/hoursync-backend-go/internal/domain/employee"
	"github.com/hoursync/hoursync-backend-go/internal/pkg/database"
	"github.com/hoursync/hoursync-backend-go/internal/pkg/validator"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

const employeeColumns = `id, name, email, cpf, role, sector, birth_date,
	address_street, address_number, address_complement, address_neighborhood,
	address_city, address_state, address_zip_code,
	status, is_admin, created_at, updated_at`

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var emp employee.Employee
	err := row.Scan(
		&emp.ID, &emp.Name, &emp.Email, &emp.CPF, &emp.Role, &emp.Sector, &emp.BirthDate,
		&emp.Address.Street, &emp.Address.Number, &emp.Address.Complement, &emp.Address.Neighborhood,
		&emp.Address.City, &emp.Address.State, &emp.Address.ZipCode,
		&emp.Status, &emp.IsAdmin, &emp.CreatedAt, &emp.UpdatedAt,
	)
	return emp, err
}

// GetByID implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1`

	emp, err := scanEmployee(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee with id %s: %w", id, err)
	}
	return emp, nil
}

// GetByEmail implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetByEmail(ctx context.Context, email string) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE email = $1`

	emp, err := scanEmployee(q.QueryRow(ctx, query, strings.ToLower(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee by email: %w", err)
	}
	return emp, nil
}

// ExistsByEmailOrCPF implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) ExistsByEmailOrCPF(ctx context.Context, email, cpf string, excludeID string) (bool, bool, error) {
	q := GetQuerier(ctx, e.db)

	query := `
		SELECT
			EXISTS (SELECT 1 FROM employees WHERE email = $1 AND id <> $3),
			EXISTS (SELECT 1 FROM employees WHERE cpf = $2 AND id <> $3)
	`

	var emailTaken, cpfTaken bool
	if err := q.QueryRow(ctx, query, strings.ToLower(email), validator.DigitsOnly(cpf), excludeID).Scan(&emailTaken, &cpfTaken); err != nil {
		return false, false, fmt.Errorf("failed to check employee uniqueness: %w", err)
	}
	return emailTaken, cpfTaken, nil
}

// List implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) List(ctx context.Context, filter employee.EmployeeFilter) ([]employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	conditions := []string{"TRUE"}
	args := []interface{}{}
	argIdx := 1

	if filter.Search != nil && strings.TrimSpace(*filter.Search) != "" {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR email ILIKE $%d OR role ILIKE $%d OR sector ILIKE $%d)", argIdx, argIdx, argIdx, argIdx))
		args = append(args, "%"+strings.TrimSpace(*filter.Search)+"%")
		argIdx++
	}
	if filter.IsAdmin != nil {
		conditions = append(conditions, fmt.Sprintf("is_admin = $%d", argIdx))
		args = append(args, *filter.IsAdmin)
		argIdx++
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *filter.Status)
	}

	validSortColumns := map[string]string{
		"name":       "name",
		"email":      "email",
		"role":       "role",
		"sector":     "sector",
		"status":     "status",
		"created_at": "created_at",
	}
	sortColumn, ok := validSortColumns[filter.SortBy]
	if !ok {
		sortColumn = "name"
	}

	sortOrder := "ASC"
	if strings.ToUpper(filter.SortOrder) == "DESC" {
		sortOrder = "DESC"
	}

	query := fmt.Sprintf(`SELECT %s FROM employees WHERE %s ORDER BY %s %s, id ASC`,
		employeeColumns, strings.Join(conditions, " AND "), sortColumn, sortOrder)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var employees []employee.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, emp)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return employees, nil
}

// ListActiveIDs implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) ListActiveIDs(ctx context.Context) ([]string, error) {
	q := GetQuerier(ctx, e.db)

	rows, err := q.Query(ctx, `SELECT id FROM employees WHERE status = $1 ORDER BY id`, employee.StatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list active employees: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan employee id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Create implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) Create(ctx context.Context, newEmployee employee.Employee) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `
		INSERT INTO employees (
			id, name, email, cpf, role, sector, birth_date,
			address_street, address_number, address_complement, address_neighborhood,
			address_city, address_state, address_zip_code,
			status, is_admin
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING ` + employeeColumns

	a := newEmployee.Address
	created, err := scanEmployee(q.QueryRow(ctx, query,
		newEmployee.ID, newEmployee.Name, strings.ToLower(newEmployee.Email), validator.DigitsOnly(newEmployee.CPF),
		newEmployee.Role, newEmployee.Sector, newEmployee.BirthDate,
		a.Street, a.Number, a.Complement, a.Neighborhood, a.City, a.State, a.ZipCode,
		newEmployee.Status, newEmployee.IsAdmin,
	))
	if err != nil {
		return employee.Employee{}, mapEmployeeConstraintError(err, "failed to create employee")
	}
	return created, nil
}

// Update implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) Update(ctx context.Context, id string, req employee.UpdateEmployeeRequest) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		updates["email"] = strings.ToLower(*req.Email)
	}
	if req.CPF != nil {
		updates["cpf"] = validator.DigitsOnly(*req.CPF)
	}
	if req.Role != nil {
		updates["role"] = *req.Role
	}
	if req.Sector != nil {
		updates["sector"] = *req.Sector
	}
	if req.BirthDate != nil {
		if *req.BirthDate == "" {
			updates["birth_date"] = nil
		} else {
			parsed, _ := time.Parse("2006-01-02", *req.BirthDate)
			updates["birth_date"] = parsed
		}
	}
	if req.Address != nil {
		a := req.Address.ToAddress()
		updates["address_street"] = a.Street
		updates["address_number"] = a.Number
		updates["address_complement"] = a.Complement
		updates["address_neighborhood"] = a.Neighborhood
		updates["address_city"] = a.City
		updates["address_state"] = a.State
		updates["address_zip_code"] = a.ZipCode
	}
	if req.IsAdmin != nil {
		updates["is_admin"] = *req.IsAdmin
	}

	if len(updates) == 0 {
		return e.GetByID(ctx, id)
	}
	updates["updated_at"] = time.Now()

	setClauses := make([]string, 0, len(updates))
	args := make([]interface{}, 0, len(updates)+1)
	i := 1
	for col, val := range updates {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", col, i))
		args = append(args, val)
		i++
	}

	sql := fmt.Sprintf("UPDATE employees SET %s WHERE id = $%d RETURNING %s", strings.Join(setClauses, ", "), i, employeeColumns)
	args = append(args, id)

	updated, err := scanEmployee(q.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, mapEmployeeConstraintError(err, fmt.Sprintf("failed to update employee with id %s", id))
	}
	return updated, nil
}

// SetStatus implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) SetStatus(ctx context.Context, id string, status employee.Status) error {
	q := GetQuerier(ctx, e.db)

	tag, err := q.Exec(ctx, `UPDATE employees SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to set status for employee with id %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

func mapEmployeeConstraintError(err error, msg string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch pgErr.ConstraintName {
		case "employees_email_key":
			return employee.ErrEmailExists
		case "employees_cpf_key":
			return employee.ErrCPFExists
		}
	}
	return fmt.Errorf("%s: %w", msg, err)
}
