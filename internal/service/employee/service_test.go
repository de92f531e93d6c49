package employee

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/jwtauth/v5"
	"github.com/hoursync/hoursync-backend-go/internal/domain/attendance"
	"github.com/hoursync/hoursync-backend-go/internal/domain/employee"
	"github.com/hoursync/hoursync-backend-go/internal/pkg/identity"
	"github.com/hoursync/hoursync-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ========================================
// FAKES
// ========================================

type fakeEmployeeRepo struct {
	mu        sync.Mutex
	employees map[string]employee.Employee
	createErr error
}

func (r *fakeEmployeeRepo) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	emp, ok := r.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return emp, nil
}

func (r *fakeEmployeeRepo) GetByEmail(ctx context.Context, email string) (employee.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, emp := range r.employees {
		if emp.Email == email {
			return emp, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (r *fakeEmployeeRepo) ExistsByEmailOrCPF(ctx context.Context, email, cpf string, excludeID string) (bool, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var emailTaken, cpfTaken bool
	for id, emp := range r.employees {
		if id == excludeID {
			continue
		}
		emailTaken = emailTaken || emp.Email == strings.ToLower(email)
		cpfTaken = cpfTaken || emp.CPF == validator.DigitsOnly(cpf)
	}
	return emailTaken, cpfTaken, nil
}

func (r *fakeEmployeeRepo) List(ctx context.Context, filter employee.EmployeeFilter) ([]employee.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []employee.Employee
	for _, emp := range r.employees {
		if filter.Status != nil && string(emp.Status) != *filter.Status {
			continue
		}
		out = append(out, emp)
	}
	return out, nil
}

func (r *fakeEmployeeRepo) ListActiveIDs(ctx context.Context) ([]string, error) {
	return nil, nil
}

func (r *fakeEmployeeRepo) Create(ctx context.Context, newEmployee employee.Employee) (employee.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return employee.Employee{}, r.createErr
	}
	r.employees[newEmployee.ID] = newEmployee
	return newEmployee, nil
}

func (r *fakeEmployeeRepo) Update(ctx context.Context, id string, req employee.UpdateEmployeeRequest) (employee.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	emp, ok := r.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	if req.Name != nil {
		emp.Name = *req.Name
	}
	if req.Email != nil {
		emp.Email = *req.Email
	}
	if req.Role != nil {
		emp.Role = *req.Role
	}
	r.employees[id] = emp
	return emp, nil
}

func (r *fakeEmployeeRepo) SetStatus(ctx context.Context, id string, status employee.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	emp, ok := r.employees[id]
	if !ok {
		return employee.ErrEmployeeNotFound
	}
	emp.Status = status
	r.employees[id] = emp
	return nil
}

type fakeProvider struct {
	created   []identity.CreateAccountParams
	updates   map[string]identity.UpdateAccountParams
	disabled  map[string]bool
	createErr error
	updateErr error
}

func (p *fakeProvider) CreateAccount(ctx context.Context, params identity.CreateAccountParams) (identity.Account, error) {
	if p.createErr != nil {
		return identity.Account{}, p.createErr
	}
	p.created = append(p.created, params)
	return identity.Account{ID: "acc-" + params.Email, Email: params.Email, DisplayName: params.DisplayName}, nil
}

func (p *fakeProvider) UpdateAccount(ctx context.Context, id string, params identity.UpdateAccountParams) error {
	if p.updateErr != nil {
		return p.updateErr
	}
	p.updates[id] = params
	return nil
}

func (p *fakeProvider) SetDisabled(ctx context.Context, id string, disabled bool) error {
	p.disabled[id] = disabled
	return nil
}

func (p *fakeProvider) VerifyPassword(ctx context.Context, email, password string) (identity.Account, error) {
	return identity.Account{}, identity.ErrInvalidCredentials
}

func (p *fakeProvider) SendPasswordResetEmail(ctx context.Context, email string) error {
	return identity.ErrAccountNotFound
}

func (p *fakeProvider) ConfirmPasswordReset(ctx context.Context, code, newPassword string) error {
	return identity.ErrInvalidResetCode
}

type fakeEmailService struct {
	created []string
	status  map[string]bool
}

func (f *fakeEmailService) SendAccountCreated(to, name string, windows []string) error {
	f.created = append(f.created, to)
	return nil
}

func (f *fakeEmailService) SendAccountStatusChanged(to, name string, active bool) error {
	f.status[to] = active
	return nil
}

func (f *fakeEmailService) SendPasswordReset(to, resetLink, expiresAt string) error {
	return nil
}

// rollbackTx mimics a transaction by snapshotting the fake repository.
type rollbackTx struct {
	repo *fakeEmployeeRepo
}

func (t rollbackTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.repo.mu.Lock()
	snapshot := make(map[string]employee.Employee, len(t.repo.employees))
	for k, v := range t.repo.employees {
		snapshot[k] = v
	}
	t.repo.mu.Unlock()

	if err := fn(ctx); err != nil {
		t.repo.mu.Lock()
		t.repo.employees = snapshot
		t.repo.mu.Unlock()
		return err
	}
	return nil
}

// ========================================
// HELPERS
// ========================================

type testEnv struct {
	service  *EmployeeServiceImpl
	repo     *fakeEmployeeRepo
	provider *fakeProvider
	mail     *fakeEmailService
}

func newTestEnv() *testEnv {
	repo := &fakeEmployeeRepo{employees: map[string]employee.Employee{
		"emp-admin": {ID: "emp-admin", Name: "Ana Admin", Email: "ana@example.com", CPF: "52998224725", Status: employee.StatusActive, IsAdmin: true},
		"emp-1":     {ID: "emp-1", Name: "Bruno Lima", Email: "bruno@example.com", CPF: "11144477735", Status: employee.StatusActive},
	}}
	provider := &fakeProvider{updates: map[string]identity.UpdateAccountParams{}, disabled: map[string]bool{}}
	mail := &fakeEmailService{status: map[string]bool{}}

	svc := NewEmployeeService(rollbackTx{repo: repo}, repo, provider, mail, attendance.DefaultSchedule()).(*EmployeeServiceImpl)
	svc.async = func(fn func()) { fn() }
	return &testEnv{service: svc, repo: repo, provider: provider, mail: mail}
}

func validCreateRequest() employee.CreateEmployeeRequest {
	birthDate := "1990-05-17"
	return employee.CreateEmployeeRequest{
		Name:      "Carla Dias",
		Email:     "Carla@Example.com",
		Password:  "secret1",
		CPF:       "390.533.447-05",
		Role:      "Analyst",
		Sector:    "Finance",
		BirthDate: &birthDate,
		Address: &employee.AddressRequest{
			Street:       "Rua das Flores",
			Number:       "100",
			Neighborhood: "Centro",
			City:         "Curitiba",
			State:        "pr",
			ZipCode:      "80010-000",
		},
	}
}

func ctxWithActor(t *testing.T, employeeID string) context.Context {
	t.Helper()
	ja := jwtauth.New("HS256", []byte("test"), nil)
	token, _, err := ja.Encode(map[string]interface{}{"employee_id": employeeID})
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), token, nil)
}

// ========================================
// CREATE
// ========================================

func TestEmployeeService_CreateEmployee_Success(t *testing.T) {
	// Setup
	env := newTestEnv()

	// Act
	resp, err := env.service.CreateEmployee(context.Background(), validCreateRequest())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "acc-carla@example.com", resp.ID)
	assert.Equal(t, "carla@example.com", resp.Email)
	assert.Equal(t, "39053344705", resp.CPF)
	assert.Equal(t, "PR", resp.Address.State)
	assert.Equal(t, "80010000", resp.Address.ZipCode)
	assert.Equal(t, "1990-05-17", *resp.BirthDate)
	assert.Equal(t, "active", resp.Status)
	require.Len(t, env.provider.created, 1)
	assert.Equal(t, "Carla Dias", env.provider.created[0].DisplayName)
	assert.Equal(t, []string{"carla@example.com"}, env.mail.created)
}

func TestEmployeeService_CreateEmployee_Duplicates(t *testing.T) {
	env := newTestEnv()

	req := validCreateRequest()
	req.Email = "bruno@example.com"
	_, err := env.service.CreateEmployee(context.Background(), req)
	assert.ErrorIs(t, err, employee.ErrEmailExists)

	req = validCreateRequest()
	req.CPF = "111.444.777-35"
	_, err = env.service.CreateEmployee(context.Background(), req)
	assert.ErrorIs(t, err, employee.ErrCPFExists)

	assert.Empty(t, env.provider.created)
}

func TestEmployeeService_CreateEmployee_ValidationErrors(t *testing.T) {
	env := newTestEnv()
	req := validCreateRequest()
	req.CPF = "123.456.789-00"
	req.Email = "nope"

	_, err := env.service.CreateEmployee(context.Background(), req)

	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	fields := verrs.ToMap()
	assert.Contains(t, fields, "cpf")
	assert.Contains(t, fields, "email")
}

func TestEmployeeService_CreateEmployee_IdentityErrors(t *testing.T) {
	env := newTestEnv()

	env.provider.createErr = identity.ErrEmailTaken
	_, err := env.service.CreateEmployee(context.Background(), validCreateRequest())
	assert.ErrorIs(t, err, employee.ErrEmailExists)

	env.provider.createErr = identity.ErrWeakPassword
	_, err = env.service.CreateEmployee(context.Background(), validCreateRequest())
	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "password", verrs[0].Field)
}

func TestEmployeeService_CreateEmployee_DisablesAccountWhenInsertFails(t *testing.T) {
	env := newTestEnv()
	env.repo.createErr = errors.New("connection reset")

	_, err := env.service.CreateEmployee(context.Background(), validCreateRequest())

	require.Error(t, err)
	assert.True(t, env.provider.disabled["acc-carla@example.com"])
	assert.Empty(t, env.mail.created)
}

// ========================================
// UPDATE
// ========================================

func TestEmployeeService_UpdateEmployee_SyncsIdentity(t *testing.T) {
	env := newTestEnv()
	name := "Bruno Lima Souza"
	role := "Manager"

	resp, err := env.service.UpdateEmployee(context.Background(), employee.UpdateEmployeeRequest{ID: "emp-1", Name: &name, Role: &role})

	require.NoError(t, err)
	assert.Equal(t, "Bruno Lima Souza", resp.Name)
	assert.Equal(t, "Manager", resp.Role)
	require.Contains(t, env.provider.updates, "emp-1")
	assert.Equal(t, name, *env.provider.updates["emp-1"].DisplayName)
	assert.Nil(t, env.provider.updates["emp-1"].Email)
}

func TestEmployeeService_UpdateEmployee_RoleOnlySkipsIdentity(t *testing.T) {
	env := newTestEnv()
	role := "Manager"

	_, err := env.service.UpdateEmployee(context.Background(), employee.UpdateEmployeeRequest{ID: "emp-1", Role: &role})

	require.NoError(t, err)
	assert.Empty(t, env.provider.updates)
}

func TestEmployeeService_UpdateEmployee_RollsBackOnIdentityFailure(t *testing.T) {
	env := newTestEnv()
	env.provider.updateErr = identity.ErrEmailTaken
	email := "taken@example.com"

	_, err := env.service.UpdateEmployee(context.Background(), employee.UpdateEmployeeRequest{ID: "emp-1", Email: &email})

	assert.ErrorIs(t, err, employee.ErrEmailExists)
	emp, _ := env.repo.GetByID(context.Background(), "emp-1")
	assert.Equal(t, "bruno@example.com", emp.Email)
}

func TestEmployeeService_UpdateEmployee_Errors(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	_, err := env.service.UpdateEmployee(ctx, employee.UpdateEmployeeRequest{ID: "emp-1"})
	assert.ErrorIs(t, err, employee.ErrNoFieldsToUpdate)

	email := "ana@example.com"
	_, err = env.service.UpdateEmployee(ctx, employee.UpdateEmployeeRequest{ID: "emp-1", Email: &email})
	assert.ErrorIs(t, err, employee.ErrEmailExists)

	role := "Manager"
	_, err = env.service.UpdateEmployee(ctx, employee.UpdateEmployeeRequest{ID: "missing", Role: &role})
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

// ========================================
// STATUS
// ========================================

func TestEmployeeService_SetEmployeeStatus(t *testing.T) {
	env := newTestEnv()
	ctx := ctxWithActor(t, "emp-admin")

	resp, err := env.service.SetEmployeeStatus(ctx, employee.SetStatusRequest{ID: "emp-1", Status: "inactive"})
	require.NoError(t, err)
	assert.Equal(t, "inactive", resp.Status)
	assert.True(t, env.provider.disabled["emp-1"])
	assert.False(t, env.mail.status["bruno@example.com"])

	_, err = env.service.SetEmployeeStatus(ctx, employee.SetStatusRequest{ID: "emp-1", Status: "inactive"})
	assert.ErrorIs(t, err, employee.ErrEmployeeAlreadyInactive)

	resp, err = env.service.SetEmployeeStatus(ctx, employee.SetStatusRequest{ID: "emp-1", Status: "active"})
	require.NoError(t, err)
	assert.Equal(t, "active", resp.Status)
	assert.False(t, env.provider.disabled["emp-1"])
	assert.True(t, env.mail.status["bruno@example.com"])
}

func TestEmployeeService_SetEmployeeStatus_CannotDeactivateSelf(t *testing.T) {
	env := newTestEnv()

	_, err := env.service.SetEmployeeStatus(ctxWithActor(t, "emp-admin"), employee.SetStatusRequest{ID: "emp-admin", Status: "inactive"})

	assert.ErrorIs(t, err, employee.ErrCannotDeactivateSelf)
}

func TestEmployeeService_SetEmployeeStatus_InvalidStatus(t *testing.T) {
	env := newTestEnv()

	_, err := env.service.SetEmployeeStatus(context.Background(), employee.SetStatusRequest{ID: "emp-1", Status: "paused"})

	var verrs validator.ValidationErrors
	assert.True(t, errors.As(err, &verrs))
}

// ========================================
// QUERIES
// ========================================

func TestEmployeeService_CheckAdmin(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	resp, err := env.service.CheckAdmin(ctx, employee.CheckAdminRequest{Email: "ANA@example.com"})
	require.NoError(t, err)
	assert.True(t, resp.IsAdmin)

	resp, err = env.service.CheckAdmin(ctx, employee.CheckAdminRequest{Email: "bruno@example.com"})
	require.NoError(t, err)
	assert.False(t, resp.IsAdmin)

	resp, err = env.service.CheckAdmin(ctx, employee.CheckAdminRequest{Email: "nobody@example.com"})
	require.NoError(t, err)
	assert.False(t, resp.IsAdmin)
}

func TestEmployeeService_ListEmployees(t *testing.T) {
	env := newTestEnv()
	status := "active"

	list, err := env.service.ListEmployees(context.Background(), employee.EmployeeFilter{Status: &status})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = env.service.ListEmployees(context.Background(), employee.EmployeeFilter{SortBy: "salary"})
	var verrs validator.ValidationErrors
	assert.True(t, errors.As(err, &verrs))
}
