package employee

import (
	"strings"
	"time"

	"github.com/hoursync/hoursync-backend-go/internal/pkg/validator"
)

type AddressRequest struct {
	Street       string  `json:"street" validate:"required,max=200"`
	Number       string  `json:"number" validate:"required,max=20"`
	Complement   *string `json:"complement,omitempty" validate:"omitempty,max=100"`
	Neighborhood string  `json:"neighborhood" validate:"required,max=100"`
	City         string  `json:"city" validate:"required,max=100"`
	State        string  `json:"state" validate:"required,len=2"`
	ZipCode      string  `json:"zip_code" validate:"required,zipcode"`
}

func (a AddressRequest) ToAddress() Address {
	return Address{
		Street:       strings.TrimSpace(a.Street),
		Number:       strings.TrimSpace(a.Number),
		Complement:   a.Complement,
		Neighborhood: strings.TrimSpace(a.Neighborhood),
		City:         strings.TrimSpace(a.City),
		State:        strings.ToUpper(strings.TrimSpace(a.State)),
		ZipCode:      validator.DigitsOnly(a.ZipCode),
	}
}

type CreateEmployeeRequest struct {
	Name      string          `json:"name" validate:"required,min=2,max=150"`
	Email     string          `json:"email" validate:"required,email"`
	Password  string          `json:"password" validate:"required,min=6,max=72"`
	CPF       string          `json:"cpf" validate:"required,cpf"`
	Role      string          `json:"role" validate:"required,max=100"`
	Sector    string          `json:"sector" validate:"required,max=100"`
	BirthDate *string         `json:"birth_date,omitempty" validate:"omitempty,date"`
	Address   *AddressRequest `json:"address,omitempty"`
	IsAdmin   bool            `json:"is_admin"`
}

func (r *CreateEmployeeRequest) Validate() error {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Name = strings.TrimSpace(r.Name)

	errs := validator.Struct(r)
	errs = append(errs, validateBirthDate(r.BirthDate)...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// UpdateEmployeeRequest is a partial update. Nil fields are left untouched.
type UpdateEmployeeRequest struct {
	ID        string          `json:"-"`
	Name      *string         `json:"name,omitempty" validate:"omitempty,min=2,max=150"`
	Email     *string         `json:"email,omitempty" validate:"omitempty,email"`
	CPF       *string         `json:"cpf,omitempty" validate:"omitempty,cpf"`
	Role      *string         `json:"role,omitempty" validate:"omitempty,max=100"`
	Sector    *string         `json:"sector,omitempty" validate:"omitempty,max=100"`
	BirthDate *string         `json:"birth_date,omitempty" validate:"omitempty,date"`
	Address   *AddressRequest `json:"address,omitempty"`
	IsAdmin   *bool           `json:"is_admin,omitempty"`
}

func (r *UpdateEmployeeRequest) HasChanges() bool {
	return r.Name != nil || r.Email != nil || r.CPF != nil || r.Role != nil ||
		r.Sector != nil || r.BirthDate != nil || r.Address != nil || r.IsAdmin != nil
}

func (r *UpdateEmployeeRequest) Validate() error {
	if r.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*r.Email))
		r.Email = &email
	}

	errs := validator.Struct(r)
	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}
	errs = append(errs, validateBirthDate(r.BirthDate)...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateBirthDate(birthDate *string) validator.ValidationErrors {
	if birthDate == nil {
		return nil
	}
	date, ok := validator.IsValidDate(*birthDate)
	if ok && date.After(time.Now()) {
		return validator.ValidationErrors{{
			Field:   "birth_date",
			Message: ErrFutureDateNotAllowed.Error(),
		}}
	}
	return nil
}

type SetStatusRequest struct {
	ID     string `json:"-"`
	Status string `json:"status" validate:"required,oneof=active inactive"`
}

func (r *SetStatusRequest) Validate() error {
	if errs := validator.Struct(r); len(errs) > 0 {
		return errs
	}
	return nil
}

type CheckAdminRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (r *CheckAdminRequest) Validate() error {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if errs := validator.Struct(r); len(errs) > 0 {
		return errs
	}
	return nil
}

type CheckAdminResponse struct {
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
}

type EmployeeFilter struct {
	Search    *string `json:"search,omitempty"`
	IsAdmin   *bool   `json:"is_admin,omitempty"`
	Status    *string `json:"status,omitempty"`
	SortBy    string  `json:"sort_by"`    // name, email, role, sector, status
	SortOrder string  `json:"sort_order"` // asc, desc
}

var sortFields = []string{"name", "email", "role", "sector", "status", "created_at"}

func (f *EmployeeFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Status != nil && !Status(*f.Status).IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: active, inactive",
		})
	}

	if f.SortBy != "" {
		if !validator.IsInSlice(f.SortBy, sortFields) {
			errs = append(errs, validator.ValidationError{
				Field:   "sort_by",
				Message: "sort_by must be one of: " + strings.Join(sortFields, ", "),
			})
		}
	} else {
		f.SortBy = "name"
	}

	if f.SortOrder != "" {
		f.SortOrder = strings.ToLower(f.SortOrder)
		if !validator.IsInSlice(f.SortOrder, []string{"asc", "desc"}) {
			errs = append(errs, validator.ValidationError{
				Field:   "sort_order",
				Message: "sort_order must be one of: asc, desc",
			})
		}
	} else {
		f.SortOrder = "asc"
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type AddressResponse struct {
	Street       string  `json:"street"`
	Number       string  `json:"number"`
	Complement   *string `json:"complement,omitempty"`
	Neighborhood string  `json:"neighborhood"`
	City         string  `json:"city"`
	State        string  `json:"state"`
	ZipCode      string  `json:"zip_code"`
}

type EmployeeResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	CPF       string          `json:"cpf"`
	Role      string          `json:"role"`
	Sector    string          `json:"sector"`
	BirthDate *string         `json:"birth_date,omitempty"`
	Address   AddressResponse `json:"address"`
	Status    string          `json:"status"`
	IsAdmin   bool            `json:"is_admin"`
	CreatedAt string          `json:"created_at"`
	UpdatedAt string          `json:"updated_at"`
}

func NewEmployeeResponse(e Employee) EmployeeResponse {
	var birthDate *string
	if e.BirthDate != nil {
		s := e.BirthDate.Format("2006-01-02")
		birthDate = &s
	}
	return EmployeeResponse{
		ID:        e.ID,
		Name:      e.Name,
		Email:     e.Email,
		CPF:       e.CPF,
		Role:      e.Role,
		Sector:    e.Sector,
		BirthDate: birthDate,
		Address: AddressResponse{
			Street:       e.Address.Street,
			Number:       e.Address.Number,
			Complement:   e.Address.Complement,
			Neighborhood: e.Address.Neighborhood,
			City:         e.Address.City,
			State:        e.Address.State,
			ZipCode:      e.Address.ZipCode,
		},
		Status:    string(e.Status),
		IsAdmin:   e.IsAdmin,
		CreatedAt: e.CreatedAt.Format(time.RFC3339),
		UpdatedAt: e.UpdatedAt.Format(time.RFC3339),
	}
}
