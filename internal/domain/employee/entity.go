package employee

import (
	"time"
)

type Employee struct {
	ID        string
	Name      string
	Email     string
	CPF       string
	Role      string
	Sector    string
	BirthDate *time.Time
	Address   Address
	Status    Status
	IsAdmin   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (e Employee) IsActive() bool {
	return e.Status == StatusActive
}

type Address struct {
	Street       string
	Number       string
	Complement   *string
	Neighborhood string
	City         string
	State        string
	ZipCode      string
}

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

func (s Status) IsValid() bool {
	return s == StatusActive || s == StatusInactive
}
