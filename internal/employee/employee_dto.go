package employee

import "github.com/shopspring/decimal"

type CreateEmployeeRequest struct {
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=6"`
	FirstName  string `json:"first_name" binding:"required"`
	LastName   string `json:"last_name" binding:"required"`
	Role       string `json:"role"`
	Department string `json:"department"`
	Category   string `json:"category"`
	Position   string `json:"position"`
	Phone      string `json:"phone"`
	Salary     string `json:"salary"`
	Currency   string `json:"currency" binding:"omitempty,len=3"`
	HireDate   string `json:"hire_date"`
	BirthDate  string `json:"birth_date"`
}

type UpdateEmployeeRequest struct {
	FirstName  *string `json:"first_name"`
	LastName   *string `json:"last_name"`
	Role       *string `json:"role"`
	Department *string `json:"department"`
	Category   *string `json:"category"`
	Position   *string `json:"position"`
	Phone      *string `json:"phone"`
	Salary     *string `json:"salary"`
	Currency   *string `json:"currency" binding:"omitempty,len=3"`
	HireDate   *string `json:"hire_date"`
	BirthDate  *string `json:"birth_date"`
	IsActive   *bool   `json:"is_active"`
}

// UpdateProfileRequest is the subset a user may change on their own record.
type UpdateProfileRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
}

type ListFilter struct {
	Department string
	Role       string
	Query      string
	ActiveOnly bool
	Page       int
	PageSize   int
}

type EmployeeResponse struct {
	ID           string          `json:"id"`
	Email        string          `json:"email"`
	FirstName    string          `json:"first_name"`
	LastName     string          `json:"last_name"`
	FullName     string          `json:"full_name"`
	Role         string          `json:"role"`
	Department   string          `json:"department,omitempty"`
	Category     string          `json:"category,omitempty"`
	Position     string          `json:"position,omitempty"`
	Phone        string          `json:"phone,omitempty"`
	Salary       decimal.Decimal `json:"salary"`
	Currency     string          `json:"currency"`
	HireDate     string          `json:"hire_date,omitempty"`
	BirthDate    string          `json:"birth_date,omitempty"`
	IsActive     bool            `json:"is_active"`
	LeaveBalance map[string]int  `json:"leave_balance"`
	LeaveTaken   map[string]int  `json:"leave_taken"`
	RulesVersion int             `json:"rules_version"`
	CreatedAt    string          `json:"created_at"`
}

type OptionResponse struct {
	ID         string `json:"id"`
	FullName   string `json:"full_name"`
	Department string `json:"department,omitempty"`
}
