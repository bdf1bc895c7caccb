package auth

import (
	"time"

	"github.com/premidisfinal/premidis-fin/internal/employee"
)

// RegisterRequest is self-registration. The account always starts as an
// employee; elevated roles are granted through the employee admin routes.
type RegisterRequest struct {
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=6"`
	FirstName  string `json:"first_name" binding:"required"`
	LastName   string `json:"last_name" binding:"required"`
	Department string `json:"department"`
	Phone      string `json:"phone"`
}

func (r RegisterRequest) toEmployee() employee.CreateEmployeeRequest {
	return employee.CreateEmployeeRequest{
		Email:      r.Email,
		Password:   r.Password,
		FirstName:  r.FirstName,
		LastName:   r.LastName,
		Department: r.Department,
		Phone:      r.Phone,
	}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	ID          string         `json:"id"`
	Email       string         `json:"email"`
	Name        string         `json:"name"`
	Role        string         `json:"role"`
	Department  string         `json:"department,omitempty"`
	Permissions []string       `json:"permissions"`
	Balance     map[string]int `json:"leave_balance,omitempty"`
}

type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        AuthResponse `json:"user"`
}
