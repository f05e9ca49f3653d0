package user

import (
	"strings"
	"time"

	"ecochain-be/internal/utils"
)

type User struct {
	ID           uint      `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

type RegisterInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required"`
	Role     string `json:"role" validate:"omitempty,oneof=user collector factory"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResult struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// selfServiceRole maps a requested signup role to one a visitor may hold.
// Admins are provisioned out of band.
func selfServiceRole(r string) string {
	switch strings.ToLower(strings.TrimSpace(r)) {
	case utils.RoleCollector:
		return utils.RoleCollector
	case utils.RoleFactory:
		return utils.RoleFactory
	}
	return utils.RoleUser
}
