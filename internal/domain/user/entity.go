package user

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleApplicant Role = "user"
	RoleCompany   Role = "company"
	RoleAdmin     Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleApplicant, RoleCompany, RoleAdmin:
		return true
	default:
		return false
	}
}

var ErrNotFound = errors.New("user not found")

type User struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CompanyID    *uuid.UUID
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
