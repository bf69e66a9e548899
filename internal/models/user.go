package models

import "time"

type UserRole string

const (
	RoleDeveloper UserRole = "developer"
	RoleDesigner  UserRole = "designer"
	RoleManager   UserRole = "manager"
	RoleQA        UserRole = "qa"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleDeveloper, RoleDesigner, RoleManager, RoleQA:
		return true
	}
	return false
}

type User struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Role       UserRole  `json:"role"`
	Department string    `json:"department"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (u User) LastUpdated() time.Time {
	return u.UpdatedAt
}
