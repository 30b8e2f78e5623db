package models

import "time"

type UserRole string

const (
	UserRoleUser     UserRole = "user"
	UserRolePanch    UserRole = "panch"
	UserRoleSarpanch UserRole = "sarpanch"
	UserRoleAdmin    UserRole = "admin"
)

var AllRoles = []UserRole{UserRoleUser, UserRolePanch, UserRoleSarpanch, UserRoleAdmin}

func (r UserRole) Valid() bool {
	for _, role := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

type User struct {
	ID               string
	Name             string
	Email            string
	Phone            *string
	PasswordHash     string
	Role             UserRole
	ResetTokenHash   []byte
	ResetTokenExpiry *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ProfileUpdate lists the profile fields a caller may change. Nil fields are left as is.
type ProfileUpdate struct {
	Name  *string
	Email *string
	Phone *string
}

func (u ProfileUpdate) Empty() bool {
	return u.Name == nil && u.Email == nil && u.Phone == nil
}
