package model

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleAdmin  UserRole = "Admin"
	RoleAuthor UserRole = "Author"
	RoleReader UserRole = "Reader"
)

type User struct {
	gorm.Model
	Name     string   `json:"name" gorm:"not null"`
	Email    string   `json:"email" gorm:"uniqueIndex;not null"`
	Password string   `json:"-" gorm:"not null"`
	Role     UserRole `json:"role" gorm:"size:20;default:'Author'"`

	// One-time code for password reset
	OTP        string     `json:"-" gorm:"size:10"`
	OTPExpires *time.Time `json:"-"`
}

func (u *User) GetPublicProfile() map[string]interface{} {
	return map[string]interface{}{
		"id":    u.ID,
		"name":  u.Name,
		"email": u.Email,
		"role":  u.Role,
	}
}
