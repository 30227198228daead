package models

import "time"

// Role of an authenticated operator.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleTeacher Role = "TEACHER"
)

// User defines the operator model based on the 'users' table
type User struct {
	ID          int64     `json:"id" db:"id"`
	Username    string    `json:"username" db:"username"`
	Password    string    `json:"-" db:"password_hash"` // hashed, excluded from JSON
	DisplayName string    `json:"displayName" db:"display_name"`
	Role        Role      `json:"role" db:"role" example:"ADMIN"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}
