package models

import "time"

// RoleType defines the user role type
type RoleType string

const (
	RoleStudent   RoleType = "STUDENT"
	RoleFaculty   RoleType = "FACULTY"
	RoleHOD       RoleType = "HOD"
	RolePrincipal RoleType = "PRINCIPAL"
)

// Valid reports whether r is one of the known roles.
func (r RoleType) Valid() bool {
	switch r {
	case RoleStudent, RoleFaculty, RoleHOD, RolePrincipal:
		return true
	}
	return false
}

// User is a row of the users table. Students log in with their register number as username.
type User struct {
	ID          int64     `json:"id" db:"id"`
	Username    string    `json:"username" db:"username"`
	Password    string    `json:"-" db:"password"`
	FullName    string    `json:"fullName" db:"full_name"`
	Email       string    `json:"email,omitempty" db:"email"`
	Role        RoleType  `json:"role" db:"role"`
	Department  string    `json:"department,omitempty" db:"department"`
	Designation string    `json:"designation,omitempty" db:"designation"`
	Section     string    `json:"section,omitempty" db:"section"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// RefreshToken is a row of the refresh_tokens table.
type RefreshToken struct {
	Token      string    `db:"token"`
	UserID     int64     `db:"user_id"`
	ExpiryDate time.Time `db:"expiry_date"`
	IsRevoked  bool      `db:"is_revoked"`
	CreatedAt  time.Time `db:"created_at"`
}
