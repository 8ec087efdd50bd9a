package model

import "time"

// User lives in a tenant schema. Deleted users keep their row with DeletedAt set.
type User struct {
	ID           uint       `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	FirstName    *string    `json:"first_name"`
	LastName     *string    `json:"last_name"`
	RoleID       *uint      `json:"role_id"`
	Active       bool       `json:"active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"-"`
}

// CreateUserDTO is the request to create a user
type CreateUserDTO struct {
	Email     string  `json:"email" validate:"emailaddr"`
	Password  string  `json:"password" validate:"required,min=8,containsany=0123456789"`
	FirstName *string `json:"first_name,omitempty" validate:"omitnil,notblank,min=2,max=100"`
	LastName  *string `json:"last_name,omitempty" validate:"omitnil,notblank,min=2,max=100"`
	RoleID    *uint   `json:"role_id,omitempty" validate:"omitnil,min=1"`
}

// UpdateUserDTO is a sparse user update
type UpdateUserDTO struct {
	Email     *string `json:"email,omitempty" validate:"omitnil,emailaddr"`
	Password  *string `json:"password,omitempty" validate:"omitnil,min=8,containsany=0123456789"`
	FirstName *string `json:"first_name,omitempty" validate:"omitnil,notblank,min=2,max=100"`
	LastName  *string `json:"last_name,omitempty" validate:"omitnil,notblank,min=2,max=100"`
	RoleID    *uint   `json:"role_id,omitempty" validate:"omitnil,min=1"`
	Active    *bool   `json:"active,omitempty"`
}

// NewUser is what the repository persists; it only ever carries a hash
type NewUser struct {
	Email        string
	PasswordHash string
	FirstName    *string
	LastName     *string
	RoleID       *uint
}

// UserChanges is a sparse update as seen by the repository
type UserChanges struct {
	Email        *string
	PasswordHash *string
	FirstName    *string
	LastName     *string
	RoleID       *uint
	Active       *bool
}

// LoginDTO carries credentials for both tenant users and system admins
type LoginDTO struct {
	Email    string `json:"email" validate:"required,notblank"`
	Password string `json:"password" validate:"required"`
}

// UserSession is returned by a successful tenant user login
type UserSession struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      *User     `json:"user"`
}
