package model

import "time"

// SystemAdmin is a control-plane operator. Deleting one only clears Active.
type SystemAdmin struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Email        string    `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"type:text;not null"`
	Name         string    `json:"name" gorm:"type:varchar(100);not null"`
	Active       bool      `json:"active" gorm:"not null;default:true"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName returns the control-plane table name
func (SystemAdmin) TableName() string {
	return "system_admins"
}

// CreateSystemAdminDTO is the request to create a system admin
type CreateSystemAdminDTO struct {
	Email    string `json:"email" validate:"emailaddr"`
	Password string `json:"password" validate:"required,min=8,containsany=0123456789"`
	Name     string `json:"name" validate:"required,notblank,max=100"`
}

// UpdateSystemAdminDTO is a sparse system admin update
type UpdateSystemAdminDTO struct {
	Email    *string `json:"email,omitempty" validate:"omitnil,emailaddr"`
	Password *string `json:"password,omitempty" validate:"omitnil,min=8,containsany=0123456789"`
	Name     *string `json:"name,omitempty" validate:"omitnil,notblank,max=100"`
	Active   *bool   `json:"active,omitempty"`
}

// NewSystemAdmin is what the repository persists
type NewSystemAdmin struct {
	Email        string
	PasswordHash string
	Name         string
}

// SystemAdminChanges is a sparse update as seen by the repository
type SystemAdminChanges struct {
	Email        *string
	PasswordHash *string
	Name         *string
	Active       *bool
}

// AdminSession is returned by a successful system admin login
type AdminSession struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	Admin     *SystemAdmin `json:"admin"`
}
