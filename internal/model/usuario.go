package model

import (
	"time"

	"github.com/google/uuid"
)

// Rol is the closed set of back-office roles.
type Rol string

const (
	RolAdmin        Rol = "admin"
	RolVentas       Rol = "ventas"
	RolContabilidad Rol = "contabilidad"
	RolLogistica    Rol = "logistica"
)

// Valido reports whether r is a known role.
func (r Rol) Valido() bool {
	switch r {
	case RolAdmin, RolVentas, RolContabilidad, RolLogistica:
		return true
	}
	return false
}

// Usuario stores system users with role-based access.
type Usuario struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username     string    `gorm:"uniqueIndex;not null"`
	Nombre       string    `gorm:"not null"`
	Email        *string
	PasswordHash string `gorm:"not null"`
	Rol          Rol    `gorm:"type:varchar(20);not null"`
	Activo       bool   `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Usuario) TableName() string { return "usuarios" }
